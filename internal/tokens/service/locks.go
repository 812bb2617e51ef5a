package service

import "sync"

// accountLocks hands out one mutex per account id. Entries are reference
// counted and dropped once nobody holds or waits on them.
type accountLocks struct {
	mu    sync.Mutex
	locks map[string]*accountLock
}

type accountLock struct {
	sync.Mutex
	refs int
}

func newAccountLocks() *accountLocks {
	return &accountLocks{locks: make(map[string]*accountLock)}
}

// lock blocks until id's mutex is held and returns its release func.
func (a *accountLocks) lock(id string) func() {
	a.mu.Lock()
	l, ok := a.locks[id]
	if !ok {
		l = &accountLock{}
		a.locks[id] = l
	}
	l.refs++
	a.mu.Unlock()

	l.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.Unlock()

			a.mu.Lock()
			l.refs--
			if l.refs == 0 {
				delete(a.locks, id)
			}
			a.mu.Unlock()
		})
	}
}

// held reports how many ids currently have a holder or waiter.
func (a *accountLocks) held() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.locks)
}
