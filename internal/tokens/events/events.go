// Package events publishes token lifecycle notifications. Publishing is best
// effort: sinks log their own failures and issuance never waits on them.
package events

import (
	"context"
	"time"

	"github.com/aussiebroadwan/tokenreg/pkg/idx"
)

type Kind string

const (
	KindTokenIssued    Kind = "token.issued"
	KindTokenEvicted   Kind = "token.evicted"
	KindAccountRemoved Kind = "account.removed"
	KindTokenPurged    Kind = "token.purged"
)

// Eviction reasons carried by KindTokenEvicted and KindTokenPurged.
const (
	ReasonExpired = "expired"
	ReasonLimit   = "limit"
	ReasonCorrupt = "corrupt"
)

type Event struct {
	ID        idx.ID    `json:"id"`
	Kind      Kind      `json:"kind"`
	AccountID string    `json:"account"`
	StorageID int64     `json:"storage_id,omitempty"`
	Reason    string    `json:"reason,omitempty"`
	Count     int64     `json:"count,omitempty"`
	At        time.Time `json:"at"`
}

// New stamps an event with a fresh id and the current time.
func New(kind Kind, accountID string) Event {
	at := time.Now().UTC()
	return Event{
		ID:        idx.NewAt(at),
		Kind:      kind,
		AccountID: accountID,
		At:        at,
	}
}

// Publisher delivers events to some sink.
type Publisher interface {
	Publish(ctx context.Context, evs ...Event) error
	Close() error
}

// Nop drops everything.
type Nop struct{}

func (Nop) Publish(context.Context, ...Event) error { return nil }
func (Nop) Close() error                            { return nil }
