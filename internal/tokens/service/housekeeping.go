package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/tokenreg/internal/tokens/events"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/metrics"
	"github.com/aussiebroadwan/tokenreg/internal/tokens/store"
)

// housekeepingPageSize bounds how many rows one scan step reads.
const housekeepingPageSize = 500

// HousekeepingService periodically deletes expired and undecodable token
// rows so accounts that stop issuing do not keep dead rows forever.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Events   events.Publisher
	Metrics  *metrics.Metrics

	now func() time.Time

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		Events:   events.Nop{},
		now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-s.stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	// Run cleanup immediately on startup
	s.Cleanup(ctx)

	for {
		select {
		case <-ticker.C:
			s.Cleanup(ctx)
		case <-s.stopCh:
			return
		}
	}
}

// Cleanup scans the whole table once and deletes dead rows. It returns how
// many rows went away.
func (s *HousekeepingService) Cleanup(ctx context.Context) int64 {
	s.Logger.Debug("starting housekeeping cleanup")

	repo := s.Store.Tokens()
	now := s.now().Unix()

	var (
		afterID int64
		total   int64
		evs     []events.Event
		counts  = map[string]int{}
	)
	for {
		rows, err := repo.ListTokens(ctx, afterID, housekeepingPageSize)
		if err != nil {
			s.Logger.Error("failed to list tokens", "error", err)
			break
		}
		if len(rows) == 0 {
			break
		}
		afterID = rows[len(rows)-1].ID

		var (
			ids     []int64
			pending []events.Event
		)
		for _, row := range rows {
			st := classifyRow(row, now)
			reason := ""
			switch {
			case st.corrupt:
				reason = events.ReasonCorrupt
				s.Logger.Warn("purging undecodable token row", "storage_id", row.ID)
			case st.expired:
				reason = events.ReasonExpired
			default:
				continue
			}
			ids = append(ids, row.ID)

			ev := events.New(events.KindTokenPurged, row.AccountID)
			ev.StorageID = row.ID
			ev.Reason = reason
			pending = append(pending, ev)
		}

		if len(ids) > 0 {
			n, err := repo.DeleteTokens(ctx, ids...)
			if err != nil {
				s.Logger.Error("failed to delete expired tokens", "error", err)
				break
			}
			total += n
			for _, ev := range pending {
				counts[ev.Reason]++
			}
			evs = append(evs, pending...)
		}

		if len(rows) < housekeepingPageSize {
			break
		}
	}

	for reason, n := range counts {
		s.Metrics.Evicted(reason, n)
	}
	if len(evs) > 0 {
		if err := s.Events.Publish(ctx, evs...); err != nil {
			s.Logger.Warn("failed to publish purge events", "error", err)
		}
	}

	s.Logger.Info("housekeeping cleanup completed", "tokens_deleted", total)
	return total
}
