package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrSyncerRunning is returned by Start when the syncer is already running
var ErrSyncerRunning = errors.New("syncer already running")

// Synchronizer runs a single sync cycle
type Synchronizer interface {
	Sync(ctx context.Context) (SyncResult, error)
}

// Syncer runs a Synchronizer periodically until it is stopped
type Syncer struct {
	target   Synchronizer
	interval time.Duration
	timeout  time.Duration
	logger   logrus.FieldLogger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewSyncer creates a Syncer. Each cycle is bounded by timeout when it is positive.
func NewSyncer(target Synchronizer, interval, timeout time.Duration, logger logrus.FieldLogger) *Syncer {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Syncer{
		target:   target,
		interval: interval,
		timeout:  timeout,
		logger:   logger,
	}
}

// Start runs one cycle right away and then one per interval in the background
func (s *Syncer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrSyncerRunning
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	s.logger.WithField("interval", s.interval).Info("starting periodic sync")
	go s.loop(ctx, s.done)
	return nil
}

// Stop cancels the background loop and waits for the current cycle to finish
func (s *Syncer) Stop() {
	s.mu.Lock()
	cancel, done := s.cancel, s.done
	s.cancel, s.done = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.logger.Info("periodic sync stopped")
}

func (s *Syncer) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce(ctx)
	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Syncer) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	cycleCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		cycleCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	// the next tick tries again
	if _, err := s.target.Sync(cycleCtx); err != nil {
		s.logger.WithError(err).Warn("sync cycle failed")
	}
}
