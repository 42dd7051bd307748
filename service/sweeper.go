package service

import (
	"context"
	"oauth2-token-store/logger"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Cleaner deletes expired and revoked token records.
type Cleaner interface {
	Cleanup(ctx context.Context) (int64, error)
}

// Lease coordinates sweeps across instances.
type Lease interface {
	Acquire(ctx context.Context, owner string) (bool, error)
	Release(ctx context.Context, owner string) error
}

// Sweeper runs Cleaner periodically. With a Lease, only the instance holding
// it sweeps on a given tick; cleanup itself stays safe without one.
type Sweeper struct {
	cleaner  Cleaner
	lease    Lease
	interval time.Duration
}

// NewSweeper creates a Sweeper. A nil lease sweeps on every tick.
func NewSweeper(cleaner Cleaner, lease Lease, interval time.Duration) *Sweeper {
	return &Sweeper{cleaner: cleaner, lease: lease, interval: interval}
}

// RunOnce performs a single sweep. It returns 0 without error when another
// instance holds the lease, and sweeps unleased when the lease store fails.
func (s *Sweeper) RunOnce(ctx context.Context) (int64, error) {
	log := logger.Log.WithField("component", "sweeper")

	if s.lease != nil {
		owner := uuid.NewString()
		ok, err := s.lease.Acquire(ctx, owner)
		switch {
		case err != nil:
			// Cleanup is safe without the lease.
			log.WithError(err).Warn("Could not acquire cleanup lease, sweeping without it")
		case !ok:
			log.Debug("Cleanup lease held elsewhere, skipping sweep")
			return 0, nil
		default:
			defer s.release(owner)
		}
	}

	start := time.Now()
	n, err := s.cleaner.Cleanup(ctx)
	fields := logrus.Fields{"deleted": n, "duration": time.Since(start).String()}
	if err != nil {
		log.WithFields(fields).WithError(err).Error("Token sweep failed")
		return n, err
	}
	log.WithFields(fields).Info("Token sweep completed")
	return n, nil
}

func (s *Sweeper) release(owner string) {
	// The sweep context may already be cancelled.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := s.lease.Release(ctx, owner); err != nil {
		logger.Log.WithField("component", "sweeper").WithError(err).Warn("Could not release cleanup lease")
	}
}

// Start sweeps every interval until ctx is done.
func (s *Sweeper) Start(ctx context.Context) {
	if s.interval <= 0 {
		logger.Log.WithField("interval", s.interval.String()).Warn("Token sweeper disabled: interval must be positive")
		return
	}
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Log.WithField("interval", s.interval.String()).Info("Token sweeper started")
	for {
		select {
		case <-ctx.Done():
			logger.Log.Info("Token sweeper stopped")
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}
