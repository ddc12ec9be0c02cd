package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	appinv "github.com/stocker/inventory/internal/application/inventory"
)

// ReservationSweeper periodically settles reservations whose expiration has
// passed. Availability math already ignores expired reservations before the
// sweep runs; the sweeper brings the stored status in line and returns the
// reserved quantity on the stock items.
type ReservationSweeper struct {
	service   *appinv.ReservationExpirationService
	logger    *zap.Logger
	config    ReservationSweeperConfig
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
}

// ReservationSweeperConfig holds configuration for the reservation sweeper
type ReservationSweeperConfig struct {
	// Enabled determines if the sweeper runs at all
	Enabled bool

	// Interval is how often the sweep runs
	Interval time.Duration

	// SweepTimeout is the maximum time for one sweep run
	SweepTimeout time.Duration
}

// DefaultReservationSweeperConfig returns default configuration
func DefaultReservationSweeperConfig() ReservationSweeperConfig {
	return ReservationSweeperConfig{
		Enabled:      true,
		Interval:     time.Minute,
		SweepTimeout: 5 * time.Minute,
	}
}

// NewReservationSweeper creates a new reservation sweeper
func NewReservationSweeper(
	service *appinv.ReservationExpirationService,
	logger *zap.Logger,
	config ReservationSweeperConfig,
) *ReservationSweeper {
	if config.Interval <= 0 {
		config.Interval = DefaultReservationSweeperConfig().Interval
	}
	if config.SweepTimeout <= 0 {
		config.SweepTimeout = DefaultReservationSweeperConfig().SweepTimeout
	}
	return &ReservationSweeper{
		service: service,
		logger:  logger,
		config:  config,
	}
}

// Start starts the background sweep loop
func (s *ReservationSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	if !s.config.Enabled {
		s.mu.Unlock()
		s.logger.Info("Reservation sweeper is disabled")
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.run(ctx)

	s.logger.Info("Reservation sweeper started",
		zap.Duration("interval", s.config.Interval),
	)

	return nil
}

// Stop gracefully stops the sweeper
func (s *ReservationSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Reservation sweeper stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Reservation sweeper stop timed out")
		return ctx.Err()
	}
}

// IsRunning returns whether the sweep loop is active
func (s *ReservationSweeper) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isRunning
}

func (s *ReservationSweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("Reservation sweep loop stopping")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

// sweep runs one expiration pass
func (s *ReservationSweeper) sweep(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, s.config.SweepTimeout)
	defer cancel()

	stats, err := s.service.ExpireDue(sweepCtx, time.Now())
	if err != nil {
		s.logger.Error("Reservation sweep failed", zap.Error(err))
		return
	}

	if stats.TotalDue > 0 {
		s.logger.Info("Reservation sweep completed",
			zap.Int("total_due", stats.TotalDue),
			zap.Int("expired", stats.Expired),
			zap.Int("failed", stats.Failed),
		)
	}
}
