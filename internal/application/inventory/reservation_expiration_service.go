package inventory

import (
	"context"
	"time"

	"github.com/stocker/inventory/internal/domain/inventory"
	"github.com/stocker/inventory/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultExpirationBatchSize caps how many reservations one sweep handles
const DefaultExpirationBatchSize = 500

// ReservationExpirationService enforces time-based reservation expiry.
// Expiration is driven by the periodic sweep, not by consumers: an expired
// but unswept reservation already stops counting against availability
// (IsActive checks the timestamp), the sweep settles the stored state.
type ReservationExpirationService struct {
	txScope        TransactionScope
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	batchSize      int
}

// NewReservationExpirationService creates a new ReservationExpirationService
func NewReservationExpirationService(txScope TransactionScope, logger *zap.Logger) *ReservationExpirationService {
	return &ReservationExpirationService{
		txScope:   txScope,
		logger:    logger,
		batchSize: DefaultExpirationBatchSize,
	}
}

// SetEventPublisher sets the event bus for publishing events
func (s *ReservationExpirationService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBatchSize overrides the per-sweep reservation cap
func (s *ReservationExpirationService) SetBatchSize(n int) {
	if n > 0 {
		s.batchSize = n
	}
}

// ExpirationStats contains statistics about one sweep run
type ExpirationStats struct {
	TotalDue    int       `json:"total_due"`
	Expired     int       `json:"expired"`
	Failed      int       `json:"failed"`
	ProcessedAt time.Time `json:"processed_at"`
}

// ExpireDue deactivates all reservations whose expiration has passed.
// Each reservation settles in its own transaction so one failure does not
// roll back the rest of the batch.
func (s *ReservationExpirationService) ExpireDue(ctx context.Context, now time.Time) (*ExpirationStats, error) {
	stats := &ExpirationStats{ProcessedAt: now}

	var due []inventory.StockReservation
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var findErr error
		due, findErr = repos.ReservationRepo().FindExpired(ctx, now, s.batchSize)
		return findErr
	})
	if err != nil {
		s.logger.Error("Failed to find expired reservations", zap.Error(err))
		return nil, err
	}

	stats.TotalDue = len(due)
	if stats.TotalDue == 0 {
		s.logger.Debug("No expired reservations found")
		return stats, nil
	}

	s.logger.Info("Found expired reservations", zap.Int("count", stats.TotalDue))

	for i := range due {
		if err := s.expireOne(ctx, &due[i], now); err != nil {
			stats.Failed++
			s.logger.Error("Failed to expire reservation",
				zap.String("reservation_id", due[i].ID.String()),
				zap.String("reservation_number", due[i].ReservationNumber),
				zap.Error(err),
			)
			continue
		}
		stats.Expired++
	}

	s.logger.Info("Reservation expiration sweep finished",
		zap.Int("expired", stats.Expired),
		zap.Int("failed", stats.Failed),
	)

	return stats, nil
}

func (s *ReservationExpirationService) expireOne(ctx context.Context, stale *inventory.StockReservation, now time.Time) error {
	var events []shared.DomainEvent

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		// Re-read inside the transaction; the reservation may have been
		// released or fulfilled since the sweep listed it.
		reservation, err := repos.ReservationRepo().FindByID(ctx, stale.TenantID, stale.ID)
		if err != nil {
			return err
		}
		if !reservation.IsExpired(now) {
			return nil
		}

		freed, err := reservation.Expire(now)
		if err != nil {
			return err
		}

		item, err := repos.StockItemRepo().FindByWarehouseAndProductForUpdate(ctx,
			reservation.TenantID, reservation.WarehouseID, reservation.ProductID)
		if err != nil {
			return err
		}
		if err := item.ReleaseReservation(freed); err != nil {
			return err
		}

		if err := repos.ReservationRepo().Save(ctx, reservation); err != nil {
			return err
		}
		if err := repos.StockItemRepo().SaveWithLock(ctx, item); err != nil {
			return err
		}

		events = append(events, reservation.GetDomainEvents()...)
		reservation.ClearDomainEvents()
		return nil
	})
	if err != nil {
		return err
	}

	if s.eventPublisher != nil && len(events) > 0 {
		if err := s.eventPublisher.Publish(ctx, events...); err != nil {
			s.logger.Warn("Failed to publish expiration events", zap.Error(err))
		}
	}
	return nil
}
