package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appinv "github.com/stocker/inventory/internal/application/inventory"
)

func newTestSweeper(config ReservationSweeperConfig) *ReservationSweeper {
	service := appinv.NewReservationExpirationService(nil, zap.NewNop())
	return NewReservationSweeper(service, zap.NewNop(), config)
}

func TestDefaultReservationSweeperConfig(t *testing.T) {
	config := DefaultReservationSweeperConfig()

	assert.True(t, config.Enabled)
	assert.Equal(t, time.Minute, config.Interval)
	assert.Equal(t, 5*time.Minute, config.SweepTimeout)
}

func TestNewReservationSweeper(t *testing.T) {
	t.Run("fills in missing interval and timeout", func(t *testing.T) {
		sweeper := newTestSweeper(ReservationSweeperConfig{Enabled: true})

		assert.Equal(t, time.Minute, sweeper.config.Interval)
		assert.Equal(t, 5*time.Minute, sweeper.config.SweepTimeout)
	})
}

func TestReservationSweeper_StartStop(t *testing.T) {
	t.Run("starts and stops cleanly", func(t *testing.T) {
		sweeper := newTestSweeper(ReservationSweeperConfig{
			Enabled:      true,
			Interval:     time.Hour,
			SweepTimeout: time.Minute,
		})

		require.NoError(t, sweeper.Start(context.Background()))
		assert.True(t, sweeper.IsRunning())

		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, sweeper.Stop(stopCtx))
		assert.False(t, sweeper.IsRunning())
	})

	t.Run("does not start when disabled", func(t *testing.T) {
		sweeper := newTestSweeper(ReservationSweeperConfig{Enabled: false})

		require.NoError(t, sweeper.Start(context.Background()))
		assert.False(t, sweeper.IsRunning())
	})

	t.Run("start is idempotent", func(t *testing.T) {
		sweeper := newTestSweeper(ReservationSweeperConfig{
			Enabled:  true,
			Interval: time.Hour,
		})

		require.NoError(t, sweeper.Start(context.Background()))
		require.NoError(t, sweeper.Start(context.Background()))

		stopCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		require.NoError(t, sweeper.Stop(stopCtx))
	})

	t.Run("stop without start is a no-op", func(t *testing.T) {
		sweeper := newTestSweeper(ReservationSweeperConfig{Enabled: true})

		assert.NoError(t, sweeper.Stop(context.Background()))
	})
}
