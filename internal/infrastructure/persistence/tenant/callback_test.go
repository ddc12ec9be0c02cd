package tenant

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/stocker/inventory/internal/infrastructure/logger"
)

type ledgerRow struct {
	ID       uint
	TenantID string
	Name     string
}

func newCallbackTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})
	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return gormDB, mock, mockDB
}

func tenantContext(tenantID string) context.Context {
	ctx := context.Background()
	ctx, _ = logger.WithTenantID(ctx, logger.FromContext(ctx), tenantID)
	return ctx
}

func TestNewCallback(t *testing.T) {
	t.Run("defaults the column to tenant_id", func(t *testing.T) {
		tc := NewCallback("", true)
		assert.Equal(t, "tenant_id", tc.column)
		assert.True(t, tc.required)
	})

	t.Run("keeps a custom column", func(t *testing.T) {
		tc := NewCallback("org_id", false)
		assert.Equal(t, "org_id", tc.column)
		assert.False(t, tc.required)
	})
}

func TestCallback_Filtering(t *testing.T) {
	t.Run("injects the context tenant into bare queries", func(t *testing.T) {
		db, mock, mockDB := newCallbackTestDB(t)
		defer mockDB.Close()

		EnableAutoTenantFilter(db, false)
		tenantID := uuid.NewString()

		mock.ExpectQuery(`SELECT \* FROM "ledger_rows" WHERE "ledger_rows"\."tenant_id" = \$1`).
			WithArgs(tenantID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}))

		var rows []ledgerRow
		err := db.WithContext(tenantContext(tenantID)).Find(&rows).Error

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("leaves an explicit tenant condition alone", func(t *testing.T) {
		db, mock, mockDB := newCallbackTestDB(t)
		defer mockDB.Close()

		EnableAutoTenantFilter(db, false)
		tenantID := uuid.NewString()

		mock.ExpectQuery(`SELECT \* FROM "ledger_rows" WHERE "tenant_id" = \$1`).
			WithArgs(tenantID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}))

		var rows []ledgerRow
		err := db.WithContext(tenantContext(tenantID)).
			Where(clause.Eq{Column: clause.Column{Name: "tenant_id"}, Value: tenantID}).
			Find(&rows).Error

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips unscoped statements", func(t *testing.T) {
		db, mock, mockDB := newCallbackTestDB(t)
		defer mockDB.Close()

		EnableAutoTenantFilter(db, true)

		mock.ExpectQuery(`SELECT \* FROM "ledger_rows"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}))

		var rows []ledgerRow
		err := db.WithContext(context.Background()).Unscoped().Find(&rows).Error

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lets context-free queries through when not required", func(t *testing.T) {
		db, mock, mockDB := newCallbackTestDB(t)
		defer mockDB.Close()

		EnableAutoTenantFilter(db, false)

		mock.ExpectQuery(`SELECT \* FROM "ledger_rows"`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}))

		var rows []ledgerRow
		err := db.WithContext(context.Background()).Find(&rows).Error

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestCallback_Enforcement(t *testing.T) {
	t.Run("required mode rejects a missing tenant", func(t *testing.T) {
		db, _, mockDB := newCallbackTestDB(t)
		defer mockDB.Close()

		EnableAutoTenantFilter(db, true)

		var rows []ledgerRow
		err := db.WithContext(context.Background()).Find(&rows).Error

		assert.ErrorIs(t, err, ErrTenantIDRequired)
	})

	t.Run("rejects a malformed tenant id", func(t *testing.T) {
		db, _, mockDB := newCallbackTestDB(t)
		defer mockDB.Close()

		EnableAutoTenantFilter(db, true)

		var rows []ledgerRow
		err := db.WithContext(tenantContext("not-a-uuid")).Find(&rows).Error

		assert.ErrorIs(t, err, ErrInvalidTenantID)
	})
}

func TestDisableAutoTenantFilter(t *testing.T) {
	db, mock, mockDB := newCallbackTestDB(t)
	defer mockDB.Close()

	EnableAutoTenantFilter(db, true)
	DisableAutoTenantFilter(db)

	// Required enforcement is gone once the callbacks are removed.
	mock.ExpectQuery(`SELECT \* FROM "ledger_rows"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name"}))

	var rows []ledgerRow
	err := db.WithContext(context.Background()).Find(&rows).Error

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
