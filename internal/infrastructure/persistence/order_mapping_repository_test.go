package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/marketsync/backend/internal/domain/integration"
)

// newMockOrderMappingRepository creates a GormOrderMappingRepository with a mocked SQL connection
func newMockOrderMappingRepository(t *testing.T) (*GormOrderMappingRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormOrderMappingRepository(gormDB), mock, mockDB
}

func orderMappingColumns() []string {
	return []string{
		"id", "marketplace", "remote_order_id", "local_order_id",
		"status", "error_message", "version", "last_sync_at",
		"created_at", "updated_at",
	}
}

func TestGormOrderMappingRepository_FindByRemote(t *testing.T) {
	t.Run("finds existing mapping", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderMappingRepository(t)
		defer mockDB.Close()

		id := uuid.New()
		localID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(orderMappingColumns()).AddRow(
			id, "trendyol", "TY-1001", localID,
			"synced", "", 3, now,
			now, now,
		)

		mock.ExpectQuery(`SELECT \* FROM "order_mappings" WHERE marketplace = \$1 AND remote_order_id = \$2`).
			WithArgs("trendyol", "TY-1001", 1).
			WillReturnRows(rows)

		record, err := repo.FindByRemote(context.Background(), integration.MarketplaceTrendyol, "TY-1001")

		assert.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, "TY-1001", record.RemoteID)
		require.NotNil(t, record.LocalID)
		assert.Equal(t, localID, *record.LocalID)
		assert.Equal(t, integration.MappingStatusSynced, record.Status)
		assert.Equal(t, int64(3), record.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns ErrMappingNotFound for unknown remote order", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderMappingRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "order_mappings" WHERE marketplace = \$1 AND remote_order_id = \$2`).
			WithArgs("amazon", "AMZ-404", 1).
			WillReturnError(gorm.ErrRecordNotFound)

		record, err := repo.FindByRemote(context.Background(), integration.MarketplaceAmazon, "AMZ-404")

		assert.Nil(t, record)
		assert.ErrorIs(t, err, integration.ErrMappingNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderMappingRepository_FindByLocal(t *testing.T) {
	t.Run("finds mapping by local order id", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderMappingRepository(t)
		defer mockDB.Close()

		id := uuid.New()
		localID := uuid.New()
		now := time.Now()

		rows := sqlmock.NewRows(orderMappingColumns()).AddRow(
			id, "n11", "N11-7", localID,
			"synced", "", 1, now,
			now, now,
		)

		mock.ExpectQuery(`SELECT \* FROM "order_mappings" WHERE marketplace = \$1 AND local_order_id = \$2`).
			WithArgs("n11", localID, 1).
			WillReturnRows(rows)

		record, err := repo.FindByLocal(context.Background(), integration.MarketplaceN11, localID)

		assert.NoError(t, err)
		require.NotNil(t, record)
		assert.Equal(t, "N11-7", record.RemoteID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderMappingRepository_Upsert(t *testing.T) {
	t.Run("inserts with conflict resolution on natural key", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderMappingRepository(t)
		defer mockDB.Close()

		record, err := integration.NewOrderMapping(integration.MarketplaceEbay, "EB-55")
		require.NoError(t, err)
		require.NoError(t, record.Link(uuid.New()))
		record.RecordSuccess()

		mock.ExpectExec(`INSERT INTO "order_mappings" .* ON CONFLICT \("marketplace","remote_order_id"\) DO UPDATE SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Upsert(context.Background(), record)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("never overwrites an established local linkage", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderMappingRepository(t)
		defer mockDB.Close()

		record, err := integration.NewOrderMapping(integration.MarketplaceOzon, "OZ-9")
		require.NoError(t, err)

		mock.ExpectExec(`ON CONFLICT .* COALESCE\(order_mappings\.local_order_id, excluded\.local_order_id\)`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err = repo.Upsert(context.Background(), record)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormOrderMappingRepository_MarkError(t *testing.T) {
	t.Run("records failure without touching linkage", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderMappingRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`INSERT INTO "order_mappings" .* ON CONFLICT \("marketplace","remote_order_id"\) DO UPDATE SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.MarkError(context.Background(), integration.MarketplaceHepsiburada, "HB-12", "detail fetch timed out")

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects an empty remote order id", func(t *testing.T) {
		repo, _, mockDB := newMockOrderMappingRepository(t)
		defer mockDB.Close()

		err := repo.MarkError(context.Background(), integration.MarketplaceHepsiburada, "", "boom")

		assert.ErrorIs(t, err, integration.ErrMappingInvalidKey)
	})
}

func TestGormOrderMappingRepository_Stats(t *testing.T) {
	t.Run("aggregates mapping counts", func(t *testing.T) {
		repo, mock, mockDB := newMockOrderMappingRepository(t)
		defer mockDB.Close()

		lastSync := time.Now().Add(-time.Hour)

		mock.ExpectQuery(`SELECT count\(\*\) FROM "order_mappings" WHERE marketplace = \$1`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(120))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "order_mappings" WHERE marketplace = \$1 AND status = \$2`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(100))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "order_mappings" WHERE marketplace = \$1 AND status = \$2`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "order_mappings" WHERE marketplace = \$1 AND status = \$2 AND last_sync_at >= \$3`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(18))
		mock.ExpectQuery(`SELECT MAX\(last_sync_at\) AS last_sync_at FROM "order_mappings"`).
			WillReturnRows(sqlmock.NewRows([]string{"last_sync_at"}).AddRow(lastSync))

		stats, err := repo.Stats(context.Background(), integration.MarketplaceTrendyol)

		assert.NoError(t, err)
		require.NotNil(t, stats)
		assert.Equal(t, int64(120), stats.Total)
		assert.Equal(t, int64(100), stats.Synced)
		assert.Equal(t, int64(5), stats.Errors)
		assert.Equal(t, int64(18), stats.SyncedToday)
		require.NotNil(t, stats.LastSyncAt)
		assert.WithinDuration(t, lastSync, *stats.LastSyncAt, time.Second)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
