package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/vendor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockProductRepository creates a GormProductRepository with a mocked SQL connection
func newMockProductRepository(t *testing.T) (*GormProductRepository, sqlmock.Sqlmock, *sql.DB) {
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

	return NewGormProductRepository(gormDB), mock, mockDB
}

func TestGormProductRepository_FindByID(t *testing.T) {
	t.Run("finds existing product", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		rows := sqlmock.NewRows([]string{"id", "name", "price", "status", "sold_count", "view_count"}).
			AddRow(productID, "Linen Shirt", "100", "ACTIVE", 3, 12)

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(productID, 1).
			WillReturnRows(rows)

		product, err := repo.FindByID(context.Background(), productID)
		require.NoError(t, err)
		assert.Equal(t, productID, product.ID)
		assert.Equal(t, "Linen Shirt", product.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing product", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(productID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		product, err := repo.FindByID(context.Background(), productID)
		assert.Nil(t, product)
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_ScopeGating(t *testing.T) {
	t.Run("unresolved scope never reaches the database", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		_, err := repo.BestSellers(context.Background(), vendor.UnresolvedScope(), 10)
		assert.ErrorIs(t, err, shared.ErrScopeUnresolved)

		_, err = repo.HotDeals(context.Background(), vendor.UnresolvedScope(), 10)
		assert.ErrorIs(t, err, shared.ErrScopeUnresolved)

		_, _, err = repo.Search(context.Background(), vendor.UnresolvedScope(), "shirt", shared.DefaultFilter())
		assert.ErrorIs(t, err, shared.ErrScopeUnresolved)

		// No queries were issued for any of the refused calls.
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("vendor scope filters by vendor profile", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		vendorID := uuid.New()
		mock.ExpectQuery(`SELECT \* FROM "products" WHERE status = \$1 AND vendor_profile_id IN \(SELECT id FROM vendor_profiles WHERE vendor_id = \$2\) ORDER BY sold_count DESC, id ASC LIMIT .*`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "status"}))

		products, err := repo.BestSellers(context.Background(), vendor.VendorScope(vendorID), 10)
		require.NoError(t, err)
		assert.Empty(t, products)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("global scope applies no vendor filter", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		mock.ExpectQuery(`SELECT \* FROM "products" WHERE status = \$1 ORDER BY sold_count DESC, id ASC LIMIT .*`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "status"}))

		_, err := repo.BestSellers(context.Background(), vendor.GlobalScope(), 10)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormProductRepository_Counters(t *testing.T) {
	t.Run("increments view count in place", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		mock.ExpectExec(`UPDATE "products" SET "view_count"=view_count \+ 1 WHERE id = \$1`).
			WithArgs(productID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.IncrementViewCount(context.Background(), productID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("increments sold count by quantity", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		productID := uuid.New()
		mock.ExpectExec(`UPDATE "products" SET "sold_count"=sold_count \+ \$1 WHERE id = \$2`).
			WithArgs(3, productID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.IncrementSoldCount(context.Background(), productID, 3))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("non-positive quantity is a no-op", func(t *testing.T) {
		repo, mock, mockDB := newMockProductRepository(t)
		defer mockDB.Close()

		assert.NoError(t, repo.IncrementSoldCount(context.Background(), uuid.New(), 0))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
