package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coredatabase "github.com/m3rciful/autoservice-bot/core/database"
	"github.com/m3rciful/autoservice-bot/internal/domain"
)

// openTestDB migrates and empties the database named by TEST_DATABASE_URL.
func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	raw := os.Getenv("TEST_DATABASE_URL")
	if raw == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}
	cfg, err := coredatabase.ParseURL(raw)
	require.NoError(t, err)
	cfg.MigrationsDir = filepath.Join("..", "..", "migrations")
	require.NoError(t, coredatabase.RunMigrations(cfg))

	db, err := coredatabase.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	db.MustExec(`TRUNCATE users, clients, branches, services, parts, orders,
		order_services, order_parts, service_appointments RESTART IDENTITY CASCADE`)
	return db
}

// seedShop loads a shop where order 1 (Иван, Казань, completed) has two
// services at 100.00 and 50.00 plus three parts at 10.00, and order 2
// (Анна, Москва, open) has one service at 50.00.
func seedShop(t *testing.T, db *sqlx.DB) {
	t.Helper()
	for _, stmt := range []string{
		`INSERT INTO clients (id, full_name, phone, status) VALUES
			(1, 'Иван Петров', '+79001234567', 'gold'),
			(2, 'Анна Смирнова', '+79007654321', 'regular'),
			(3, 'Олег Сидоров', '+79000000000', 'regular')`,
		`INSERT INTO branches (id, city, address) VALUES
			(1, 'Казань', 'ул. Баумана, 1'),
			(2, 'Москва', 'пр. Мира, 5')`,
		`INSERT INTO services (id, name, price) VALUES
			(1, 'Диагностика', 100.00),
			(2, 'Замена масла', 50.00)`,
		`INSERT INTO parts (id, name, price, stock_quantity) VALUES
			(1, 'Масляный фильтр', 10.00, 5),
			(2, 'Свеча', 1.00, 6),
			(3, 'Ремень', 25.00, 2)`,
		`INSERT INTO orders (id, client_id, branch_id, created_at, completed_at) VALUES
			(1, 1, 1, '2024-05-01 09:00:00+00', '2024-05-01 12:00:00+00'),
			(2, 2, 2, '2024-05-02 09:00:00+00', NULL)`,
		`INSERT INTO order_services (order_id, service_id) VALUES (1, 1), (1, 2), (2, 2)`,
		`INSERT INTO order_parts (order_id, part_id, quantity) VALUES (1, 1, 3)`,
	} {
		db.MustExec(stmt)
	}
}

func TestReportQueriesAgainstPostgres(t *testing.T) {
	db := openTestDB(t)
	seedShop(t, db)
	repo := New(db)
	ctx := context.Background()

	t.Run("clients ranked with exact totals", func(t *testing.T) {
		rows, err := repo.ClientsRanked(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "Иван Петров", rows[0].FullName)
		assert.Equal(t, "180.00", rows[0].TotalSpent.StringFixed(2))
		assert.Equal(t, "Анна Смирнова", rows[1].FullName)
		assert.Equal(t, "50.00", rows[1].TotalSpent.StringFixed(2))
		assert.True(t, rows[2].TotalSpent.IsZero())
	})

	t.Run("branch income", func(t *testing.T) {
		rows, err := repo.BranchIncome(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "Казань", rows[0].City)
		assert.True(t, rows[0].TotalIncome.Equal(decimal.RequireFromString("180.00")))
		assert.True(t, rows[1].TotalIncome.Equal(decimal.RequireFromString("50.00")))
	})

	t.Run("low stock boundary", func(t *testing.T) {
		rows, err := repo.LowStockParts(ctx, domain.LowStockThreshold)
		require.NoError(t, err)
		assert.Equal(t, []domain.LowStockPart{
			{ID: 3, Name: "Ремень", StockQuantity: 2},
			{ID: 1, Name: "Масляный фильтр", StockQuantity: 5},
		}, rows)
	})

	t.Run("top services", func(t *testing.T) {
		rows, err := repo.TopServices(ctx, domain.TopServicesLimit)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, domain.ServiceUsage{Name: "Замена масла", Count: 2}, rows[0])
	})

	t.Run("daily report counts mixed orders once", func(t *testing.T) {
		rows, err := repo.DailyReport(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		day := rows[0]
		assert.Equal(t, "2024-05-01", day.Date.Format("2006-01-02"))
		assert.Equal(t, int64(1), day.Orders)
		assert.Equal(t, "150.00", day.ServicesIncome.StringFixed(2))
		assert.Equal(t, "30.00", day.PartsIncome.StringFixed(2))
		assert.Equal(t, "180.00", day.TotalIncome.StringFixed(2))
	})

	t.Run("orders newest first", func(t *testing.T) {
		rows, err := repo.OrdersChronological(ctx)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, int64(2), rows[0].ID)
		assert.False(t, rows[0].Completed())
		assert.True(t, rows[1].Completed())
	})

	t.Run("appointment foreign keys", func(t *testing.T) {
		err := repo.CreateAppointment(ctx, domain.Appointment{ClientID: 1, BranchID: 99, ServiceID: 1})
		assert.ErrorIs(t, err, ErrForeignKeyViolation)
	})
}
