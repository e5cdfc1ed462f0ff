package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/m3rciful/autoservice-bot/internal/domain"
)

const clientsRankedQuery = `
WITH total_services AS (
	SELECT o.client_id, SUM(s.price) AS services_total
	FROM orders o
	JOIN order_services os ON o.id = os.order_id
	JOIN services s ON os.service_id = s.id
	GROUP BY o.client_id
),
total_parts AS (
	SELECT o.client_id, SUM(p.price * op.quantity) AS parts_total
	FROM orders o
	JOIN order_parts op ON o.id = op.order_id
	JOIN parts p ON op.part_id = p.id
	GROUP BY o.client_id
)
SELECT
	c.id,
	c.full_name,
	c.status,
	COALESCE(ts.services_total, 0) + COALESCE(tp.parts_total, 0) AS total_spent
FROM clients c
LEFT JOIN total_services ts ON c.id = ts.client_id
LEFT JOIN total_parts tp ON c.id = tp.client_id
ORDER BY total_spent DESC`

const topServicesQuery = `
SELECT s.name, COUNT(*) AS service_count
FROM order_services os
JOIN services s ON os.service_id = s.id
GROUP BY s.name
ORDER BY service_count DESC
LIMIT $1`

const branchIncomeQuery = `
WITH service_income AS (
	SELECT o.branch_id, SUM(s.price) AS total_service_income
	FROM orders o
	JOIN order_services os ON o.id = os.order_id
	JOIN services s ON os.service_id = s.id
	GROUP BY o.branch_id
),
part_income AS (
	SELECT o.branch_id, SUM(p.price * op.quantity) AS total_part_income
	FROM orders o
	JOIN order_parts op ON o.id = op.order_id
	JOIN parts p ON op.part_id = p.id
	GROUP BY o.branch_id
)
SELECT
	b.id,
	b.city,
	b.address,
	COALESCE(si.total_service_income, 0) + COALESCE(pi.total_part_income, 0) AS total_income
FROM branches b
LEFT JOIN service_income si ON b.id = si.branch_id
LEFT JOIN part_income pi ON b.id = pi.branch_id
ORDER BY total_income DESC`

const lowStockPartsQuery = `
SELECT p.id, p.name, p.stock_quantity
FROM parts p
WHERE p.stock_quantity <= $1
ORDER BY p.stock_quantity ASC`

const ordersChronologicalQuery = `
SELECT
	o.id AS order_id,
	c.full_name AS client_name,
	b.city AS branch_city,
	b.address AS branch_address,
	o.created_at,
	o.completed_at
FROM orders o
JOIN clients c ON o.client_id = c.id
JOIN branches b ON o.branch_id = b.id
ORDER BY o.created_at DESC`

// Services and parts are summed per order first so that an order with both
// kinds of lines is neither double counted nor multiplied by the join.
const dailyReportQuery = `
WITH order_services_total AS (
	SELECT os.order_id, SUM(s.price) AS services_total
	FROM order_services os
	JOIN services s ON os.service_id = s.id
	GROUP BY os.order_id
),
order_parts_total AS (
	SELECT op.order_id, SUM(p.price * op.quantity) AS parts_total
	FROM order_parts op
	JOIN parts p ON op.part_id = p.id
	GROUP BY op.order_id
)
SELECT
	o.completed_at::DATE AS order_date,
	COUNT(o.id) AS total_orders,
	COALESCE(SUM(ost.services_total), 0) AS total_services_income,
	COALESCE(SUM(opt.parts_total), 0) AS total_parts_income,
	COALESCE(SUM(ost.services_total), 0) + COALESCE(SUM(opt.parts_total), 0) AS total_income
FROM orders o
LEFT JOIN order_services_total ost ON o.id = ost.order_id
LEFT JOIN order_parts_total opt ON o.id = opt.order_id
WHERE o.completed_at IS NOT NULL
GROUP BY o.completed_at::DATE
ORDER BY order_date DESC`

// ClientsRanked returns clients ordered by total spend, highest first.
func (r *Repository) ClientsRanked(ctx context.Context) ([]domain.ClientSpend, error) {
	start := time.Now()
	var rows []domain.ClientSpend
	err := r.db.SelectContext(ctx, &rows, clientsRankedQuery)
	observe(ctx, "reports.clients", start, err, slog.Int("count", len(rows)))
	if err != nil {
		return nil, fmt.Errorf("clients ranked: %w", err)
	}
	return rows, nil
}

// TopServices returns the most ordered services, at most limit rows.
func (r *Repository) TopServices(ctx context.Context, limit int) ([]domain.ServiceUsage, error) {
	if limit <= 0 {
		limit = domain.TopServicesLimit
	}
	start := time.Now()
	var rows []domain.ServiceUsage
	err := r.db.SelectContext(ctx, &rows, topServicesQuery, limit)
	observe(ctx, "reports.services", start, err, slog.Int("count", len(rows)))
	if err != nil {
		return nil, fmt.Errorf("top services: %w", err)
	}
	return rows, nil
}

// BranchIncome returns branches ordered by total income, highest first.
func (r *Repository) BranchIncome(ctx context.Context) ([]domain.BranchIncome, error) {
	start := time.Now()
	var rows []domain.BranchIncome
	err := r.db.SelectContext(ctx, &rows, branchIncomeQuery)
	observe(ctx, "reports.branches", start, err, slog.Int("count", len(rows)))
	if err != nil {
		return nil, fmt.Errorf("branch income: %w", err)
	}
	return rows, nil
}

// LowStockParts returns parts with stock_quantity <= threshold, scarcest first.
func (r *Repository) LowStockParts(ctx context.Context, threshold int) ([]domain.LowStockPart, error) {
	start := time.Now()
	var rows []domain.LowStockPart
	err := r.db.SelectContext(ctx, &rows, lowStockPartsQuery, threshold)
	observe(ctx, "reports.parts", start, err, slog.Int("count", len(rows)))
	if err != nil {
		return nil, fmt.Errorf("low stock parts: %w", err)
	}
	return rows, nil
}

// OrdersChronological returns every order, newest first.
func (r *Repository) OrdersChronological(ctx context.Context) ([]domain.OrderEntry, error) {
	start := time.Now()
	var rows []domain.OrderEntry
	err := r.db.SelectContext(ctx, &rows, ordersChronologicalQuery)
	observe(ctx, "reports.orders", start, err, slog.Int("count", len(rows)))
	if err != nil {
		return nil, fmt.Errorf("orders: %w", err)
	}
	return rows, nil
}

// DailyReport aggregates completed orders per completion date, newest date first.
func (r *Repository) DailyReport(ctx context.Context) ([]domain.DailyIncome, error) {
	start := time.Now()
	var rows []domain.DailyIncome
	err := r.db.SelectContext(ctx, &rows, dailyReportQuery)
	observe(ctx, "reports.daily", start, err, slog.Int("count", len(rows)))
	if err != nil {
		return nil, fmt.Errorf("daily report: %w", err)
	}
	return rows, nil
}
