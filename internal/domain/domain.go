// Package domain holds the entities and report rows of the service shop database.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	// LowStockThreshold is the inclusive stock quantity at which a part is reported as running out.
	LowStockThreshold = 5
	// TopServicesLimit bounds the service popularity report.
	TopServicesLimit = 10
	// OrdersPageSize is the number of orders rendered into one message.
	OrdersPageSize = 20
)

// User is a staff account of the shop management system.
type User struct {
	Username     string `db:"username"`
	PasswordHash string `db:"password"`
	Role         Role   `db:"role"`
}

// ClientSpend is a client together with the money spent on services and parts.
type ClientSpend struct {
	ID         int64           `db:"id"`
	FullName   string          `db:"full_name"`
	Status     string          `db:"status"`
	TotalSpent decimal.Decimal `db:"total_spent"`
}

// ServiceUsage counts how often a service was ordered.
type ServiceUsage struct {
	Name  string `db:"name"`
	Count int64  `db:"service_count"`
}

// BranchIncome is the total income generated by a branch.
type BranchIncome struct {
	ID          int64           `db:"id"`
	City        string          `db:"city"`
	Address     string          `db:"address"`
	TotalIncome decimal.Decimal `db:"total_income"`
}

// LowStockPart is a part whose stock quantity is at or below the threshold.
type LowStockPart struct {
	ID            int64  `db:"id"`
	Name          string `db:"name"`
	StockQuantity int    `db:"stock_quantity"`
}

// OrderEntry is an order joined with client and branch display fields.
type OrderEntry struct {
	ID            int64      `db:"order_id"`
	ClientName    string     `db:"client_name"`
	BranchCity    string     `db:"branch_city"`
	BranchAddress string     `db:"branch_address"`
	CreatedAt     time.Time  `db:"created_at"`
	CompletedAt   *time.Time `db:"completed_at"`
}

// Completed reports whether the order has a completion timestamp.
func (o OrderEntry) Completed() bool {
	return o.CompletedAt != nil
}

// DailyIncome aggregates completed orders of one calendar day.
type DailyIncome struct {
	Date           time.Time       `db:"order_date"`
	Orders         int64           `db:"total_orders"`
	ServicesIncome decimal.Decimal `db:"total_services_income"`
	PartsIncome    decimal.Decimal `db:"total_parts_income"`
	TotalIncome    decimal.Decimal `db:"total_income"`
}

// Client is a full client card returned by the search.
type Client struct {
	ID          int64   `db:"id"`
	FullName    string  `db:"full_name"`
	Phone       string  `db:"phone"`
	Email       *string `db:"email"`
	Status      string  `db:"status"`
	BonusPoints int64   `db:"bonus_points"`
}

// RefItem is an id and label pair shown to the operator as a reference list.
type RefItem struct {
	ID    int64  `db:"id"`
	Label string `db:"label"`
}

// Appointment is a service appointment created through the bot.
type Appointment struct {
	ClientID  int64
	BranchID  int64
	ServiceID int64
	At        time.Time
}
