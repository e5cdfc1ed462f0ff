// Package report renders query results into Telegram HTML messages.
// All functions are pure: they never touch the store or the transport.
package report

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/m3rciful/autoservice-bot/core/telegram/format"
	"github.com/m3rciful/autoservice-bot/internal/domain"
)

// EmptyText is sent instead of a report when the query returned no rows.
const EmptyText = "Пусто"

const (
	orderTimeLayout = "02.01.2006 15:04"
	dayLayout       = "2006-01-02"
)

// Money renders an exact amount with two decimals and the currency sign.
func Money(d decimal.Decimal) string {
	return d.StringFixed(2) + " ₽"
}

// Clients renders clients with their status and total spend.
func Clients(rows []domain.ClientSpend) string {
	if len(rows) == 0 {
		return EmptyText
	}
	var b strings.Builder
	b.WriteString(format.Title("Список клиентов с их статусом и общей суммой потраченных денег"))
	for _, r := range rows {
		fmt.Fprintf(&b, "%s (%s) - %s\n", esc(r.FullName), esc(r.Status), Money(r.TotalSpent))
	}
	return b.String()
}

// Services renders the service popularity ranking.
func Services(rows []domain.ServiceUsage) string {
	if len(rows) == 0 {
		return EmptyText
	}
	var b strings.Builder
	b.WriteString(format.Title(fmt.Sprintf("Топ-%d самых популярных услуг", domain.TopServicesLimit)))
	for _, r := range rows {
		fmt.Fprintf(&b, "%s - %d раз\n", esc(r.Name), r.Count)
	}
	return b.String()
}

// Branches renders total income per branch.
func Branches(rows []domain.BranchIncome) string {
	if len(rows) == 0 {
		return EmptyText
	}
	var b strings.Builder
	b.WriteString(format.Title("Общий доход, сгенерированный каждым филиалом"))
	for _, r := range rows {
		fmt.Fprintf(&b, "%s (%s) - %s\n", esc(r.City), esc(r.Address), Money(r.TotalIncome))
	}
	return b.String()
}

// LowStock renders parts that are running out.
func LowStock(rows []domain.LowStockPart) string {
	if len(rows) == 0 {
		return EmptyText
	}
	var b strings.Builder
	b.WriteString(format.Title("Список запчастей с низким остатком на складе"))
	for _, r := range rows {
		fmt.Fprintf(&b, "%s - %d шт.\n", esc(r.Name), r.StockQuantity)
	}
	return b.String()
}

// Orders renders the order listing as one text block per page of
// domain.OrdersPageSize orders. Only the first block carries the heading.
// An empty listing yields a single EmptyText block.
func Orders(rows []domain.OrderEntry) []string {
	if len(rows) == 0 {
		return []string{EmptyText}
	}
	pages := Paginate(rows, domain.OrdersPageSize)
	blocks := make([]string, 0, len(pages))
	for i, page := range pages {
		var b strings.Builder
		if i == 0 {
			b.WriteString(format.Title("Список заказов"))
		}
		for _, o := range page {
			status := "В процессе"
			if o.Completed() {
				status = "Завершен"
			}
			fmt.Fprintf(&b, "%s - %s (%s)\n%s %s\n\n",
				esc(o.ClientName), o.CreatedAt.Format(orderTimeLayout), status,
				esc(o.BranchCity), esc(o.BranchAddress))
		}
		blocks = append(blocks, b.String())
	}
	return blocks
}

// Daily renders the per-day income report.
func Daily(rows []domain.DailyIncome) string {
	if len(rows) == 0 {
		return EmptyText
	}
	var b strings.Builder
	b.WriteString(format.Title("Отчет по заказам"))
	for _, r := range rows {
		fmt.Fprintf(&b, "%s - %d заказов - %s\nУслуги: %s | Запчасти: %s\n\n",
			r.Date.Format(dayLayout), r.Orders, Money(r.TotalIncome),
			Money(r.ServicesIncome), Money(r.PartsIncome))
	}
	return b.String()
}

// Matches renders client search results.
func Matches(rows []domain.Client) string {
	if len(rows) == 0 {
		return EmptyText
	}
	var b strings.Builder
	b.WriteString(format.Title("Совпадения"))
	for _, c := range rows {
		email := ""
		if c.Email != nil {
			email = *c.Email
		}
		fmt.Fprintf(&b, "%s (%s)\n%s %s\n", esc(c.FullName), esc(c.Status), esc(email), esc(c.Phone))
		if c.BonusPoints > 0 {
			fmt.Fprintf(&b, "Бонусы: %d\n", c.BonusPoints)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// RefList renders an "id) label" reference list under the given heading.
func RefList(title string, items []domain.RefItem) string {
	if len(items) == 0 {
		return EmptyText
	}
	var b strings.Builder
	b.WriteString(format.Title(title))
	for _, it := range items {
		fmt.Fprintf(&b, "%d) %s\n", it.ID, esc(it.Label))
	}
	return b.String()
}

// Paginate splits rows into consecutive chunks of at most size elements.
// It never returns an empty trailing chunk.
func Paginate[T any](rows []T, size int) [][]T {
	if size <= 0 {
		size = len(rows)
	}
	var pages [][]T
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		pages = append(pages, rows[start:end])
	}
	return pages
}

func esc(s string) string {
	return format.EscapeHTML(s)
}
