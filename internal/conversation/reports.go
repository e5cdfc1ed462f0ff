package conversation

import (
	"context"
	"log/slog"

	"github.com/m3rciful/autoservice-bot/core/logger"
	"github.com/m3rciful/autoservice-bot/internal/domain"
	"github.com/m3rciful/autoservice-bot/internal/export"
	"github.com/m3rciful/autoservice-bot/internal/report"
)

// ReportKind selects a read-only report.
type ReportKind string

const (
	ReportClients  ReportKind = "clients"
	ReportServices ReportKind = "services"
	ReportBranches ReportKind = "branches"
	ReportParts    ReportKind = "parts"
	ReportOrders   ReportKind = "orders"
	ReportDaily    ReportKind = "daily"
)

// Report runs one report. Statistics reports keep the info keyboard, the
// order listing is split into pages with the menu on the last one only.
func (e *Engine) Report(ctx context.Context, kind ReportKind) ([]Reply, error) {
	replies, rows, err := e.report(ctx, kind)
	if err != nil {
		return e.fail(ctx, logger.CompReports, "reports.query", err)
	}
	logger.Debug(ctx, logger.CompReports, "reports.query",
		slog.String("status", "ok"),
		slog.String("report", string(kind)),
		slog.Int("rows", rows),
		slog.Int("messages", len(replies)),
	)
	return replies, nil
}

func (e *Engine) report(ctx context.Context, kind ReportKind) ([]Reply, int, error) {
	switch kind {
	case ReportClients:
		rows, err := e.repo.ClientsRanked(ctx)
		return one(report.Clients(rows), KeyboardInfo), len(rows), err
	case ReportServices:
		rows, err := e.repo.TopServices(ctx, domain.TopServicesLimit)
		return one(report.Services(rows), KeyboardInfo), len(rows), err
	case ReportBranches:
		rows, err := e.repo.BranchIncome(ctx)
		return one(report.Branches(rows), KeyboardInfo), len(rows), err
	case ReportParts:
		rows, err := e.repo.LowStockParts(ctx, domain.LowStockThreshold)
		return one(report.LowStock(rows), KeyboardInfo), len(rows), err
	case ReportOrders:
		rows, err := e.repo.OrdersChronological(ctx)
		if err != nil {
			return nil, 0, err
		}
		blocks := report.Orders(rows)
		replies := make([]Reply, len(blocks))
		for i, block := range blocks {
			replies[i] = Reply{Text: block}
		}
		replies[len(replies)-1].Keyboard = KeyboardMenu
		return replies, len(rows), nil
	case ReportDaily:
		rows, err := e.repo.DailyReport(ctx)
		kb := KeyboardReport
		if len(rows) == 0 {
			kb = KeyboardMenu
		}
		return one(report.Daily(rows), kb), len(rows), err
	}
	return one(textMenu, KeyboardMenu), 0, nil
}

// ExportDaily renders the daily report as a spreadsheet document.
func (e *Engine) ExportDaily(ctx context.Context) ([]Reply, error) {
	rows, err := e.repo.DailyReport(ctx)
	if err != nil {
		return e.fail(ctx, logger.CompReports, "reports.export", err)
	}
	if len(rows) == 0 {
		return one(report.EmptyText, KeyboardMenu), nil
	}
	data, err := export.DailyXLSX(rows)
	if err != nil {
		return e.fail(ctx, logger.CompReports, "reports.export", err)
	}
	logger.Info(ctx, logger.CompReports, "reports.export",
		slog.String("status", "ok"),
		slog.Int("rows", len(rows)),
		slog.Int("bytes", len(data)),
	)
	return []Reply{{
		Text:     textExportCaption,
		Document: &Document{Name: export.DailyFileName(e.now()), Data: data},
	}}, nil
}
