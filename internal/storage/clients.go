package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/m3rciful/autoservice-bot/internal/domain"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchClients returns clients whose full name or phone contains substr, ignoring case.
func (r *Repository) SearchClients(ctx context.Context, substr string) ([]domain.Client, error) {
	pattern := "%" + likeEscaper.Replace(substr) + "%"
	query, args, err := r.sb.
		Select("id", "full_name", "phone", "email", "status", "bonus_points").
		From("clients").
		Where(sq.Or{
			sq.ILike{"full_name": pattern},
			sq.ILike{"phone": pattern},
		}).
		OrderBy("full_name").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build client search: %w", err)
	}

	start := time.Now()
	var rows []domain.Client
	err = r.db.SelectContext(ctx, &rows, query, args...)
	observe(ctx, "clients.search", start, err, slog.Int("count", len(rows)))
	if err != nil {
		return nil, fmt.Errorf("search clients: %w", err)
	}
	return rows, nil
}

// ListClientsBrief returns id and full name of every client.
func (r *Repository) ListClientsBrief(ctx context.Context) ([]domain.RefItem, error) {
	return r.listBrief(ctx, "clients.brief", r.sb.
		Select("id", "full_name AS label").
		From("clients").
		OrderBy("id"))
}

// ListBranchesBrief returns id and "city address" of every branch.
func (r *Repository) ListBranchesBrief(ctx context.Context) ([]domain.RefItem, error) {
	return r.listBrief(ctx, "branches.brief", r.sb.
		Select("id", "city || ' ' || address AS label").
		From("branches").
		OrderBy("id"))
}

// ListServicesBrief returns id and name of every service.
func (r *Repository) ListServicesBrief(ctx context.Context) ([]domain.RefItem, error) {
	return r.listBrief(ctx, "services.brief", r.sb.
		Select("id", "name AS label").
		From("services").
		OrderBy("id"))
}

func (r *Repository) listBrief(ctx context.Context, op string, b sq.SelectBuilder) ([]domain.RefItem, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", op, err)
	}
	start := time.Now()
	var rows []domain.RefItem
	err = r.db.SelectContext(ctx, &rows, query, args...)
	observe(ctx, op, start, err, slog.Int("count", len(rows)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return rows, nil
}
