package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/m3rciful/autoservice-bot/core/logger"
)

// SeedData is the reference catalog loaded on startup.
type SeedData struct {
	Branches []struct {
		City    string `yaml:"city"`
		Address string `yaml:"address"`
	} `yaml:"branches"`
	Services []struct {
		Name  string `yaml:"name"`
		Price string `yaml:"price"`
	} `yaml:"services"`
	Parts []struct {
		Name          string `yaml:"name"`
		Price         string `yaml:"price"`
		StockQuantity int    `yaml:"stock_quantity"`
	} `yaml:"parts"`
}

// FileSeeder loads branches, services and parts from a YAML file.
// Rows that already exist are left untouched, so the seeder can run on every start.
type FileSeeder struct {
	Path string
}

// LoadSeedData parses a seed file.
func LoadSeedData(path string) (*SeedData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var data SeedData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}
	return &data, nil
}

// Seed applies the file inside one transaction.
func (s FileSeeder) Seed(ctx context.Context, db *sqlx.DB) error {
	if strings.TrimSpace(s.Path) == "" {
		return nil
	}
	data, err := LoadSeedData(s.Path)
	if err != nil {
		return err
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var inserted int64
	exec := func(query string, args ...any) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		inserted += n
		return nil
	}

	for _, b := range data.Branches {
		if err := exec(`INSERT INTO branches (city, address) VALUES ($1, $2)
			ON CONFLICT (city, address) DO NOTHING`, b.City, b.Address); err != nil {
			return fmt.Errorf("seed branch %q: %w", b.Address, err)
		}
	}
	for _, svc := range data.Services {
		price, err := decimal.NewFromString(svc.Price)
		if err != nil {
			return fmt.Errorf("seed service %q: price: %w", svc.Name, err)
		}
		if err := exec(`INSERT INTO services (name, price) VALUES ($1, $2)
			ON CONFLICT (name) DO NOTHING`, svc.Name, price); err != nil {
			return fmt.Errorf("seed service %q: %w", svc.Name, err)
		}
	}
	for _, p := range data.Parts {
		price, err := decimal.NewFromString(p.Price)
		if err != nil {
			return fmt.Errorf("seed part %q: price: %w", p.Name, err)
		}
		if err := exec(`INSERT INTO parts (name, price, stock_quantity) VALUES ($1, $2, $3)
			ON CONFLICT (name) DO NOTHING`, p.Name, price, p.StockQuantity); err != nil {
			return fmt.Errorf("seed part %q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit: %w", err)
	}
	logger.Info(ctx, logger.CompSeed, "seed.applied",
		slog.String("status", "ok"),
		slog.String("path", s.Path),
		slog.Int("branches", len(data.Branches)),
		slog.Int("services", len(data.Services)),
		slog.Int("parts", len(data.Parts)),
		slog.Int64("inserted", inserted),
	)
	return nil
}
