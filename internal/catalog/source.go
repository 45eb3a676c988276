package catalog

import (
	"context"
	"fmt"
)

const (
	SourceBuiltin  = "builtin"
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

type SourceConfig struct {
	Kind        string
	CSVPath     string
	DatabaseURL string
}

// Load builds the catalog snapshot from the configured source.
func Load(ctx context.Context, cfg SourceConfig) (*Catalog, error) {
	var (
		melons []Melon
		err    error
	)

	switch cfg.Kind {
	case "", SourceBuiltin:
		melons = Default()
	case SourceCSV:
		if cfg.CSVPath == "" {
			return nil, fmt.Errorf("catalog source %q: csv path required", cfg.Kind)
		}
		melons, err = LoadCSVFile(cfg.CSVPath)
	case SourcePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("catalog source %q: database url required", cfg.Kind)
		}
		melons, err = loadFromPostgres(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog (%s): %w", cfg.Kind, err)
	}

	return New(melons)
}

func loadFromPostgres(ctx context.Context, dsn string) ([]Melon, error) {
	db, err := OpenPostgres(ctx, dsn)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return LoadPostgres(ctx, db)
}
