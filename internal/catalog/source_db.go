package catalog

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second
)

// OpenPostgres opens a database/sql handle using the pgx driver and checks
// that it answers.
func OpenPostgres(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	err = withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return db.PingContext(ctx)
	})
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// LoadPostgres reads the melons table once. The result feeds New; the
// catalog does not keep the connection.
func LoadPostgres(ctx context.Context, db *sql.DB) ([]Melon, error) {
	var out []Melon

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		rows, err := db.QueryContext(ctx, `
			SELECT melon_id, common_name, price_cents, image_url, color, seedless
			FROM melons
			ORDER BY melon_id ASC
		`)
		if err != nil {
			return err
		}
		defer rows.Close()

		out = make([]Melon, 0, 16)
		for rows.Next() {
			var m Melon
			if err := rows.Scan(&m.ID, &m.CommonName, &m.PriceCents, &m.ImageURL, &m.Color, &m.Seedless); err != nil {
				return err
			}
			out = append(out, m)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}
	return out, nil
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}
