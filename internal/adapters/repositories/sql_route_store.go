package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"kr-eta-service/internal/domain"
	"kr-eta-service/internal/platform/obs"

	"go.uber.org/zap"
)

// SQLRouteStore is the PostgreSQL implementation of the RouteStore port,
// used through the pgx database/sql driver.
type SQLRouteStore struct {
	DB     *sql.DB
	Logger *zap.Logger
}

func NewSQLRouteStore(db *sql.DB, logger *zap.Logger) *SQLRouteStore {
	return &SQLRouteStore{DB: db, Logger: logger}
}

func (s *SQLRouteStore) ListEntries(ctx context.Context) (_ []*domain.Entry, err error) {
	defer obs.Time(ctx, s.Logger, "postgres.ListEntries")(&err)

	if s.DB == nil {
		return nil, errors.New("route store: db is nil")
	}

	q := `
	SELECT entry_id, title, geocoding_api_key, directions_api_key, routes
    FROM entries
    ORDER BY created_at, entry_id;
	`

	rows, err := s.DB.QueryContext(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list entries: query entries table: %w", err)
	}
	defer rows.Close()

	out := make([]*domain.Entry, 0, 8)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list entries: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entries: row iteration: %w", err)
	}

	return out, nil
}

func (s *SQLRouteStore) GetEntry(ctx context.Context, id string) (_ *domain.Entry, err error) {
	defer obs.Time(ctx, s.Logger, "postgres.GetEntry")(&err)

	if s.DB == nil {
		return nil, errors.New("route store: db is nil")
	}

	q := `
	SELECT entry_id, title, geocoding_api_key, directions_api_key, routes
    FROM entries
    WHERE entry_id = $1;
	`

	e, err := scanEntry(s.DB.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get entry %q: %w", id, domain.ErrEntryNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %q: %w", id, err)
	}

	return e, nil
}

// SaveEntry upserts the entry and replaces its route list in one statement.
func (s *SQLRouteStore) SaveEntry(ctx context.Context, entry *domain.Entry) (err error) {
	defer obs.Time(ctx, s.Logger, "postgres.SaveEntry")(&err)

	if s.DB == nil {
		return errors.New("route store: db is nil")
	}
	if entry == nil || entry.ID == "" {
		return errors.New("save entry: entry id must not be empty")
	}

	routes, err := domain.EncodeRoutes(entry.Routes)
	if err != nil {
		return fmt.Errorf("save entry %q: %w", entry.ID, err)
	}

	title := entry.Title
	if title == "" {
		title = domain.DefaultEntryTitle
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save entry: db begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
	INSERT INTO entries (entry_id, title, geocoding_api_key, directions_api_key, routes)
    VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (entry_id) DO UPDATE
	SET title = EXCLUDED.title,
		geocoding_api_key = EXCLUDED.geocoding_api_key,
		directions_api_key = EXCLUDED.directions_api_key,
		routes = EXCLUDED.routes;
	`, entry.ID, title, entry.Credentials.GeocodingAPIKey, entry.Credentials.DirectionsAPIKey, string(routes))
	if err != nil {
		return fmt.Errorf("save entry %q: %w", entry.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save entry commit: %w", err)
	}

	return nil
}
