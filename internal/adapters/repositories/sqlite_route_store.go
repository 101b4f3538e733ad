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

// SQLite-backed implementation of the RouteStore port.
// Route lists are stored as one JSON document per entry and replaced as a
// whole on every save; concurrent writers are last-writer-wins.
type SqliteRouteStore struct {
	DB     *sql.DB
	Logger *zap.Logger
}

func NewSqliteRouteStore(db *sql.DB, logger *zap.Logger) *SqliteRouteStore {
	return &SqliteRouteStore{DB: db, Logger: logger}
}

func (s *SqliteRouteStore) ListEntries(ctx context.Context) (_ []*domain.Entry, err error) {
	defer obs.Time(ctx, s.Logger, "sqlite.ListEntries")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite route store: DB is nil")
	}

	query := `
	SELECT
		entry_id,
		title,
		geocoding_api_key,
		directions_api_key,
		routes
	FROM entries
	ORDER BY created_at, entry_id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list entries: query entries table: %w", err)
	}
	defer rows.Close()

	entries := make([]*domain.Entry, 0, 8)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list entries: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list entries: row iteration: %w", err)
	}

	return entries, nil
}

func (s *SqliteRouteStore) GetEntry(ctx context.Context, id string) (_ *domain.Entry, err error) {
	defer obs.Time(ctx, s.Logger, "sqlite.GetEntry")(&err)

	if s.DB == nil {
		return nil, errors.New("sqlite route store: DB is nil")
	}

	query := `
	SELECT
		entry_id,
		title,
		geocoding_api_key,
		directions_api_key,
		routes
	FROM entries
	WHERE entry_id = ?;
	`
	e, err := scanEntry(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get entry %q: %w", id, domain.ErrEntryNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %q: %w", id, err)
	}

	return e, nil
}

func (s *SqliteRouteStore) SaveEntry(ctx context.Context, entry *domain.Entry) (err error) {
	defer obs.Time(ctx, s.Logger, "sqlite.SaveEntry")(&err)

	if s.DB == nil {
		return errors.New("sqlite route store: DB is nil")
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

	query := `
	INSERT INTO entries (
		entry_id,
		title,
		geocoding_api_key,
		directions_api_key,
		routes
	)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (entry_id) DO UPDATE
	SET title = excluded.title,
		geocoding_api_key = excluded.geocoding_api_key,
		directions_api_key = excluded.directions_api_key,
		routes = excluded.routes;
	`
	_, err = s.DB.ExecContext(ctx, query,
		entry.ID,
		title,
		entry.Credentials.GeocodingAPIKey,
		entry.Credentials.DirectionsAPIKey,
		string(routes),
	)
	if err != nil {
		return fmt.Errorf("save entry %q: %w", entry.ID, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*domain.Entry, error) {
	var (
		e      domain.Entry
		routes string
	)
	err := row.Scan(
		&e.ID,
		&e.Title,
		&e.Credentials.GeocodingAPIKey,
		&e.Credentials.DirectionsAPIKey,
		&routes,
	)
	if err != nil {
		return nil, err
	}

	e.Routes, err = domain.DecodeStoredRoutes([]byte(routes), e.ID)
	if err != nil {
		return nil, fmt.Errorf("entry %q: %w", e.ID, err)
	}

	return &e, nil
}
