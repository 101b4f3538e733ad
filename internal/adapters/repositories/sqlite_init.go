package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"kr-eta-service/internal/domain"
	"kr-eta-service/internal/ports"
	"os"
	"strings"
)

// Initialize the entries schema. The statements are valid for both SQLite
// and PostgreSQL.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createEntriesQuery := `
	CREATE TABLE IF NOT EXISTS entries (
		entry_id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		geocoding_api_key TEXT NOT NULL,
		directions_api_key TEXT NOT NULL,
		routes TEXT NOT NULL DEFAULT '[]',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_entries_created_at
	ON entries(created_at);
	`

	statements := []string{
		createEntriesQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type EntrySeed struct {
	EntryID          string          `json:"entry_id"`
	Title            string          `json:"title"`
	GeocodingAPIKey  string          `json:"geocoding_api_key"`
	DirectionsAPIKey string          `json:"directions_api_key"`
	Routes           json.RawMessage `json:"routes"`
}

// Populate the store with entries from a JSON file. Routes may be given in
// either the list or the single-route shape.
func SeedFromJSON(ctx context.Context, store ports.RouteStore, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed entries: read %q: %w", jsonPath, err)
	}

	var data []EntrySeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed entries: parse json: %w", err)
	}

	entries := make([]*domain.Entry, 0, len(data))
	for i, item := range data {
		id := strings.TrimSpace(item.EntryID)
		if id == "" {
			return fmt.Errorf("seed entries: item at index %d: entry_id cannot be empty", i+1)
		}

		creds := domain.Credentials{
			GeocodingAPIKey:  strings.TrimSpace(item.GeocodingAPIKey),
			DirectionsAPIKey: strings.TrimSpace(item.DirectionsAPIKey),
		}
		if !creds.Complete() {
			return fmt.Errorf("seed entries: entry %q: both api keys are required", id)
		}

		routes, err := domain.DecodeStoredRoutes(item.Routes, id)
		if err != nil {
			return fmt.Errorf("seed entries: entry %q: %w", id, err)
		}

		title := item.Title
		if title == "" {
			title = domain.DefaultEntryTitle
		}
		entries = append(entries, &domain.Entry{ID: id, Title: title, Credentials: creds, Routes: routes})
	}

	for _, e := range entries {
		if err := store.SaveEntry(ctx, e); err != nil {
			return fmt.Errorf("seed entries: save %q: %w", e.ID, err)
		}
	}

	return nil
}
