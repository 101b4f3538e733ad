package repositories

import (
	"context"
	"database/sql"
	"kr-eta-service/internal/domain"
	"kr-eta-service/internal/platform/db"
	"kr-eta-service/internal/ports"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.DriverSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, InitSchema(conn))
	return conn
}

func sampleEntry() *domain.Entry {
	return &domain.Entry{
		ID:    "entry-1",
		Title: "KR ETA",
		Credentials: domain.Credentials{
			GeocodingAPIKey:  "geo-key",
			DirectionsAPIKey: "nav-key",
		},
		Routes: []domain.Route{{
			ID:        "route-1",
			Start:     domain.NewLocation("Home", "127.0", "37.5"),
			End:       domain.NewLocation("Office", "127.1", "37.6"),
			Waypoints: []domain.Location{domain.NewLocation("Cafe", "127.05", "37.55")},
		}},
	}
}

// Shared contract for every RouteStore implementation.
func runRouteStoreContract(t *testing.T, store ports.RouteStore) {
	ctx := context.Background()

	_, err := store.GetEntry(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrEntryNotFound)

	entry := sampleEntry()
	require.NoError(t, store.SaveEntry(ctx, entry))

	got, err := store.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	assert.Equal(t, entry.Credentials, got.Credentials)
	require.Len(t, got.Routes, 1)
	assert.Equal(t, "route-1", got.Routes[0].ID)
	assert.Equal(t, domain.Degree("127.0"), got.Routes[0].Start.X)
	assert.Equal(t, "Cafe", got.Routes[0].Waypoints[0].NameOr(""))

	entry.Routes = append(entry.Routes, domain.Route{
		ID:        "route-2",
		Start:     domain.NewLocation("A", "126.9", "37.4"),
		End:       domain.NewLocation("B", "127.2", "37.7"),
		Waypoints: []domain.Location{},
	})
	require.NoError(t, store.SaveEntry(ctx, entry))

	got, err = store.GetEntry(ctx, entry.ID)
	require.NoError(t, err)
	require.Len(t, got.Routes, 2)
	assert.Equal(t, "route-2", got.Routes[1].ID)

	entries, err := store.ListEntries(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry.ID, entries[0].ID)
}

func TestSqliteRouteStore(t *testing.T) {
	store := NewSqliteRouteStore(openTestSQLite(t), nil)
	runRouteStoreContract(t, store)
}

func TestSQLRouteStorePostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	conn, err := db.Open(db.DriverPostgres, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	require.NoError(t, InitSchema(conn))
	_, err = conn.Exec(`DELETE FROM entries`)
	require.NoError(t, err)

	runRouteStoreContract(t, NewSQLRouteStore(conn, nil))
}

func TestSqliteRouteStoreReadsLegacyEntry(t *testing.T) {
	conn := openTestSQLite(t)
	store := NewSqliteRouteStore(conn, nil)
	ctx := context.Background()

	legacy := `{"startpoint":{"name":"Home","x":"127.0","y":"37.5"},` +
		`"endpoint":{"name":"Office","x":"127.1","y":"37.6"},"waypoints":[]}`
	_, err := conn.Exec(
		`INSERT INTO entries (entry_id, title, geocoding_api_key, directions_api_key, routes) VALUES (?, ?, ?, ?, ?)`,
		"old", "KR ETA", "g", "d", legacy,
	)
	require.NoError(t, err)

	got, err := store.GetEntry(ctx, "old")
	require.NoError(t, err)
	require.Len(t, got.Routes, 1)
	assert.Equal(t, "old", got.Routes[0].ID)
	assert.Equal(t, "Office", got.Routes[0].End.NameOr(""))

	// The next save rewrites the list shape.
	require.NoError(t, store.SaveEntry(ctx, got))

	var raw string
	require.NoError(t, conn.QueryRow(`SELECT routes FROM entries WHERE entry_id = ?`, "old").Scan(&raw))
	assert.Equal(t, byte('['), raw[0])
}

func TestSqliteRouteStoreRejectsEmptyID(t *testing.T) {
	store := NewSqliteRouteStore(openTestSQLite(t), nil)

	err := store.SaveEntry(context.Background(), &domain.Entry{})
	require.Error(t, err)
}

func TestSeedFromJSON(t *testing.T) {
	store := NewSqliteRouteStore(openTestSQLite(t), nil)
	ctx := context.Background()

	seed := `[
		{"entry_id":"a","title":"Commute","geocoding_api_key":"g","directions_api_key":"d",
		 "routes":[{"id":"r1","start":{"x":"127.0","y":"37.5"},"end":{"x":"127.1","y":"37.6"},"waypoints":[]}]},
		{"entry_id":"b","geocoding_api_key":"g2","directions_api_key":"d2",
		 "routes":{"startpoint":{"x":"126.9","y":"37.4"},"endpoint":{"x":"127.2","y":"37.7"}}}
	]`
	path := filepath.Join(t.TempDir(), "entries.json")
	require.NoError(t, os.WriteFile(path, []byte(seed), 0o600))

	require.NoError(t, SeedFromJSON(ctx, store, path))

	a, err := store.GetEntry(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, "Commute", a.Title)
	require.Len(t, a.Routes, 1)

	b, err := store.GetEntry(ctx, "b")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultEntryTitle, b.Title)
	require.Len(t, b.Routes, 1)
	assert.Equal(t, "b", b.Routes[0].ID)
}

func TestSeedFromJSONRequiresKeys(t *testing.T) {
	store := NewSqliteRouteStore(openTestSQLite(t), nil)

	path := filepath.Join(t.TempDir(), "entries.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"entry_id":"a","geocoding_api_key":"g"}]`), 0o600))

	err := SeedFromJSON(context.Background(), store, path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both api keys are required")
}

func TestMemoryRouteStore(t *testing.T) {
	runRouteStoreContract(t, NewMemoryRouteStore())
}

func TestMemoryRouteStoreCopiesEntries(t *testing.T) {
	entry := sampleEntry()
	store := NewMemoryRouteStore(entry)

	entry.Routes[0].ID = "changed"

	got, err := store.GetEntry(context.Background(), "entry-1")
	require.NoError(t, err)
	assert.Equal(t, "route-1", got.Routes[0].ID)
}
