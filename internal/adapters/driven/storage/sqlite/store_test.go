package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/nearby-cli/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func testRun(id string, started time.Time) domain.RunRecord {
	return domain.RunRecord{
		ID:          id,
		Origin:      "610 Brashear Lane, Cedar Park, Texas",
		RadiusMiles: 5,
		Keywords:    []string{"apartment", "community"},
		Candidates:  6,
		Matches:     3,
		Status:      domain.RunStatusSucceeded,
		StartedAt:   started,
		Duration:    1500 * time.Millisecond,
	}
}

// ==================== Store Creation Tests ====================

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DatabaseFileName), store.Path())
	assert.FileExists(t, store.Path())
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_DirectoryCreation(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "nested", "data")

	store, err := NewStore(nested)
	require.NoError(t, err)
	defer store.Close()

	assert.DirExists(t, nested)
}

func TestNewStore_Migrations(t *testing.T) {
	store := setupTestStore(t)

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)

	var tables int
	require.NoError(t, store.db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='runs'",
	).Scan(&tables))
	assert.Equal(t, 1, tables)
}

func TestNewStore_ReopenSkipsAppliedMigrations(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.RunStore().Save(context.Background(), testRun("run-1", time.Now())))
	require.NoError(t, store.Close())

	reopened, err := NewStore(dir)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.RunStore().Get(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, "run-1", got.ID)
}

func TestStore_Migrate_SkipsUnversionedFiles(t *testing.T) {
	store := setupTestStore(t)
	fsys := fstest.MapFS{
		"notes.up.sql":       {Data: []byte("this is not sql")},
		"002_extra.up.sql":   {Data: []byte("CREATE TABLE extra (id TEXT); INSERT INTO schema_migrations (version) VALUES (2);")},
		"002_extra.down.sql": {Data: []byte("DROP TABLE extra;")},
	}

	require.NoError(t, store.migrate(fsys))

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 2, version)
}

func TestStore_Migrate_BadSQL(t *testing.T) {
	store := setupTestStore(t)
	fsys := fstest.MapFS{
		"009_broken.up.sql": {Data: []byte("CREATE TABLE (")},
	}

	err := store.migrate(fsys)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "009_broken.up.sql")
}

func TestStore_Close(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Close())
	assert.Error(t, store.db.Ping())
}

// ==================== RunStore Tests ====================

func TestRunStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t)
	runs := store.RunStore()
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 9, 30, 0, 123, time.UTC)

	require.NoError(t, runs.Save(ctx, testRun("run-1", started)))

	got, err := runs.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, "610 Brashear Lane, Cedar Park, Texas", got.Origin)
	assert.Equal(t, 5.0, got.RadiusMiles)
	assert.Equal(t, []string{"apartment", "community"}, got.Keywords)
	assert.Equal(t, 6, got.Candidates)
	assert.Equal(t, 3, got.Matches)
	assert.Equal(t, domain.RunStatusSucceeded, got.Status)
	assert.Empty(t, got.Error)
	assert.True(t, started.Equal(got.StartedAt))
	assert.Equal(t, 1500*time.Millisecond, got.Duration)
}

func TestRunStore_SaveUpdate(t *testing.T) {
	runs := setupTestStore(t).RunStore()
	ctx := context.Background()
	record := testRun("run-1", time.Now())
	require.NoError(t, runs.Save(ctx, record))

	record.Status = domain.RunStatusFailed
	record.Error = "geocode: ZERO_RESULTS"
	record.Keywords = nil
	require.NoError(t, runs.Save(ctx, record))

	got, err := runs.Get(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusFailed, got.Status)
	assert.Equal(t, "geocode: ZERO_RESULTS", got.Error)
	assert.Empty(t, got.Keywords)
}

func TestRunStore_Get_NotFound(t *testing.T) {
	_, err := setupTestStore(t).RunStore().Get(context.Background(), "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunStore_List(t *testing.T) {
	runs := setupTestStore(t).RunStore()
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, runs.Save(ctx, testRun("old", base)))
	require.NoError(t, runs.Save(ctx, testRun("new", base.Add(2*time.Minute))))
	require.NoError(t, runs.Save(ctx, testRun("mid", base.Add(time.Minute))))

	all, err := runs.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "new", all[0].ID)
	assert.Equal(t, "mid", all[1].ID)
	assert.Equal(t, "old", all[2].ID)

	limited, err := runs.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "new", limited[0].ID)
}

func TestRunStore_List_Empty(t *testing.T) {
	all, err := setupTestStore(t).RunStore().List(context.Background(), 10)

	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestRunStore_Clear(t *testing.T) {
	runs := setupTestStore(t).RunStore()
	ctx := context.Background()
	require.NoError(t, runs.Save(ctx, testRun("run-1", time.Now())))

	require.NoError(t, runs.Clear(ctx))

	all, err := runs.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestRunStore_ClosedDatabase(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	runs := store.RunStore()
	require.NoError(t, store.Close())
	ctx := context.Background()

	assert.Error(t, runs.Save(ctx, testRun("x", time.Now())))
	_, err = runs.List(ctx, 0)
	assert.Error(t, err)
	_, err = runs.Get(ctx, "x")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.Error(t, runs.Clear(ctx))
}

func TestNewStore_DefaultDirectory(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewStore("")
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(home, ".nearby", "data", DatabaseFileName), store.Path())
	_, statErr := os.Stat(store.Path())
	assert.NoError(t, statErr)
}
