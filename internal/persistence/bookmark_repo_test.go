package persistence

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/skobkin/webbrowser/internal/domain"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "app.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestBookmarkRepoUpsertAndList_KeepsCreatedAndTitle(t *testing.T) {
	ctx := context.Background()
	repo := NewBookmarkRepo(openTestDB(t))
	base := time.Date(2014, 2, 3, 4, 5, 6, 0, time.UTC)

	if err := repo.Upsert(ctx, domain.Bookmark{URL: "http://b.example", Title: "Bravo", Created: base.Add(time.Minute)}); err != nil {
		t.Fatalf("upsert b: %v", err)
	}
	if err := repo.Upsert(ctx, domain.Bookmark{URL: "http://a.example", Title: "Alpha", Icon: "icon.png", Created: base}); err != nil {
		t.Fatalf("upsert a: %v", err)
	}
	if err := repo.Upsert(ctx, domain.Bookmark{URL: "http://a.example", Created: base.Add(time.Hour)}); err != nil {
		t.Fatalf("re-upsert a: %v", err)
	}

	items, err := repo.ListSortedByCreated(ctx)
	if err != nil {
		t.Fatalf("list bookmarks: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected two bookmarks, got %d", len(items))
	}
	if items[0].URL != "http://a.example" || items[1].URL != "http://b.example" {
		t.Fatalf("unexpected order: %+v", items)
	}
	if !items[0].Created.Equal(base) {
		t.Fatalf("expected created_at preserved, got %v", items[0].Created)
	}
	if items[0].Title != "Alpha" || items[0].Icon != "icon.png" {
		t.Fatalf("expected title and icon preserved, got %+v", items[0])
	}
}

func TestBookmarkRepoDeleteAndClear(t *testing.T) {
	ctx := context.Background()
	repo := NewBookmarkRepo(openTestDB(t))

	for _, url := range []string{"http://a.example", "http://b.example", "http://c.example"} {
		if err := repo.Upsert(ctx, domain.Bookmark{URL: url, Created: time.Now()}); err != nil {
			t.Fatalf("upsert %s: %v", url, err)
		}
	}
	if err := repo.Delete(ctx, "http://b.example"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	items, err := repo.ListSortedByCreated(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected two bookmarks after delete, got %d", len(items))
	}

	if err := repo.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	items, err = repo.ListSortedByCreated(ctx)
	if err != nil {
		t.Fatalf("list after clear: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("expected no bookmarks after clear, got %d", len(items))
	}
}

func TestOpen_MigratesV1DatabaseToLatest(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "app.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	stmts := []string{
		`CREATE TABLE bookmarks (
			url TEXT PRIMARY KEY,
			title TEXT NOT NULL DEFAULT '',
			created_at INTEGER NOT NULL
		);`,
		`INSERT INTO bookmarks(url, title, created_at) VALUES ('http://old.example', 'Old', 1000);`,
		`PRAGMA user_version = 1;`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			_ = db.Close()
			t.Fatalf("seed v1 schema: %v", err)
		}
	}
	_ = db.Close()

	migrated, err := Open(ctx, dbPath)
	if err != nil {
		t.Fatalf("open migrated db: %v", err)
	}
	defer func() { _ = migrated.Close() }()

	var version int
	if err := migrated.QueryRowContext(ctx, `PRAGMA user_version;`).Scan(&version); err != nil {
		t.Fatalf("read user_version: %v", err)
	}
	if version != SchemaVersion {
		t.Fatalf("expected schema version %d, got %d", SchemaVersion, version)
	}

	items, err := NewBookmarkRepo(migrated).ListSortedByCreated(ctx)
	if err != nil {
		t.Fatalf("list migrated bookmarks: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Old" || items[0].Icon != "" {
		t.Fatalf("unexpected migrated rows: %+v", items)
	}
}

func TestOpen_RejectsNewerSchema(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "app.db")

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if _, err := db.ExecContext(ctx, `PRAGMA user_version = 99;`); err != nil {
		t.Fatalf("set user_version: %v", err)
	}
	_ = db.Close()

	if _, err := Open(ctx, dbPath); err == nil {
		t.Fatalf("expected error for newer schema")
	}
}

func TestClearDatabase_NilDB(t *testing.T) {
	if err := ClearDatabase(context.Background(), nil); !errors.Is(err, ErrDatabaseNotInitialized) {
		t.Fatalf("expected ErrDatabaseNotInitialized, got %v", err)
	}
}

func TestWriterQueue_RunsInOrderAndRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := NewWriterQueue(nil, 4)
	w.retryStep = time.Millisecond
	w.Start(ctx)

	var (
		order    []string
		failures int32
	)
	w.Enqueue("first", func(context.Context) error {
		order = append(order, "first")
		return nil
	})
	w.Enqueue("flaky", func(context.Context) error {
		if atomic.AddInt32(&failures, 1) < 2 {
			return errors.New("busy")
		}
		order = append(order, "flaky")
		return nil
	})
	w.Enqueue("last", func(context.Context) error {
		order = append(order, "last")
		return nil
	})
	w.Close()

	if len(order) != 3 || order[0] != "first" || order[1] != "flaky" || order[2] != "last" {
		t.Fatalf("unexpected execution order: %v", order)
	}
	if got := atomic.LoadInt32(&failures); got != 2 {
		t.Fatalf("expected one retry, got %d attempts", got)
	}

	w.Enqueue("after close", func(context.Context) error {
		t.Fatalf("write after close must not run")
		return nil
	})
}

func TestTimeCodec(t *testing.T) {
	if toUnixMillis(time.Time{}) != 0 {
		t.Fatalf("expected zero time to encode as 0")
	}
	if !fromUnixMillis(0).IsZero() {
		t.Fatalf("expected 0 to decode as zero time")
	}
	at := time.UnixMilli(1_700_000_000_123)
	if !fromUnixMillis(toUnixMillis(at)).Equal(at) {
		t.Fatalf("expected millisecond roundtrip")
	}
}
