package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/skobkin/webbrowser/internal/domain"
)

type BookmarkRepo struct {
	db *sql.DB
}

var _ domain.BookmarkRepository = (*BookmarkRepo)(nil)

func NewBookmarkRepo(db *sql.DB) *BookmarkRepo {
	return &BookmarkRepo{db: db}
}

// Upsert keeps created_at of an existing row and an existing title when the new one is empty.
func (r *BookmarkRepo) Upsert(ctx context.Context, b domain.Bookmark) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO bookmarks(url, title, icon, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET
			title = CASE WHEN excluded.title = '' THEN bookmarks.title ELSE excluded.title END,
			icon = COALESCE(excluded.icon, bookmarks.icon)
	`, b.URL, b.Title, nullableString(b.Icon), toUnixMillis(b.Created))
	if err != nil {
		return fmt.Errorf("upsert bookmark: %w", err)
	}
	return nil
}

func (r *BookmarkRepo) Delete(ctx context.Context, url string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE url = ?`, url); err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return nil
}

func (r *BookmarkRepo) Clear(ctx context.Context) error {
	return ClearDatabase(ctx, r.db)
}

// ListSortedByCreated returns bookmarks oldest first, matching insertion order.
func (r *BookmarkRepo) ListSortedByCreated(ctx context.Context) ([]domain.Bookmark, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT url, title, icon, created_at
		FROM bookmarks
		ORDER BY created_at ASC, url ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	var out []domain.Bookmark
	for rows.Next() {
		var (
			b         domain.Bookmark
			icon      sql.NullString
			createdMs int64
		)
		if err := rows.Scan(&b.URL, &b.Title, &icon, &createdMs); err != nil {
			return nil, fmt.Errorf("scan bookmark: %w", err)
		}
		if icon.Valid {
			b.Icon = icon.String
		}
		b.Created = fromUnixMillis(createdMs)
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bookmarks: %w", err)
	}
	return out, nil
}
