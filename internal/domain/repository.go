package domain

import "context"

type BookmarkRepository interface {
	Upsert(ctx context.Context, b Bookmark) error
	Delete(ctx context.Context, url string) error
	Clear(ctx context.Context) error
	ListSortedByCreated(ctx context.Context) ([]Bookmark, error)
}
