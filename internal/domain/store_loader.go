package domain

import (
	"context"
	"fmt"
)

func LoadStoreFromRepository(ctx context.Context, store *BookmarkStore, repo BookmarkRepository) error {
	items, err := repo.ListSortedByCreated(ctx)
	if err != nil {
		return fmt.Errorf("load bookmarks from db: %w", err)
	}
	store.Load(items)

	return nil
}
