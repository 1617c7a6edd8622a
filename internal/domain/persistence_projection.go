package domain

import (
	"context"

	"github.com/skobkin/webbrowser/internal/bus"
	"github.com/skobkin/webbrowser/internal/connectors"
)

// WriteQueue serializes persistence writes from async domain events.
type WriteQueue interface {
	Enqueue(name string, fn func(context.Context) error)
}

// StartPersistenceProjection mirrors bookmark bus events into repo.
// The returned channel is closed once the projection stops. Closing the bus
// stops it after every event published before the close has been enqueued.
func StartPersistenceProjection(ctx context.Context, b bus.MessageBus, queue WriteQueue, repo BookmarkRepository) <-chan struct{} {
	sub := b.Subscribe(connectors.BookmarkTopics...)
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer b.Unsubscribe(sub, connectors.BookmarkTopics...)
		for {
			select {
			case <-ctx.Done():
				return
			case raw, ok := <-sub:
				if !ok {
					return
				}
				switch event := raw.(type) {
				case BookmarkAdded:
					bookmark := event.Bookmark
					queue.Enqueue("upsert_bookmark", func(writeCtx context.Context) error {
						return repo.Upsert(writeCtx, bookmark)
					})
				case connectors.BookmarkRemoved:
					url := event.URL
					queue.Enqueue("delete_bookmark", func(writeCtx context.Context) error {
						return repo.Delete(writeCtx, url)
					})
				case connectors.BookmarksCleared:
					queue.Enqueue("clear_bookmarks", repo.Clear)
				}
			}
		}
	}()

	return done
}
