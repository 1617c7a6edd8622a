package connectors

import "time"

// BookmarkRemoved asks stores and persistence to forget a bookmarked URL.
type BookmarkRemoved struct {
	URL string
}

// BookmarksCleared drops every bookmark.
type BookmarksCleared struct{}

// PageLoaded is published after a page fetch succeeds.
type PageLoaded struct {
	RequestedURL string
	URL          string
	Title        string
	Icon         string
	Status       int
	LoadedAt     time.Time
}

// PageFailed is published when a page fetch cannot complete.
type PageFailed struct {
	URL string
	Err string
}
