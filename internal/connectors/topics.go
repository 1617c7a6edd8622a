package connectors

const (
	TopicBookmarkAdded    = "bookmark.added"
	TopicBookmarkRemoved  = "bookmark.removed"
	TopicBookmarksCleared = "bookmarks.cleared"
	TopicPageLoaded       = "page.loaded"
	TopicPageFailed       = "page.failed"
)

// BookmarkTopics lists every topic that mutates the bookmarks collection.
var BookmarkTopics = []string{
	TopicBookmarkAdded,
	TopicBookmarkRemoved,
	TopicBookmarksCleared,
}
