package domain

import (
	"slices"
	"sync"
	"time"
)

// BookmarkSource is the read side of a bookmarks collection.
type BookmarkSource interface {
	Snapshot() []Bookmark
	Changes() <-chan struct{}
}

// BookmarkStore keeps bookmarks in memory in insertion order.
// Changes has a single consumer; ChronologicalView is that consumer in the app.
type BookmarkStore struct {
	mu      sync.RWMutex
	items   map[string]Bookmark
	order   []string
	changes chan struct{}
	now     func() time.Time
}

var _ BookmarkSource = (*BookmarkStore)(nil)

func NewBookmarkStore() *BookmarkStore {
	return &BookmarkStore{
		items:   make(map[string]Bookmark),
		changes: make(chan struct{}, 1),
		now:     time.Now,
	}
}

func (s *BookmarkStore) Load(bookmarks []Bookmark) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range bookmarks {
		s.upsertLocked(b)
	}
	s.notify()
}

// Upsert adds a bookmark or refreshes an existing one. Re-adding a URL keeps
// its original creation time and position.
func (s *BookmarkStore) Upsert(b Bookmark) Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := s.upsertLocked(b)
	s.notify()

	return stored
}

func (s *BookmarkStore) upsertLocked(b Bookmark) Bookmark {
	existing, ok := s.items[b.URL]
	if ok {
		if b.Title == "" {
			b.Title = existing.Title
		}
		if b.Icon == "" {
			b.Icon = existing.Icon
		}
		if !existing.Created.IsZero() {
			b.Created = existing.Created
		}
	} else {
		s.order = append(s.order, b.URL)
	}
	if b.Created.IsZero() {
		b.Created = s.now()
	}
	s.items[b.URL] = b

	return b
}

func (s *BookmarkStore) Remove(url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[url]; !ok {
		return false
	}
	delete(s.items, url)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == url })
	s.notify()

	return true
}

func (s *BookmarkStore) Contains(url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.items[url]

	return ok
}

func (s *BookmarkStore) Get(url string) (Bookmark, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.items[url]

	return b, ok
}

func (s *BookmarkStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.order)
}

// Snapshot returns a copy in insertion order.
func (s *BookmarkStore) Snapshot() []Bookmark {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Bookmark, 0, len(s.order))
	for _, url := range s.order {
		out = append(out, s.items[url])
	}

	return out
}

func (s *BookmarkStore) Changes() <-chan struct{} {
	return s.changes
}

func (s *BookmarkStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = make(map[string]Bookmark)
	s.order = nil
	s.notify()
}

func (s *BookmarkStore) notify() {
	select {
	case s.changes <- struct{}{}:
	default:
	}
}
