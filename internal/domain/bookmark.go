package domain

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

var ErrInvalidBookmarkURL = errors.New("invalid bookmark url")

// Bookmark is a saved page. URL is the identity key.
type Bookmark struct {
	URL     string
	Title   string
	Icon    string
	Created time.Time
}

// BookmarkAdded is the bus payload for TopicBookmarkAdded.
type BookmarkAdded struct {
	Bookmark Bookmark
}

// DisplayTitle falls back to the URL when the page had no title.
func (b Bookmark) DisplayTitle() string {
	if v := strings.TrimSpace(b.Title); v != "" {
		return v
	}

	return b.URL
}

func NormalizeBookmarkURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidBookmarkURL)
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidBookmarkURL, err)
	}
	if !u.IsAbs() || (u.Host == "" && u.Opaque == "") {
		return "", fmt.Errorf("%w: %q is not absolute", ErrInvalidBookmarkURL, trimmed)
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)

	return u.String(), nil
}
