package domain

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
	"sync"
)

// SortRule orders two bookmarks like cmp.Compare.
type SortRule func(a, b Bookmark) int

const (
	OrderNewestFirst = "newest_first"
	OrderOldestFirst = "oldest_first"
)

// NewestFirst puts the most recently created bookmark first. Ties are broken by URL.
func NewestFirst(a, b Bookmark) int {
	if c := b.Created.Compare(a.Created); c != 0 {
		return c
	}

	return strings.Compare(a.URL, b.URL)
}

// OldestFirst puts the earliest created bookmark first. Ties are broken by URL.
func OldestFirst(a, b Bookmark) int {
	if c := a.Created.Compare(b.Created); c != 0 {
		return c
	}

	return strings.Compare(a.URL, b.URL)
}

func SortRuleByName(name string) (SortRule, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case OrderNewestFirst, "":
		return NewestFirst, nil
	case OrderOldestFirst:
		return OldestFirst, nil
	default:
		return nil, fmt.Errorf("unknown bookmarks order: %q", name)
	}
}

// ChronologicalView presents a BookmarkSource reordered by a SortRule.
// It never owns the bookmarks: rows are recomputed from the current source.
type ChronologicalView struct {
	mu        sync.RWMutex
	rule      SortRule
	filter    func(Bookmark) bool
	source    BookmarkSource
	stopWatch chan struct{}
	observers map[uint64]func()
	nextID    uint64
	changes   chan struct{}
	closed    bool
}

func NewChronologicalView(rule SortRule) *ChronologicalView {
	if rule == nil {
		rule = NewestFirst
	}

	return &ChronologicalView{
		rule:      rule,
		observers: make(map[uint64]func()),
		changes:   make(chan struct{}, 1),
	}
}

func (v *ChronologicalView) Source() BookmarkSource {
	v.mu.RLock()
	defer v.mu.RUnlock()

	return v.source
}

// SetSource swaps the underlying collection. Observers registered with
// OnSourceChanged run synchronously after the swap; assigning the current
// source again does nothing. A typed nil pointer is treated as no source, and
// sources of non-comparable types always count as a new assignment.
func (v *ChronologicalView) SetSource(src BookmarkSource) {
	if isNilSource(src) {
		src = nil
	}
	v.mu.Lock()
	if v.closed || sameSource(v.source, src) {
		v.mu.Unlock()
		return
	}
	v.stopWatchLocked()
	v.source = src
	if src != nil {
		v.stopWatch = make(chan struct{})
		go v.watch(src.Changes(), v.stopWatch)
	}
	observers := make([]func(), 0, len(v.observers))
	for _, id := range sortedKeys(v.observers) {
		observers = append(observers, v.observers[id])
	}
	v.notifyLocked()
	v.mu.Unlock()

	for _, fn := range observers {
		fn()
	}
}

func isNilSource(src BookmarkSource) bool {
	if src == nil {
		return true
	}
	rv := reflect.ValueOf(src)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	default:
		return false
	}
}

func sameSource(a, b BookmarkSource) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}

	return a == b
}

// OnSourceChanged registers fn and returns a func that unregisters it.
func (v *ChronologicalView) OnSourceChanged(fn func()) func() {
	if fn == nil {
		return func() {}
	}
	v.mu.Lock()
	id := v.nextID
	v.nextID++
	v.observers[id] = fn
	v.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.observers, id)
			v.mu.Unlock()
		})
	}
}

// SetFilter limits rows to bookmarks accepted by pred. Nil accepts everything.
func (v *ChronologicalView) SetFilter(pred func(Bookmark) bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.filter = pred
	v.notifyLocked()
}

// Rows returns the filtered, ordered bookmarks of the current source.
func (v *ChronologicalView) Rows() []Bookmark {
	v.mu.RLock()
	src, rule, filter := v.source, v.rule, v.filter
	v.mu.RUnlock()
	if src == nil {
		return nil
	}

	rows := src.Snapshot()
	if filter != nil {
		rows = slices.DeleteFunc(rows, func(b Bookmark) bool { return !filter(b) })
	}
	slices.SortStableFunc(rows, rule)

	return rows
}

func (v *ChronologicalView) Len() int {
	return len(v.Rows())
}

func (v *ChronologicalView) At(i int) (Bookmark, bool) {
	rows := v.Rows()
	if i < 0 || i >= len(rows) {
		return Bookmark{}, false
	}

	return rows[i], true
}

// Changes signals that Rows may return something different. Closed by Close.
func (v *ChronologicalView) Changes() <-chan struct{} {
	return v.changes
}

func (v *ChronologicalView) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.stopWatchLocked()
	v.closed = true
	close(v.changes)
}

func (v *ChronologicalView) watch(srcChanges <-chan struct{}, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case _, ok := <-srcChanges:
			if !ok {
				return
			}
			v.mu.Lock()
			select {
			case <-stop:
				v.mu.Unlock()
				return
			default:
			}
			v.notifyLocked()
			v.mu.Unlock()
		}
	}
}

func (v *ChronologicalView) stopWatchLocked() {
	if v.stopWatch != nil {
		close(v.stopWatch)
		v.stopWatch = nil
	}
}

func (v *ChronologicalView) notifyLocked() {
	if v.closed {
		return
	}
	select {
	case v.changes <- struct{}{}:
	default:
	}
}

func sortedKeys(m map[uint64]func()) []uint64 {
	keys := make([]uint64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	return keys
}
