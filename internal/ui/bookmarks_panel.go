package ui

import (
	"context"
	"fmt"
	"path"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"

	"github.com/skobkin/webbrowser/internal/domain"
)

const iconLoadTimeout = 15 * time.Second

type bookmarksPanel struct {
	view     *domain.ChronologicalView
	actions  BookmarkActions
	icons    IconLoader
	hooks    UIHooks
	onOpen   func(url string)
	onChange func()
	now      func() time.Time

	content    fyne.CanvasObject
	list       *widget.List
	filter     *widget.Entry
	countLabel *widget.Label

	mu   sync.RWMutex
	rows []domain.Bookmark
	// iconCache maps icon URLs to loaded resources; nil marks a failed or pending load.
	iconCache map[string]fyne.Resource

	done     chan struct{}
	stopOnce sync.Once
}

func newBookmarksPanel(
	view *domain.ChronologicalView,
	actions BookmarkActions,
	icons IconLoader,
	hooks UIHooks,
	onOpen func(url string),
	onChange func(),
) *bookmarksPanel {
	p := &bookmarksPanel{
		view:      view,
		actions:   actions,
		icons:     icons,
		hooks:     hooks,
		onOpen:    onOpen,
		onChange:  onChange,
		now:       time.Now,
		iconCache: make(map[string]fyne.Resource),
		done:      make(chan struct{}),
	}

	p.list = widget.NewList(p.length, newBookmarkRow, p.updateRow)
	p.list.OnSelected = p.selectRow

	p.filter = widget.NewEntry()
	p.filter.SetPlaceHolder("Filter bookmarks")
	p.filter.OnChanged = p.applyFilter

	p.countLabel = widget.NewLabel("")
	p.content = container.NewBorder(p.filter, p.countLabel, nil, nil, p.list)

	p.reload()
	p.start()

	return p
}

// newBookmarkRow lays out icon | title over url and added time | remove.
func newBookmarkRow() fyne.CanvasObject {
	title := widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	title.Truncation = fyne.TextTruncateEllipsis
	url := widget.NewLabel("")
	url.Truncation = fyne.TextTruncateEllipsis
	added := widget.NewLabel("")
	text := container.NewVBox(title, container.NewBorder(nil, nil, nil, added, url))

	icon := widget.NewIcon(theme.DocumentIcon())
	remove := widget.NewButtonWithIcon("", theme.DeleteIcon(), nil)
	remove.Importance = widget.LowImportance

	return container.NewBorder(nil, nil, icon, remove, text)
}

func (p *bookmarksPanel) length() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.rows)
}

func (p *bookmarksPanel) row(id widget.ListItemID) (domain.Bookmark, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if id < 0 || id >= len(p.rows) {
		return domain.Bookmark{}, false
	}

	return p.rows[id], true
}

func (p *bookmarksPanel) updateRow(id widget.ListItemID, obj fyne.CanvasObject) {
	bookmark, ok := p.row(id)
	if !ok {
		return
	}
	row := obj.(*fyne.Container)
	text := row.Objects[0].(*fyne.Container)
	text.Objects[0].(*widget.Label).SetText(bookmark.DisplayTitle())
	line := text.Objects[1].(*fyne.Container)
	line.Objects[0].(*widget.Label).SetText(bookmark.URL)
	line.Objects[1].(*widget.Label).SetText(formatAdded(bookmark.Created, p.now()))

	row.Objects[1].(*widget.Icon).SetResource(p.iconResource(bookmark.Icon))

	remove := row.Objects[2].(*widget.Button)
	url := bookmark.URL
	remove.OnTapped = func() { p.remove(url) }
	setEnabled(remove, p.actions != nil)
}

func formatAdded(created, now time.Time) string {
	if created.IsZero() {
		return ""
	}

	return humanize.RelTime(created, now, "ago", "from now")
}

// iconResource returns the loaded icon for iconURL, or the placeholder while
// it loads or when it cannot be loaded.
func (p *bookmarksPanel) iconResource(iconURL string) fyne.Resource {
	if iconURL == "" || p.icons == nil {
		return theme.DocumentIcon()
	}

	p.mu.Lock()
	res, seen := p.iconCache[iconURL]
	if !seen {
		p.iconCache[iconURL] = nil
	}
	p.mu.Unlock()
	if res != nil {
		return res
	}
	if !seen {
		p.runAsync(func() { p.loadIcon(iconURL) })
	}

	return theme.DocumentIcon()
}

func (p *bookmarksPanel) loadIcon(iconURL string) {
	ctx, cancel := context.WithTimeout(context.Background(), iconLoadTimeout)
	defer cancel()

	data, err := p.icons.LoadIcon(ctx, iconURL)
	if err != nil {
		appLogger.Debug("bookmark icon load failed", "url", iconURL, "error", err)
		return
	}
	p.mu.Lock()
	p.iconCache[iconURL] = fyne.NewStaticResource(path.Base(iconURL), data)
	p.mu.Unlock()

	select {
	case <-p.done:
		return
	default:
	}
	p.runOnUI(p.list.Refresh)
}

// selectRow opens the bookmark and clears the selection so the same row can be opened again.
func (p *bookmarksPanel) selectRow(id widget.ListItemID) {
	defer p.list.Unselect(id)
	bookmark, ok := p.row(id)
	if !ok {
		return
	}
	if p.onOpen != nil {
		p.onOpen(bookmark.URL)
	}
}

func (p *bookmarksPanel) remove(url string) {
	if url == "" || p.actions == nil {
		return
	}
	if err := p.actions.RemoveBookmark(url); err != nil {
		appLogger.Warn("remove bookmark failed", "url", url, "error", err)
	}
}

func (p *bookmarksPanel) runAsync(fn func()) {
	if p.hooks.RunAsync != nil {
		p.hooks.RunAsync(fn)
		return
	}
	go fn()
}

func (p *bookmarksPanel) runOnUI(fn func()) {
	if p.hooks.RunOnUI != nil {
		p.hooks.RunOnUI(fn)
		return
	}
	fn()
}

func (p *bookmarksPanel) applyFilter(query string) {
	if p.view == nil {
		return
	}
	p.view.SetFilter(bookmarkMatcher(query))
}

// bookmarkMatcher matches title or URL case-insensitively. An empty query matches everything.
func bookmarkMatcher(query string) func(domain.Bookmark) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return nil
	}

	return func(b domain.Bookmark) bool {
		return strings.Contains(strings.ToLower(b.Title), query) ||
			strings.Contains(strings.ToLower(b.URL), query)
	}
}

func (p *bookmarksPanel) reload() {
	var rows []domain.Bookmark
	if p.view != nil {
		rows = p.view.Rows()
	}
	p.mu.Lock()
	p.rows = rows
	p.mu.Unlock()

	p.countLabel.SetText(formatBookmarkCount(len(rows)))
	p.list.Refresh()
	if p.onChange != nil {
		p.onChange()
	}
}

func formatBookmarkCount(n int) string {
	if n == 1 {
		return "1 bookmark"
	}

	return fmt.Sprintf("%s bookmarks", humanize.Comma(int64(n)))
}

func (p *bookmarksPanel) start() {
	if p.view == nil {
		appLogger.Debug("skipping bookmarks listener: view is nil")
		return
	}
	changes := p.view.Changes()
	go func() {
		for {
			select {
			case <-p.done:
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				select {
				case <-p.done:
					return
				default:
				}
				p.hooks.RunOnUI(p.reload)
			}
		}
	}()
}

func (p *bookmarksPanel) stop() {
	p.stopOnce.Do(func() {
		close(p.done)
	})
}
