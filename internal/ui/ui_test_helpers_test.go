package ui

import (
	"context"
	"sync"
	"testing"
	"time"

	"fyne.io/fyne/v2"

	"github.com/skobkin/webbrowser/internal/config"
	"github.com/skobkin/webbrowser/internal/domain"
	"github.com/skobkin/webbrowser/internal/page"
)

type appRunQuitSpy struct {
	fyne.App
	runCalls  int
	quitCalls int
}

func (a *appRunQuitSpy) Run() {
	a.runCalls++
}

func (a *appRunQuitSpy) Quit() {
	a.quitCalls++
}

type appRunWindowSpy struct {
	fyne.App
	runCalls      int
	createdWindow *windowSpy
}

func (a *appRunWindowSpy) Run() {
	a.runCalls++
}

func (a *appRunWindowSpy) NewWindow(title string) fyne.Window {
	window := &windowSpy{Window: a.App.NewWindow(title)}
	a.createdWindow = window

	return window
}

type windowSpy struct {
	fyne.Window
	showCalls      int
	fullScreenSets []bool
	closeIntercept func()
}

func (w *windowSpy) Show() {
	w.showCalls++
	if w.Window != nil {
		w.Window.Show()
	}
}

func (w *windowSpy) SetFullScreen(full bool) {
	w.fullScreenSets = append(w.fullScreenSets, full)
	if w.Window != nil {
		w.Window.SetFullScreen(full)
	}
}

func (w *windowSpy) SetCloseIntercept(fn func()) {
	w.closeIntercept = fn
	if w.Window != nil {
		w.Window.SetCloseIntercept(fn)
	}
}

type loaderStub struct {
	mu    sync.Mutex
	pages map[string]page.Page
	errs  map[string]error
	calls []string
}

func newLoaderStub() *loaderStub {
	return &loaderStub{pages: map[string]page.Page{}, errs: map[string]error{}}
}

func (l *loaderStub) withPage(url, title string) *loaderStub {
	l.pages[url] = page.Page{RequestedURL: url, URL: url, Title: title, Status: 200, ContentType: "text/html"}
	return l
}

func (l *loaderStub) LoadPage(ctx context.Context, address string) (page.Page, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, address)
	if err := ctx.Err(); err != nil {
		return page.Page{}, err
	}
	if err, ok := l.errs[address]; ok {
		return page.Page{}, err
	}
	if p, ok := l.pages[address]; ok {
		return p, nil
	}

	return page.Page{RequestedURL: address, URL: address, Title: address, Status: 200}, nil
}

func (l *loaderStub) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()

	return append([]string(nil), l.calls...)
}

// storeActions applies bookmark actions straight to a store, bypassing the bus.
type storeActions struct {
	store *domain.BookmarkStore
	now   time.Time
}

func (a *storeActions) IsBookmarked(url string) bool {
	return a.store.Contains(url)
}

func (a *storeActions) ToggleBookmark(url, title, icon string) (bool, error) {
	if a.store.Remove(url) {
		return false, nil
	}
	a.store.Upsert(domain.Bookmark{URL: url, Title: title, Icon: icon, Created: a.now})

	return true, nil
}

func (a *storeActions) RemoveBookmark(url string) error {
	a.store.Remove(url)
	return nil
}

func newTestBookmarks(t *testing.T) (*domain.BookmarkStore, *domain.ChronologicalView) {
	t.Helper()
	store := domain.NewBookmarkStore()
	view := domain.NewChronologicalView(domain.NewestFirst)
	view.SetSource(store)
	t.Cleanup(view.Close)

	return store, view
}

func testDependencies(loader PageLoader, actions BookmarkActions, view *domain.ChronologicalView) Dependencies {
	return Dependencies{
		Data: DataDependencies{
			Config:    config.Default(),
			StartURL:  "http://start.example",
			Bookmarks: view,
		},
		Actions: ActionDependencies{
			Loader:    loader,
			Bookmarks: actions,
		},
		UIHooks: UIHooks{
			RunOnUI:         func(fn func()) { fn() },
			RunAsync:        func(fn func()) { fn() },
			ShowErrorDialog: func(error, fyne.Window) {},
		},
	}
}

func waitForCondition(t *testing.T, check func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("condition was not met before timeout")
}

func loaderRedirect(requested, final, title string) page.Page {
	return page.Page{RequestedURL: requested, URL: final, Title: title, Status: 200}
}
