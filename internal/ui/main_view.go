package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/skobkin/webbrowser/internal/app"
	"github.com/skobkin/webbrowser/internal/connectors"
	"github.com/skobkin/webbrowser/internal/page"
)

const bookmarksSplitOffset = 0.72

type navigationKind int

const (
	navigationVisit navigationKind = iota
	navigationHistory
	navigationReload
)

type mainView struct {
	dep    Dependencies
	window fyne.Window

	content   fyne.CanvasObject
	navBar    *fyne.Container
	statusBar *fyne.Container
	bookmarks *bookmarksPanel

	backButton     *widget.Button
	forwardButton  *widget.Button
	reloadButton   *widget.Button
	goButton       *widget.Button
	bookmarkButton *widget.Button
	addressEntry   *widget.Entry

	titleLabel   *widget.Label
	urlLabel     *widget.Label
	detailsLabel *widget.Label
	statusLabel  *widget.Label

	// UI goroutine only.
	history       *navigationHistory
	current       page.Page
	lastRequested string

	mu         sync.Mutex
	loadSeq    uint64
	cancelLoad context.CancelFunc
}

// windowTitle follows the loaded page title, falling back to the application name.
func windowTitle(pageTitle string) string {
	pageTitle = strings.TrimSpace(pageTitle)
	if pageTitle == "" {
		return app.DisplayName
	}

	return pageTitle + " - " + app.DisplayName
}

func buildMainView(dep Dependencies, window fyne.Window) *mainView {
	v := &mainView{
		dep:     dep,
		window:  window,
		history: newNavigationHistory(),
	}

	v.backButton = widget.NewButtonWithIcon("", theme.NavigateBackIcon(), v.GoBack)
	v.forwardButton = widget.NewButtonWithIcon("", theme.NavigateNextIcon(), v.GoForward)
	v.reloadButton = widget.NewButtonWithIcon("", theme.ViewRefreshIcon(), v.Reload)
	v.addressEntry = widget.NewEntry()
	v.addressEntry.SetPlaceHolder("Enter address")
	v.addressEntry.OnSubmitted = v.Navigate
	v.goButton = widget.NewButton("Go", func() { v.Navigate(v.addressEntry.Text) })
	v.bookmarkButton = widget.NewButtonWithIcon("Bookmark", theme.ContentAddIcon(), v.toggleBookmark)
	v.bookmarkButton.Disable()

	v.navBar = container.NewBorder(
		nil,
		nil,
		container.NewHBox(v.backButton, v.forwardButton, v.reloadButton),
		container.NewHBox(v.goButton, v.bookmarkButton),
		v.addressEntry,
	)

	v.titleLabel = widget.NewLabelWithStyle("", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	v.titleLabel.Wrapping = fyne.TextWrapWord
	v.urlLabel = widget.NewLabel("")
	v.urlLabel.Truncation = fyne.TextTruncateEllipsis
	v.detailsLabel = widget.NewLabel("")
	pagePane := container.NewVScroll(container.NewVBox(v.titleLabel, v.urlLabel, v.detailsLabel))

	v.statusLabel = widget.NewLabel("")
	v.statusBar = container.NewHBox(v.statusLabel)

	v.bookmarks = newBookmarksPanel(dep.Data.Bookmarks, dep.Actions.Bookmarks, dep.Actions.Icons, dep.UIHooks, v.Navigate, v.refreshBookmarkButton)

	body := fyne.CanvasObject(pagePane)
	if dep.Data.Config.UI.ShowBookmarks && !dep.Launch.Chromeless {
		split := container.NewHSplit(pagePane, v.bookmarks.content)
		split.Offset = bookmarksSplitOffset
		body = split
	} else {
		v.bookmarks.content.Hide()
	}
	if dep.Launch.Chromeless {
		appLogger.Info("launch option chromeless is enabled: hiding navigation chrome")
		v.navBar.Hide()
		v.statusBar.Hide()
	}

	v.content = container.NewBorder(v.navBar, v.statusBar, nil, nil, body)
	v.refreshNavigation()

	return v
}

// Navigate loads user input from the address bar as a new history entry.
func (v *mainView) Navigate(address string) {
	target, err := page.NormalizeAddress(address)
	if err != nil {
		appLogger.Debug("rejecting address", "address", address, "error", err)
		v.dep.UIHooks.ShowErrorDialog(fmt.Errorf("open %q: %w", address, err), v.window)

		return
	}
	v.load(target, navigationVisit)
}

func (v *mainView) GoBack() {
	target, ok := v.history.Back()
	v.refreshNavigation()
	if ok {
		v.load(target, navigationHistory)
	}
}

func (v *mainView) GoForward() {
	target, ok := v.history.Forward()
	v.refreshNavigation()
	if ok {
		v.load(target, navigationHistory)
	}
}

func (v *mainView) Reload() {
	target, ok := v.history.Current()
	if !ok {
		v.Navigate(v.addressEntry.Text)
		return
	}
	v.load(target, navigationReload)
}

func (v *mainView) load(target string, kind navigationKind) {
	loader := v.dep.Actions.Loader
	if loader == nil {
		v.statusLabel.SetText("No page loader configured")
		return
	}

	ctx, seq := v.beginLoad()
	v.lastRequested = target
	v.addressEntry.SetText(target)
	v.statusLabel.SetText(fmt.Sprintf("Loading %s...", target))
	appLogger.Debug("loading page", "url", target, "seq", seq)

	v.dep.UIHooks.RunAsync(func() {
		loaded, err := loader.LoadPage(ctx, target)
		v.dep.UIHooks.RunOnUI(func() {
			v.finishLoad(seq, kind, target, loaded, err)
		})
	})
}

func (v *mainView) beginLoad() (context.Context, uint64) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cancelLoad != nil {
		v.cancelLoad()
	}
	ctx, cancel := context.WithCancel(context.Background())
	v.cancelLoad = cancel
	v.loadSeq++

	return ctx, v.loadSeq
}

// completeLoad reports whether seq is still the newest load and releases its context.
func (v *mainView) completeLoad(seq uint64) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if seq != v.loadSeq {
		return false
	}
	if v.cancelLoad != nil {
		v.cancelLoad()
		v.cancelLoad = nil
	}

	return true
}

func (v *mainView) finishLoad(seq uint64, kind navigationKind, target string, loaded page.Page, err error) {
	if !v.completeLoad(seq) {
		appLogger.Debug("discarding stale page load", "url", target, "seq", seq)
		return
	}
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		v.current = page.Page{}
		v.window.SetTitle(windowTitle(""))
		v.titleLabel.SetText("Problem loading page")
		v.urlLabel.SetText(target)
		v.detailsLabel.SetText(err.Error())
		v.refreshBookmarkButton()

		return
	}

	v.current = loaded
	switch kind {
	case navigationVisit:
		v.history.Visit(loaded.URL)
	default:
		v.history.ReplaceCurrent(loaded.URL)
	}
	v.window.SetTitle(windowTitle(loaded.Title))
	v.titleLabel.SetText(loaded.Title)
	v.urlLabel.SetText(loaded.URL)
	v.detailsLabel.SetText(pageDetails(loaded))
	v.addressEntry.SetText(loaded.URL)
	v.refreshNavigation()
	v.refreshBookmarkButton()
}

func pageDetails(p page.Page) string {
	if p.Status == 0 {
		return ""
	}
	if p.ContentType == "" {
		return fmt.Sprintf("HTTP %d", p.Status)
	}

	return fmt.Sprintf("HTTP %d, %s", p.Status, p.ContentType)
}

func (v *mainView) showLoaded(event connectors.PageLoaded) {
	if event.RequestedURL != v.lastRequested && event.URL != v.lastRequested {
		return
	}
	v.statusLabel.SetText("Done: " + event.URL)
}

func (v *mainView) showFailed(event connectors.PageFailed) {
	if event.URL != v.lastRequested {
		return
	}
	v.statusLabel.SetText(fmt.Sprintf("Failed to load %s: %s", event.URL, event.Err))
}

func (v *mainView) refreshNavigation() {
	setEnabled(v.backButton, v.history.CanGoBack())
	setEnabled(v.forwardButton, v.history.CanGoForward())
}

func (v *mainView) refreshBookmarkButton() {
	actions := v.dep.Actions.Bookmarks
	if actions == nil || !bookmarkable(v.current.URL) {
		v.bookmarkButton.Disable()
		v.setBookmarkButtonState(false)

		return
	}
	v.bookmarkButton.Enable()
	v.setBookmarkButtonState(actions.IsBookmarked(v.current.URL))
}

func (v *mainView) setBookmarkButtonState(bookmarked bool) {
	if bookmarked {
		v.bookmarkButton.SetText("Bookmarked")
		v.bookmarkButton.SetIcon(theme.ConfirmIcon())

		return
	}
	v.bookmarkButton.SetText("Bookmark")
	v.bookmarkButton.SetIcon(theme.ContentAddIcon())
}

func (v *mainView) toggleBookmark() {
	actions := v.dep.Actions.Bookmarks
	if actions == nil || !bookmarkable(v.current.URL) {
		return
	}
	bookmarked, err := actions.ToggleBookmark(v.current.URL, v.current.Title, v.current.Icon)
	if err != nil {
		appLogger.Warn("toggle bookmark failed", "url", v.current.URL, "error", err)
		v.dep.UIHooks.ShowErrorDialog(err, v.window)

		return
	}
	appLogger.Debug("bookmark toggled", "url", v.current.URL, "bookmarked", bookmarked)
	v.setBookmarkButtonState(bookmarked)
}

func (v *mainView) focusAddress() {
	if v.navBar.Hidden {
		return
	}
	v.window.Canvas().Focus(v.addressEntry)
}

func (v *mainView) toggleFullScreen() {
	v.window.SetFullScreen(!v.window.FullScreen())
}

func (v *mainView) stop() {
	v.mu.Lock()
	if v.cancelLoad != nil {
		v.cancelLoad()
		v.cancelLoad = nil
	}
	v.mu.Unlock()
	v.bookmarks.stop()
}

func bookmarkable(url string) bool {
	return url != "" && !strings.HasPrefix(url, "about:")
}

func setEnabled(button *widget.Button, enabled bool) {
	if enabled {
		button.Enable()
		return
	}
	button.Disable()
}
