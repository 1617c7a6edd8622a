package ui

import (
	"context"
	"log/slog"

	"fyne.io/fyne/v2"

	"github.com/skobkin/webbrowser/internal/bus"
	"github.com/skobkin/webbrowser/internal/cli"
	"github.com/skobkin/webbrowser/internal/config"
	"github.com/skobkin/webbrowser/internal/domain"
	"github.com/skobkin/webbrowser/internal/page"
)

type PageLoader interface {
	LoadPage(ctx context.Context, address string) (page.Page, error)
}

type BookmarkActions interface {
	IsBookmarked(url string) bool
	ToggleBookmark(url, title, icon string) (bool, error)
	RemoveBookmark(url string) error
}

type IconLoader interface {
	LoadIcon(ctx context.Context, iconURL string) ([]byte, error)
}

type DataDependencies struct {
	Config    config.AppConfig
	StartURL  string
	Bookmarks *domain.ChronologicalView
	Bus       bus.MessageBus
}

type ActionDependencies struct {
	Loader    PageLoader
	Bookmarks BookmarkActions
	Icons     IconLoader
	OnQuit    func()
}

type UIHooks struct {
	RunOnUI         func(func())
	RunAsync        func(func())
	ShowErrorDialog func(err error, window fyne.Window)
}

type Dependencies struct {
	Data    DataDependencies
	Actions ActionDependencies
	UIHooks UIHooks
	Launch  cli.Options
	Logger  *slog.Logger
}
