package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/skobkin/webbrowser/internal/bus"
	"github.com/skobkin/webbrowser/internal/cli"
	"github.com/skobkin/webbrowser/internal/config"
	"github.com/skobkin/webbrowser/internal/connectors"
	"github.com/skobkin/webbrowser/internal/domain"
	"github.com/skobkin/webbrowser/internal/logging"
	"github.com/skobkin/webbrowser/internal/page"
	"github.com/skobkin/webbrowser/internal/persistence"
	"github.com/skobkin/webbrowser/internal/platform"
)

type Runtime struct {
	mu sync.RWMutex

	Ctx    context.Context
	cancel context.CancelFunc

	Paths  Paths
	Config config.AppConfig
	Launch cli.Options

	LogManager *logging.Manager
	Bus        *bus.PubSubBus
	DB         *sql.DB

	BookmarkRepo *persistence.BookmarkRepo
	WriterQueue  *persistence.WriterQueue

	Bookmarks     *domain.BookmarkStore
	Chronological *domain.ChronologicalView
	Fetcher       *page.Fetcher
	Icons         *page.IconCache

	profileLock    platform.ProfileLock
	projectionDone <-chan struct{}
	// bookmarksMu keeps store mutations and their bus events in the same order.
	bookmarksMu sync.Mutex

	logger    *slog.Logger
	now       func() time.Time
	closeOnce sync.Once
	closeErr  error
}

func Initialize(parent context.Context, launch cli.Options) (*Runtime, error) {
	paths, err := ResolvePaths()
	if err != nil {
		return nil, err
	}

	return InitializeWithPaths(parent, launch, paths)
}

func InitializeWithPaths(parent context.Context, launch cli.Options, paths Paths) (*Runtime, error) {
	cfg, err := config.Load(paths.ConfigFile)
	if err != nil {
		return nil, err
	}
	if err := config.LoadEnvFile(paths.EnvFile); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	cfg.FillMissingDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	// Pending writes outlive parent cancellation; Close owns the shutdown.
	ctx, cancel := context.WithCancel(context.WithoutCancel(parent))
	rt := &Runtime{
		Ctx:    ctx,
		cancel: cancel,
		Paths:  paths,
		Config: cfg,
		Launch: launch,
		now:    time.Now,
	}

	logMgr := logging.NewManager()
	if err := logMgr.Configure(cfg.Logging, paths.LogFile); err != nil {
		_ = logMgr.Close()
		cancel()
		return nil, fmt.Errorf("configure logging: %w", err)
	}
	rt.LogManager = logMgr
	rt.logger = logMgr.Logger("app")
	rt.logger.Info("starting web browser runtime",
		"version", BuildVersion(),
		"build_date", BuildDateYMD(),
		"chromeless", launch.Chromeless,
		"fullscreen", launch.Fullscreen,
	)

	lock, err := platform.AcquireProfileLock(paths.RootDir)
	switch {
	case errors.Is(err, platform.ErrProfileLockUnsupported):
		rt.logger.Warn("profile lock is not available on this platform", "error", err)
	case err != nil:
		_ = rt.Close()
		return nil, fmt.Errorf("lock profile %s: %w", paths.RootDir, err)
	default:
		rt.profileLock = lock
	}

	db, err := persistence.Open(ctx, paths.DBFile)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.DB = db
	rt.BookmarkRepo = persistence.NewBookmarkRepo(db)

	store := domain.NewBookmarkStore()
	if err := domain.LoadStoreFromRepository(ctx, store, rt.BookmarkRepo); err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Bookmarks = store

	rule, err := domain.SortRuleByName(cfg.Bookmarks.Order)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.Chronological = domain.NewChronologicalView(rule)
	rt.Chronological.SetSource(store)

	b := bus.New(logMgr.Logger("bus"))
	rt.Bus = b

	writerQueue := persistence.NewWriterQueue(logMgr.Logger("persistence"), WriterQueueDepth)
	writerQueue.Start(ctx)
	rt.WriterQueue = writerQueue
	rt.projectionDone = domain.StartPersistenceProjection(ctx, b, writerQueue, rt.BookmarkRepo)

	fetcher, err := page.NewFetcher(cfg.Browser, logMgr.Logger("page"))
	if err != nil {
		_ = rt.Close()
		return nil, fmt.Errorf("initialize page fetcher: %w", err)
	}
	rt.Fetcher = fetcher
	rt.Icons = page.NewIconCache(fetcher, filepath.Join(paths.CacheDir, IconCacheDirname), logMgr.Logger("icons"))

	return rt, nil
}

// StartURL is the command-line URL when one was given, otherwise the configured homepage.
func (r *Runtime) StartURL() string {
	if r.Launch.HasURL {
		return r.Launch.URL
	}
	r.mu.RLock()
	homepage := strings.TrimSpace(r.Config.Browser.Homepage)
	r.mu.RUnlock()
	if homepage == "" {
		return cli.DefaultURL
	}

	return homepage
}

func (r *Runtime) IsBookmarked(rawURL string) bool {
	url, err := domain.NormalizeBookmarkURL(rawURL)
	if err != nil || r.Bookmarks == nil {
		return false
	}

	return r.Bookmarks.Contains(url)
}

// AddBookmark stores a bookmark and publishes it for persistence. Re-adding a
// URL keeps its creation time.
func (r *Runtime) AddBookmark(rawURL, title, icon string) (domain.Bookmark, error) {
	url, err := domain.NormalizeBookmarkURL(rawURL)
	if err != nil {
		return domain.Bookmark{}, err
	}

	r.bookmarksMu.Lock()
	defer r.bookmarksMu.Unlock()

	return r.addBookmarkLocked(url, title, icon), nil
}

func (r *Runtime) addBookmarkLocked(url, title, icon string) domain.Bookmark {
	bookmark := r.Bookmarks.Upsert(domain.Bookmark{
		URL:     url,
		Title:   strings.TrimSpace(title),
		Icon:    strings.TrimSpace(icon),
		Created: r.now(),
	})
	r.Bus.Publish(connectors.TopicBookmarkAdded, domain.BookmarkAdded{Bookmark: bookmark})
	r.logger.Info("bookmark added", "url", url)

	return bookmark
}

func (r *Runtime) RemoveBookmark(rawURL string) error {
	url, err := domain.NormalizeBookmarkURL(rawURL)
	if err != nil {
		return err
	}

	r.bookmarksMu.Lock()
	defer r.bookmarksMu.Unlock()
	r.removeBookmarkLocked(url)

	return nil
}

func (r *Runtime) removeBookmarkLocked(url string) {
	r.Bookmarks.Remove(url)
	r.Bus.Publish(connectors.TopicBookmarkRemoved, connectors.BookmarkRemoved{URL: url})
	r.logger.Info("bookmark removed", "url", url)
}

// ToggleBookmark adds or removes rawURL and reports whether it is bookmarked afterwards.
func (r *Runtime) ToggleBookmark(rawURL, title, icon string) (bool, error) {
	url, err := domain.NormalizeBookmarkURL(rawURL)
	if err != nil {
		return false, err
	}

	r.bookmarksMu.Lock()
	defer r.bookmarksMu.Unlock()
	if r.Bookmarks.Contains(url) {
		r.removeBookmarkLocked(url)
		return false, nil
	}
	r.addBookmarkLocked(url, title, icon)

	return true, nil
}

func (r *Runtime) ClearBookmarks() {
	r.bookmarksMu.Lock()
	defer r.bookmarksMu.Unlock()
	r.Bookmarks.Reset()
	r.Bus.Publish(connectors.TopicBookmarksCleared, connectors.BookmarksCleared{})
	r.logger.Info("bookmarks cleared")
}

// LoadIcon returns the cached or freshly downloaded bytes of a bookmark icon.
func (r *Runtime) LoadIcon(ctx context.Context, iconURL string) ([]byte, error) {
	return r.Icons.Load(ctx, iconURL)
}

// LoadPage fetches address and announces the outcome on the bus.
func (r *Runtime) LoadPage(ctx context.Context, address string) (page.Page, error) {
	p, err := r.Fetcher.Fetch(ctx, address)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			r.logger.Warn("page load failed", "url", address, "error", err)
			r.Bus.Publish(connectors.TopicPageFailed, connectors.PageFailed{URL: address, Err: err.Error()})
		}

		return page.Page{}, err
	}
	r.Bus.Publish(connectors.TopicPageLoaded, connectors.PageLoaded{
		RequestedURL: p.RequestedURL,
		URL:          p.URL,
		Title:        p.Title,
		Icon:         p.Icon,
		Status:       p.Status,
		LoadedAt:     p.LoadedAt,
	})

	return p, nil
}

func (r *Runtime) SaveConfig(cfg config.AppConfig) error {
	cfg.FillMissingDefaults()
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := config.Save(r.Paths.ConfigFile, cfg); err != nil {
		return err
	}
	r.Config = cfg

	return r.LogManager.Configure(cfg.Logging, r.Paths.LogFile)
}

// Close flushes pending writes and releases resources. Safe to call more than once.
// The bus closes first so the persistence projection enqueues every event
// published before Close, and the writer queue drains after it.
func (r *Runtime) Close() error {
	r.closeOnce.Do(func() {
		var errs []error
		if r.Bus != nil {
			r.Bus.Close()
		}
		if r.projectionDone != nil {
			<-r.projectionDone
		}
		if r.WriterQueue != nil {
			r.WriterQueue.Close()
		}
		if r.Chronological != nil {
			r.Chronological.Close()
		}
		if r.cancel != nil {
			r.cancel()
		}
		if r.DB != nil {
			if err := r.DB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close db: %w", err))
			}
		}
		if r.profileLock != nil {
			if err := r.profileLock.Release(); err != nil {
				errs = append(errs, fmt.Errorf("release profile lock: %w", err))
			}
		}
		if r.LogManager != nil {
			if err := r.LogManager.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close log manager: %w", err))
			}
		}
		r.closeErr = errors.Join(errs...)
	})

	return r.closeErr
}
