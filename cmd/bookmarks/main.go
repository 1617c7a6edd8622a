package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/skobkin/webbrowser/internal/app"
	"github.com/skobkin/webbrowser/internal/config"
	"github.com/skobkin/webbrowser/internal/domain"
	"github.com/skobkin/webbrowser/internal/logging"
	"github.com/skobkin/webbrowser/internal/persistence"
	"github.com/skobkin/webbrowser/internal/platform"
)

var errUsage = errors.New("usage: bookmarks [--order newest_first|oldest_first] [--db path] list|add <url> [title]|remove <url>|clear")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, time.Now); err != nil {
		slog.Error("run bookmarks tool", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer, now func() time.Time) error {
	fs := flag.NewFlagSet("bookmarks", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	order := fs.String("order", "", "list order: newest_first or oldest_first (default from config)")
	dbPath := fs.String("db", "", "sqlite database path (default: application database)")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", errUsage, err)
	}
	rest := fs.Args()
	if len(rest) == 0 {
		return errUsage
	}

	paths, err := app.ResolvePaths()
	if err != nil {
		return fmt.Errorf("resolve paths: %w", err)
	}
	cfg, err := config.Load(paths.ConfigFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := config.LoadEnvFile(paths.EnvFile); err != nil {
		return err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return err
	}
	cfg.FillMissingDefaults()
	if strings.TrimSpace(*order) != "" {
		cfg.Bookmarks.Order = strings.TrimSpace(*order)
	}
	if strings.TrimSpace(*dbPath) == "" {
		*dbPath = paths.DBFile
	}

	logMgr := logging.NewManager()
	cfg.Logging.LogToFile = false
	if err := logMgr.Configure(cfg.Logging, paths.LogFile); err != nil {
		return fmt.Errorf("configure logging: %w", err)
	}
	defer func() {
		if closeErr := logMgr.Close(); closeErr != nil {
			slog.Warn("close log manager", "error", closeErr)
		}
	}()
	logger := logMgr.Logger("cli")
	logger.Debug("starting bookmarks tool", "version", app.BuildVersion(), "db", *dbPath)

	cmd := rest[0]
	if mutates(cmd) {
		release, err := lockProfile(filepath.Dir(*dbPath), logger)
		if err != nil {
			return err
		}
		defer release()
	}

	db, err := persistence.Open(ctx, *dbPath)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Warn("close sqlite", "error", closeErr)
		}
	}()
	repo := persistence.NewBookmarkRepo(db)

	switch cmd {
	case "list":
		rule, err := domain.SortRuleByName(cfg.Bookmarks.Order)
		if err != nil {
			return err
		}
		return listBookmarks(ctx, repo, rule, out, now())
	case "add":
		if len(rest) < 2 {
			return errUsage
		}
		title := strings.Join(rest[2:], " ")
		bookmark, err := addBookmark(ctx, repo, rest[1], title, now())
		if err != nil {
			return err
		}
		logger.Info("bookmark added", "url", bookmark.URL)
		_, err = fmt.Fprintf(out, "added %s\n", bookmark.URL)
		return err
	case "remove":
		if len(rest) != 2 {
			return errUsage
		}
		url, err := domain.NormalizeBookmarkURL(rest[1])
		if err != nil {
			return err
		}
		if err := repo.Delete(ctx, url); err != nil {
			return err
		}
		logger.Info("bookmark removed", "url", url)
		_, err = fmt.Fprintf(out, "removed %s\n", url)
		return err
	case "clear":
		if err := repo.Clear(ctx); err != nil {
			return err
		}
		logger.Info("bookmarks cleared")
		_, err = fmt.Fprintln(out, "cleared")
		return err
	default:
		return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
	}
}

func mutates(cmd string) bool {
	switch cmd {
	case "add", "remove", "clear":
		return true
	default:
		return false
	}
}

// lockProfile takes the browser's profile lock on dir.
func lockProfile(dir string, logger *slog.Logger) (func(), error) {
	lock, err := platform.AcquireProfileLock(dir)
	switch {
	case errors.Is(err, platform.ErrProfileLockUnsupported):
		logger.Warn("profile lock is not available on this platform", "error", err)
		return func() {}, nil
	case errors.Is(err, platform.ErrProfileInUse):
		return nil, fmt.Errorf("bookmarks are open in a running browser (%s): %w", dir, err)
	case err != nil:
		return nil, fmt.Errorf("lock profile %s: %w", dir, err)
	}

	return func() {
		if err := lock.Release(); err != nil {
			logger.Warn("release profile lock", "error", err)
		}
	}, nil
}

// addBookmark keeps the original creation time when url is already bookmarked.
func addBookmark(ctx context.Context, repo *persistence.BookmarkRepo, rawURL, title string, now time.Time) (domain.Bookmark, error) {
	url, err := domain.NormalizeBookmarkURL(rawURL)
	if err != nil {
		return domain.Bookmark{}, err
	}
	bookmark := domain.Bookmark{URL: url, Title: strings.TrimSpace(title), Created: now}
	if err := repo.Upsert(ctx, bookmark); err != nil {
		return domain.Bookmark{}, err
	}

	return bookmark, nil
}

func listBookmarks(ctx context.Context, repo *persistence.BookmarkRepo, rule domain.SortRule, out io.Writer, now time.Time) error {
	items, err := repo.ListSortedByCreated(ctx)
	if err != nil {
		return err
	}
	store := domain.NewBookmarkStore()
	store.Load(items)
	view := domain.NewChronologicalView(rule)
	defer view.Close()
	view.SetSource(store)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, b := range view.Rows() {
		if _, err := fmt.Fprintf(tw, "%s\t%s\t%s\n", humanize.RelTime(b.Created, now, "ago", "from now"), b.DisplayTitle(), b.URL); err != nil {
			return err
		}
	}

	return tw.Flush()
}
