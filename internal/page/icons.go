package page

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	defaultIconCacheSizeBytes = int64(16 * 1024 * 1024)
	maxIconBytes              = 512 * 1024
	iconFileExt               = ".icon"
)

var ErrIconTooLarge = errors.New("icon too large")

// IconCache keeps downloaded bookmark icons on disk, keyed by icon URL.
type IconCache struct {
	client   *resty.Client
	dir      string
	maxBytes int64
	logger   *slog.Logger

	mu sync.Mutex
}

// NewIconCache shares the fetcher's HTTP client so icons see the same cookies.
func NewIconCache(f *Fetcher, dir string, logger *slog.Logger) *IconCache {
	if logger == nil {
		logger = slog.Default()
	}
	client := resty.New()
	if f != nil {
		client = f.client
	}

	return &IconCache{client: client, dir: dir, maxBytes: defaultIconCacheSizeBytes, logger: logger}
}

// Load returns the icon bytes, downloading them on a cache miss.
func (c *IconCache) Load(ctx context.Context, iconURL string) ([]byte, error) {
	if iconURL == "" {
		return nil, ErrEmptyAddress
	}
	path := c.pathForURL(iconURL)
	if data, ok := c.readCached(path); ok {
		return data, nil
	}

	startedAt := time.Now()
	resp, err := c.client.R().SetContext(ctx).SetHeader("Accept", "image/*").Get(iconURL)
	if err != nil {
		return nil, fmt.Errorf("fetch icon %s: %w", iconURL, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("%w: %d (url: %s)", ErrUnexpectedStatus, resp.StatusCode(), iconURL)
	}
	body := resp.Body()
	if len(body) == 0 {
		return nil, fmt.Errorf("fetch icon %s: empty body", iconURL)
	}
	if len(body) > maxIconBytes {
		return nil, fmt.Errorf("%w: %d bytes (url: %s)", ErrIconTooLarge, len(body), iconURL)
	}
	c.logger.Debug("icon downloaded", "url", iconURL, "bytes", len(body), "duration", time.Since(startedAt))
	c.writeCached(path, body)

	return body, nil
}

func (c *IconCache) pathForURL(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	hash := hex.EncodeToString(sum[:])

	return filepath.Join(c.dir, hash[:2], hash+iconFileExt)
}

func (c *IconCache) readCached(path string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if !os.IsNotExist(err) {
			c.logger.Debug("reading cached icon failed", "cache_path", path, "error", err)
		}

		return nil, false
	}
	now := time.Now()
	_ = os.Chtimes(path, now, now)

	return data, true
}

func (c *IconCache) writeCached(path string, data []byte) {
	if c.dir == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		c.logger.Warn("creating icon cache directory failed", "cache_path", path, "error", err)
		return
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		c.logger.Warn("writing icon cache temp file failed", "tmp_path", tmpPath, "error", err)
		_ = os.Remove(tmpPath)
		return
	}
	if err := os.Rename(tmpPath, path); err != nil {
		c.logger.Warn("renaming icon cache temp file failed", "tmp_path", tmpPath, "error", err)
		_ = os.Remove(tmpPath)
		return
	}

	c.evictLocked()
}

// evictLocked removes least recently used icons until the cache fits maxBytes.
func (c *IconCache) evictLocked() {
	type cacheFile struct {
		path    string
		size    int64
		modTime time.Time
	}

	var (
		files []cacheFile
		total int64
	)
	_ = filepath.WalkDir(c.dir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != iconFileExt {
			return nil
		}
		info, statErr := d.Info()
		if statErr != nil {
			return nil
		}
		total += info.Size()
		files = append(files, cacheFile{path: path, size: info.Size(), modTime: info.ModTime()})

		return nil
	})
	if total <= c.maxBytes {
		return
	}

	sort.Slice(files, func(i, j int) bool { return files[i].modTime.Before(files[j].modTime) })
	for _, file := range files {
		if total <= c.maxBytes {
			break
		}
		if err := os.Remove(file.path); err != nil {
			continue
		}
		total -= file.size
	}
	c.logger.Debug("icon cache eviction completed", "remaining_bytes", total, "max_bytes", c.maxBytes)
}
