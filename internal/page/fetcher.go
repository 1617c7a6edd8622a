// Package page loads documents for the browser window and extracts what the
// chrome shows about them.
package page

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http/cookiejar"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"

	"github.com/skobkin/webbrowser/internal/config"
)

const (
	maxRedirects  = 10
	retryCount    = 1
	retryWaitTime = 500 * time.Millisecond
)

var (
	ErrEmptyAddress     = errors.New("empty address")
	ErrUnexpectedStatus = errors.New("unexpected http status")
)

// Page is what the browser knows about a loaded document.
type Page struct {
	RequestedURL string
	URL          string
	Title        string
	Icon         string
	Status       int
	ContentType  string
	LoadedAt     time.Time
}

// Fetcher performs page loads with a shared cookie jar.
type Fetcher struct {
	client *resty.Client
	logger *slog.Logger
	now    func() time.Time
}

func NewFetcher(cfg config.BrowserConfig, logger *slog.Logger) (*Fetcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	timeout := time.Duration(cfg.FetchTimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = time.Duration(config.DefaultFetchTimeoutSeconds) * time.Second
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = config.DefaultUserAgent
	}

	client := resty.New().
		SetTimeout(timeout).
		SetCookieJar(jar).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(maxRedirects)).
		SetRetryCount(retryCount).
		SetRetryWaitTime(retryWaitTime).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	return &Fetcher{client: client, logger: logger, now: time.Now}, nil
}

// NormalizeAddress turns user input from the address bar into an absolute URL.
// Inputs without a scheme are treated as http hosts.
func NormalizeAddress(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrEmptyAddress
	}
	if !strings.Contains(trimmed, "://") && !strings.HasPrefix(strings.ToLower(trimmed), "about:") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("parse address: %w", err)
	}
	if !u.IsAbs() {
		return "", fmt.Errorf("address %q is not absolute", raw)
	}

	return u.String(), nil
}

func (f *Fetcher) Fetch(ctx context.Context, address string) (Page, error) {
	target, err := NormalizeAddress(address)
	if err != nil {
		return Page{}, err
	}
	if strings.HasPrefix(target, "about:") {
		return Page{RequestedURL: target, URL: target, Title: target, LoadedAt: f.now()}, nil
	}

	startedAt := f.now()
	resp, err := f.client.R().SetContext(ctx).Get(target)
	if err != nil {
		return Page{}, fmt.Errorf("fetch %s: %w", target, err)
	}

	finalURL := target
	if raw := resp.RawResponse; raw != nil && raw.Request != nil && raw.Request.URL != nil {
		finalURL = raw.Request.URL.String()
	}
	status := resp.StatusCode()
	f.logger.Debug("page fetched", "url", finalURL, "status", status, "duration", time.Since(startedAt))
	if status < 200 || status >= 400 {
		return Page{}, fmt.Errorf("%w: %d (url: %s)", ErrUnexpectedStatus, status, finalURL)
	}

	contentType := resp.Header().Get("Content-Type")
	p := Page{
		RequestedURL: target,
		URL:          finalURL,
		Status:       status,
		ContentType:  contentType,
		LoadedAt:     f.now(),
	}
	if isHTML(contentType) {
		doc, err := parseDocument(bytes.NewReader(resp.Body()))
		if err != nil {
			return Page{}, err
		}
		p.Title = documentTitle(doc, finalURL)
		p.Icon = documentIcon(doc, finalURL)
	} else {
		p.Title = fallbackTitle(finalURL)
	}

	return p, nil
}

// ExtractTitle returns the document <title>, or the host of baseURL when it is empty.
func ExtractTitle(r io.Reader, baseURL string) (string, error) {
	doc, err := parseDocument(r)
	if err != nil {
		return "", err
	}

	return documentTitle(doc, baseURL), nil
}

// ExtractIcon returns the absolute URL of the first declared page icon, or ""
// when the document declares none.
func ExtractIcon(r io.Reader, baseURL string) (string, error) {
	doc, err := parseDocument(r)
	if err != nil {
		return "", err
	}

	return documentIcon(doc, baseURL), nil
}

func parseDocument(r io.Reader) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	return doc, nil
}

func documentTitle(doc *goquery.Document, baseURL string) string {
	title := strings.Join(strings.Fields(doc.Find("title").First().Text()), " ")
	if title == "" {
		return fallbackTitle(baseURL)
	}

	return title
}

func documentIcon(doc *goquery.Document, baseURL string) string {
	base, err := url.Parse(baseURL)
	if err != nil {
		return ""
	}

	var icon string
	doc.Find("link[rel][href]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		rel, _ := s.Attr("rel")
		if !slices.Contains(strings.Fields(strings.ToLower(rel)), "icon") {
			return true
		}
		href, ok := s.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return true
		}
		ref, err := url.Parse(href)
		if err != nil {
			return true
		}
		resolved := base.ResolveReference(ref)
		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return true
		}
		icon = resolved.String()

		return false
	})

	return icon
}

func fallbackTitle(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}

	return u.Host
}

func isHTML(contentType string) bool {
	if strings.TrimSpace(contentType) == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == "text/html" || mediaType == "application/xhtml+xml"
}
