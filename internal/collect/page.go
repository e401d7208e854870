package collect

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/ppetrenko/veridex/internal/cache"
	"github.com/ppetrenko/veridex/internal/util"
	"golang.org/x/net/html"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// PageFetcher retrieves result pages and reduces them to visible text for
// the classifier. Every failure path degrades to empty text; a missing page
// never fails a collector cycle.
type PageFetcher struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
	maxChars   int
	robots     *util.RobotsChecker
	limiter    *Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
}

// PageFetcherOptions configures a PageFetcher
type PageFetcherOptions struct {
	Timeout    time.Duration
	UserAgent  string
	MaxBytes   int64
	MaxChars   int
	HTTPProxy  string
	HTTPSProxy string
	Robots     *util.RobotsChecker
	Limiter    *Limiter
	Cache      cache.Cache
	CacheTTL   time.Duration
}

// NewPageFetcher creates a page fetcher
func NewPageFetcher(opts PageFetcherOptions) *PageFetcher {
	return &PageFetcher{
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(opts.HTTPProxy, opts.HTTPSProxy),
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: opts.UserAgent,
		maxBytes:  opts.MaxBytes,
		maxChars:  opts.MaxChars,
		robots:    opts.Robots,
		limiter:   opts.Limiter,
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
	}
}

// VisibleText fetches the URL and returns its visible text, bounded to
// maxChars. Robots disallowance, rate-limit cancellation, transport errors
// and unparseable HTML all degrade to an empty string.
func (f *PageFetcher) VisibleText(ctx context.Context, rawURL string) string {
	if rawURL == "" {
		return ""
	}
	if f.robots != nil && !f.robots.IsAllowed(ctx, rawURL) {
		return ""
	}

	key := cache.Key("page:" + rawURL)
	if f.cache != nil {
		if text, found := f.cache.Get(key); found {
			return string(text)
		}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return ""
		}
	}

	body, err := f.fetch(ctx, rawURL)
	if err != nil {
		return ""
	}

	text := truncateText(HTMLToText(body), f.maxChars)
	if f.cache != nil {
		_ = f.cache.Set(key, []byte(text), f.cacheTTL)
	}
	return text
}

func (f *PageFetcher) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	return string(body), nil
}

// HTMLToText extracts visible text from HTML, skipping script/style/etc.
// Unparseable input returns an empty string.
func HTMLToText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}
		if n.Type == html.TextNode {
			text := strings.TrimSpace(n.Data)
			if text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(whitespaceRe.ReplaceAllString(buf.String(), " "))
}

func truncateText(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max]
}
