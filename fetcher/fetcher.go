// Package fetcher loads pages over HTTP and reduces them to a title, a
// favicon and readable markdown for the terminal.
package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/zam-dot/ferrum/navigation"
)

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) ferrum/1.0"

// Config controls the HTTP client.
type Config struct {
	Timeout   time.Duration
	Retries   int
	UserAgent string
	// Rate caps outgoing requests per second. Zero means unlimited.
	Rate float64
}

// DefaultConfig returns sensible client settings.
func DefaultConfig() Config {
	return Config{
		Timeout:   15 * time.Second,
		Retries:   2,
		UserAgent: defaultUserAgent,
	}
}

// StatusError is returned for responses outside 2xx/3xx.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

// Fetcher implements navigation.Fetcher.
type Fetcher struct {
	client  *resty.Client
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New builds a Fetcher. A nil logger discards output.
func New(cfg Config, logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}

	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(250*time.Millisecond).
		SetRetryMaxWaitTime(2*time.Second).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.5")

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.Rate > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.Rate), 1)
	}

	return &Fetcher{client: client, limiter: limiter, logger: logger}
}

// Fetch downloads target and extracts its page data.
func (f *Fetcher) Fetch(ctx context.Context, target navigation.Target) (navigation.Page, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return navigation.Page{}, err
	}

	start := time.Now()
	resp, err := f.client.R().SetContext(ctx).Get(target.String())
	if err != nil {
		return navigation.Page{}, fmt.Errorf("request failed: %w", err)
	}

	code := resp.StatusCode()
	f.logger.Debug("fetched",
		zap.Stringer("target", target),
		zap.Int("status", code),
		zap.Int("bytes", len(resp.Body())),
		zap.Duration("elapsed", time.Since(start)))

	if code < 200 || code >= 400 {
		return navigation.Page{}, &StatusError{Code: code, Status: resp.Status()}
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body()))
	if err != nil {
		return navigation.Page{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	// Redirects change the base for relative links.
	base := target.String()
	if resp.RawResponse != nil && resp.RawResponse.Request != nil {
		base = resp.RawResponse.Request.URL.String()
	}
	return Extract(doc, base), nil
}
