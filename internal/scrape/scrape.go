package scrape

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mohammad-safakhou/webchat/config"
)

var scrapeFailures = promauto.NewCounter(prometheus.CounterOpts{
	Name: "webchat_scrape_failures_total",
	Help: "Page scrapes that produced no text.",
})

// Content is the per-URL scrape result. Text is empty on any failure so
// one bad URL never aborts a batch.
type Content struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// Extractor selects the text extraction strategy.
type Extractor string

const (
	SelectorExtractor    Extractor = "selectors"
	ReadabilityExtractor Extractor = "readability"
)

// Scraper renders pages in a headless browser and extracts readable text.
// A semaphore bounds concurrent browser contexts so a message with many
// URLs cannot exhaust rendering resources.
type Scraper struct {
	timeout   time.Duration
	maxTokens int
	extractor Extractor
	userAgent string
	sem       chan struct{}
	logger    *log.Logger
}

// NewScraper creates a Scraper from configuration
func NewScraper(cfg config.ScrapeConfig, logger *log.Logger) (*Scraper, error) {
	if logger == nil {
		logger = log.New(log.Writer(), "[SCRAPE] ", log.LstdFlags)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	extractor := Extractor(cfg.Extractor)
	if extractor == "" {
		extractor = SelectorExtractor
	}
	switch extractor {
	case SelectorExtractor, ReadabilityExtractor:
	default:
		return nil, fmt.Errorf("unsupported extractor: %s", cfg.Extractor)
	}
	return &Scraper{
		timeout:   timeout,
		maxTokens: maxTokens,
		extractor: extractor,
		userAgent: cfg.UserAgent,
		sem:       make(chan struct{}, maxConcurrent),
		logger:    logger,
	}, nil
}

// Scrape loads url, waits for the network to go idle, strips boilerplate
// and returns truncated readable text. It never returns an error: every
// failure path is logged and reported as Content with empty text.
func (s *Scraper) Scrape(ctx context.Context, url string) Content {
	if strings.TrimSpace(url) == "" {
		return Content{URL: url}
	}

	select {
	case s.sem <- struct{}{}:
		defer func() { <-s.sem }()
	case <-ctx.Done():
		s.logger.Printf("error scraping %s: %v", url, ctx.Err())
		scrapeFailures.Inc()
		return Content{URL: url}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.fetchText(ctx, url)
	if err != nil {
		s.logger.Printf("error scraping %s: %v", url, err)
		scrapeFailures.Inc()
		return Content{URL: url}
	}
	return Content{URL: url, Text: Truncate(text, s.maxTokens)}
}

// fetchText renders the page and runs the configured extractor over the
// final DOM. The browser context is released on every exit path via the
// deferred cancels.
func (s *Scraper) fetchText(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
	)
	if s.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(s.userAgent))
	}
	actx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	bctx, cancelBrowser := chromedp.NewContext(actx)
	defer cancelBrowser()

	if err := chromedp.Run(bctx, network.Enable()); err != nil {
		return "", fmt.Errorf("starting browser: %w", err)
	}

	// listener goes in before Navigate so in-flight loads are counted
	idle := trackNetworkIdle(bctx, idleMaxInflight, idleQuiet)

	if err := chromedp.Run(bctx, chromedp.Navigate(url)); err != nil {
		return "", fmt.Errorf("navigating: %w", err)
	}
	select {
	case <-idle:
	case <-bctx.Done():
		return "", fmt.Errorf("waiting for network idle: %w", bctx.Err())
	}

	var html string
	if err := chromedp.Run(bctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("reading document: %w", err)
	}

	var text string
	var err error
	switch s.extractor {
	case ReadabilityExtractor:
		text, err = cleanReadability(html, url)
	default:
		text, err = cleanSelectors(html)
	}
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", errors.New("no readable content")
	}
	return text, nil
}
