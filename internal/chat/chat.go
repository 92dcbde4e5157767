package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/mohammad-safakhou/webchat/internal/scrape"
	"github.com/mohammad-safakhou/webchat/provider"
)

const systemPrompt = "You are a helpful AI assistant. Provide concise and accurate answers."

// Scraper fetches one URL and reports failure as empty text, never as an
// error.
type Scraper interface {
	Scrape(ctx context.Context, url string) scrape.Content
}

// Result is the answer returned for one chat request. Sources lists every
// attempted URL in message order, whether or not its scrape succeeded.
type Result struct {
	Response string   `json:"response"`
	Sources  []string `json:"sources"`
}

// Service runs the request pipeline: URL extraction, concurrent page
// scraping, prompt assembly and the model call.
type Service struct {
	scraper Scraper
	llm     provider.Provider
	logger  *log.Logger
}

// NewService creates a Service
func NewService(scraper Scraper, llm provider.Provider, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(log.Writer(), "[CHAT] ", log.LstdFlags)
	}
	return &Service{scraper: scraper, llm: llm, logger: logger}
}

// Answer answers message, grounding the model on the text of any URLs the
// message contains. Scrape failures are absorbed into empty context; only
// a model failure is returned as an error.
func (s *Service) Answer(ctx context.Context, message string) (Result, error) {
	urls := ExtractURLs(message)
	contents := s.scrapeAll(ctx, urls)

	texts := make([]string, len(contents))
	for i, c := range contents {
		texts[i] = c.Text
	}
	contextBlob := strings.Join(texts, " ")

	question := StripURLs(message)
	user := fmt.Sprintf("Question: %s\n\nContext: %s", question, contextBlob)

	response, err := s.llm.Complete(ctx, systemPrompt, user)
	if err != nil {
		return Result{}, fmt.Errorf("completion: %w", err)
	}

	return Result{Response: response, Sources: urls}, nil
}

// scrapeAll fans out one goroutine per URL and joins on all of them. The
// join never short-circuits: per-URL failures arrive as empty text, so a
// slow or broken page only costs its own slot. Results keep input order.
func (s *Service) scrapeAll(ctx context.Context, urls []string) []scrape.Content {
	contents := make([]scrape.Content, len(urls))
	var wg sync.WaitGroup
	for i, u := range urls {
		wg.Add(1)
		go func(i int, u string) {
			defer wg.Done()
			contents[i] = s.scraper.Scrape(ctx, u)
		}(i, u)
	}
	wg.Wait()
	return contents
}
