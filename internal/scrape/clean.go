package scrape

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// removeSelectors is the boilerplate denylist stripped from every page
// before extraction.
var removeSelectors = []string{
	"script",
	"style",
	"nav",
	"header",
	"footer",
	".sidebar",
	"#sidebar",
	".advertisement",
	".ad",
	"iframe",
	"svg",
	"canvas",
}

// contentSelectors is the allowlist of content-bearing elements, collected
// per selector in document order. Elements matching more than one selector
// are intentionally not deduplicated.
var contentSelectors = []string{
	"article",
	"section",
	"main",
	"div.content",
	"div.article-body",
	"p",
}

// minFragmentChars filters out nav fragments and short labels.
const minFragmentChars = 50

var whitespaceRE = regexp.MustCompile(`\s+`)

// cleanSelectors strips the denylist, gathers allowlisted element texts
// longer than minFragmentChars, joins them and collapses whitespace. When
// nothing survives the filter it falls back to the body's trimmed text.
func cleanSelectors(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parsing document: %w", err)
	}

	for _, sel := range removeSelectors {
		doc.Find(sel).Remove()
	}

	var parts []string
	for _, sel := range contentSelectors {
		doc.Find(sel).Each(func(_ int, s *goquery.Selection) {
			t := strings.TrimSpace(s.Text())
			if len(t) > minFragmentChars {
				parts = append(parts, t)
			}
		})
	}

	text := strings.TrimSpace(whitespaceRE.ReplaceAllString(strings.Join(parts, "\n\n"), " "))
	if text == "" {
		text = strings.TrimSpace(doc.Find("body").Text())
	}
	return text, nil
}

// cleanReadability extracts article text with go-readability instead of
// the selector allowlist.
func cleanReadability(html, pageURL string) (string, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		u = &url.URL{}
	}
	article, err := readability.FromReader(strings.NewReader(html), u)
	if err != nil {
		return "", fmt.Errorf("readability: %w", err)
	}
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(article.TextContent, " ")), nil
}
