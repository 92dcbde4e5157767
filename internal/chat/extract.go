package chat

import (
	"regexp"
	"strings"
)

// urlPattern matches http(s) URLs greedily up to the next whitespace.
// This is a syntactic match only; no reachability or shape validation.
var urlPattern = regexp.MustCompile(`https?://\S+`)

// ExtractURLs returns every HTTP(S) URL in message, trimmed, in order of
// appearance. Duplicates are kept.
func ExtractURLs(message string) []string {
	matches := urlPattern.FindAllString(message, -1)
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		urls = append(urls, strings.TrimSpace(m))
	}
	return urls
}

// StripURLs removes every URL match from message and trims the result,
// producing the clean question passed into the prompt.
func StripURLs(message string) string {
	return strings.TrimSpace(urlPattern.ReplaceAllString(message, ""))
}
