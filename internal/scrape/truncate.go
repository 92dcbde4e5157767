package scrape

// DefaultMaxTokens is the per-page token budget applied before scraped
// text enters a prompt.
const DefaultMaxTokens = 1500

const truncationMarker = "... [content truncated]"

// Truncate bounds text to an approximate token budget. Tokens are
// approximated as len(text)/4; this is a character heuristic, not a real
// tokenizer, and miscounts non-ASCII text. Output never exceeds
// maxTokens*4 characters plus the truncation marker.
func Truncate(text string, maxTokens int) string {
	if maxTokens < 0 {
		maxTokens = 0
	}
	if len(text)/4 <= maxTokens {
		return text
	}
	return text[:maxTokens*4] + truncationMarker
}
