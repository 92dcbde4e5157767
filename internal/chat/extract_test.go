package chat

import (
	"reflect"
	"strings"
	"testing"
)

func TestExtractURLs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "no urls",
			in:   "What is the capital of France?",
			want: []string{},
		},
		{
			name: "empty message",
			in:   "",
			want: []string{},
		},
		{
			name: "single url",
			in:   "Summarize https://example.com/a please",
			want: []string{"https://example.com/a"},
		},
		{
			name: "keeps order and duplicates",
			in:   "see http://a.test then https://b.test then http://a.test",
			want: []string{"http://a.test", "https://b.test", "http://a.test"},
		},
		{
			name: "greedy until whitespace",
			in:   "https://example.com/path?q=1&x=2#frag next",
			want: []string{"https://example.com/path?q=1&x=2#frag"},
		},
		{
			name: "ignores other schemes",
			in:   "ftp://a.test mailto:x@y.test https://ok.test",
			want: []string{"https://ok.test"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got := ExtractURLs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ExtractURLs(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractURLsIdempotent(t *testing.T) {
	t.Parallel()
	msg := "read https://a.test/x and http://b.test/y?z=1 twice https://a.test/x"
	first := ExtractURLs(msg)
	second := ExtractURLs(strings.Join(first, " "))
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("re-extraction changed the result: %v vs %v", first, second)
	}
}

func TestStripURLs(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "url removed and trimmed",
			in:   "What is X? https://example.com",
			want: "What is X?",
		},
		{
			name: "no urls unchanged",
			in:   "plain question",
			want: "plain question",
		},
		{
			name: "url in the middle",
			in:   "compare https://a.test with this",
			want: "compare  with this",
		},
		{
			name: "only a url",
			in:   "https://example.com",
			want: "",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := StripURLs(tt.in); got != tt.want {
				t.Fatalf("StripURLs(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
