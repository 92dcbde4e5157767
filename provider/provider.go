package provider

import (
	"context"
	"fmt"

	"github.com/mohammad-safakhou/webchat/config"
	groq_provider "github.com/mohammad-safakhou/webchat/provider/groq"
)

// Client represents different LLM providers
type Client string

const (
	Groq Client = "groq"
)

// Provider is the interface that all LLM implementations must satisfy
type Provider interface {
	// Complete sends a system instruction plus a single user turn and
	// returns the first choice's message text.
	Complete(ctx context.Context, system, user string) (string, error)
}

// NewProvider creates an LLM provider from configuration
func NewProvider(client Client, cfg config.LLMConfig) (Provider, error) {
	switch client {
	case Groq:
		return groq_provider.NewClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Temperature, cfg.MaxTokens, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", client)
	}
}
