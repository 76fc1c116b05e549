package llm

import (
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	defaultOpenRouterTitle   = "qgen"
)

// OpenRouterProvider is an OpenAIProvider pointed at OpenRouter. Model IDs
// such as "anthropic/claude-haiku-4.5" are sent verbatim.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider creates a provider targeting the OpenRouter API.
// Requests carry OpenRouter's app attribution headers.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}
	title := cfg.AppTitle
	if title == "" {
		title = defaultOpenRouterTitle
	}

	doer := &attributionDoer{inner: http.DefaultClient, title: title, referer: cfg.Referer}
	inner := newOpenAICompatible(OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: baseURL,
	}, nil, doer)

	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}

// attributionDoer sets X-Title and, when configured, HTTP-Referer.
type attributionDoer struct {
	inner   openai.HTTPDoer
	title   string
	referer string
}

func (d *attributionDoer) Do(req *http.Request) (*http.Response, error) {
	req.Header.Set("X-Title", d.title)
	if d.referer != "" {
		req.Header.Set("HTTP-Referer", d.referer)
	}
	return d.inner.Do(req)
}
