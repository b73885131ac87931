// Package ai generates marketing content through the Gemini API. Every
// operation degrades to static placeholder content when the API is slow,
// misconfigured, or down; callers never see an error page because of it.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/errors"
	"github.com/Antoniofe-cpu/tempus-concierge/internal/common/logger"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-2.0-flash"
)

// Options configures the Gemini client.
type Options struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	MaxRetries int
}

// Client is a thin Gemini generateContent client.
type Client struct {
	opts   Options
	client *http.Client
	logger logger.Logger
}

func NewClient(opts Options, log logger.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}

	return &Client{
		opts: opts,
		client: &http.Client{
			// rely on context deadlines, not a client-wide timeout
		},
		logger: log,
	}
}

type generatePart struct {
	Text string `json:"text"`
}

type generateContent struct {
	Parts []generatePart `json:"parts"`
}

type generateRequest struct {
	Contents []generateContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content generateContent `json:"content"`
	} `json:"candidates"`
}

// Generate sends a single prompt and returns the model's text reply.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	body, _ := json.Marshal(generateRequest{
		Contents: []generateContent{
			{Parts: []generatePart{{Text: prompt}}},
		},
	})
	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.opts.BaseURL, c.opts.Model, c.opts.APIKey)

	var resp *http.Response
	var lastErr error

	for attempt := 0; attempt <= c.opts.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", errors.NewAITimeoutError()
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
		if err != nil {
			return "", errors.NewAIGenerationFailedError(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, lastErr = c.client.Do(req)
		if lastErr == nil {
			if resp.StatusCode == http.StatusOK {
				break
			}
			resp.Body.Close()
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			resp = nil
		}

		if ctx.Err() != nil {
			return "", errors.NewAITimeoutError()
		}
	}

	if lastErr != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return "", errors.NewAITimeoutError()
		}
		return "", errors.NewAIGenerationFailedError(lastErr)
	}
	if resp == nil {
		return "", errors.NewAIGenerationFailedError(fmt.Errorf("no successful response after retries"))
	}
	defer resp.Body.Close()

	var apiResponse generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResponse); err != nil {
		return "", errors.NewAIGenerationFailedError(fmt.Errorf("decode error: %v", err))
	}

	if len(apiResponse.Candidates) == 0 || len(apiResponse.Candidates[0].Content.Parts) == 0 {
		return "", errors.NewAIGenerationFailedError(fmt.Errorf("empty candidate list"))
	}

	text := strings.TrimSpace(apiResponse.Candidates[0].Content.Parts[0].Text)
	if text == "" {
		return "", errors.NewAIGenerationFailedError(fmt.Errorf("empty completion"))
	}
	return text, nil
}
