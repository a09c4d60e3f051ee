// Package extract resolves a free-text description to a location phrase via
// an HTTP named-entity extraction service, memoized in the shared cache.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// Client calls a Hugging Face-style token-classification endpoint and
// post-processes its span output into a single location phrase.
type Client struct {
	url        string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates an extraction client. The timeout bounds every request;
// a timed-out call is treated as a service failure by the caller.
func NewClient(url, token string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		url:   url,
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// ExtractLocation sends text to the extraction service and returns the merged
// location phrase. Returns "" when the service found no location entities.
func (c *Client) ExtractLocation(ctx context.Context, text string) (string, error) {
	payload, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return "", fmt.Errorf("encode extraction request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create extraction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("extraction request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Warn("extraction API returned error", "status", resp.StatusCode)
		return "", fmt.Errorf("extraction API error: status %d: %s", resp.StatusCode, body)
	}

	var spans []span
	if err := json.NewDecoder(resp.Body).Decode(&spans); err != nil {
		c.logger.Warn("extraction API returned malformed response", "error", err)
		return "", fmt.Errorf("decode extraction response: %w", err)
	}

	return mergeLocationSpans(spans), nil
}

// span is one labeled token from the extraction service.
type span struct {
	EntityGroup string  `json:"entity_group"`
	Word        string  `json:"word"`
	Score       float64 `json:"score"`
}

// mergeLocationSpans joins LOC-group spans into one human-readable phrase:
// sub-word continuations ("##ville") attach to the previous token, everything
// else joins with single spaces in first-seen order.
func mergeLocationSpans(spans []span) string {
	var parts []string
	for _, s := range spans {
		if s.EntityGroup != "LOC" {
			continue
		}
		word := strings.TrimSpace(s.Word)
		if word == "" {
			continue
		}
		if cont, ok := strings.CutPrefix(word, "##"); ok && len(parts) > 0 {
			parts[len(parts)-1] += cont
			continue
		}
		parts = append(parts, word)
	}
	return strings.Join(parts, " ")
}
