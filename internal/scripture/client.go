// Package scripture is a read-only client for the public verse lookup API.
package scripture

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Verse is one looked-up passage.
type Verse struct {
	Reference   string `json:"reference"`
	Text        string `json:"text"`
	Translation string `json:"translation_name"`
}

// Client performs verse lookups by human-readable reference ("João 3:16")
// or at random. There are no write operations.
type Client struct {
	base   string
	http   *http.Client
	logger zerolog.Logger
}

// NewClient constructs a scripture client against the given base URL.
func NewClient(base string, logger zerolog.Logger) *Client {
	return &Client{
		base:   strings.TrimRight(base, "/"),
		http:   &http.Client{Timeout: 10 * time.Second},
		logger: logger.With().Str("component", "scripture").Logger(),
	}
}

// Lookup fetches the verse for a human-readable reference string.
func (c *Client) Lookup(ctx context.Context, reference string) (Verse, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return Verse{}, fmt.Errorf("reference must not be empty")
	}

	return c.get(ctx, c.base+"/"+url.PathEscape(reference))
}

// Random fetches a random verse.
func (c *Client) Random(ctx context.Context) (Verse, error) {
	return c.get(ctx, c.base+"/?random=verse")
}

func (c *Client) get(ctx context.Context, endpoint string) (Verse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Verse{}, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Verse{}, fmt.Errorf("scripture lookup: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return Verse{}, fmt.Errorf("scripture lookup: unexpected status %d", resp.StatusCode)
	}

	var verse Verse
	if err := json.NewDecoder(resp.Body).Decode(&verse); err != nil {
		return Verse{}, fmt.Errorf("decode verse: %w", err)
	}

	verse.Text = strings.TrimSpace(verse.Text)

	return verse, nil
}
