// Package bitjita is the client for bitjita.com, the public game-data
// site the sync pipeline ingests from.
package bitjita

import (
	"context"
	"fmt"
	"net/http"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/fern/pkg/httpclient"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/tracing"
)

// Client fetches claim pages and data feeds from bitjita.com
type Client struct {
	http    *httpclient.Client
	baseURL string
	logger  ectologger.Logger
}

// NewClient creates a new bitjita client
func NewClient(http *httpclient.Client, baseURL string, logger ectologger.Logger) *Client {
	return &Client{
		http:    http,
		baseURL: baseURL,
		logger:  logger,
	}
}

// FetchClaimPage fetches the raw HTML for a settlement's claim page. The
// page embeds hydration scripts the extractor pulls the payloads from.
func (c *Client) FetchClaimPage(ctx context.Context, settlementID string) (string, error) {
	ctx, span := tracing.StartSpan(ctx, "bitjita.Client.FetchClaimPage")
	defer span.End()

	url := fmt.Sprintf("%s/claims/%s", c.baseURL, settlementID)
	resp, err := c.http.Get(ctx, url, nil)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("claim page returned status %d for settlement %s", resp.StatusCode, settlementID)
	}

	return string(resp.Body), nil
}

// FetchInventories fetches the settlement inventory payload from the JSON
// API. This is the preferred path; callers fall back to scraping the HTML
// page when it errors.
func (c *Client) FetchInventories(ctx context.Context, settlementID string) (*models.RawSettlementPayload, error) {
	ctx, span := tracing.StartSpan(ctx, "bitjita.Client.FetchInventories")
	defer span.End()

	url := fmt.Sprintf("%s/api/claims/%s/inventories", c.baseURL, settlementID)

	var payload models.RawSettlementPayload
	if err := c.http.GetJSON(ctx, url, nil, &payload); err != nil {
		return nil, err
	}

	if len(payload.Buildings) == 0 && len(payload.Items) == 0 && len(payload.Cargos) == 0 {
		return nil, fmt.Errorf("inventories response for settlement %s was empty", settlementID)
	}

	return &payload, nil
}

// FetchItems fetches the item catalog feed
func (c *Client) FetchItems(ctx context.Context) ([]RawFeedEntry, error) {
	return c.fetchFeed(ctx, "items", fmt.Sprintf("%s/api/items", c.baseURL))
}

// FetchCargo fetches the cargo catalog feed
func (c *Client) FetchCargo(ctx context.Context) ([]RawFeedEntry, error) {
	return c.fetchFeed(ctx, "cargo", fmt.Sprintf("%s/api/cargo", c.baseURL))
}

func (c *Client) fetchFeed(ctx context.Context, feed string, url string) ([]RawFeedEntry, error) {
	ctx, span := tracing.StartSpan(ctx, "bitjita.Client.fetchFeed")
	defer span.End()

	resp, err := c.http.Get(ctx, url, nil)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s feed returned status %d", feed, resp.StatusCode)
	}

	entries, shape, err := DecodeFeed(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s feed: %w", feed, err)
	}

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"feed":  feed,
		"shape": shape,
		"count": len(entries),
	}).Debugf("Fetched %s feed", feed)

	return entries, nil
}
