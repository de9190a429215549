// Package recommendation proxies the external scoring service that ranks
// products for a user, with an optional Redis read-through cache.
package recommendation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aevon-lab/storefront-signals/internal/metrics"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 4 << 20
)

// ErrUpstream marks failures of the scoring service itself: transport errors,
// non-2xx responses and undecodable bodies.
var ErrUpstream = errors.New("recommendation service unavailable")

// List is a ranked list of recommended products. Items are passed through
// as the scoring service returned them.
type List []json.RawMessage

// Fetcher retrieves recommendations for a user, optionally anchored on the
// product the user is looking at.
type Fetcher interface {
	Fetch(ctx context.Context, userID, productID string) (List, error)
}

// Client calls {baseURL}/api/v1/recommendations/{userId}[/{productId}].
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a scoring service client.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) endpoint(userID, productID string) string {
	u := c.baseURL + "/api/v1/recommendations/" + url.PathEscape(userID)
	if productID != "" {
		u += "/" + url.PathEscape(productID)
	}
	return u
}

// Fetch calls the scoring service. Every failure wraps ErrUpstream except
// context cancellation by the caller.
func (c *Client) Fetch(ctx context.Context, userID, productID string) (List, error) {
	start := time.Now()
	list, err := c.fetch(ctx, userID, productID)
	metrics.RecordUpstreamRequest(err == nil, time.Since(start))
	return list, err
}

func (c *Client) fetch(ctx context.Context, userID, productID string) (List, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(userID, productID), nil)
	if err != nil {
		return nil, fmt.Errorf("build recommendation request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrUpstream, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP error! status: %d", ErrUpstream, resp.StatusCode)
	}

	list, err := decodeList(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return list, nil
}

// decodeList accepts a bare JSON array or an object wrapping the array in
// a "recommendations" field.
func decodeList(body []byte) (List, error) {
	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "{") {
		var wrapped struct {
			Recommendations List `json:"recommendations"`
		}
		if err := json.Unmarshal(body, &wrapped); err != nil {
			return nil, fmt.Errorf("decode recommendations: %w", err)
		}
		return nonNil(wrapped.Recommendations), nil
	}

	var list List
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("decode recommendations: %w", err)
	}
	return nonNil(list), nil
}

func nonNil(l List) List {
	if l == nil {
		return List{}
	}
	return l
}
