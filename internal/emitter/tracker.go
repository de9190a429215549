// Package emitter submits interaction events to the ingestion API from
// storefront actions. Sends are best-effort: the storefront action that
// triggered an event never waits on or fails because of tracking.
package emitter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	v1 "github.com/aevon-lab/storefront-signals/internal/api/v1"
	httperr "github.com/aevon-lab/storefront-signals/internal/core/errors"
	"github.com/aevon-lab/storefront-signals/internal/core/interaction"
	"github.com/aevon-lab/storefront-signals/internal/recommendation"
	"github.com/google/uuid"
)

const (
	defaultTrackerTimeout = 5 * time.Second
	maxResponseBytes      = 1 << 20

	requestIDHeader = "X-Request-ID"
)

// ErrTransport is returned when the ingestion API could not be reached or
// answered with an unreadable body.
var ErrTransport = errors.New("interaction api unreachable")

// APIError is a non-2xx answer from the ingestion API.
type APIError struct {
	StatusCode int
	ErrorType  string
	Message    string
}

func (e *APIError) Error() string {
	if e.ErrorType == "" {
		return fmt.Sprintf("interaction api returned status %d", e.StatusCode)
	}
	return fmt.Sprintf("interaction api returned status %d (%s): %s", e.StatusCode, e.ErrorType, e.Message)
}

// Tracker is a synchronous HTTP client for the ingestion and
// recommendation endpoints.
type Tracker struct {
	baseURL    string
	httpClient *http.Client
}

// NewTracker creates a client for the service at baseURL.
func NewTracker(baseURL string, timeout time.Duration) *Tracker {
	if timeout <= 0 {
		timeout = defaultTrackerTimeout
	}
	return &Tracker{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Track posts a single event and returns the merged record.
func (t *Tracker) Track(ctx context.Context, evt *v1.Event) (*interaction.Record, error) {
	var rec interaction.Record
	if err := t.do(ctx, http.MethodPost, "/interactions", evt, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// TrackPurchases posts every line of a completed order as one batch.
// Per-line failures are reported in the results, not as an error.
func (t *Tracker) TrackPurchases(ctx context.Context, req *v1.PurchaseBatchRequest) ([]v1.LineResult, error) {
	var results []v1.LineResult
	if err := t.do(ctx, http.MethodPost, "/interactions/purchase-batch", req, &results); err != nil {
		return nil, err
	}
	return results, nil
}

// Recommendations reads the ranked list for a user, optionally anchored
// on productID.
func (t *Tracker) Recommendations(ctx context.Context, userID, productID string) (recommendation.List, error) {
	path := "/recommendations/" + url.PathEscape(userID)
	if productID != "" {
		path += "/" + url.PathEscape(productID)
	}
	var resp recommendation.Response
	if err := t.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Recommendations == nil {
		return recommendation.List{}, nil
	}
	return resp.Recommendations, nil
}

func (t *Tracker) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(requestIDHeader, uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var errBody httperr.ErrorResponse
		if json.Unmarshal(raw, &errBody) == nil {
			apiErr.ErrorType = errBody.ErrorType
			apiErr.Message = errBody.Message
		}
		return apiErr
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: decode response: %w", ErrTransport, err)
	}
	return nil
}
