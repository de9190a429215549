package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	v1 "github.com/aevon-lab/storefront-signals/internal/api/v1"
	"github.com/aevon-lab/storefront-signals/internal/catalog"
	"github.com/aevon-lab/storefront-signals/internal/core/interaction"
	"github.com/aevon-lab/storefront-signals/internal/core/storage"
	"github.com/aevon-lab/storefront-signals/internal/metrics"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrCatalogUnavailable wraps catalog lookup failures other than a missing product.
	ErrCatalogUnavailable = errors.New("product catalog unavailable")

	// ErrPersistFailed wraps store failures, including exhausted create-race retries.
	ErrPersistFailed = errors.New("failed to persist interaction")
)

const (
	lineMsgProductNotFound = "Product not found"
	lineMsgPersistFailed   = "Failed to persist interaction"
)

// Ingest validates one event, checks its product against the catalog, and
// merges it into the pair's record.
//
// Errors:
//   - *v1.ValidationError for malformed events
//   - catalog.ErrProductNotFound (wrapped) for unknown products
//   - ErrCatalogUnavailable or ErrPersistFailed (wrapped) otherwise
func (s *Service) Ingest(ctx context.Context, evt *v1.Event) (*interaction.Record, error) {
	rec, _, err := s.ingest(ctx, evt)
	return rec, err
}

// kindLabel keeps the metric label set bounded: unknown client-supplied
// kinds share one label.
func kindLabel(k interaction.Kind) string {
	if !k.Valid() {
		return metrics.LabelInvalid
	}
	return string(k)
}

func (s *Service) ingest(ctx context.Context, evt *v1.Event) (*interaction.Record, bool, error) {
	if err := evt.Validate(); err != nil {
		metrics.RecordInteraction(kindLabel(evt.InteractionType), metrics.OutcomeRejected)
		return nil, false, err
	}

	if err := s.resolveProduct(ctx, evt); err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			metrics.RecordInteraction(kindLabel(evt.InteractionType), metrics.OutcomeNotFound)
		} else {
			metrics.RecordInteraction(kindLabel(evt.InteractionType), metrics.OutcomeFailed)
		}
		return nil, false, err
	}

	rec, created, err := s.upsertWithRetry(ctx, evt)
	if err != nil {
		metrics.RecordInteraction(kindLabel(evt.InteractionType), metrics.OutcomeFailed)
		return nil, false, err
	}

	outcome := metrics.OutcomeUpdated
	if created {
		outcome = metrics.OutcomeCreated
	}
	metrics.RecordInteraction(kindLabel(evt.InteractionType), outcome)

	slog.Debug("[Ingestion] Interaction merged",
		"user_id", evt.UserID,
		"product_id", evt.ProductID,
		"event_type", evt.InteractionType,
		"record_type", rec.InteractionType,
		"value", rec.Value,
		"created", created)

	return rec, created, nil
}

// resolveProduct checks the catalog and logs category drift between what the
// client saw and what the catalog holds.
func (s *Service) resolveProduct(ctx context.Context, evt *v1.Event) error {
	product, err := s.products.Resolve(ctx, evt.ProductID)
	if errors.Is(err, catalog.ErrProductNotFound) {
		slog.Warn("[Ingestion] Unknown product", "user_id", evt.UserID, "product_id", evt.ProductID)
		return fmt.Errorf("product %q: %w", evt.ProductID, err)
	}
	if err != nil {
		slog.Error("[Ingestion] Catalog lookup failed", "product_id", evt.ProductID, "error", err)
		return fmt.Errorf("%w: %w", ErrCatalogUnavailable, err)
	}

	if evt.Category != nil && product.Category != "" && *evt.Category != product.Category {
		slog.Warn("[Ingestion] Event category differs from catalog",
			"product_id", evt.ProductID,
			"event_category", *evt.Category,
			"catalog_category", product.Category)
	}
	return nil
}

// upsertWithRetry runs the merge inside the store's atomic upsert. Losing a
// concurrent create is retried; the retry sees the winner's row and applies
// as an update.
func (s *Service) upsertWithRetry(ctx context.Context, evt *v1.Event) (*interaction.Record, bool, error) {
	signal := evt.Signal()
	mutate := func(existing *interaction.Record) (interaction.Record, error) {
		return interaction.Merge(existing, signal), nil
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		rec, created, err := s.store.Upsert(ctx, evt.UserID, evt.ProductID, mutate)
		if err == nil {
			return rec, created, nil
		}
		if !errors.Is(err, storage.ErrConstraintViolation) {
			slog.Error("[Ingestion] Failed to persist interaction",
				"user_id", evt.UserID,
				"product_id", evt.ProductID,
				"error", err)
			return nil, false, fmt.Errorf("%w: %w", ErrPersistFailed, err)
		}

		lastErr = err
		metrics.RecordUpsertRetry()
		slog.Info("[Ingestion] Concurrent create detected, retrying as update",
			"user_id", evt.UserID,
			"product_id", evt.ProductID,
			"attempt", attempt)

		if ctx.Err() != nil {
			break
		}
	}

	slog.Error("[Ingestion] Upsert retries exhausted",
		"user_id", evt.UserID,
		"product_id", evt.ProductID,
		"attempts", s.maxAttempts)
	return nil, false, fmt.Errorf("%w after %d attempts: %w", ErrPersistFailed, s.maxAttempts, lastErr)
}

// IngestPurchaseBatch records every line of a completed order. Lines run
// concurrently and fail independently; the returned slice is in request
// order. Only a malformed envelope fails the whole call.
func (s *Service) IngestPurchaseBatch(ctx context.Context, req *v1.PurchaseBatchRequest) ([]v1.LineResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if len(req.Products) > s.maxBatchLines {
		return nil, &v1.ValidationError{Fields: []v1.FieldError{{
			Field:   "products",
			Rule:    "max",
			Message: fmt.Sprintf("products must contain at most %d item(s)", s.maxBatchLines),
		}}}
	}

	results := make([]v1.LineResult, len(req.Products))

	var g errgroup.Group
	g.SetLimit(s.batchConcurrency)
	for i := range req.Products {
		i := i
		line := req.Products[i]
		g.Go(func() error {
			results[i] = s.ingestLine(ctx, req.UserID, &line)
			return nil
		})
	}
	_ = g.Wait() // lines never return errors

	slog.Info("[Ingestion] Purchase batch processed",
		"user_id", req.UserID,
		"lines", len(results))

	return results, nil
}

func (s *Service) ingestLine(ctx context.Context, userID string, line *v1.PurchaseLine) v1.LineResult {
	result := v1.LineResult{ProductID: line.ProductID}

	if err := line.Validate(); err != nil {
		result.Status = v1.LineStatusError
		result.Message = err.Error()
		return result
	}

	_, created, err := s.ingest(ctx, line.Event(userID))
	switch {
	case err == nil && created:
		result.Status = v1.LineStatusCreated
	case err == nil:
		result.Status = v1.LineStatusUpdated
	case errors.Is(err, catalog.ErrProductNotFound):
		result.Status = v1.LineStatusError
		result.Message = lineMsgProductNotFound
	default:
		result.Status = v1.LineStatusError
		result.Message = lineMsgPersistFailed
	}
	return result
}
