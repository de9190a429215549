package ingestion

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	v1 "github.com/aevon-lab/storefront-signals/internal/api/v1"
	"github.com/aevon-lab/storefront-signals/internal/catalog"
	httperr "github.com/aevon-lab/storefront-signals/internal/core/errors"
	"github.com/gin-gonic/gin"
)

const (
	msgReadBodyFailed   = "Failed to read request body"
	msgInvalidJSON      = "Invalid JSON body"
	msgBodyTooLarge     = "Request body exceeds maximum allowed size"
	msgProductNotFound  = "Product not found"
	msgPersistFailed    = "Failed to persist interaction"
	msgValidationFailed = "Validation failed"
)

// ingestionError carries the structured HTTP error shape from a helper back to the orchestrator.
// Helpers return this instead of writing to gin.Context directly, keeping them decoupled from HTTP.
type ingestionError struct {
	statusCode int
	errorType  string
	message    string
	details    interface{}
}

func (e *ingestionError) Error() string {
	return e.message
}

// IngestHandler handles POST /interactions.
func (s *Service) IngestHandler(c *gin.Context) {
	var evt v1.Event
	if ierr := s.bindBody(c, &evt); ierr != nil {
		writeError(c, ierr)
		return
	}

	slog.Info("[Ingestion] Received interaction",
		"user_id", evt.UserID,
		"product_id", evt.ProductID,
		"interaction_type", evt.InteractionType,
		"category", evt.CategoryValue())

	rec, err := s.Ingest(c.Request.Context(), &evt)
	if err != nil {
		writeError(c, mapIngestError(err))
		return
	}

	c.JSON(http.StatusOK, rec)
}

// PurchaseBatchHandler handles POST /interactions/purchase-batch.
// Responds 200 with per-line results even when some lines fail.
func (s *Service) PurchaseBatchHandler(c *gin.Context) {
	var req v1.PurchaseBatchRequest
	if ierr := s.bindBody(c, &req); ierr != nil {
		writeError(c, ierr)
		return
	}

	results, err := s.IngestPurchaseBatch(c.Request.Context(), &req)
	if err != nil {
		writeError(c, mapIngestError(err))
		return
	}

	c.JSON(http.StatusOK, results)
}

// bindBody reads the size-limited request body and decodes it into dst.
func (s *Service) bindBody(c *gin.Context, dst interface{}) *ingestionError {
	// Enforce maximum body size to prevent OOM attacks
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("[Ingestion] Failed to read request body", "error", err)
		return &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgReadBodyFailed,
		}
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("[Ingestion] Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		return &ingestionError{
			statusCode: http.StatusRequestEntityTooLarge,
			errorType:  httperr.HttpPayloadTooLargeError,
			message:    msgBodyTooLarge,
			details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		}
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	if err := c.ShouldBindJSON(dst); err != nil {
		slog.Warn("[Ingestion] Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		return &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpInvalidJsonError,
			message:    msgInvalidJSON,
		}
	}
	return nil
}

// mapIngestError translates service errors into HTTP errors.
func mapIngestError(err error) *ingestionError {
	var verr *v1.ValidationError
	switch {
	case errors.As(err, &verr):
		return &ingestionError{
			statusCode: http.StatusBadRequest,
			errorType:  httperr.HttpValidationError,
			message:    msgValidationFailed,
			details:    map[string]interface{}{"fields": verr.Fields},
		}
	case errors.Is(err, catalog.ErrProductNotFound):
		return &ingestionError{
			statusCode: http.StatusNotFound,
			errorType:  httperr.HttpProductNotFoundError,
			message:    msgProductNotFound,
		}
	default:
		return &ingestionError{
			statusCode: http.StatusInternalServerError,
			errorType:  httperr.HttpInternalError,
			message:    msgPersistFailed,
		}
	}
}

// writeError serializes an ingestionError as the JSON HTTP response.
func writeError(c *gin.Context, err *ingestionError) {
	c.JSON(err.statusCode, httperr.ErrorResponse{
		ErrorType: err.errorType,
		Message:   err.message,
		Details:   err.details,
	})
}
