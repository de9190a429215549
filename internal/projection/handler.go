package projection

import (
	"errors"
	"log/slog"
	"net/http"

	httperr "github.com/aevon-lab/storefront-signals/internal/core/errors"
	"github.com/aevon-lab/storefront-signals/internal/core/storage"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the interaction read routes on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/interactions/:userId", s.HandleUserInteractions)
	r.GET("/interactions/:userId/:productId", s.HandleInteraction)
}

// HandleUserInteractions handles GET /interactions/:userId
// Query parameters: limit
func (s *Service) HandleUserInteractions(c *gin.Context) {
	var uri struct {
		UserID string `uri:"userId" binding:"required"`
	}
	var query struct {
		Limit int `form:"limit"`
	}

	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpValidationError,
			Message:   "Invalid path parameters",
			Details:   err.Error(),
		})
		return
	}

	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpValidationError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return
	}

	resp, err := s.UserInteractions(c.Request.Context(), uri.UserID, query.Limit)
	if err != nil {
		if errors.Is(err, ErrInvalidQuery) {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpValidationError,
				Message:   "Invalid interaction query",
				Details:   err.Error(),
			})
			return
		}

		slog.Error("[Projection] Failed to list interactions", "user_id", uri.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to query interactions",
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleInteraction handles GET /interactions/:userId/:productId
func (s *Service) HandleInteraction(c *gin.Context) {
	var uri struct {
		UserID    string `uri:"userId" binding:"required"`
		ProductID string `uri:"productId" binding:"required"`
	}

	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpValidationError,
			Message:   "Invalid path parameters",
			Details:   err.Error(),
		})
		return
	}

	rec, err := s.Interaction(c.Request.Context(), uri.UserID, uri.ProductID)
	if err != nil {
		if errors.Is(err, storage.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, httperr.ErrorResponse{
				ErrorType: httperr.HttpRecordNotFoundError,
				Message:   "No interaction recorded for this user and product",
			})
			return
		}

		slog.Error("[Projection] Failed to load interaction",
			"user_id", uri.UserID,
			"product_id", uri.ProductID,
			"error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to query interaction",
		})
		return
	}

	c.JSON(http.StatusOK, rec)
}
