package recommendation

import (
	"errors"
	"log/slog"
	"net/http"

	httperr "github.com/aevon-lab/storefront-signals/internal/core/errors"
	"github.com/gin-gonic/gin"
)

// Response is the body of a successful recommendations request.
type Response struct {
	Recommendations List `json:"recommendations"`
}

// RegisterRoutes registers the recommendation proxy routes.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/recommendations/:userId", s.HandleRecommendations)
	r.GET("/recommendations/:userId/:productId", s.HandleRecommendations)
}

// HandleRecommendations handles GET /recommendations/:userId[/:productId]
func (s *Service) HandleRecommendations(c *gin.Context) {
	var uri struct {
		UserID    string `uri:"userId" binding:"required"`
		ProductID string `uri:"productId"`
	}

	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpValidationError,
			Message:   "userId is required",
		})
		return
	}

	list, err := s.Recommendations(c.Request.Context(), uri.UserID, uri.ProductID)
	if err != nil {
		if errors.Is(err, ErrUpstream) {
			slog.Warn("[Recommendations] Upstream failure",
				"user_id", uri.UserID,
				"product_id", uri.ProductID,
				"error", err)
			c.JSON(http.StatusBadGateway, httperr.ErrorResponse{
				ErrorType: httperr.HttpUpstreamError,
				Message:   "Failed to fetch recommendations",
				Details:   err.Error(),
			})
			return
		}

		slog.Error("[Recommendations] Unexpected error", "user_id", uri.UserID, "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Unexpected error",
		})
		return
	}

	c.JSON(http.StatusOK, Response{Recommendations: list})
}
