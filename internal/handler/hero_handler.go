package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/iep-hero-api/internal/dto"
	"github.com/noah-isme/iep-hero-api/internal/middleware"
	"github.com/noah-isme/iep-hero-api/internal/models"
	"github.com/noah-isme/iep-hero-api/pkg/response"
)

type advancedReviewer interface {
	AdvancedReview(ctx context.Context, actor *models.Profile, req dto.AdvancedReviewRequest) (*models.AdvancedReview, error)
}

type advocateRecommender interface {
	Recommendations(ctx context.Context, actor *models.Profile, parentID string) ([]models.AdvocateMatch, error)
}

// HeroHandler serves the premium plan features.
type HeroHandler struct {
	reviews   advancedReviewer
	advocates advocateRecommender
}

// NewHeroHandler constructs the handler.
func NewHeroHandler(reviews advancedReviewer, advocates advocateRecommender) *HeroHandler {
	return &HeroHandler{reviews: reviews, advocates: advocates}
}

// AdvancedReview godoc
// @Summary AI review of a stored session
// @Tags Hero
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.AdvancedReviewRequest true "Session to review"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /hero/advanced-review [post]
func (h *HeroHandler) AdvancedReview(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}
	var req dto.AdvancedReviewRequest
	if !bindJSON(c, &req, "review") {
		return
	}
	review, err := h.reviews.AdvancedReview(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, review)
}

// AdvocateRecommendations godoc
// @Summary Ranked advocates for a parent
// @Tags Hero
// @Produce json
// @Security BearerAuth
// @Param id path string true "Parent ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /hero/advocate-recommendations/{id} [get]
func (h *HeroHandler) AdvocateRecommendations(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}
	matches, err := h.advocates.Recommendations(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(matches))
	response.JSON(c, http.StatusOK, matches, middleware.ExtractMeta(c))
}
