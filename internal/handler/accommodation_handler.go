package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/iep-hero-api/internal/dto"
	"github.com/noah-isme/iep-hero-api/internal/models"
	"github.com/noah-isme/iep-hero-api/internal/service"
	"github.com/noah-isme/iep-hero-api/pkg/response"
)

type accommodationGenerator interface {
	Generate(ctx context.Context, actor *models.Profile, req dto.GenerateAccommodationsRequest, meta service.RequestMeta) (*dto.GenerateAccommodationsResponse, error)
}

// AccommodationHandler serves accommodation generation.
type AccommodationHandler struct {
	service accommodationGenerator
}

// NewAccommodationHandler constructs the handler.
func NewAccommodationHandler(svc accommodationGenerator) *AccommodationHandler {
	return &AccommodationHandler{service: svc}
}

// Generate godoc
// @Summary Generate IEP accommodations
// @Description Builds a prompt from the child profile, asks the language model for accommodations and stores the session. Hero plans also receive a legal risk analysis.
// @Tags Accommodations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.GenerateAccommodationsRequest true "Child profile"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /accommodations/generate [post]
func (h *AccommodationHandler) Generate(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}
	var req dto.GenerateAccommodationsRequest
	if !bindJSON(c, &req, "generation") {
		return
	}
	res, err := h.service.Generate(c.Request.Context(), actor, req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}
