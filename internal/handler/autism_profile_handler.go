package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/iep-hero-api/internal/dto"
	"github.com/noah-isme/iep-hero-api/internal/middleware"
	"github.com/noah-isme/iep-hero-api/internal/models"
	"github.com/noah-isme/iep-hero-api/internal/service"
	"github.com/noah-isme/iep-hero-api/pkg/response"
)

type autismProfileService interface {
	Generate(ctx context.Context, actor *models.Profile, req dto.GenerateAutismProfileRequest, meta service.RequestMeta) (*dto.AutismProfileResponse, error)
	List(ctx context.Context, actor *models.Profile) ([]dto.AutismProfileResponse, error)
	Get(ctx context.Context, actor *models.Profile, id string) (*dto.AutismProfileResponse, error)
	Share(ctx context.Context, actor *models.Profile, id string, req dto.ShareAutismProfileRequest, meta service.RequestMeta) (*dto.ShareAutismProfileResponse, error)
}

// AutismProfileHandler exposes the autism profile generator.
type AutismProfileHandler struct {
	service autismProfileService
}

// NewAutismProfileHandler constructs the handler.
func NewAutismProfileHandler(svc autismProfileService) *AutismProfileHandler {
	return &AutismProfileHandler{service: svc}
}

// Generate godoc
// @Summary Generate an autism profile for a student
// @Tags AutismProfiles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.GenerateAutismProfileRequest true "Questionnaire"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 500 {object} response.Envelope
// @Router /autism-profiles/generate [post]
func (h *AutismProfileHandler) Generate(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}
	var req dto.GenerateAutismProfileRequest
	if !bindJSON(c, &req, "profile") {
		return
	}
	res, err := h.service.Generate(c.Request.Context(), actor, req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// List godoc
// @Summary Autism profiles visible to the caller
// @Tags AutismProfiles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /autism-profiles [get]
func (h *AutismProfileHandler) List(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}
	profiles, err := h.service.List(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(profiles))
	response.JSON(c, http.StatusOK, profiles, middleware.ExtractMeta(c))
}

// Get godoc
// @Summary One autism profile
// @Tags AutismProfiles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Profile ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /autism-profiles/{id} [get]
func (h *AutismProfileHandler) Get(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}
	profile, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile)
}

// Share godoc
// @Summary Share a profile with the assigned advocate
// @Tags Hero
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Profile ID"
// @Param payload body dto.ShareAutismProfileRequest false "Message"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /autism-profiles/{id}/share [post]
func (h *AutismProfileHandler) Share(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}
	var req dto.ShareAutismProfileRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req, "share") {
		return
	}
	res, err := h.service.Share(c.Request.Context(), actor, c.Param("id"), req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}
