package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/iep-hero-api/internal/models"
	"github.com/noah-isme/iep-hero-api/pkg/response"
)

type publicProfileReader interface {
	PublicProfile(ctx context.Context, id string) (*models.PublicProfile, error)
}

// AuthHandler exposes identity lookups.
type AuthHandler struct {
	identity publicProfileReader
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(identity publicProfileReader) *AuthHandler {
	return &AuthHandler{identity: identity}
}

// Me godoc
// @Summary Current identity
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	profile, ok := currentProfile(c)
	if !ok {
		return
	}
	response.JSON(c, http.StatusOK, profile)
}

// User godoc
// @Summary Public profile of a user
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /auth/users/{id} [get]
func (h *AuthHandler) User(c *gin.Context) {
	public, err := h.identity.PublicProfile(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, public)
}
