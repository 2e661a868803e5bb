package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/iep-hero-api/internal/middleware"
	"github.com/noah-isme/iep-hero-api/internal/models"
	"github.com/noah-isme/iep-hero-api/internal/service"
	appErrors "github.com/noah-isme/iep-hero-api/pkg/errors"
	"github.com/noah-isme/iep-hero-api/pkg/response"
)

// currentProfile returns the authenticated profile or writes a 401.
func currentProfile(c *gin.Context) (*models.Profile, bool) {
	profile := middleware.CurrentProfile(c)
	if profile == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return nil, false
	}
	return profile, true
}

func requestMeta(c *gin.Context) service.RequestMeta {
	return service.RequestMeta{IPAddress: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}

// bindJSON decodes the body into dest, answering 400 on malformed input.
func bindJSON(c *gin.Context, dest interface{}, what string) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+what+" payload"))
		return false
	}
	return true
}
