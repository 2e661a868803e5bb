package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/iep-hero-api/internal/models"
	appErrors "github.com/noah-isme/iep-hero-api/pkg/errors"
	"github.com/noah-isme/iep-hero-api/pkg/response"
)

// ContextUserKey is the gin context key storing the authenticated profile.
const ContextUserKey = "currentUser"

// Authenticator resolves a bearer token into an active profile.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Profile, error)
}

// JWT protects routes by requiring a valid access token.
func JWT(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing or invalid authorization header"))
			c.Abort()
			return
		}

		profile, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserKey, profile)
		c.Next()
	}
}

// CurrentProfile returns the authenticated profile, if any.
func CurrentProfile(c *gin.Context) *models.Profile {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil
	}
	profile, _ := value.(*models.Profile)
	return profile
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}
