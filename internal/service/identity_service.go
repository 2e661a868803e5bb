package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/noah-isme/iep-hero-api/internal/models"
	appErrors "github.com/noah-isme/iep-hero-api/pkg/errors"
)

type profileRepository interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	ListAdvocates(ctx context.Context) ([]models.Profile, error)
}

// IdentityConfig describes how bearer tokens from the auth provider are verified.
type IdentityConfig struct {
	Secret     string
	Issuer     string
	Audience   string
	ProfileTTL time.Duration
}

// IdentityService resolves bearer tokens and profile ids into profiles.
type IdentityService struct {
	profiles profileRepository
	cache    *CacheService
	cfg      IdentityConfig
	logger   *zap.Logger
}

// NewIdentityService constructs an IdentityService.
func NewIdentityService(profiles profileRepository, cache *CacheService, cfg IdentityConfig, logger *zap.Logger) *IdentityService {
	if cfg.ProfileTTL <= 0 {
		cfg.ProfileTTL = time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IdentityService{profiles: profiles, cache: cache, cfg: cfg, logger: logger}
}

// ValidateToken parses and verifies an HS256 access token.
func (s *IdentityService) ValidateToken(tokenString string) (*models.AccessClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if s.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.cfg.Issuer))
	}
	if s.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(s.cfg.Audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &models.AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	}, opts...)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.AccessClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	return claims, nil
}

// Authenticate validates the token and loads the active profile it names.
func (s *IdentityService) Authenticate(ctx context.Context, tokenString string) (*models.Profile, error) {
	claims, err := s.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	profile, err := s.Profile(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "unknown user")
		}
		return nil, err
	}
	if !profile.IsActive {
		return nil, appErrors.ErrInactiveAccount
	}
	return profile, nil
}

// Profile returns the profile for id, served from cache when possible.
func (s *IdentityService) Profile(ctx context.Context, id string) (*models.Profile, error) {
	key := profileCacheKey(id)
	var cached models.Profile
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	profile, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	s.cache.Set(ctx, key, profile, s.cfg.ProfileTTL)
	return profile, nil
}

// PublicProfile returns the name and role of any user.
func (s *IdentityService) PublicProfile(ctx context.Context, id string) (*models.PublicProfile, error) {
	profile, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}
	public := profile.Public()
	return &public, nil
}
