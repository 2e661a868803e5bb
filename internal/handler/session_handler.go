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

type sessionService interface {
	ListForUser(ctx context.Context, actor *models.Profile, userID string) ([]models.Session, error)
	Detail(ctx context.Context, actor *models.Profile, id string) (*dto.SessionDetail, error)
	AddComment(ctx context.Context, actor *models.Profile, sessionID string, req dto.AddCommentRequest, meta service.RequestMeta) (*models.Comment, error)
	SetApproval(ctx context.Context, actor *models.Profile, sessionID string, req dto.ApprovalRequest, meta service.RequestMeta) (*dto.ApprovalResponse, error)
	LegalAnalysis(ctx context.Context, actor *models.Profile, sessionID string) (*models.LegalAnalysis, error)
}

// SessionHandler exposes the collaboration endpoints.
type SessionHandler struct {
	service sessionService
}

// NewSessionHandler constructs the handler.
func NewSessionHandler(svc sessionService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// List godoc
// @Summary Sessions visible to a user
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /sessions/{id} [get]
func (h *SessionHandler) List(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}
	sessions, err := h.service.ListForUser(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, "count", len(sessions))
	response.JSON(c, http.StatusOK, sessions, middleware.ExtractMeta(c))
}

// Detail godoc
// @Summary Session with comments
// @Tags Sessions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /session/{id} [get]
func (h *SessionHandler) Detail(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}
	detail, err := h.service.Detail(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail)
}

// AddComment godoc
// @Summary Comment on a session
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param payload body dto.AddCommentRequest true "Comment"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /session/{id}/comments [post]
func (h *SessionHandler) AddComment(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}
	var req dto.AddCommentRequest
	if !bindJSON(c, &req, "comment") {
		return
	}
	comment, err := h.service.AddComment(c.Request.Context(), actor, c.Param("id"), req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, comment)
}

// SetApproval godoc
// @Summary Approve or un-approve the accommodations
// @Tags Sessions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param payload body dto.ApprovalRequest true "Approval"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /session/{id}/approval [put]
func (h *SessionHandler) SetApproval(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}
	var req dto.ApprovalRequest
	if !bindJSON(c, &req, "approval") {
		return
	}
	res, err := h.service.SetApproval(c.Request.Context(), actor, c.Param("id"), req, requestMeta(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// LegalAnalysis godoc
// @Summary Legal risk analysis of a stored session
// @Tags Hero
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /session/{id}/legal-analysis [get]
func (h *SessionHandler) LegalAnalysis(c *gin.Context) {
	actor, ok := currentProfile(c)
	if !ok {
		return
	}
	analysis, err := h.service.LegalAnalysis(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, analysis)
}
