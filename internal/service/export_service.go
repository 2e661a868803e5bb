package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/iep-hero-api/internal/dto"
	"github.com/noah-isme/iep-hero-api/internal/models"
	appErrors "github.com/noah-isme/iep-hero-api/pkg/errors"
	"github.com/noah-isme/iep-hero-api/pkg/export"
	"github.com/noah-isme/iep-hero-api/pkg/storage"
)

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type documentRenderer interface {
	Render(doc export.Document) ([]byte, error)
}

// Export formats.
const (
	ExportFormatCSV = "csv"
	ExportFormatPDF = "pdf"
)

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
}

// ExportService renders sessions to files and hands out signed download links.
type ExportService struct {
	sessions  sessionLoader
	storage   fileStorage
	renderers map[string]documentRenderer
	signer    *storage.SignedURLSigner
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ExportConfig
}

// NewExportService constructs an ExportService.
func NewExportService(sessions sessionLoader, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, validate *validator.Validate, logger *zap.Logger) *ExportService {
	if validate == nil {
		validate = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	return &ExportService{
		sessions: sessions,
		storage:  store,
		renderers: map[string]documentRenderer{
			ExportFormatCSV: export.NewCSVExporter(),
			ExportFormatPDF: export.NewPDFExporter(),
		},
		signer:    signer,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
	}
}

// ExportSession renders a session the actor can see and returns a signed URL.
func (s *ExportService) ExportSession(ctx context.Context, actor *models.Profile, sessionID string, req dto.ExportSessionRequest) (*dto.ExportResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	session, err := s.sessions.Session(ctx, actor, sessionID)
	if err != nil {
		return nil, err
	}

	payload, err := s.renderers[req.Format].Render(sessionDocument(session))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	relPath, err := s.storage.Save(exportFilename(session, req.Format, time.Now().UTC()), payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store export")
	}

	token, expiresAt, err := s.signer.Generate(session.ID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign export")
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api"
	}

	s.logger.Info("session exported", zap.String("session_id", session.ID), zap.String("format", req.Format), zap.String("path", relPath))
	return &dto.ExportResponse{
		URL:       fmt.Sprintf("%s/exports/%s", prefix, token),
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		Format:    req.Format,
	}, nil
}

// Open validates a download token and opens the file it points to.
func (s *ExportService) Open(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export link is invalid or expired")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open export")
	}
	return file, relPath, nil
}

// Cleanup removes files older than ttl, or the configured TTL when ttl <= 0.
func (s *ExportService) Cleanup(ttl time.Duration) ([]string, error) {
	if ttl <= 0 {
		ttl = s.cfg.ResultTTL
	}
	return s.storage.CleanupOlderThan(ttl)
}

func sessionDocument(session *models.Session) export.Document {
	child := session.ChildProfile
	approval := "Not approved"
	if session.Approval.Approved && session.Approval.ApprovedAt != nil {
		approval = "Approved " + session.Approval.ApprovedAt.UTC().Format("2006-01-02")
	}
	doc := export.Document{
		Title: fmt.Sprintf("IEP Accommodations for %s", child.Name),
		Summary: []export.Field{
			{Label: "Grade Level", Value: string(child.GradeLevel)},
			{Label: "Diagnosis Areas", Value: joinOrNone(child.DiagnosisAreas)},
			{Label: "Sensory Preferences", Value: joinOrNone(child.SensoryPreferences)},
			{Label: "Behavioral Challenges", Value: joinOrNone(child.BehavioralChallenges)},
			{Label: "Communication Method", Value: string(child.CommunicationMethod)},
			{Label: "Plan", Value: string(session.PlanType)},
			{Label: "Status", Value: string(session.Status)},
			{Label: "Approval", Value: approval},
			{Label: "Generated", Value: session.CreatedAt.UTC().Format(time.RFC3339)},
		},
		Headers: []string{"#", "Category", "Title", "Description", "Implementation"},
		Rows:    make([]map[string]string, 0, len(session.Accommodations)),
	}
	for i, a := range session.Accommodations {
		doc.Rows = append(doc.Rows, map[string]string{
			"#":              strconv.Itoa(i + 1),
			"Category":       string(a.Category),
			"Title":          a.Title,
			"Description":    a.Description,
			"Implementation": a.Implementation,
		})
	}
	return doc
}

func exportFilename(session *models.Session, format string, at time.Time) string {
	return fmt.Sprintf("session_%s_%s.%s", sanitizeFilename(session.ChildProfile.Name), at.Format("20060102_150405"), format)
}

func sanitizeFilename(raw string) string {
	if raw == "" {
		return "na"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".")
	result := replacer.Replace(raw)
	if len(result) > 60 {
		return result[:60]
	}
	return result
}
