package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/noah-isme/iep-hero-api/internal/models"
	appErrors "github.com/noah-isme/iep-hero-api/pkg/errors"
	"github.com/noah-isme/iep-hero-api/pkg/llm"
	"github.com/noah-isme/iep-hero-api/pkg/tracing"
)

const (
	accommodationTemperature = 0.7
	reviewTemperature        = 0.3
	narrativeTemperature     = 0.7
	insightsTemperature      = 0.3

	purposeAccommodations = "accommodations"
	purposeReview         = "review"
	purposeAutismProfile  = "autism_profile"
	purposeInsights       = "profile_insights"

	autismProfileFailure = "Failed to generate autism profile. Please try again."

	// insightsTopItems is how many entries the ranked insight lists keep.
	insightsTopItems = 3
)

var errSchema = errors.New("completion does not match the expected schema")

// GenerationConfig tunes calls to the text-generation provider.
type GenerationConfig struct {
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
}

// GenerationService turns prompts into validated structured output.
type GenerationService struct {
	provider llm.Provider
	cfg      GenerationConfig
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewGenerationService constructs the generation client.
func NewGenerationService(provider llm.Provider, cfg GenerationConfig, metrics *MetricsService, logger *zap.Logger) *GenerationService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 500 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenerationService{provider: provider, cfg: cfg, metrics: metrics, logger: logger}
}

type accommodationEnvelope struct {
	Accommodations models.Accommodations `json:"accommodations"`
}

// GenerateAccommodations requests accommodations for child sized for tier.
func (s *GenerationService) GenerateAccommodations(ctx context.Context, child models.ChildProfile, tier models.PlanTier) (models.Accommodations, error) {
	prompt := BuildAccommodationPrompt(child, tier)
	raw, err := s.complete(ctx, purposeAccommodations, prompt, accommodationTemperature, MaxTokens(tier))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, appErrors.ErrUpstream.Message)
	}

	var envelope accommodationEnvelope
	if err := decodeCompletion(raw, &envelope); err != nil {
		return nil, s.invalidResponse(purposeAccommodations, raw, err, appErrors.ErrInvalidUpstreamResponse.Message)
	}
	if err := validateAccommodations(envelope.Accommodations); err != nil {
		return nil, s.invalidResponse(purposeAccommodations, raw, err, appErrors.ErrInvalidUpstreamResponse.Message)
	}
	s.observe(purposeAccommodations, "success")
	return envelope.Accommodations, nil
}

// GenerateReview requests a compliance review of a stored session.
func (s *GenerationService) GenerateReview(ctx context.Context, session *models.Session, analysis models.LegalAnalysis) (*models.AdvancedReview, error) {
	const failure = "Failed to generate review. Please try again."
	prompt := BuildReviewPrompt(session, analysis)
	raw, err := s.complete(ctx, purposeReview, prompt, reviewTemperature, heroMaxTokens)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, failure)
	}

	var review models.AdvancedReview
	if err := decodeCompletion(raw, &review); err != nil {
		return nil, s.invalidResponse(purposeReview, raw, err, failure)
	}
	if strings.TrimSpace(review.OverallAssessment.Summary) == "" {
		return nil, s.invalidResponse(purposeReview, raw, fmt.Errorf("%w: missing overall_assessment.summary", errSchema), failure)
	}
	s.observe(purposeReview, "success")
	return &review, nil
}

type autismProfileEnvelope struct {
	Profile string `json:"profile"`
}

// GenerateAutismProfile requests the educator-facing narrative for a student.
func (s *GenerationService) GenerateAutismProfile(ctx context.Context, in models.AutismProfileInput, profileType models.AutismProfileType) (string, error) {
	tier := models.PlanFree
	if profileType == models.AutismProfileHero {
		tier = models.PlanHero
	}
	prompt := BuildAutismProfilePrompt(in, profileType)
	raw, err := s.complete(ctx, purposeAutismProfile, prompt, narrativeTemperature, MaxTokens(tier))
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, autismProfileFailure)
	}

	var envelope autismProfileEnvelope
	if err := decodeCompletion(raw, &envelope); err != nil {
		return "", s.invalidResponse(purposeAutismProfile, raw, err, autismProfileFailure)
	}
	text := strings.TrimSpace(envelope.Profile)
	if text == "" {
		return "", s.invalidResponse(purposeAutismProfile, raw, fmt.Errorf("%w: empty profile", errSchema), autismProfileFailure)
	}
	s.observe(purposeAutismProfile, "success")
	return text, nil
}

// GenerateProfileInsights distills a generated narrative into the hero summary.
func (s *GenerationService) GenerateProfileInsights(ctx context.Context, in models.AutismProfileInput, narrative string) (*models.ProfileInsights, error) {
	prompt := BuildProfileInsightsPrompt(in, narrative)
	raw, err := s.complete(ctx, purposeInsights, prompt, insightsTemperature, freeMaxTokens)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, autismProfileFailure)
	}

	var insights models.ProfileInsights
	if err := decodeCompletion(raw, &insights); err != nil {
		return nil, s.invalidResponse(purposeInsights, raw, err, autismProfileFailure)
	}
	if err := validateInsights(&insights); err != nil {
		return nil, s.invalidResponse(purposeInsights, raw, err, autismProfileFailure)
	}
	s.observe(purposeInsights, "success")
	return &insights, nil
}

func (s *GenerationService) complete(ctx context.Context, purpose string, prompt Prompt, temperature float64, maxTokens int) (string, error) {
	ctx, span := tracing.Tracer().Start(ctx, "llm.complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm.provider", s.provider.Name()),
		attribute.String("llm.purpose", purpose),
		attribute.Int("llm.max_tokens", maxTokens),
	)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	history := []llm.Message{
		{Role: llm.RoleSystem, Content: prompt.System},
		{Role: llm.RoleUser, Content: prompt.User},
	}

	expo := backoff.NewExponentialBackOff()
	expo.InitialInterval = s.cfg.InitialBackoff

	attempt := 0
	start := time.Now()
	raw, err := backoff.Retry(ctx, func() (string, error) {
		attempt++
		text, err := s.provider.Chat(ctx, history,
			llm.WithTemperature(temperature),
			llm.WithMaxTokens(maxTokens),
			llm.WithJSONOutput(),
		)
		if err != nil && !llm.IsRetryable(err) {
			return "", backoff.Permanent(err)
		}
		return text, err
	},
		backoff.WithBackOff(expo),
		backoff.WithMaxTries(uint(s.cfg.MaxAttempts)),
		backoff.WithNotify(func(err error, wait time.Duration) {
			s.logger.Warn("llm call failed, retrying",
				zap.String("provider", s.provider.Name()),
				zap.String("purpose", purpose),
				zap.Duration("wait", wait),
				zap.Error(err),
			)
		}),
	)
	if s.metrics != nil {
		s.metrics.ObserveLLMCall(s.provider.Name(), purpose, time.Since(start))
	}
	span.SetAttributes(attribute.Int("llm.attempts", attempt))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "provider call failed")
		s.logger.Error("llm call failed",
			zap.String("provider", s.provider.Name()),
			zap.String("purpose", purpose),
			zap.Int("attempts", attempt),
			zap.Error(err),
		)
		s.observe(purpose, "upstream_error")
		return "", err
	}
	return raw, nil
}

func (s *GenerationService) invalidResponse(purpose, raw string, cause error, message string) error {
	s.logger.Error("llm returned invalid response",
		zap.String("provider", s.provider.Name()),
		zap.String("purpose", purpose),
		zap.Error(cause),
		zap.String("raw_response", raw),
	)
	s.observe(purpose, "invalid_response")
	return appErrors.Wrap(cause, appErrors.ErrInvalidUpstreamResponse.Code, appErrors.ErrInvalidUpstreamResponse.Status, message)
}

func (s *GenerationService) observe(purpose, outcome string) {
	if s.metrics != nil {
		s.metrics.RecordLLMOutcome(s.provider.Name(), purpose, outcome)
	}
}

// StripCodeFence removes an optional Markdown code fence around a completion.
func StripCodeFence(text string) string {
	cleaned := strings.TrimSpace(text)
	for _, fence := range []string{"```json", "```"} {
		if !strings.HasPrefix(cleaned, fence) {
			continue
		}
		cleaned = strings.TrimLeftFunc(strings.TrimPrefix(cleaned, fence), unicode.IsSpace)
		cleaned = strings.TrimSuffix(cleaned, "```")
		return strings.TrimRightFunc(cleaned, unicode.IsSpace)
	}
	return cleaned
}

// decodeCompletion parses exactly one JSON document out of a fenced or bare completion.
func decodeCompletion(raw string, dest interface{}) error {
	dec := json.NewDecoder(bytes.NewReader([]byte(StripCodeFence(raw))))
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("decode completion: %w", err)
	}
	if dec.More() {
		return errors.New("decode completion: trailing data after JSON document")
	}
	return nil
}

func validateAccommodations(items models.Accommodations) error {
	if len(items) == 0 {
		return fmt.Errorf("%w: no accommodations", errSchema)
	}
	for i, item := range items {
		switch {
		case strings.TrimSpace(item.Title) == "":
			return fmt.Errorf("%w: accommodation %d has no title", errSchema, i)
		case strings.TrimSpace(item.Description) == "":
			return fmt.Errorf("%w: accommodation %d has no description", errSchema, i)
		case strings.TrimSpace(item.Implementation) == "":
			return fmt.Errorf("%w: accommodation %d has no implementation", errSchema, i)
		case !item.Category.Valid():
			return fmt.Errorf("%w: accommodation %d has unknown category %q", errSchema, i, item.Category)
		}
	}
	return nil
}

// validateInsights requires every list to carry at least one non-blank entry
// and trims the ranked lists to their top entries.
func validateInsights(in *models.ProfileInsights) error {
	lists := []struct {
		name   string
		values *[]string
		top    bool
	}{
		{"topNeeds", &in.TopNeeds, true},
		{"topRecommendations", &in.TopRecommendations, true},
		{"redFlags", &in.RedFlags, true},
		{"helpfulSupports", &in.HelpfulSupports, false},
		{"situationsToAvoid", &in.SituationsToAvoid, false},
		{"classroomTips", &in.ClassroomTips, false},
	}
	for _, list := range lists {
		if len(*list.values) == 0 {
			return fmt.Errorf("%w: %s is empty", errSchema, list.name)
		}
		for i, item := range *list.values {
			if strings.TrimSpace(item) == "" {
				return fmt.Errorf("%w: %s[%d] is blank", errSchema, list.name, i)
			}
		}
		if list.top && len(*list.values) > insightsTopItems {
			*list.values = (*list.values)[:insightsTopItems]
		}
	}
	return nil
}
