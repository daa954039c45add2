package usecase

import (
	"context"
	"errors"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"character-chat/internal/domain"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const unknownUserAgent = "unknown"

// CollectionRepository appends email captures and survey answers. Duplicate
// emails are reported as domain.ErrDuplicate.
type CollectionRepository interface {
	SaveEmail(ctx context.Context, rec domain.EmailRecord) (domain.EmailRecord, error)
	SaveSurvey(ctx context.Context, resp domain.SurveyResponse) (domain.SurveyResponse, error)
	Backend() string
}

// ClientInfo carries the request metadata recorded alongside submissions.
type ClientInfo struct {
	UserAgent    string
	ForwardedFor string
	RealIP       string
}

type EmailInput struct {
	Email  string
	Client ClientInfo
}

// SurveyInput.SelectedFeatures must be non-nil; an empty slice is a valid
// "nothing selected" answer.
type SurveyInput struct {
	SelectedFeatures []string
	CustomInput      string
	Client           ClientInfo
}

type CollectionHealth struct {
	StoreConfigured bool      `json:"storeConfigured"`
	Backend         string    `json:"backend"`
	Environment     string    `json:"environment"`
	Timestamp       time.Time `json:"timestamp"`
}

// CollectService validates and stores promotional form submissions. A nil
// repository means the store is not configured.
type CollectService struct {
	repo        CollectionRepository
	environment string
	now         func() time.Time
}

func NewCollectService(repo CollectionRepository, environment string) *CollectService {
	if strings.TrimSpace(environment) == "" {
		environment = "unknown"
	}
	return &CollectService{repo: repo, environment: environment, now: time.Now}
}

func (s *CollectService) SubmitEmail(ctx context.Context, in EmailInput) (domain.EmailRecord, error) {
	start := time.Now()
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" {
		return domain.EmailRecord{}, newError(ErrorInvalidInput, "empty_email", nil)
	}
	if !emailPattern.MatchString(email) {
		return domain.EmailRecord{}, newError(ErrorInvalidInput, "invalid_email", nil)
	}
	if s.repo == nil {
		slog.Error("email collection store not configured")
		return domain.EmailRecord{}, newError(ErrorBackendUnavailable, "store_not_configured", nil)
	}

	userAgent := strings.TrimSpace(in.Client.UserAgent)
	if userAgent == "" {
		userAgent = unknownUserAgent
	}
	rec, err := s.repo.SaveEmail(ctx, domain.EmailRecord{
		ID:        newUUID(),
		Email:     email,
		Source:    domain.EmailSourcePaymentPopup,
		UserAgent: userAgent,
		IPAddress: clientIP(in.Client),
		CreatedAt: s.now().UTC(),
	})
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		if errors.Is(err, domain.ErrDuplicate) {
			slog.Warn("duplicate email submitted", "backend", s.repo.Backend(), "elapsed_ms", elapsed)
			return domain.EmailRecord{}, newError(ErrorConflict, "duplicate_email", err)
		}
		slog.Error("email store failed", "backend", s.repo.Backend(), "elapsed_ms", elapsed, "err", err)
		return domain.EmailRecord{}, newError(ErrorBackendUnavailable, "store_error", err)
	}
	slog.Info("email stored", "backend", s.repo.Backend(), "id", rec.ID, "elapsed_ms", elapsed)
	return rec, nil
}

func (s *CollectService) SubmitSurvey(ctx context.Context, in SurveyInput) (domain.SurveyResponse, error) {
	start := time.Now()
	if in.SelectedFeatures == nil {
		return domain.SurveyResponse{}, newError(ErrorInvalidInput, "invalid_selected_features", nil)
	}
	if s.repo == nil {
		slog.Error("survey store not configured")
		return domain.SurveyResponse{}, newError(ErrorBackendUnavailable, "store_not_configured", nil)
	}

	features := make([]string, len(in.SelectedFeatures))
	copy(features, in.SelectedFeatures)
	resp, err := s.repo.SaveSurvey(ctx, domain.SurveyResponse{
		ID:               newUUID(),
		SelectedFeatures: features,
		CustomInput:      optional(in.CustomInput),
		UserAgent:        optional(in.Client.UserAgent),
		IPAddress:        clientIP(in.Client),
		CreatedAt:        s.now().UTC(),
	})
	elapsed := time.Since(start).Milliseconds()
	if err != nil {
		slog.Error("survey store failed", "backend", s.repo.Backend(), "elapsed_ms", elapsed, "err", err)
		return domain.SurveyResponse{}, newError(ErrorBackendUnavailable, "store_error", err)
	}
	slog.Info("survey stored", "backend", s.repo.Backend(), "id", resp.ID, "features", len(features), "elapsed_ms", elapsed)
	return resp, nil
}

func (s *CollectService) Health(_ context.Context) CollectionHealth {
	h := CollectionHealth{
		StoreConfigured: s.repo != nil,
		Environment:     s.environment,
		Timestamp:       s.now().UTC(),
	}
	if s.repo != nil {
		h.Backend = s.repo.Backend()
	}
	return h
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP.
func clientIP(c ClientInfo) *string {
	if fwd := strings.TrimSpace(c.ForwardedFor); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if first = strings.TrimSpace(first); first != "" {
			return &first
		}
	}
	return optional(c.RealIP)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
