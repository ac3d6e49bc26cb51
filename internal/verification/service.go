package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"chalak/internal/audit"
	"chalak/internal/platform/metrics"
	dErrors "chalak/pkg/domain-errors"
	"chalak/pkg/requestcontext"
	"chalak/pkg/sentinel"
)

// Store persists verification applications. Absent records are reported with
// sentinel.ErrNotFound.
type Store interface {
	Get(ctx context.Context, userID string) (Application, error)
	Put(ctx context.Context, app Application) error
}

// CompletionSource reports how much of the citizen's profile is filled in.
// Satisfied by the profile service.
type CompletionSource interface {
	CompletionOf(ctx context.Context, userID string) (int, error)
}

// Service gates submission on profile completion and applies reviewer
// decisions.
type Service struct {
	store      Store
	completion CompletionSource
	metrics    *metrics.Metrics
	auditor    audit.Publisher
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) { s.auditor = p }
}

func NewService(store Store, completion CompletionSource, m *metrics.Metrics, opts ...Option) *Service {
	s := &Service{
		store:      store,
		completion: completion,
		metrics:    m,
		auditor:    audit.NopPublisher{},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get loads the citizen's application, rendering a missing record as a fresh
// not-submitted one.
func (s *Service) Get(ctx context.Context, userID string) (Application, error) {
	app, err := s.store.Get(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Application{UserID: userID, Status: StatusNotSubmitted}, nil
	}
	if err != nil {
		return Application{}, dErrors.Wrap(err, dErrors.CodeInternal, "load verification state")
	}
	return app, nil
}

// StatusOf reports the citizen's current verification status.
func (s *Service) StatusOf(ctx context.Context, userID string) (Status, error) {
	app, err := s.Get(ctx, userID)
	if err != nil {
		return "", err
	}
	return app.Status, nil
}

// Submit places the application in the review queue. It refuses while the
// profile is incomplete and after an approval; re-submitting while pending
// is accepted without effect, and a rejected citizen may submit again.
func (s *Service) Submit(ctx context.Context, userID string) (Application, error) {
	app, err := s.Get(ctx, userID)
	if err != nil {
		return Application{}, err
	}

	switch app.Status {
	case StatusApproved:
		return Application{}, dErrors.New(dErrors.CodePolicyRefusal,
			"Your application has already been approved.")
	case StatusPending:
		return app, nil
	}

	percent, err := s.completion.CompletionOf(ctx, userID)
	if err != nil {
		return Application{}, dErrors.Wrap(err, dErrors.CodeInternal, "check profile completion")
	}
	if percent < 100 {
		return Application{}, dErrors.Newf(dErrors.CodePolicyRefusal,
			"Please complete your profile before submitting for verification. Your profile is %d%% complete.", percent)
	}

	now := requestcontext.Now(ctx)
	app = Application{UserID: userID, Status: StatusPending, SubmittedAt: &now}
	if err := s.store.Put(ctx, app); err != nil {
		return Application{}, dErrors.Wrap(err, dErrors.CodeInternal, "save verification state")
	}

	s.metrics.VerificationSubmissions.Inc()
	s.publish(ctx, audit.KindVerificationSubmit, userID, nil)
	s.logger.Info("verification submitted", "user_id", userID)
	return app, nil
}

// ApplyDecision records a reviewer verdict. Decisions come from the
// government office's own queue and are applied regardless of the currently
// stored status; the office is authoritative.
func (s *Service) ApplyDecision(ctx context.Context, userID string, d Decision) (Application, error) {
	app, err := s.Get(ctx, userID)
	if err != nil {
		return Application{}, err
	}

	now := requestcontext.Now(ctx)
	app.UserID = userID
	app.DecidedAt = &now
	if d.Approve {
		app.Status = StatusApproved
		app.RejectionReason = ""
	} else {
		app.Status = StatusRejected
		app.RejectionReason = d.Reason
	}

	if err := s.store.Put(ctx, app); err != nil {
		return Application{}, dErrors.Wrap(err, dErrors.CodeInternal, "save verification decision")
	}

	s.metrics.VerificationDecisions.WithLabelValues(string(app.Status)).Inc()
	s.publish(ctx, audit.KindVerificationDecided, userID, map[string]string{
		"outcome": string(app.Status),
	})
	return app, nil
}

func (s *Service) publish(ctx context.Context, kind audit.Kind, userID string, attrs map[string]string) {
	if err := s.auditor.Publish(ctx, audit.NewEvent(ctx, kind, userID, attrs)); err != nil {
		s.logger.Error(fmt.Sprintf("publish %s audit event", kind), "error", err)
	}
}
