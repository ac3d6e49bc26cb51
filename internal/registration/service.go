package registration

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"chalak/internal/audit"
	"chalak/internal/platform/metrics"
	dErrors "chalak/pkg/domain-errors"
	"chalak/pkg/sentinel"
)

// AccountProvider creates the credential-side account for a validated
// submission and reports the new account's identifier.
type AccountProvider interface {
	CreateAccount(ctx context.Context, email, password string, metadata map[string]string) (string, error)
}

// ProfileSeeder persists the initial profile row derived from the signup
// metadata so the citizen lands on a partially filled profile.
type ProfileSeeder interface {
	Seed(ctx context.Context, userID string, reg Normalized) error
}

// Service runs the signup flow: validate, create the account, seed the
// profile. Validation failures never reach the account provider.
type Service struct {
	pipeline *Pipeline
	accounts AccountProvider
	profiles ProfileSeeder
	metrics  *metrics.Metrics
	auditor  audit.Publisher
	logger   *slog.Logger
}

// Option configures optional collaborators on the Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) { s.auditor = p }
}

func NewService(accounts AccountProvider, profiles ProfileSeeder, m *metrics.Metrics, opts ...Option) *Service {
	s := &Service{
		pipeline: NewPipeline(),
		accounts: accounts,
		profiles: profiles,
		metrics:  m,
		auditor:  audit.NopPublisher{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Result is the outcome of a successful registration.
type Result struct {
	UserID string
	Email  string
	// ConfirmationPending indicates the account exists but cannot sign in
	// until the emailed confirmation link is followed.
	ConfirmationPending bool
}

// Register validates the submission and creates the account. The returned
// error for a failed rule carries the rule's fixed user-facing message.
func (s *Service) Register(ctx context.Context, sub Submission) (Result, error) {
	normalized, violation := s.pipeline.Validate(ctx, sub)
	if violation != nil {
		s.metrics.RegistrationsRejected.WithLabelValues(string(violation.Rule)).Inc()
		s.publish(ctx, audit.KindRegistrationRejected, "", map[string]string{
			"rule": string(violation.Rule),
		})
		return Result{}, dErrors.New(dErrors.CodeValidation, violation.Rule.Message())
	}

	userID, err := s.accounts.CreateAccount(ctx, normalized.Email, normalized.Password, normalized.Metadata())
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return Result{}, dErrors.New(dErrors.CodeConflict, "An account with this email already exists.")
		}
		return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "create account")
	}

	if err := s.profiles.Seed(ctx, userID, normalized); err != nil {
		// A missing profile relation is survivable at signup time. The
		// account exists; the profile fills in on first edit.
		if !errors.Is(err, sentinel.ErrRelationNotFound) {
			return Result{}, dErrors.Wrap(err, dErrors.CodeInternal, "seed profile")
		}
		s.logger.Warn("profile relation unavailable, account created without seed",
			"user_id", userID,
		)
	}

	s.metrics.RegistrationsAccepted.Inc()
	s.publish(ctx, audit.KindAccountCreated, userID, map[string]string{
		"email": normalized.Email,
	})
	s.logger.Info("account created",
		"user_id", userID,
		"age", normalized.Age,
	)

	return Result{UserID: userID, Email: normalized.Email, ConfirmationPending: true}, nil
}

func (s *Service) publish(ctx context.Context, kind audit.Kind, userID string, attrs map[string]string) {
	if err := s.auditor.Publish(ctx, audit.NewEvent(ctx, kind, userID, attrs)); err != nil {
		s.logger.Error(fmt.Sprintf("publish %s audit event", kind), "error", err)
	}
}
