package exam

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"chalak/internal/audit"
	"chalak/internal/platform/metrics"
	"chalak/internal/verification"
	dErrors "chalak/pkg/domain-errors"
	"chalak/pkg/requestcontext"
	"chalak/pkg/sentinel"
)

// Store persists exam attempt state. Absent records are reported with
// sentinel.ErrNotFound.
type Store interface {
	Get(ctx context.Context, userID string) (AttemptState, error)
	Put(ctx context.Context, state AttemptState) error
}

// VerificationSource reports the citizen's verification status. Satisfied by
// the verification service.
type VerificationSource interface {
	StatusOf(ctx context.Context, userID string) (verification.Status, error)
}

// Service enforces exam eligibility and grades attempts.
type Service struct {
	store        Store
	verification VerificationSource
	metrics      *metrics.Metrics
	auditor      audit.Publisher
	logger       *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(p audit.Publisher) Option {
	return func(s *Service) { s.auditor = p }
}

func NewService(store Store, source VerificationSource, m *metrics.Metrics, opts ...Option) *Service {
	s := &Service{
		store:        store,
		verification: source,
		metrics:      m,
		auditor:      audit.NopPublisher{},
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get loads the citizen's attempt state, rendering a missing record as a
// never-attempted one.
func (s *Service) Get(ctx context.Context, userID string) (AttemptState, error) {
	state, err := s.store.Get(ctx, userID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return AttemptState{UserID: userID}, nil
	}
	if err != nil {
		return AttemptState{}, dErrors.Wrap(err, dErrors.CodeInternal, "load exam state")
	}
	return state, nil
}

// Eligibility is the exam gate evaluated for one citizen at one instant.
type Eligibility struct {
	Eligible      bool          `json:"eligible"`
	Reason        RefusalReason `json:"reason,omitempty"`
	RemainingDays int           `json:"remaining_days,omitempty"`
	Badge         string        `json:"badge"`
	State         AttemptState  `json:"state"`
}

// CheckEligibility evaluates the gate without recording anything.
func (s *Service) CheckEligibility(ctx context.Context, userID string) (Eligibility, error) {
	state, err := s.Get(ctx, userID)
	if err != nil {
		return Eligibility{}, err
	}

	status, err := s.verification.StatusOf(ctx, userID)
	if err != nil {
		return Eligibility{}, dErrors.Wrap(err, dErrors.CodeInternal, "check verification status")
	}

	now := requestcontext.Now(ctx)
	el := Eligibility{State: state}
	switch {
	case status != verification.StatusApproved:
		el.Reason = RefusalNotVerified
	case state.Passed:
		el.Reason = RefusalAlreadyPassed
	case state.IsLockedAt(now):
		el.Reason = RefusalLockedOut
		el.RemainingDays = state.RemainingDays(now)
	default:
		el.Eligible = true
	}
	el.Badge = badge(el)
	return el, nil
}

// badge renders the dashboard standing for the citizen's home screen.
func badge(el Eligibility) string {
	switch {
	case el.State.Passed:
		return "Eligible for Trial Exam"
	case el.Reason == RefusalLockedOut:
		return "Not eligible - failed theory exam"
	default:
		return "Awaiting theory exam"
	}
}

// SubmitAttempt grades a finished exam sitting. A passing score is terminal;
// a failing one starts the retake lockout.
func (s *Service) SubmitAttempt(ctx context.Context, userID string, score int) (AttemptState, error) {
	if score < 0 || score > 100 {
		return AttemptState{}, dErrors.New(dErrors.CodeInvalidInput, "Score must be between 0 and 100.")
	}

	el, err := s.CheckEligibility(ctx, userID)
	if err != nil {
		return AttemptState{}, err
	}
	if !el.Eligible {
		s.metrics.ExamAttemptRefused.WithLabelValues(string(el.Reason)).Inc()
		s.publish(ctx, audit.KindExamRefused, userID, map[string]string{
			"reason": string(el.Reason),
		})
		return AttemptState{}, refusalError(el)
	}

	now := requestcontext.Now(ctx)
	state := AttemptState{
		UserID:       userID,
		HasTakenExam: true,
		Score:        score,
		AttemptedAt:  &now,
	}

	result := ResultFailed
	if score >= PassMark {
		state.Passed = true
		result = ResultPassed
	} else {
		lockedUntil := now.Add(lockoutDuration)
		state.LockedUntil = &lockedUntil
	}

	if err := s.store.Put(ctx, state); err != nil {
		return AttemptState{}, dErrors.Wrap(err, dErrors.CodeInternal, "save exam state")
	}

	s.metrics.ExamAttempts.WithLabelValues(string(result)).Inc()
	s.publish(ctx, audit.KindExamAttempt, userID, map[string]string{
		"result": string(result),
		"score":  strconv.Itoa(score),
	})
	s.logger.Info("exam attempt graded",
		"user_id", userID,
		"score", score,
		"result", result,
	)
	return state, nil
}

func refusalError(el Eligibility) error {
	switch el.Reason {
	case RefusalNotVerified:
		return dErrors.New(dErrors.CodePolicyRefusal,
			"Your application must be verified before you can take the exam.")
	case RefusalAlreadyPassed:
		return dErrors.New(dErrors.CodePolicyRefusal,
			"You have already passed the exam.")
	case RefusalLockedOut:
		return dErrors.Newf(dErrors.CodePolicyRefusal,
			"You failed the exam recently. You can retake it in %d days.", el.RemainingDays)
	}
	return dErrors.New(dErrors.CodePolicyRefusal, "You are not eligible to take the exam.")
}

func (s *Service) publish(ctx context.Context, kind audit.Kind, userID string, attrs map[string]string) {
	if err := s.auditor.Publish(ctx, audit.NewEvent(ctx, kind, userID, attrs)); err != nil {
		s.logger.Error(fmt.Sprintf("publish %s audit event", kind), "error", err)
	}
}
