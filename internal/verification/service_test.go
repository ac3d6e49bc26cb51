package verification

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"chalak/internal/audit"
	"chalak/internal/platform/metrics"
	dErrors "chalak/pkg/domain-errors"
	"chalak/pkg/requestcontext"
)

var sharedMetrics = metrics.New()

type fakeCompletion struct {
	percent int
	err     error
}

func (f *fakeCompletion) CompletionOf(context.Context, string) (int, error) {
	return f.percent, f.err
}

type ServiceSuite struct {
	suite.Suite

	store      *MemoryStore
	completion *fakeCompletion
	auditor    *audit.MemoryPublisher
	service    *Service
}

func (s *ServiceSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.completion = &fakeCompletion{percent: 100}
	s.auditor = audit.NewMemoryPublisher()
	s.service = NewService(s.store, s.completion, sharedMetrics,
		WithAuditPublisher(s.auditor))
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) ctx() context.Context {
	return requestcontext.WithTime(context.Background(),
		time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC))
}

func (s *ServiceSuite) TestFreshCitizenIsNotSubmitted() {
	app, err := s.service.Get(s.ctx(), "u1")
	s.Require().NoError(err)
	s.Equal(StatusNotSubmitted, app.Status)
	s.Nil(app.SubmittedAt)
}

func (s *ServiceSuite) TestSubmitWithCompleteProfile() {
	app, err := s.service.Submit(s.ctx(), "u1")
	s.Require().NoError(err)
	s.Equal(StatusPending, app.Status)
	s.Require().NotNil(app.SubmittedAt)
	s.Equal(time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC), *app.SubmittedAt)
}

func (s *ServiceSuite) TestSubmitRefusedBelowFullCompletion() {
	s.completion.percent = 67

	_, err := s.service.Submit(s.ctx(), "u1")
	s.Require().Error(err)
	s.True(dErrors.IsCode(err, dErrors.CodePolicyRefusal))
	s.Contains(dErrors.MessageOf(err), "67%")

	app, err := s.service.Get(s.ctx(), "u1")
	s.Require().NoError(err)
	s.Equal(StatusNotSubmitted, app.Status)
}

func (s *ServiceSuite) TestResubmitWhilePendingIsIdempotent() {
	first, err := s.service.Submit(s.ctx(), "u1")
	s.Require().NoError(err)

	// Even if the profile later drops below 100%, the pending submission
	// stays untouched.
	s.completion.percent = 33
	second, err := s.service.Submit(s.ctx(), "u1")
	s.Require().NoError(err)
	s.Equal(first, second)
	s.Len(s.auditor.Events(), 1)
}

func (s *ServiceSuite) TestSubmitRefusedAfterApproval() {
	_, err := s.service.Submit(s.ctx(), "u1")
	s.Require().NoError(err)
	_, err = s.service.ApplyDecision(s.ctx(), "u1", Decision{Approve: true})
	s.Require().NoError(err)

	_, err = s.service.Submit(s.ctx(), "u1")
	s.Require().Error(err)
	s.True(dErrors.IsCode(err, dErrors.CodePolicyRefusal))
}

func (s *ServiceSuite) TestRejectionCarriesReasonAndAllowsResubmit() {
	_, err := s.service.Submit(s.ctx(), "u1")
	s.Require().NoError(err)

	app, err := s.service.ApplyDecision(s.ctx(), "u1", Decision{
		Reason: "Citizenship scan is unreadable.",
	})
	s.Require().NoError(err)
	s.Equal(StatusRejected, app.Status)
	s.Equal("Citizenship scan is unreadable.", app.RejectionReason)
	s.NotNil(app.DecidedAt)

	// A rejected citizen fixes the profile and goes again.
	app, err = s.service.Submit(s.ctx(), "u1")
	s.Require().NoError(err)
	s.Equal(StatusPending, app.Status)
}

func (s *ServiceSuite) TestApprovalClearsStaleRejectionReason() {
	_, err := s.service.Submit(s.ctx(), "u1")
	s.Require().NoError(err)
	_, err = s.service.ApplyDecision(s.ctx(), "u1", Decision{Reason: "blurry photo"})
	s.Require().NoError(err)

	app, err := s.service.ApplyDecision(s.ctx(), "u1", Decision{Approve: true})
	s.Require().NoError(err)
	s.Equal(StatusApproved, app.Status)
	s.Empty(app.RejectionReason)
}
