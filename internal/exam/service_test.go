package exam

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"chalak/internal/audit"
	"chalak/internal/platform/metrics"
	"chalak/internal/verification"
	dErrors "chalak/pkg/domain-errors"
	"chalak/pkg/requestcontext"
)

var sharedMetrics = metrics.New()

type fakeVerification struct {
	status verification.Status
}

func (f *fakeVerification) StatusOf(context.Context, string) (verification.Status, error) {
	return f.status, nil
}

type ServiceSuite struct {
	suite.Suite

	store        *MemoryStore
	verification *fakeVerification
	service      *Service
}

func (s *ServiceSuite) SetupTest() {
	s.store = NewMemoryStore()
	s.verification = &fakeVerification{status: verification.StatusApproved}
	s.service = NewService(s.store, s.verification, sharedMetrics,
		WithAuditPublisher(audit.NewMemoryPublisher()))
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

var examDay = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func ctxAt(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}

func (s *ServiceSuite) TestPassingScoreIsTerminal() {
	state, err := s.service.SubmitAttempt(ctxAt(examDay), "u1", 85)
	s.Require().NoError(err)
	s.True(state.Passed)
	s.Nil(state.LockedUntil)

	// A second sitting is refused even with a perfect score.
	_, err = s.service.SubmitAttempt(ctxAt(examDay.Add(time.Hour)), "u1", 100)
	s.Require().Error(err)
	s.True(dErrors.IsCode(err, dErrors.CodePolicyRefusal))
}

func (s *ServiceSuite) TestExactPassMarkPasses() {
	state, err := s.service.SubmitAttempt(ctxAt(examDay), "u1", PassMark)
	s.Require().NoError(err)
	s.True(state.Passed)
}

func (s *ServiceSuite) TestFailureLocksForNinetyDays() {
	state, err := s.service.SubmitAttempt(ctxAt(examDay), "u1", 79)
	s.Require().NoError(err)
	s.True(state.HasTakenExam)
	s.False(state.Passed)
	s.Require().NotNil(state.LockedUntil)
	s.Equal(examDay.Add(90*24*time.Hour), *state.LockedUntil)
}

func (s *ServiceSuite) TestLockoutBoundary() {
	state, err := s.service.SubmitAttempt(ctxAt(examDay), "u1", 40)
	s.Require().NoError(err)
	lockedUntil := *state.LockedUntil

	// One second before release the retake is still refused.
	_, err = s.service.SubmitAttempt(ctxAt(lockedUntil.Add(-time.Second)), "u1", 90)
	s.Require().Error(err)
	s.True(dErrors.IsCode(err, dErrors.CodePolicyRefusal))

	// At the release instant the citizen may sit again.
	retake, err := s.service.SubmitAttempt(ctxAt(lockedUntil), "u1", 90)
	s.Require().NoError(err)
	s.True(retake.Passed)
}

func (s *ServiceSuite) TestRefusedWithoutApprovedVerification() {
	s.verification.status = verification.StatusPending

	_, err := s.service.SubmitAttempt(ctxAt(examDay), "u1", 95)
	s.Require().Error(err)
	s.True(dErrors.IsCode(err, dErrors.CodePolicyRefusal))

	el, err := s.service.CheckEligibility(ctxAt(examDay), "u1")
	s.Require().NoError(err)
	s.False(el.Eligible)
	s.Equal(RefusalNotVerified, el.Reason)
}

func (s *ServiceSuite) TestEligibilityReportsRemainingDays() {
	state, err := s.service.SubmitAttempt(ctxAt(examDay), "u1", 10)
	s.Require().NoError(err)

	// 36 hours before release rounds up to 2 days.
	el, err := s.service.CheckEligibility(ctxAt(state.LockedUntil.Add(-36*time.Hour)), "u1")
	s.Require().NoError(err)
	s.False(el.Eligible)
	s.Equal(RefusalLockedOut, el.Reason)
	s.Equal(2, el.RemainingDays)
	s.Equal("Not eligible - failed theory exam", el.Badge)
}

func (s *ServiceSuite) TestBadgeProgression() {
	el, err := s.service.CheckEligibility(ctxAt(examDay), "u1")
	s.Require().NoError(err)
	s.Equal("Awaiting theory exam", el.Badge)

	_, err = s.service.SubmitAttempt(ctxAt(examDay), "u1", 95)
	s.Require().NoError(err)

	el, err = s.service.CheckEligibility(ctxAt(examDay.Add(time.Hour)), "u1")
	s.Require().NoError(err)
	s.Equal("Eligible for Trial Exam", el.Badge)
}

func (s *ServiceSuite) TestScoreOutOfRange() {
	_, err := s.service.SubmitAttempt(ctxAt(examDay), "u1", 101)
	s.Require().Error(err)
	s.True(dErrors.IsCode(err, dErrors.CodeInvalidInput))

	_, err = s.service.SubmitAttempt(ctxAt(examDay), "u1", -1)
	s.Require().Error(err)
	s.True(dErrors.IsCode(err, dErrors.CodeInvalidInput))
}

func TestRemainingDays(t *testing.T) {
	lockedUntil := examDay.Add(90 * 24 * time.Hour)
	state := AttemptState{HasTakenExam: true, LockedUntil: &lockedUntil}

	assert.Equal(t, 90, state.RemainingDays(examDay))
	assert.Equal(t, 1, state.RemainingDays(lockedUntil.Add(-time.Second)))
	assert.Equal(t, 0, state.RemainingDays(lockedUntil))
	assert.Equal(t, 2, state.RemainingDays(lockedUntil.Add(-36*time.Hour)))
}

func TestIsLockedAtBoundary(t *testing.T) {
	lockedUntil := examDay.Add(90 * 24 * time.Hour)
	state := AttemptState{LockedUntil: &lockedUntil}

	assert.True(t, state.IsLockedAt(lockedUntil.Add(-time.Second)))
	assert.False(t, state.IsLockedAt(lockedUntil))
	assert.False(t, state.IsLockedAt(lockedUntil.Add(time.Second)))
	assert.False(t, AttemptState{}.IsLockedAt(examDay))
}
