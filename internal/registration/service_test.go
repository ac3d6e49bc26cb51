package registration

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"chalak/internal/audit"
	"chalak/internal/platform/metrics"
	dErrors "chalak/pkg/domain-errors"
	"chalak/pkg/sentinel"
)

type fakeAccounts struct {
	created  []string
	metadata map[string]string
	err      error
}

func (f *fakeAccounts) CreateAccount(_ context.Context, email, _ string, metadata map[string]string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.created = append(f.created, email)
	f.metadata = metadata
	return "user-1", nil
}

type fakeProfiles struct {
	seeded []string
	err    error
}

func (f *fakeProfiles) Seed(_ context.Context, userID string, _ Normalized) error {
	if f.err != nil {
		return f.err
	}
	f.seeded = append(f.seeded, userID)
	return nil
}

type ServiceSuite struct {
	suite.Suite

	accounts *fakeAccounts
	profiles *fakeProfiles
	auditor  *audit.MemoryPublisher
	service  *Service
}

var sharedMetrics = metrics.New()

func (s *ServiceSuite) SetupTest() {
	s.accounts = &fakeAccounts{}
	s.profiles = &fakeProfiles{}
	s.auditor = audit.NewMemoryPublisher()
	s.service = NewService(s.accounts, s.profiles, sharedMetrics,
		WithAuditPublisher(s.auditor))
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) TestRegisterHappyPath() {
	result, err := s.service.Register(testCtx(), validSubmission())
	s.Require().NoError(err)

	s.Equal("user-1", result.UserID)
	s.Equal("hari.sharma@example.com", result.Email)
	s.True(result.ConfirmationPending)

	s.Equal([]string{"hari.sharma@example.com"}, s.accounts.created)
	s.Equal([]string{"user-1"}, s.profiles.seeded)
	s.Equal("Hari", s.accounts.metadata["first_name"])
	s.NotEmpty(s.accounts.metadata["dob_bs"])

	events := s.auditor.Events()
	s.Require().Len(events, 1)
	s.Equal(audit.KindAccountCreated, events[0].Kind)
	s.Equal("user-1", events[0].UserID)
}

func (s *ServiceSuite) TestRegisterValidationFailureSkipsAccountCreation() {
	sub := validSubmission()
	sub.Phone = "123456"

	_, err := s.service.Register(testCtx(), sub)
	s.Require().Error(err)
	s.True(dErrors.IsCode(err, dErrors.CodeValidation))
	s.Equal(RulePhoneInvalid.Message(), dErrors.MessageOf(err))

	s.Empty(s.accounts.created)
	s.Empty(s.profiles.seeded)

	events := s.auditor.Events()
	s.Require().Len(events, 1)
	s.Equal(audit.KindRegistrationRejected, events[0].Kind)
	s.Equal(string(RulePhoneInvalid), events[0].Attrs["rule"])
}

func (s *ServiceSuite) TestRegisterDuplicateEmail() {
	s.accounts.err = sentinel.ErrConflict

	_, err := s.service.Register(testCtx(), validSubmission())
	s.Require().Error(err)
	s.True(dErrors.IsCode(err, dErrors.CodeConflict))
}

func (s *ServiceSuite) TestRegisterSurvivesMissingProfileRelation() {
	s.profiles.err = sentinel.ErrRelationNotFound

	result, err := s.service.Register(testCtx(), validSubmission())
	s.Require().NoError(err)
	s.Equal("user-1", result.UserID)
}

func (s *ServiceSuite) TestRegisterProfileSeedFailure() {
	s.profiles.err = sentinel.ErrUnavailable

	_, err := s.service.Register(testCtx(), validSubmission())
	s.Require().Error(err)
	s.True(dErrors.IsCode(err, dErrors.CodeInternal))
}
