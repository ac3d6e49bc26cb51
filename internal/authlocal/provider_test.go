package authlocal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "chalak/pkg/domain-errors"
	"chalak/pkg/sentinel"
)

type ProviderSuite struct {
	suite.Suite

	provider *Provider
}

func (s *ProviderSuite) SetupTest() {
	s.provider = NewProvider([]byte("test-signing-key"))
}

func TestProviderSuite(t *testing.T) {
	suite.Run(t, new(ProviderSuite))
}

func (s *ProviderSuite) register(email string) string {
	id, err := s.provider.CreateAccount(context.Background(), email, "secret1", nil)
	s.Require().NoError(err)
	return id
}

func (s *ProviderSuite) confirm(email string) {
	token := s.provider.ConfirmationTokenFor(email)
	s.Require().NotEmpty(token)
	s.Require().NoError(s.provider.ConfirmEmail(context.Background(), token))
}

func (s *ProviderSuite) TestSignInRequiresConfirmation() {
	s.register("hari@example.com")

	_, err := s.provider.SignIn(context.Background(), "hari@example.com", "secret1")
	s.Require().Error(err)
	s.True(dErrors.IsCode(err, dErrors.CodePolicyRefusal))

	s.confirm("hari@example.com")

	session, err := s.provider.SignIn(context.Background(), "hari@example.com", "secret1")
	s.Require().NoError(err)
	s.NotEmpty(session.Token)
	s.True(session.ExpiresAt.After(time.Now()))
}

func (s *ProviderSuite) TestSessionTokenRoundTrip() {
	id := s.register("hari@example.com")
	s.confirm("hari@example.com")

	session, err := s.provider.SignIn(context.Background(), "hari@example.com", "secret1")
	s.Require().NoError(err)

	subject, err := s.provider.VerifySessionToken(session.Token)
	s.Require().NoError(err)
	s.Equal(id, subject)
}

func (s *ProviderSuite) TestExpiredTokenRejected() {
	provider := NewProvider([]byte("test-signing-key"), WithSessionTTL(-time.Minute))
	s.provider = provider
	s.register("hari@example.com")
	s.confirm("hari@example.com")

	session, err := provider.SignIn(context.Background(), "hari@example.com", "secret1")
	s.Require().NoError(err)

	_, err = provider.VerifySessionToken(session.Token)
	s.Require().Error(err)
	s.True(dErrors.IsCode(err, dErrors.CodeUnauthorized))
}

func (s *ProviderSuite) TestWrongPasswordAndUnknownEmailLookAlike() {
	s.register("hari@example.com")
	s.confirm("hari@example.com")

	_, err1 := s.provider.SignIn(context.Background(), "hari@example.com", "wrong-pass")
	_, err2 := s.provider.SignIn(context.Background(), "nobody@example.com", "secret1")
	s.Require().Error(err1)
	s.Require().Error(err2)
	s.Equal(dErrors.MessageOf(err1), dErrors.MessageOf(err2))
}

func (s *ProviderSuite) TestDuplicateEmailConflicts() {
	s.register("hari@example.com")

	_, err := s.provider.CreateAccount(context.Background(), "Hari@Example.com", "other-pass", nil)
	s.Require().ErrorIs(err, sentinel.ErrConflict)
}

func (s *ProviderSuite) TestResendConfirmation() {
	s.register("hari@example.com")
	first := s.provider.ConfirmationTokenFor("hari@example.com")

	second, err := s.provider.ResendConfirmation(context.Background(), "hari@example.com")
	s.Require().NoError(err)
	s.NotEqual(first, second)

	// The replaced token no longer works.
	s.Error(s.provider.ConfirmEmail(context.Background(), first))
	s.NoError(s.provider.ConfirmEmail(context.Background(), second))

	// Once confirmed, further resends are refused.
	_, err = s.provider.ResendConfirmation(context.Background(), "hari@example.com")
	s.Require().Error(err)
}

func (s *ProviderSuite) TestPasswordRecoveryFlow() {
	s.register("hari@example.com")
	s.confirm("hari@example.com")

	token, err := s.provider.StartPasswordRecovery(context.Background(), "hari@example.com")
	s.Require().NoError(err)
	s.Require().NotEmpty(token)

	s.Run("new password must satisfy signup rules", func() {
		err := s.provider.ResetPassword(context.Background(), token, "short", "short")
		s.Require().Error(err)
		s.True(dErrors.IsCode(err, dErrors.CodeValidation))

		err = s.provider.ResetPassword(context.Background(), token, "newsecret", "different")
		s.Require().Error(err)
		s.True(dErrors.IsCode(err, dErrors.CodeValidation))
	})

	s.Require().NoError(s.provider.ResetPassword(context.Background(), token, "newsecret", "newsecret"))

	_, err = s.provider.SignIn(context.Background(), "hari@example.com", "secret1")
	s.Require().Error(err)
	_, err = s.provider.SignIn(context.Background(), "hari@example.com", "newsecret")
	s.Require().NoError(err)
}

func (s *ProviderSuite) TestRecoveryForUnknownEmailIsSilent() {
	token, err := s.provider.StartPasswordRecovery(context.Background(), "nobody@example.com")
	s.Require().NoError(err)
	s.Empty(token)
}
