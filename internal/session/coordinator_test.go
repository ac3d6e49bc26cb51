package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"chalak/internal/audit"
	"chalak/pkg/requestcontext"
	"chalak/pkg/sentinel"
)

const chromeLinuxUA = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 " +
	"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type failingRoleStore struct{ err error }

func (f *failingRoleStore) RoleOf(context.Context, string) (Role, error) {
	return "", f.err
}

type CoordinatorSuite struct {
	suite.Suite

	roles       *MemoryRoleStore
	auditor     *audit.MemoryPublisher
	coordinator *Coordinator
}

func (s *CoordinatorSuite) SetupTest() {
	s.roles = NewMemoryRoleStore()
	s.auditor = audit.NewMemoryPublisher()
	s.coordinator = NewCoordinator(s.roles, WithAuditPublisher(s.auditor))
}

func TestCoordinatorSuite(t *testing.T) {
	suite.Run(t, new(CoordinatorSuite))
}

func (s *CoordinatorSuite) ctx() context.Context {
	ctx := requestcontext.WithTime(context.Background(),
		time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC))
	return requestcontext.WithUserAgent(ctx, chromeLinuxUA)
}

func (s *CoordinatorSuite) TestSignInHydratesGrantedRole() {
	s.roles.Grant("u1", RoleAdmin)

	state, err := s.coordinator.HandleEvent(s.ctx(), Notification{
		Event: EventSignedIn, UserID: "u1", Email: "admin@example.com",
	})
	s.Require().NoError(err)
	s.Require().NotNil(state)
	s.Equal(RoleAdmin, state.Role)
	s.Equal("Admin", state.RoleLabel)
	s.False(state.RecoveryMode)
	s.Equal("Chrome on Linux", state.Device.Label)
}

func (s *CoordinatorSuite) TestSignInDefaultsToUserRole() {
	state, err := s.coordinator.HandleEvent(s.ctx(), Notification{
		Event: EventSignedIn, UserID: "u2", Email: "citizen@example.com",
	})
	s.Require().NoError(err)
	s.Equal(RoleUser, state.Role)
	s.Equal("User", state.RoleLabel)
}

func (s *CoordinatorSuite) TestMissingRolesRelationDefaultsToUser() {
	coordinator := NewCoordinator(&failingRoleStore{err: sentinel.ErrRelationNotFound})

	state, err := coordinator.HandleEvent(s.ctx(), Notification{
		Event: EventSignedIn, UserID: "u1",
	})
	s.Require().NoError(err)
	s.Equal(RoleUser, state.Role)
}

func (s *CoordinatorSuite) TestRoleLookupFailureDoesNotBlockSignIn() {
	coordinator := NewCoordinator(&failingRoleStore{err: sentinel.ErrUnavailable})

	state, err := coordinator.HandleEvent(s.ctx(), Notification{
		Event: EventSignedIn, UserID: "u1",
	})
	s.Require().NoError(err)
	s.Equal(RoleUser, state.Role)
}

func (s *CoordinatorSuite) TestPasswordRecoveryEntersRecoveryMode() {
	state, err := s.coordinator.HandleEvent(s.ctx(), Notification{
		Event: EventPasswordRecovery, UserID: "u1",
	})
	s.Require().NoError(err)
	s.True(state.RecoveryMode)

	events := s.auditor.Events()
	s.Require().Len(events, 1)
	s.Equal(audit.KindPasswordRecovery, events[0].Kind)
}

func (s *CoordinatorSuite) TestSignOutClearsState() {
	state, err := s.coordinator.HandleEvent(s.ctx(), Notification{
		Event: EventSignedOut, UserID: "u1",
	})
	s.Require().NoError(err)
	s.Nil(state)
}

func (s *CoordinatorSuite) TestUnknownEventRejected() {
	_, err := s.coordinator.HandleEvent(s.ctx(), Notification{
		Event: "mfa_challenge", UserID: "u1",
	})
	s.Require().Error(err)
}

func TestParseDevice(t *testing.T) {
	d := ParseDevice(chromeLinuxUA)
	require.Equal(t, "Chrome", d.Browser)
	assert.Equal(t, "Chrome on Linux", d.Label)
	assert.False(t, d.Mobile)

	assert.Equal(t, "Unknown device", ParseDevice("").Label)
}
