package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"chalak/internal/audit"
	dErrors "chalak/pkg/domain-errors"
	"chalak/pkg/requestcontext"
	"chalak/pkg/sentinel"
)

// RoleStore looks up a citizen's portal role. Absent rows and a missing
// roles relation both mean "no elevated role was ever granted".
type RoleStore interface {
	RoleOf(ctx context.Context, userID string) (Role, error)
}

// Coordinator turns auth provider events into portal session state, with
// role hydration.
type Coordinator struct {
	roles   RoleStore
	auditor audit.Publisher
	logger  *slog.Logger
}

type Option func(*Coordinator)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) { c.logger = logger }
}

func WithAuditPublisher(p audit.Publisher) Option {
	return func(c *Coordinator) { c.auditor = p }
}

func NewCoordinator(roles RoleStore, opts ...Option) *Coordinator {
	c := &Coordinator{
		roles:   roles,
		auditor: audit.NopPublisher{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Notification is one auth event with its session payload.
type Notification struct {
	Event  Event
	UserID string
	Email  string
}

// HandleEvent processes one auth notification and returns the resulting
// session state. Sign-out and unknown sessions yield a nil state.
func (c *Coordinator) HandleEvent(ctx context.Context, n Notification) (*State, error) {
	if !n.Event.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeInvalidInput, "unknown session event %q", n.Event)
	}

	if n.Event == EventSignedOut {
		c.publish(ctx, audit.KindSessionEvent, n.UserID, map[string]string{
			"event": string(n.Event),
		})
		return nil, nil
	}

	if n.UserID == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "session event without a user")
	}

	state := &State{
		UserID:    n.UserID,
		Email:     n.Email,
		Role:      c.hydrateRole(ctx, n.UserID),
		Device:    ParseDevice(requestcontext.UserAgent(ctx)),
		StartedAt: requestcontext.Now(ctx),
	}
	state.RoleLabel = state.Role.Label()

	switch n.Event {
	case EventPasswordRecovery:
		state.RecoveryMode = true
		c.publish(ctx, audit.KindPasswordRecovery, n.UserID, nil)
	case EventSignedIn:
		c.publish(ctx, audit.KindSessionEvent, n.UserID, map[string]string{
			"event":  string(n.Event),
			"device": state.Device.Label,
		})
	}
	return state, nil
}

// hydrateRole resolves the citizen's role, defaulting to RoleUser when the
// role row or the whole relation is missing. Lookup failures also default
// rather than blocking sign-in.
func (c *Coordinator) hydrateRole(ctx context.Context, userID string) Role {
	role, err := c.roles.RoleOf(ctx, userID)
	if err != nil {
		if !errors.Is(err, sentinel.ErrNotFound) && !errors.Is(err, sentinel.ErrRelationNotFound) {
			c.logger.Warn("role lookup failed, defaulting to user",
				"user_id", userID,
				"error", err,
			)
		}
		return RoleUser
	}
	if role == "" {
		return RoleUser
	}
	return role
}

func (c *Coordinator) publish(ctx context.Context, kind audit.Kind, userID string, attrs map[string]string) {
	if err := c.auditor.Publish(ctx, audit.NewEvent(ctx, kind, userID, attrs)); err != nil {
		c.logger.Error(fmt.Sprintf("publish %s audit event", kind), "error", err)
	}
}
