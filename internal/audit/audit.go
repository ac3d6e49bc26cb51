// Package audit records security-relevant portal events: account creation,
// verification decisions, exam attempts, session transitions. Services treat
// the publisher as fire-and-forget; a failed publish is logged by the
// implementation and never fails the triggering operation.
package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"chalak/pkg/requestcontext"
)

// Kind labels the category of an audit event.
type Kind string

const (
	KindAccountCreated       Kind = "account.created"
	KindRegistrationRejected Kind = "registration.rejected"
	KindProfileUpdated       Kind = "profile.updated"
	KindDocumentUploaded     Kind = "document.uploaded"
	KindDocumentRejected     Kind = "document.rejected"
	KindVerificationSubmit   Kind = "verification.submitted"
	KindVerificationDecided  Kind = "verification.decided"
	KindExamAttempt          Kind = "exam.attempted"
	KindExamRefused          Kind = "exam.refused"
	KindSessionEvent         Kind = "session.event"
	KindPasswordRecovery     Kind = "password.recovery"
)

// Event is one audit record. Attrs carries event-specific detail as flat
// string pairs so every sink can serialize it the same way.
type Event struct {
	ID         string            `json:"id"`
	Kind       Kind              `json:"kind"`
	UserID     string            `json:"user_id,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
	Attrs      map[string]string `json:"attrs,omitempty"`
}

// NewEvent stamps an event with an identifier and the request time.
func NewEvent(ctx context.Context, kind Kind, userID string, attrs map[string]string) Event {
	return Event{
		ID:         uuid.NewString(),
		Kind:       kind,
		UserID:     userID,
		OccurredAt: requestcontext.Now(ctx),
		Attrs:      attrs,
	}
}

// Publisher delivers audit events to a sink.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// NopPublisher drops every event. It is the default wired into services when
// no sink is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }

// MemoryPublisher retains events in order. Test use only.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

func (p *MemoryPublisher) Publish(_ context.Context, event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Events returns a copy of everything published so far.
func (p *MemoryPublisher) Events() []Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Event, len(p.events))
	copy(out, p.events)
	return out
}
