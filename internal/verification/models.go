package verification

import "time"

// Status is the lifecycle of a citizen's verification application.
type Status string

const (
	StatusNotSubmitted Status = "not_submitted"
	StatusPending      Status = "pending"
	StatusApproved     Status = "approved"
	StatusRejected     Status = "rejected"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusNotSubmitted, StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Application is the verification record for one citizen. A citizen who has
// never submitted has no stored record; loads render that as
// StatusNotSubmitted.
type Application struct {
	UserID          string     `json:"user_id"`
	Status          Status     `json:"status"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`
	RejectionReason string     `json:"rejection_reason,omitempty"`
}

// Decision is a reviewer's verdict on a pending application.
type Decision struct {
	Approve bool
	// Reason accompanies a rejection so the citizen knows what to fix.
	Reason string
}
