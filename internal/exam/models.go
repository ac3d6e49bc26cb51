package exam

import (
	"math"
	"time"
)

// Grading and lockout policy for the theory exam.
const (
	PassMark        = 80
	lockoutDuration = 90 * 24 * time.Hour
)

// AttemptState is the stored exam history for one citizen. A citizen with no
// record has simply never taken the exam.
type AttemptState struct {
	UserID       string     `json:"user_id"`
	HasTakenExam bool       `json:"has_taken_exam"`
	Passed       bool       `json:"passed"`
	Score        int        `json:"score"`
	AttemptedAt  *time.Time `json:"attempted_at,omitempty"`
	LockedUntil  *time.Time `json:"locked_until,omitempty"`
}

// IsLockedAt reports whether the retake lockout is still in force at now.
// The boundary instant itself is not locked.
func (a AttemptState) IsLockedAt(now time.Time) bool {
	return a.LockedUntil != nil && now.Before(*a.LockedUntil)
}

// RemainingDays returns how many days of lockout remain at now, rounded up
// so a citizen 36 hours from release still sees 2 days. Zero once the
// lockout has lapsed.
func (a AttemptState) RemainingDays(now time.Time) int {
	if !a.IsLockedAt(now) {
		return 0
	}
	remaining := a.LockedUntil.Sub(now)
	return int(math.Ceil(remaining.Hours() / 24))
}

// RefusalReason labels why an attempt was not graded.
type RefusalReason string

const (
	RefusalNotVerified   RefusalReason = "not_verified"
	RefusalAlreadyPassed RefusalReason = "already_passed"
	RefusalLockedOut     RefusalReason = "locked_out"
)

// AttemptResult labels the grading outcome of an accepted attempt.
type AttemptResult string

const (
	ResultPassed AttemptResult = "passed"
	ResultFailed AttemptResult = "failed"
)
