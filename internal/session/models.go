package session

import "time"

// Event is an authentication lifecycle notification from the auth provider.
type Event string

const (
	EventSignedIn         Event = "signed_in"
	EventSignedOut        Event = "signed_out"
	EventTokenRefreshed   Event = "token_refreshed"
	EventPasswordRecovery Event = "password_recovery"
)

func (e Event) IsValid() bool {
	switch e {
	case EventSignedIn, EventSignedOut, EventTokenRefreshed, EventPasswordRecovery:
		return true
	}
	return false
}

// Role is the portal-side authorization level of a signed-in citizen.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Label renders the role for display.
func (r Role) Label() string {
	switch r {
	case RoleAdmin:
		return "Admin"
	default:
		return "User"
	}
}

// Device describes the client a session was opened from.
type Device struct {
	Browser string `json:"browser"`
	OS      string `json:"os"`
	Mobile  bool   `json:"mobile"`
	Label   string `json:"label"`
}

// State is the portal's view of one signed-in citizen.
type State struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	RoleLabel string    `json:"role_label"`
	Device    Device    `json:"device"`
	StartedAt time.Time `json:"started_at"`
	// RecoveryMode is set while the citizen arrived through a password
	// recovery link and must set a new password before doing anything else.
	RecoveryMode bool `json:"recovery_mode"`
}
