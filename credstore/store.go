package credstore

import "time"

// UserRecord is the last-known identity snapshot reported by the server.
// Fields are display and authorization hints only.
type UserRecord struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Permissions []string  `json:"permissions,omitempty"`
	LastLogin   time.Time `json:"last_login,omitzero"`
}

// Store holds at most one current session. Implementations must be safe for
// concurrent use and must never expose a token without also exposing the
// user stored alongside it (or no user, when the server omitted one).
type Store interface {
	// SetSession stores token and user atomically. A new session discards
	// the previous one. user may be nil when the login response carried no
	// user record; the session validator hydrates it later.
	SetSession(token string, user *UserRecord) error
	// Token returns the current token, or false when no session is stored.
	Token() (string, bool)
	// User returns the last-known user record, or false when absent.
	User() (*UserRecord, bool)
	// Clear removes token and user together. Calling Clear on an empty
	// store is a no-op, never an error.
	Clear() error
}

func cloneUser(u *UserRecord) *UserRecord {
	if u == nil {
		return nil
	}
	out := *u
	if len(u.Permissions) > 0 {
		out.Permissions = append([]string(nil), u.Permissions...)
	}
	return &out
}
