package entity

import "time"

// SessionStatus is what the facade reports about the shared market login.
type SessionStatus struct {
	LoggedIn  bool
	Username  string
	ExpiresAt time.Time
}

// LoginResult mirrors the outcome of a login attempt. Failures are values,
// not errors, so the facade can always answer with {success, message}.
type LoginResult struct {
	Success  bool
	Message  string
	Token    string
	Username string
}

// SignInReply is the raw outcome of the upstream signin call.
type SignInReply struct {
	StatusCode   int
	Token        string
	Username     string
	ErrorMessage string
}
