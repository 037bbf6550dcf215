package auth

import "fmt"

// Status is the coarse sign-in state of a Session.
type Status int

const (
	// StatusUninitialized is the state before stored credentials were checked.
	StatusUninitialized Status = iota
	// StatusCheckingStored means the credential store is being read.
	StatusCheckingStored
	// StatusSigningIn means a login call is in flight.
	StatusSigningIn
	// StatusAuthenticated means the last login succeeded.
	StatusAuthenticated
	// StatusUnauthenticated means there is no session; see State.Reason.
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusCheckingStored:
		return "checking-stored"
	case StatusSigningIn:
		return "signing-in"
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// Reason explains an Unauthenticated state.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonNoStoredCredentials
	ReasonLoginFailed
	ReasonSignedOut
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return ""
	case ReasonNoStoredCredentials:
		return "no-stored-credentials"
	case ReasonLoginFailed:
		return "login-failed"
	case ReasonSignedOut:
		return "signed-out"
	}
	return fmt.Sprintf("reason(%d)", int(r))
}

// State is one snapshot of a Session. It is what subscribers receive.
type State struct {
	Status Status
	// Reason is set only for StatusUnauthenticated.
	Reason Reason
	// CredentialsPersisted is meaningful only for StatusAuthenticated.
	CredentialsPersisted bool
	// FromStored marks a sign-in started from stored credentials by Initialize.
	FromStored bool
	// Err is the LoginFailed error for ReasonLoginFailed, or the non-fatal
	// CredentialPersistFailed warning for StatusAuthenticated.
	Err error
}

func (s State) String() string {
	if s.Status == StatusUnauthenticated {
		return fmt.Sprintf("%s(%s)", s.Status, s.Reason)
	}
	if s.Status == StatusAuthenticated {
		return fmt.Sprintf("%s(persisted=%t)", s.Status, s.CredentialsPersisted)
	}
	return s.Status.String()
}

// Credentials is a Particle username/password pair.
// String never reveals the password.
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) String() string {
	return c.Username + ":***"
}
