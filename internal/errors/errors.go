// Copyright (c) 2025 Garagedoor
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package errors defines typed errors with categories for user-friendly reporting.
// Every cloud or storage failure seen by the auth session and the device controller is
// converted into one of the kinds below before it reaches the CLI, so callers can branch
// on Kind while still printing a human-readable message.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind is a machine-readable error category.
type Kind string

const (
	// NoStoredCredentials is informational: nothing was saved in the keyring yet.
	NoStoredCredentials Kind = "no_stored_credentials"
	// LoginFailed indicates the cloud rejected or could not process a login.
	LoginFailed Kind = "login_failed"
	// CredentialPersistFailed is a non-fatal warning: login worked but saving did not.
	CredentialPersistFailed Kind = "credential_persist_failed"
	// SessionBusy indicates an operation was rejected because one is already in flight.
	SessionBusy Kind = "session_busy"
	// ServiceNotInitialized indicates a command was attempted without a resolved device.
	ServiceNotInitialized Kind = "service_not_initialized"
	// DeviceNotFound indicates discovery completed without a matching device.
	DeviceNotFound Kind = "device_not_found"
	// TransportError indicates the device listing call failed.
	TransportError Kind = "transport_error"
	// CommandFailed indicates a remote function call failed.
	CommandFailed Kind = "command_failed"
)

var descriptions = map[Kind]string{
	NoStoredCredentials:     "no stored credentials",
	LoginFailed:             "login failed",
	CredentialPersistFailed: "credentials could not be saved",
	SessionBusy:             "a sign-in is already in progress",
	ServiceNotInitialized:   "garage door device is not initialized",
	DeviceNotFound:          "garage door device not found",
	TransportError:          "could not reach the device cloud",
	CommandFailed:           "command failed",
}

// E wraps an error with kind and human-friendly message.
// Error returns only the message so that upstream text is shown to users unmodified;
// the kind is available through KindOf and the cause through Unwrap.
type E struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *E) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if d, ok := descriptions[e.Kind]; ok {
		return d
	}
	return string(e.Kind)
}

func (e *E) Unwrap() error { return e.Err }

// Wrap builds an E whose message is the cause's own message.
func Wrap(kind Kind, err error) *E {
	if err == nil {
		return &E{Kind: kind}
	}
	return &E{Kind: kind, Message: err.Error(), Err: err}
}

// New builds an E with msg; an empty msg falls back to the kind's description.
func New(kind Kind, msg string) *E { return &E{Kind: kind, Message: msg} }

// Newf is New with fmt formatting.
func Newf(kind Kind, format string, args ...any) *E {
	return &E{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of the first E in err's chain, or "" when there is none.
func KindOf(err error) Kind {
	var e *E
	if stderrors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
