package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *E
		want string
	}{
		{
			name: "explicit message wins",
			err:  New(CommandFailed, "Timed out."),
			want: "Timed out.",
		},
		{
			name: "kind description when message empty",
			err:  &E{Kind: ServiceNotInitialized},
			want: "garage door device is not initialized",
		},
		{
			name: "wrap keeps cause text unmodified",
			err:  Wrap(LoginFailed, stderrors.New("User credentials are invalid")),
			want: "User credentials are invalid",
		},
		{
			name: "unknown kind falls back to kind",
			err:  &E{Kind: Kind("custom")},
			want: "custom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKindOfThroughWrapping(t *testing.T) {
	cause := stderrors.New("dial tcp: connection refused")
	err := fmt.Errorf("discover: %w", Wrap(TransportError, cause))

	if got := KindOf(err); got != TransportError {
		t.Errorf("KindOf() = %q, want %q", got, TransportError)
	}
	if !Is(err, TransportError) {
		t.Error("Is(err, TransportError) = false, want true")
	}
	if Is(err, CommandFailed) {
		t.Error("Is(err, CommandFailed) = true, want false")
	}
	if !stderrors.Is(err, cause) {
		t.Error("cause not reachable through Unwrap")
	}
	if KindOf(nil) != "" || Is(nil, TransportError) {
		t.Error("nil error must not carry a kind")
	}
}

func TestNewMessage(t *testing.T) {
	if got := New(SessionBusy, "").Error(); got != "a sign-in is already in progress" {
		t.Errorf("empty message = %q, want the kind description", got)
	}
	if got := New(SessionBusy, "device discovery or a command is already in progress").Error(); got != "device discovery or a command is already in progress" {
		t.Errorf("explicit message = %q", got)
	}
}
