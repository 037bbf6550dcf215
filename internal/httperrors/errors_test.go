package httperrors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"

	"garagedoor/cli/internal/particle"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Class
	}{
		{name: "nil", err: nil, want: ClassNone},
		{name: "deadline", err: fmt.Errorf("list: %w", context.DeadlineExceeded), want: ClassTimeout},
		{name: "dns", err: &net.DNSError{Err: "no such host", Name: "api.particle.io"}, want: ClassDNS},
		{name: "refused", err: &net.OpError{Op: "dial", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}, want: ClassRefused},
		{name: "tls text", err: errors.New("tls: failed to verify certificate"), want: ClassTLS},
		{name: "server", err: &particle.StatusError{Op: "login", Code: 503, Message: "Service Unavailable"}, want: ClassServer},
		{name: "bad password", err: &particle.StatusError{Op: "login", Code: 400, Message: "User credentials are invalid"}, want: ClassNone},
		{name: "device offline", err: errors.New("Device is not connected"), want: ClassNone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
			if IsNetworkError(tt.err) != (tt.want != ClassNone) {
				t.Errorf("IsNetworkError() disagrees with Classify")
			}
		})
	}
}

func TestFormatNetworkErrorWraps(t *testing.T) {
	cause := &net.DNSError{Err: "no such host", Name: "api.particle.io"}
	err := FormatNetworkError(cause, "signing in", "https://api.particle.io")
	var dnsErr *net.DNSError
	if !errors.As(err, &dnsErr) {
		t.Errorf("returned error %v does not wrap the cause", err)
	}
	if FormatNetworkError(nil, "x", "") != nil {
		t.Error("nil error should stay nil")
	}
}

func TestExtractHostFromURL(t *testing.T) {
	if got := ExtractHostFromURL("https://api.particle.io/v1"); got != "api.particle.io" {
		t.Errorf("got %q", got)
	}
	if got := ExtractHostFromURL("::bad"); got != "the Particle cloud" {
		t.Errorf("got %q", got)
	}
}
