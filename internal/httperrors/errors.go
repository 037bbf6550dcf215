// Copyright (c) 2025 Garagedoor
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors renders Particle cloud connectivity failures for humans.
package httperrors

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"garagedoor/cli/internal/particle"

	"github.com/pterm/pterm"
)

// Class is the kind of connectivity failure.
type Class int

const (
	// ClassNone means the error is not a connectivity failure (e.g. bad password).
	ClassNone Class = iota
	ClassTimeout
	ClassDNS
	ClassRefused
	ClassTLS
	ClassServer
)

// Classify inspects err and its chain.
func Classify(err error) Class {
	if err == nil {
		return ClassNone
	}

	var se *particle.StatusError
	if errors.As(err, &se) {
		if se.Code >= 500 {
			return ClassServer
		}
		return ClassNone
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return ClassTimeout
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return ClassDNS
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return ClassRefused
	}
	var certErr *tls.CertificateVerificationError
	var unknownAuth x509.UnknownAuthorityError
	var hostErr x509.HostnameError
	if errors.As(err, &certErr) || errors.As(err, &unknownAuth) || errors.As(err, &hostErr) {
		return ClassTLS
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "timed out"), strings.Contains(lower, "timeout"):
		return ClassTimeout
	case strings.Contains(lower, "connection refused"):
		return ClassRefused
	case strings.Contains(lower, "tls:"), strings.Contains(lower, "x509:"), strings.Contains(lower, "handshake"):
		return ClassTLS
	}
	return ClassNone
}

// IsNetworkError reports whether err is a connectivity failure rather than an answer
// from the cloud.
func IsNetworkError(err error) bool {
	return Classify(err) != ClassNone
}

// FormatNetworkError prints troubleshooting help for err while doing action (e.g.
// "signing in") and returns err wrapped.
func FormatNetworkError(err error, action, apiURL string) error {
	if err == nil {
		return nil
	}
	host := ExtractHostFromURL(apiURL)

	switch Classify(err) {
	case ClassTimeout:
		pterm.Printf("⏱️  Timed out while %s\n\n", action)
		pterm.Println("The Particle cloud did not answer in time. Check your connection and try again.")
	case ClassDNS:
		pterm.Printf("🌐 Cannot resolve %s while %s\n\n", host, action)
		pterm.Println("Check that you are online and that DNS is not blocked.")
	case ClassRefused:
		pterm.Printf("🚫 Connection refused by %s while %s\n\n", host, action)
		pterm.Println("If you set api_url in the config file, check the address and port.")
	case ClassTLS:
		pterm.Printf("🔒 Secure connection to %s failed while %s\n\n", host, action)
		pterm.Println("Check the system clock and any HTTPS proxy in between.")
	case ClassServer:
		pterm.Printf("⚠️  The Particle cloud reported a server error while %s\n\n", action)
		pterm.Println("This is not a problem with your setup. Try again in a few minutes.")
	default:
		pterm.Printf("❌ Cannot reach %s while %s\n", host, action)
	}
	pterm.Println()

	details := err.Error()
	if len(details) > 100 {
		details = details[:100] + "..."
	}
	pterm.Debug.Printf("Technical details: %s\n", details)
	return fmt.Errorf("network error: %w", err)
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "the Particle cloud"
	}
	return u.Host
}
