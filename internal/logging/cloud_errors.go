// Copyright (c) 2025 Garagedoor
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"strings"

	"github.com/pterm/pterm"
)

// CloudErrorType represents the category of a Particle cloud error message.
type CloudErrorType int

const (
	CloudErrorUnknown CloudErrorType = iota
	CloudErrorAuth
	CloudErrorOffline
	CloudErrorTimeout
	CloudErrorMissingFunction
)

// ParseCloudError categorizes a cloud error message.
func ParseCloudError(errMsg string) CloudErrorType {
	lower := strings.ToLower(errMsg)

	switch {
	case strings.Contains(lower, "invalid_token"), strings.Contains(lower, "access token"),
		strings.Contains(lower, "unauthorized"), strings.Contains(lower, "not logged in"):
		return CloudErrorAuth
	case strings.Contains(lower, "function") && strings.Contains(lower, "not found"):
		return CloudErrorMissingFunction
	case strings.Contains(lower, "not connected"), strings.Contains(lower, "offline"):
		return CloudErrorOffline
	case strings.Contains(lower, "timed out"), strings.Contains(lower, "timeout"), strings.Contains(lower, "deadline"):
		return CloudErrorTimeout
	}
	return CloudErrorUnknown
}

// FormatCommandError formats a failed open/close call with a hint for the likely cause.
func FormatCommandError(errMsg string) string {
	var builder strings.Builder

	builder.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Command failed"))
	builder.WriteString("\n\n")

	switch ParseCloudError(errMsg) {
	case CloudErrorAuth:
		builder.WriteString("The Particle cloud no longer accepts this session.\n")
		builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Run 'garagedoor login' and try again"))
	case CloudErrorOffline:
		builder.WriteString("The garage door controller is not connected to the cloud.\n")
		builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Check its power and Wi-Fi, then try again"))
	case CloudErrorTimeout:
		builder.WriteString("The device did not answer in time. It may still have received the command.\n")
		builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Check the door before sending another command"))
	case CloudErrorMissingFunction:
		builder.WriteString("The device firmware does not expose openGarageDoor/closeGarageDoor.\n")
		builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Flash the garage door firmware to this device"))
	default:
		builder.WriteString("The Particle cloud reported an error.\n")
		builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Try again in a moment"))
	}
	builder.WriteString("\n")

	if strings.TrimSpace(errMsg) != "" {
		builder.WriteString("\n")
		builder.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Details: " + Mask(errMsg)))
	}
	return builder.String()
}
