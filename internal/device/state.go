package device

import (
	"fmt"

	"garagedoor/cli/internal/particle"
)

// DefaultName is the device name looked up when none is configured.
const DefaultName = "GarageDoor"

// Firmware function names exposed by the garage door device.
const (
	FunctionOpen  = "openGarageDoor"
	FunctionClose = "closeGarageDoor"
)

// Direction is the command sent to the door.
type Direction int

const (
	Open Direction = iota
	Close
)

func (d Direction) String() string {
	switch d {
	case Open:
		return "open"
	case Close:
		return "close"
	}
	return fmt.Sprintf("direction(%d)", int(d))
}

// FunctionName maps a direction to the firmware function it triggers.
func FunctionName(d Direction) string {
	if d == Close {
		return FunctionClose
	}
	return FunctionOpen
}

// ParseDirection accepts "open" or "close".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "open":
		return Open, nil
	case "close":
		return Close, nil
	}
	return 0, fmt.Errorf("unknown direction %q (want open or close)", s)
}

// Status is the coarse state of a Controller.
type Status int

const (
	StatusUninitialized Status = iota
	StatusDiscovering
	StatusReady
	StatusNotFound
	StatusError
	StatusCommandPending
)

func (s Status) String() string {
	switch s {
	case StatusUninitialized:
		return "uninitialized"
	case StatusDiscovering:
		return "discovering"
	case StatusReady:
		return "ready"
	case StatusNotFound:
		return "not-found"
	case StatusError:
		return "error"
	case StatusCommandPending:
		return "command-pending"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// State is one snapshot of a Controller, as delivered to subscribers.
type State struct {
	Status Status
	// Device is set for StatusReady and StatusCommandPending.
	Device particle.Device
	// Direction is the most recently issued command while StatusCommandPending.
	Direction Direction
	// Err is the discovery error for StatusError, otherwise the last command error.
	Err error
}

func (s State) String() string {
	switch s.Status {
	case StatusReady:
		return fmt.Sprintf("%s(%s)", s.Status, s.Device.ID)
	case StatusCommandPending:
		return fmt.Sprintf("%s(%s)", s.Status, s.Direction)
	}
	return s.Status.String()
}
