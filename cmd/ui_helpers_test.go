package cmd

import (
	"testing"

	"garagedoor/cli/internal/auth"
	"garagedoor/cli/internal/device"
)

func TestLabels(t *testing.T) {
	if sessionLabel(auth.State{Status: auth.StatusAuthenticated}) != "" {
		t.Error("terminal auth states should not change the spinner text")
	}
	if sessionLabel(auth.State{Status: auth.StatusSigningIn}) == "" {
		t.Error("signing-in should have a label")
	}
	open := deviceLabel(device.State{Status: device.StatusCommandPending, Direction: device.Open})
	closing := deviceLabel(device.State{Status: device.StatusCommandPending, Direction: device.Close})
	if open == "" || closing == "" || open == closing {
		t.Errorf("pending labels = %q / %q", open, closing)
	}
	if deviceLabel(device.State{Status: device.StatusReady}) != "" {
		t.Error("ready should not change the spinner text")
	}
}
