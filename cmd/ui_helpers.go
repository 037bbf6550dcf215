package cmd

import (
	stderrors "errors"
	"strings"

	"garagedoor/cli/internal/auth"
	"garagedoor/cli/internal/config"
	"garagedoor/cli/internal/device"
	"garagedoor/cli/internal/errors"
	"garagedoor/cli/internal/httperrors"
	"garagedoor/cli/internal/logging"
	"garagedoor/cli/internal/particle"

	"github.com/pterm/pterm"
)

// followSpinner shows a spinner whose text tracks the state machine behind subscribe.
// label returns "" for states that should not change the text. The returned function
// stops the spinner and unsubscribes.
func followSpinner[T any](subscribe func(func(T)) func(), initial string, label func(T) string) (stop func()) {
	sp, err := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start(initial)
	if err != nil {
		return func() {}
	}
	unsubscribe := subscribe(func(st T) {
		if text := label(st); text != "" {
			sp.UpdateText(text)
		}
	})
	return func() {
		unsubscribe()
		_ = sp.Stop()
	}
}

func sessionLabel(st auth.State) string {
	switch st.Status {
	case auth.StatusCheckingStored:
		return "Checking saved credentials"
	case auth.StatusSigningIn:
		return "Signing in to the Particle cloud"
	}
	return ""
}

func deviceLabel(st device.State) string {
	switch st.Status {
	case device.StatusDiscovering:
		return "Looking for the garage door device"
	case device.StatusCommandPending:
		if st.Direction == device.Open {
			return "Opening the garage door"
		}
		return "Closing the garage door"
	}
	return ""
}

func printNotLoggedIn() {
	pterm.Println("🔒 You're not logged in yet!")
	pterm.Println("   Run 'garagedoor login' to get started.")
}

// presentLoginError prints a failed sign-in. Connectivity failures get troubleshooting
// help; anything else is the cloud's own message.
func presentLoginError(err error, apiURL string) {
	if httperrors.IsNetworkError(err) {
		_ = httperrors.FormatNetworkError(err, "signing in", apiURL)
		return
	}
	pterm.Error.Println(logging.PresentError("Login failed", err))
}

func presentDeviceError(err error, cfg config.Config) {
	switch {
	case errors.Is(err, errors.DeviceNotFound):
		pterm.Printf("❌ No device named %q on this Particle account\n", cfg.DeviceName)
		pterm.Println("   Run 'garagedoor devices' to see the names the cloud knows about,")
		pterm.Println("   or set device_name in the config file.")
	case httperrors.IsNetworkError(err):
		_ = httperrors.FormatNetworkError(err, "listing devices", cfg.APIURL)
	case stderrors.Is(err, particle.ErrNotLoggedIn):
		printNotLoggedIn()
	default:
		pterm.Error.Println(logging.PresentError("Could not list devices", err))
	}
}

func presentCommandError(err error, apiURL string) {
	if errors.Is(err, errors.ServiceNotInitialized) {
		pterm.Error.Println(err.Error())
		return
	}
	if httperrors.IsNetworkError(err) && !strings.Contains(strings.ToLower(err.Error()), "timed out after") {
		_ = httperrors.FormatNetworkError(err, "sending the command", apiURL)
		return
	}
	pterm.Println(logging.FormatCommandError(err.Error()))
}
