package cmd

import (
	"fmt"
	"strings"

	"garagedoor/cli/internal/auth"
	"garagedoor/cli/internal/device"
	"garagedoor/cli/internal/keychain"
	"garagedoor/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// statusCmd reports what the mobile app's start screen showed: whether a session can
// be restored and whether the door device is reachable.
var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"whoami"},
	Short:   "Show sign-in and device status",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		stop := followSpinner(a.session.Subscribe, "Checking saved credentials", sessionLabel)
		_ = a.session.Initialize(ctx)
		stop()

		var lines []string
		add := func(k, v string) {
			lines = append(lines, pterm.NewStyle(pterm.FgLightCyan).Sprint(k)+v)
		}

		st := a.session.State()
		user, _ := a.store.Get(keychain.KeyUsername)
		switch {
		case st.Status == auth.StatusAuthenticated:
			add("Account:  ", user)
			add("Session:  ", pterm.Green("signed in"))
		case st.Reason == auth.ReasonNoStoredCredentials:
			add("Session:  ", pterm.Yellow("not logged in"))
		default:
			add("Account:  ", user)
			add("Session:  ", pterm.Red("sign-in failed: "+logging.Mask(errText(st.Err))))
		}

		if a.session.LoggedIn() {
			ctrl := device.NewController(a.cloud, device.WithLogger(a.log), device.WithTimeout(a.cfg.Timeout))
			stop := followSpinner(ctrl.Subscribe, "Looking for "+a.cfg.DeviceName, deviceLabel)
			_ = ctrl.Discover(ctx, a.cfg.DeviceName)
			stop()

			if dev, ok := ctrl.Device(); ok {
				online := pterm.Green("online")
				if !dev.Online {
					online = pterm.Red("offline")
				}
				add("Device:   ", fmt.Sprintf("%s (%s) %s", dev.Name, dev.ID, online))
			} else {
				add("Device:   ", pterm.Red(errText(ctrl.LastError())))
			}
		}
		add("Cloud:    ", a.cfg.APIURL)

		pterm.DefaultBox.
			WithTitle(pterm.NewStyle(pterm.FgCyan, pterm.Bold).Sprint("garagedoor")).
			Println(strings.Join(lines, "\n"))
		return nil
	},
}

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
