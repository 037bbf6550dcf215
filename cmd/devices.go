package cmd

import (
	"garagedoor/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// devicesCmd lists the devices on the account and marks the one the CLI would use.
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List the devices on your Particle account",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if !a.signIn(ctx) {
			return errReported
		}

		sp, _ := pterm.DefaultSpinner.WithRemoveWhenDone(true).Start("Listing devices")
		devices, err := a.cloud.ListDevices(ctx)
		if sp != nil {
			_ = sp.Stop()
		}
		if err != nil {
			presentDeviceError(err, a.cfg)
			return errReported
		}
		if len(devices) == 0 {
			pterm.Println("No devices are claimed by this account.")
			return nil
		}

		data := pterm.TableData{{"", "Name", "ID", "Status"}}
		selected := false
		for _, d := range devices {
			mark := ""
			if !selected && d.Name == a.cfg.DeviceName {
				mark = "→"
				selected = true
			}
			status := pterm.Green("online")
			if !d.Online {
				status = pterm.Gray("offline")
			}
			data = append(data, []string{mark, d.Name, d.ID, status})
		}
		if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
			return err
		}
		if !selected {
			pterm.Println()
			pterm.Warning.Printf("None of these is named %q; set device_name in %s\n", a.cfg.DeviceName, logging.Mask(configLocation()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
