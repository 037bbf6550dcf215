package cmd

import (
	"garagedoor/cli/internal/device"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newDoorCommand(dir device.Direction, short string) *cobra.Command {
	return &cobra.Command{
		Use:   dir.String(),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctrl, ok := a.controller(ctx)
			if !ok {
				return errReported
			}

			stop := followSpinner(ctrl.Subscribe, deviceLabel(device.State{Status: device.StatusCommandPending, Direction: dir}), deviceLabel)
			err = ctrl.Send(ctx, dir)
			stop()
			if err != nil {
				presentCommandError(err, a.cfg.APIURL)
				return errReported
			}

			dev, _ := ctrl.Device()
			pterm.Success.Printf("Sent %s to %s\n", device.FunctionName(dir), dev.Name)
			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(
		newDoorCommand(device.Open, "Open the garage door"),
		newDoorCommand(device.Close, "Close the garage door"),
	)
}
