package cmd

import (
	"strconv"

	"garagedoor/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd prints the most recent commands recorded by open, close and hold.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recently sent door commands",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		h, err := a.openHistory(ctx)
		if err != nil {
			pterm.Error.Println(logging.PresentError("Cannot open command history", err))
			return errReported
		}
		entries, err := h.Recent(ctx, historyLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			pterm.Println("No commands have been sent yet.")
			return nil
		}

		data := pterm.TableData{{"When", "Command", "Device", "Result", "Took"}}
		for _, e := range entries {
			result := pterm.Green(strconv.Itoa(e.ResultCode))
			if !e.Succeeded() {
				result = pterm.Red(e.Error)
			}
			data = append(data, []string{
				e.StartedAt.Local().Format("2006-01-02 15:04:05"),
				e.Direction,
				e.DeviceName,
				result,
				e.Duration.String(),
			})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of entries to show")
}
