package cmd

import (
	"bufio"
	"context"
	"os"
	"time"

	"garagedoor/cli/internal/device"

	"atomicgo.dev/cursor"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var holdFor time.Duration

// holdCmd mirrors the press-and-hold button: open on press, close on release.
var holdCmd = &cobra.Command{
	Use:   "hold",
	Short: "Open while held, close on release",
	Long: `The hold command sends the open command immediately and the close command when
you release: press Enter, or wait for --for to elapse. The close command is sent
without waiting for the open command to be answered, exactly like releasing the
button in the mobile app.`,
	Args: cobra.NoArgs,
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

		cursor.Hide()
		defer cursor.Show()

		if holdFor > 0 {
			pterm.Info.Printf("Holding for %s\n", holdFor)
		} else {
			pterm.Info.Println("Holding. Press Enter to release.")
		}
		openErr, closeErr := holdDoor(ctx, ctrl, func(ctx context.Context) { waitForRelease(ctx, holdFor) })

		failed := false
		for _, step := range []struct {
			dir device.Direction
			err error
		}{{device.Open, openErr}, {device.Close, closeErr}} {
			if step.err != nil {
				failed = true
				pterm.Warning.Printf("%s command failed\n", step.dir)
				presentCommandError(step.err, a.cfg.APIURL)
			}
		}
		if failed {
			return errReported
		}
		pterm.Success.Println("Released")
		return nil
	},
}

// holdDoor sends open, waits for release, then sends close without waiting for the
// open answer. The open command is accepted by ctrl before release is called, so the
// cloud always sees open first.
func holdDoor(ctx context.Context, ctrl *device.Controller, release func(context.Context)) (openErr, closeErr error) {
	callCtx := context.WithoutCancel(ctx)
	runOpen, err := ctrl.Start(callCtx, device.Open)
	if err != nil {
		return err, nil
	}

	var g errgroup.Group
	g.Go(func() error {
		openErr = runOpen()
		return nil
	})

	release(ctx)

	g.Go(func() error {
		closeErr = ctrl.CloseDoor(callCtx)
		return nil
	})
	_ = g.Wait()
	return openErr, closeErr
}

// waitForRelease returns after d when d > 0, otherwise on Enter. Cancelling ctx
// releases early.
func waitForRelease(ctx context.Context, d time.Duration) {
	released := make(chan struct{}, 1)
	var timer <-chan time.Time
	if d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		timer = t.C
	} else {
		go func() {
			_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
			released <- struct{}{}
		}()
	}
	select {
	case <-released:
	case <-timer:
	case <-ctx.Done():
	}
}

func init() {
	rootCmd.AddCommand(holdCmd)
	holdCmd.Flags().DurationVar(&holdFor, "for", 0, "Release automatically after this long (e.g. 2s)")
}
