// Copyright (c) 2025 Garagedoor
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface of garagedoor.
// It signs in to the Particle cloud with the credentials kept in the OS keyring, finds
// the garage door device and sends it open/close commands, rendering progress with
// pterm spinners driven by the auth and device state machines.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

// errReported is returned by commands that already printed a friendly explanation;
// Execute only sets the exit status for it.
var errReported = errors.New("command failed")

var (
	showVersion bool
	verbose     bool
	configPath  string
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "garagedoor",
	Short: "Open and close a Particle-connected garage door",
	Long: `garagedoor signs in to the Particle cloud, finds the device named "GarageDoor"
(or the device_name set in the config file) and calls its openGarageDoor and
closeGarageDoor functions.

Credentials are kept in the OS keychain after the first 'garagedoor login', so later
commands sign in silently.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if showVersion {
			printVersion(cmd.OutOrStdout())
			return nil
		}
		return cmd.Help()
	},
}

// Execute runs the CLI application. Ctrl-C cancels the running command's context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().BoolVar(&showVersion, "version", false, "Show CLI version information")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug diagnostics on stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default $XDG_CONFIG_HOME/garagedoor/config.yaml)")
}
