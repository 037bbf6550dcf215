// Copyright (c) 2025 Garagedoor
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"garagedoor/cli/internal/logging"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// logoutCmd clears the saved credentials and revokes the cloud token.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved credentials and revoke the cloud session",
	Long: `The logout command removes the Particle username and password from the OS
keychain. When the saved credentials still work, the access token they produce is
revoked on the Particle cloud as well (best effort, offline logout still succeeds).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		// Sign in quietly so there is a token to revoke.
		_ = a.session.Initialize(ctx)

		if err := a.session.SignOut(ctx); err != nil {
			pterm.Warning.Println(logging.PresentError("Some credentials could not be removed", err))
			return errReported
		}
		pterm.Println("✅ Saved credentials have been removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
