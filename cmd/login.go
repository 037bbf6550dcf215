// Copyright (c) 2025 Garagedoor
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"garagedoor/cli/internal/auth"
	"garagedoor/cli/internal/keychain"
	"garagedoor/cli/internal/terminal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	loginUsername string
	loginNoSave   bool
)

// loginCmd signs in to the Particle cloud with a username and password.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"signin"},
	Short:   "Sign in to the Particle cloud and save the credentials",
	Long: `The login command asks for your Particle username and password and signs in.
On success the credentials are saved in the OS keychain so that later commands sign
in without prompting. Use --no-save to sign in for this invocation only.

When stdin is not a terminal the password is read from the first line of stdin.
If saved credentials already work, login reports the account and exits.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if loginUsername == "" {
			_ = a.session.Initialize(ctx)
			if a.session.LoggedIn() {
				user, _ := a.store.Get(keychain.KeyUsername)
				pterm.Printf("✅ Already logged in as %s\n", user)
				pterm.Println("   Run 'garagedoor logout' to switch accounts.")
				return nil
			}
		}

		creds, err := promptCredentials(os.Stdin, loginUsername)
		if err != nil {
			return err
		}

		stop := followSpinner(a.session.Subscribe, "Signing in as "+creds.Username, sessionLabel)
		err = a.session.SignIn(ctx, creds, !loginNoSave)
		stop()
		if err != nil {
			presentLoginError(err, a.cfg.APIURL)
			return errReported
		}

		pterm.Printf("✅ Logged in as %s\n", creds.Username)
		st := a.session.State()
		switch {
		case st.Err != nil:
			pterm.Warning.Println(st.Err.Error())
		case a.session.CredentialsSaved():
			pterm.Println("   Credentials saved to the OS keychain.")
		default:
			pterm.Println("   Credentials were not saved (--no-save).")
		}
		return nil
	},
}

// promptCredentials reads the username (unless given) and the password from in.
func promptCredentials(in *os.File, username string) (auth.Credentials, error) {
	reader := bufio.NewReader(in)
	interactive := term.IsTerminal(int(in.Fd()))

	if username == "" {
		prompt := "Particle username (email): "
		fmt.Print(prompt)
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return auth.Credentials{}, err
		}
		username = strings.TrimSpace(line)
		if interactive {
			terminal.ClearPreviousLines(os.Stdout, len(prompt)+len(username))
		}
	}
	if username == "" {
		return auth.Credentials{}, errors.New("username is required")
	}

	var password string
	if interactive {
		fmt.Print("Password: ")
		b, err := term.ReadPassword(int(in.Fd()))
		fmt.Println()
		if err != nil {
			return auth.Credentials{}, fmt.Errorf("read password: %w", err)
		}
		password = string(b)
	} else {
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return auth.Credentials{}, err
		}
		password = strings.TrimRight(line, "\r\n")
	}
	if password == "" {
		return auth.Credentials{}, errors.New("password is required")
	}
	return auth.Credentials{Username: username, Password: password}, nil
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Particle account email")
	loginCmd.Flags().BoolVar(&loginNoSave, "no-save", false, "Do not save the credentials in the OS keychain")
}
