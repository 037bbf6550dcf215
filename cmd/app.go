package cmd

import (
	"context"
	"fmt"
	"os"

	"garagedoor/cli/internal/auth"
	"garagedoor/cli/internal/config"
	"garagedoor/cli/internal/device"
	"garagedoor/cli/internal/history"
	"garagedoor/cli/internal/keychain"
	"garagedoor/cli/internal/logging"
	"garagedoor/cli/internal/particle"

	"github.com/pterm/pterm"
)

// app wires the collaborators shared by every command.
type app struct {
	cfg     config.Config
	log     *pterm.Logger
	store   *keychain.Manager
	cloud   *particle.HTTP
	session *auth.Session
	history history.Store
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log := logging.New(os.Stderr, cfg.LogLevel, verbose)

	store, err := keychain.GetManager()
	if err != nil {
		pterm.Println("❌ Secure storage is not available on this system")
		return nil, fmt.Errorf("open keychain: %w", err)
	}

	cloud := particle.New(particle.Config{
		BaseURL:  cfg.APIURL,
		Timeout:  cfg.Timeout,
		TokenTTL: cfg.TokenTTL,
	})
	session := auth.NewSession(cloud, store,
		auth.WithLogger(log),
		auth.WithTimeout(cfg.Timeout),
	)
	log.Debug("config loaded", log.Args("api_url", cfg.APIURL, "device", cfg.DeviceName, "history", logging.Mask(cfg.HistoryDSN)))

	return &app{cfg: cfg, log: log, store: store, cloud: cloud, session: session}, nil
}

// openHistory opens the command history store. Failure is reported but not fatal for
// commands that only record into it.
func (a *app) openHistory(ctx context.Context) (history.Store, error) {
	if a.history != nil {
		return a.history, nil
	}
	h, err := history.Open(ctx, a.cfg.HistoryDSN)
	if err != nil {
		return nil, err
	}
	a.history = h
	return h, nil
}

func (a *app) Close() {
	if a.history != nil {
		_ = a.history.Close()
	}
}

// signIn restores the saved session. It reports false, after telling the user what to
// do, when there is no usable session.
func (a *app) signIn(ctx context.Context) bool {
	stop := followSpinner(a.session.Subscribe, "Signing in to the Particle cloud", sessionLabel)
	err := a.session.Initialize(ctx)
	stop()

	if a.session.LoggedIn() {
		return true
	}
	st := a.session.State()
	switch {
	case st.Reason == auth.ReasonNoStoredCredentials:
		printNotLoggedIn()
	case err != nil:
		presentLoginError(err, a.cfg.APIURL)
		pterm.Println("   Run 'garagedoor login' to sign in again.")
	default:
		printNotLoggedIn()
	}
	return false
}

// controller signs in and resolves the configured device.
func (a *app) controller(ctx context.Context) (*device.Controller, bool) {
	if !a.signIn(ctx) {
		return nil, false
	}

	opts := []device.Option{
		device.WithLogger(a.log),
		device.WithTimeout(a.cfg.Timeout),
	}
	if h, err := a.openHistory(ctx); err != nil {
		a.log.Warn("command history disabled", a.log.Args("error", logging.Mask(err.Error())))
	} else {
		opts = append(opts, device.WithRecorder(h))
	}
	ctrl := device.NewController(a.cloud, opts...)

	stop := followSpinner(ctrl.Subscribe, "Looking for "+a.cfg.DeviceName, deviceLabel)
	err := ctrl.Discover(ctx, a.cfg.DeviceName)
	stop()
	if err != nil {
		presentDeviceError(err, a.cfg)
		return nil, false
	}
	return ctrl, true
}

// configLocation names the config file in use, for hints.
func configLocation() string {
	if configPath != "" {
		return configPath
	}
	if p, err := config.Path(); err == nil {
		return p
	}
	return "the config file"
}
