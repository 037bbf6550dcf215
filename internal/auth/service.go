// Copyright (c) 2025 Garagedoor
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package auth owns the Particle sign-in state of the CLI.
//
// A Session decides whether there is an authenticated cloud session and manages the
// saved username/password pair. It signs in either interactively (SignIn) or from the
// credential store at startup (Initialize), allows at most one login in flight, and
// publishes every state transition to subscribers in the order it happened.
package auth

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"garagedoor/cli/internal/errors"
	"garagedoor/cli/internal/events"
	"garagedoor/cli/internal/keychain"
	"garagedoor/cli/internal/logging"
	"garagedoor/cli/internal/particle"

	"github.com/pterm/pterm"
)

// CredentialStore is the secure key/value store holding the saved credentials.
// Get must return keychain.ErrNotFound for a missing key.
type CredentialStore interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Session is the process-wide authentication state machine.
type Session struct {
	cloud   particle.API
	store   CredentialStore
	log     *pterm.Logger
	timeout time.Duration

	// mu serializes transitions; snap lets readers and subscribers see the
	// current state without taking mu.
	mu   sync.Mutex
	cur  State
	gen  uint64
	snap atomic.Pointer[State]
	hub  events.Hub[State]
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the diagnostics logger.
func WithLogger(l *pterm.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTimeout bounds each login call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *Session) { s.timeout = d }
}

// NewSession creates a Session in StatusUninitialized.
func NewSession(cloud particle.API, store CredentialStore, opts ...Option) *Session {
	s := &Session{
		cloud: cloud,
		store: store,
		log:   logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	st := State{Status: StatusUninitialized}
	s.cur = st
	s.snap.Store(&st)
	return s
}

// Subscribe registers fn for every state transition. fn runs synchronously on the
// goroutine performing the transition and may read the Session's accessors, but must
// not call SignIn, SignOut or Initialize.
func (s *Session) Subscribe(fn func(State)) (unsubscribe func()) {
	return s.hub.Subscribe(fn)
}

// transitionLocked records st and notifies subscribers. Caller holds s.mu.
func (s *Session) transitionLocked(st State) {
	s.cur = st
	s.snap.Store(&st)
	s.log.Debug("auth state", s.log.Args("state", st.String()))
	s.hub.Publish(st)
}

// State returns the current state.
func (s *Session) State() State { return *s.snap.Load() }

// Initializing reports whether the startup check, including a sign-in with stored
// credentials, is still running.
func (s *Session) Initializing() bool {
	st := s.State()
	switch st.Status {
	case StatusUninitialized, StatusCheckingStored:
		return true
	case StatusSigningIn:
		return st.FromStored
	}
	return false
}

// SigningIn reports whether a login call is in flight.
func (s *Session) SigningIn() bool { return s.State().Status == StatusSigningIn }

// LoggedIn reports whether the session is authenticated.
func (s *Session) LoggedIn() bool { return s.State().Status == StatusAuthenticated }

// CredentialsSaved reports whether the credentials of the current session were saved by it.
func (s *Session) CredentialsSaved() bool {
	st := s.State()
	return st.Status == StatusAuthenticated && st.CredentialsPersisted
}

// Initialize checks the credential store and, when both username and password are
// present, signs in with them without saving them again. Missing credentials are the
// normal first-run path: the session becomes Unauthenticated(NoStoredCredentials) and
// no error is returned.
func (s *Session) Initialize(ctx context.Context) error {
	s.mu.Lock()
	if s.cur.Status == StatusSigningIn || s.cur.Status == StatusCheckingStored {
		s.mu.Unlock()
		return errors.New(errors.SessionBusy, "")
	}
	s.gen++
	gen := s.gen
	s.transitionLocked(State{Status: StatusCheckingStored})
	creds, ok := s.loadCredentialsLocked()
	if !ok {
		s.transitionLocked(State{Status: StatusUnauthenticated, Reason: ReasonNoStoredCredentials})
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	return s.signIn(ctx, creds, false, true, gen)
}

// loadCredentialsLocked reads both keys; any read failure counts as absent.
func (s *Session) loadCredentialsLocked() (Credentials, bool) {
	user, uerr := s.store.Get(keychain.KeyUsername)
	pass, perr := s.store.Get(keychain.KeyPassword)
	for _, err := range []error{uerr, perr} {
		if err != nil && !stderrors.Is(err, keychain.ErrNotFound) {
			s.log.Debug("credential store read failed", s.log.Args("error", logging.Mask(err.Error())))
		}
	}
	if uerr != nil || perr != nil || user == "" || pass == "" {
		return Credentials{}, false
	}
	return Credentials{Username: user, Password: pass}, true
}

// SignIn logs in with creds. When persist is true the credentials are saved to the
// store after a successful login; a failed save does not fail the sign-in and is
// reported as a CredentialPersistFailed warning on the resulting state.
//
// A call made while another login is in flight is rejected with SessionBusy and never
// reaches the cloud. A failed login returns a LoginFailed error carrying the cloud's
// message unmodified.
func (s *Session) SignIn(ctx context.Context, creds Credentials, persist bool) error {
	return s.signIn(ctx, creds, persist, false, 0)
}

// signIn implements SignIn. A non-zero wantGen aborts quietly when the session has
// moved on since Initialize started.
func (s *Session) signIn(ctx context.Context, creds Credentials, persist, fromStored bool, wantGen uint64) error {
	s.mu.Lock()
	if wantGen != 0 && s.gen != wantGen {
		s.mu.Unlock()
		return nil
	}
	if s.cur.Status == StatusSigningIn {
		s.mu.Unlock()
		return errors.New(errors.SessionBusy, "")
	}
	s.gen++
	gen := s.gen
	s.transitionLocked(State{Status: StatusSigningIn, FromStored: fromStored})
	s.mu.Unlock()

	s.log.Debug("signing in", s.log.Args("user", creds.Username, "stored", fromStored))

	callCtx, cancel := s.callContext(ctx)
	err := s.cloud.Login(callCtx, creds.Username, creds.Password)
	timedOut := callCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil
	cancel()

	s.mu.Lock()
	if s.gen != gen {
		// SignOut ran while the login was in flight; its state stands. A token the
		// late login handed to the client is revoked unless a newer sign-in owns it.
		if err == nil && s.cur.Status == StatusUnauthenticated {
			s.revokeLateTokenLocked(ctx)
		}
		s.mu.Unlock()
		return errors.New(errors.LoginFailed, "sign-in cancelled by sign-out")
	}

	if err != nil {
		lf := errors.Wrap(errors.LoginFailed, err)
		if timedOut {
			lf = &errors.E{Kind: errors.LoginFailed, Message: fmt.Sprintf("login timed out after %s", s.timeout), Err: err}
		}
		s.transitionLocked(State{Status: StatusUnauthenticated, Reason: ReasonLoginFailed, Err: lf})
		s.mu.Unlock()
		s.log.Debug("login failed", s.log.Args("error", logging.Mask(err.Error())))
		return lf
	}

	next := State{Status: StatusAuthenticated, FromStored: fromStored}
	if persist {
		if perr := s.saveCredentialsLocked(creds); perr != nil {
			next.Err = &errors.E{
				Kind:    errors.CredentialPersistFailed,
				Message: fmt.Sprintf("signed in, but credentials could not be saved: %v", perr),
				Err:     perr,
			}
			s.log.Warn("could not save credentials", s.log.Args("error", logging.Mask(perr.Error())))
		} else {
			next.CredentialsPersisted = true
		}
	}
	s.transitionLocked(next)
	s.mu.Unlock()
	return nil
}

func (s *Session) revokeLateTokenLocked(ctx context.Context) {
	callCtx, cancel := s.callContext(context.WithoutCancel(ctx))
	defer cancel()
	if err := s.cloud.Logout(callCtx); err != nil {
		s.log.Debug("remote logout of late token failed", s.log.Args("error", logging.Mask(err.Error())))
	}
}

func (s *Session) saveCredentialsLocked(c Credentials) error {
	if err := s.store.Set(keychain.KeyUsername, c.Username); err != nil {
		return err
	}
	if err := s.store.Set(keychain.KeyPassword, c.Password); err != nil {
		// Do not leave a username without its password behind.
		_ = s.store.Delete(keychain.KeyUsername)
		return err
	}
	return nil
}

// SignOut revokes the cloud token (best effort), deletes the saved credentials and
// moves to Unauthenticated(SignedOut) from any state. It is idempotent. The returned
// error reports a failure to delete stored credentials; the state changes regardless.
func (s *Session) SignOut(ctx context.Context) error {
	callCtx, cancel := s.callContext(ctx)
	if err := s.cloud.Logout(callCtx); err != nil {
		s.log.Debug("remote logout failed", s.log.Args("error", logging.Mask(err.Error())))
	}
	cancel()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	err := stderrors.Join(s.store.Delete(keychain.KeyUsername), s.store.Delete(keychain.KeyPassword))
	if s.cur.Status != StatusUnauthenticated || s.cur.Reason != ReasonSignedOut {
		s.transitionLocked(State{Status: StatusUnauthenticated, Reason: ReasonSignedOut})
	}
	return err
}

func (s *Session) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout > 0 {
		return context.WithTimeout(ctx, s.timeout)
	}
	return context.WithCancel(ctx)
}
