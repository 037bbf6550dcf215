package auth

import (
	"context"
	stderrors "errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"garagedoor/cli/internal/errors"
	"garagedoor/cli/internal/keychain"
	"garagedoor/cli/internal/particle"

	"github.com/99designs/keyring"
)

// fakeCloud implements particle.API. When gate is non-nil, Login blocks until a
// value is sent on it.
type fakeCloud struct {
	logins  atomic.Int32
	logouts atomic.Int32
	gate    chan struct{}
	entered chan struct{}
	err     error
}

func (f *fakeCloud) Login(ctx context.Context, username, password string) error {
	f.logins.Add(1)
	if f.entered != nil {
		f.entered <- struct{}{}
	}
	if f.gate != nil {
		select {
		case <-f.gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return f.err
}

func (f *fakeCloud) ListDevices(ctx context.Context) ([]particle.Device, error) { return nil, nil }

func (f *fakeCloud) Invoke(ctx context.Context, deviceID, function, arg string) (int, error) {
	return 0, nil
}

func (f *fakeCloud) Logout(ctx context.Context) error {
	f.logouts.Add(1)
	return nil
}

// failingStore wraps a store and fails every Set.
type failingStore struct {
	CredentialStore
}

func (f failingStore) Set(key, value string) error { return stderrors.New("keychain locked") }

func newStore() *keychain.Manager {
	return keychain.NewWithRing(keyring.NewArrayKeyring(nil))
}

func recordStates(s *Session) *[]State {
	var mu sync.Mutex
	states := &[]State{}
	s.Subscribe(func(st State) {
		mu.Lock()
		*states = append(*states, st)
		mu.Unlock()
	})
	return states
}

func statuses(states []State) []Status {
	out := make([]Status, 0, len(states))
	for _, st := range states {
		out = append(out, st.Status)
	}
	return out
}

func equalStatuses(a, b []Status) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestInitializeWithoutStoredCredentials(t *testing.T) {
	cloud := &fakeCloud{}
	s := NewSession(cloud, newStore())
	states := recordStates(s)

	if !s.Initializing() {
		t.Fatal("new session should report Initializing")
	}
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	st := s.State()
	if st.Status != StatusUnauthenticated || st.Reason != ReasonNoStoredCredentials {
		t.Errorf("state = %v, want unauthenticated(no-stored-credentials)", st)
	}
	if n := cloud.logins.Load(); n != 0 {
		t.Errorf("login calls = %d, want 0", n)
	}
	want := []Status{StatusCheckingStored, StatusUnauthenticated}
	if got := statuses(*states); !equalStatuses(got, want) {
		t.Errorf("transitions = %v, want %v", got, want)
	}
	if s.Initializing() || s.LoggedIn() {
		t.Error("accessors disagree with state")
	}
}

func TestInitializeWithStoredCredentials(t *testing.T) {
	store := newStore()
	_ = store.Set(keychain.KeyUsername, "u")
	_ = store.Set(keychain.KeyPassword, "p")

	cloud := &fakeCloud{}
	s := NewSession(cloud, store)
	states := recordStates(s)

	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	st := s.State()
	if st.Status != StatusAuthenticated {
		t.Fatalf("state = %v, want authenticated", st)
	}
	if st.CredentialsPersisted || s.CredentialsSaved() {
		t.Error("stored-credential sign-in must not re-persist")
	}
	want := []Status{StatusCheckingStored, StatusSigningIn, StatusAuthenticated}
	if got := statuses(*states); !equalStatuses(got, want) {
		t.Errorf("transitions = %v, want %v", got, want)
	}
	if !(*states)[1].FromStored {
		t.Error("signing-in state should be marked FromStored")
	}
}

func TestInitializeOnlyUsernameStored(t *testing.T) {
	store := newStore()
	_ = store.Set(keychain.KeyUsername, "u")

	cloud := &fakeCloud{}
	s := NewSession(cloud, store)
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if st := s.State(); st.Reason != ReasonNoStoredCredentials {
		t.Errorf("state = %v, want no-stored-credentials", st)
	}
	if cloud.logins.Load() != 0 {
		t.Error("login must not be called with a partial credential pair")
	}
}

func TestSignInPersists(t *testing.T) {
	store := newStore()
	s := NewSession(&fakeCloud{}, store)

	if err := s.SignIn(context.Background(), Credentials{Username: "u", Password: "p"}, true); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if !s.LoggedIn() || !s.CredentialsSaved() {
		t.Fatalf("state = %v, want authenticated with saved credentials", s.State())
	}
	if u, _ := store.Get(keychain.KeyUsername); u != "u" {
		t.Errorf("stored username = %q, want %q", u, "u")
	}
	if p, _ := store.Get(keychain.KeyPassword); p != "p" {
		t.Errorf("stored password = %q, want %q", p, "p")
	}
}

func TestSignInWithoutPersist(t *testing.T) {
	store := newStore()
	s := NewSession(&fakeCloud{}, store)

	if err := s.SignIn(context.Background(), Credentials{Username: "u", Password: "p"}, false); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if s.CredentialsSaved() {
		t.Error("CredentialsSaved() = true, want false")
	}
	if _, err := store.Get(keychain.KeyUsername); !stderrors.Is(err, keychain.ErrNotFound) {
		t.Errorf("username unexpectedly stored (err=%v)", err)
	}
}

func TestSignInPersistFailureIsWarning(t *testing.T) {
	s := NewSession(&fakeCloud{}, failingStore{newStore()})

	err := s.SignIn(context.Background(), Credentials{Username: "u", Password: "p"}, true)
	if err != nil {
		t.Fatalf("SignIn should succeed despite persist failure, got %v", err)
	}
	st := s.State()
	if st.Status != StatusAuthenticated || st.CredentialsPersisted {
		t.Errorf("state = %v, want authenticated(persisted=false)", st)
	}
	if !errors.Is(st.Err, errors.CredentialPersistFailed) {
		t.Errorf("warning = %v, want CredentialPersistFailed", st.Err)
	}
}

func TestSignInFailureSurfacesCloudMessage(t *testing.T) {
	cloud := &fakeCloud{err: stderrors.New("User credentials are invalid")}
	s := NewSession(cloud, newStore())

	err := s.SignIn(context.Background(), Credentials{Username: "u", Password: "bad"}, true)
	if !errors.Is(err, errors.LoginFailed) {
		t.Fatalf("err = %v, want LoginFailed", err)
	}
	if err.Error() != "User credentials are invalid" {
		t.Errorf("message = %q, want cloud message unmodified", err.Error())
	}
	st := s.State()
	if st.Status != StatusUnauthenticated || st.Reason != ReasonLoginFailed {
		t.Errorf("state = %v, want unauthenticated(login-failed)", st)
	}
}

func TestSignInSingleFlight(t *testing.T) {
	cloud := &fakeCloud{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	s := NewSession(cloud, newStore())
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- s.SignIn(ctx, Credentials{Username: "u", Password: "p"}, true)
	}()
	<-cloud.entered

	if !s.SigningIn() {
		t.Fatal("first call should leave the session SigningIn")
	}
	err := s.SignIn(ctx, Credentials{Username: "u", Password: "p"}, true)
	if !errors.Is(err, errors.SessionBusy) {
		t.Errorf("second SignIn err = %v, want SessionBusy", err)
	}

	close(cloud.gate)
	if err := <-done; err != nil {
		t.Fatalf("first SignIn: %v", err)
	}
	if n := cloud.logins.Load(); n != 1 {
		t.Errorf("login calls = %d, want 1", n)
	}
	if !s.LoggedIn() {
		t.Errorf("state = %v, want authenticated", s.State())
	}
}

func TestSignInTimeout(t *testing.T) {
	cloud := &fakeCloud{gate: make(chan struct{})}
	s := NewSession(cloud, newStore(), WithTimeout(20*time.Millisecond))

	err := s.SignIn(context.Background(), Credentials{Username: "u", Password: "p"}, true)
	if !errors.Is(err, errors.LoginFailed) {
		t.Fatalf("err = %v, want LoginFailed", err)
	}
	if st := s.State(); st.Reason != ReasonLoginFailed {
		t.Errorf("state = %v, want unauthenticated(login-failed)", st)
	}
}

func TestSignOutDuringSignIn(t *testing.T) {
	cloud := &fakeCloud{gate: make(chan struct{}), entered: make(chan struct{}, 1)}
	store := newStore()
	s := NewSession(cloud, store)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- s.SignIn(ctx, Credentials{Username: "u", Password: "p"}, true)
	}()
	<-cloud.entered

	if err := s.SignOut(ctx); err != nil {
		t.Fatalf("SignOut: %v", err)
	}
	close(cloud.gate)
	if err := <-done; err == nil {
		t.Error("interrupted SignIn should report an error")
	}

	st := s.State()
	if st.Status != StatusUnauthenticated || st.Reason != ReasonSignedOut {
		t.Errorf("state = %v, want unauthenticated(signed-out)", st)
	}
	if _, err := store.Get(keychain.KeyUsername); !stderrors.Is(err, keychain.ErrNotFound) {
		t.Error("credentials must not be saved after sign-out")
	}
	// One logout from SignOut, one for the token the late login obtained.
	if n := cloud.logouts.Load(); n != 2 {
		t.Errorf("remote logouts = %d, want 2", n)
	}
}

func TestSignOutDuringFailedSignIn(t *testing.T) {
	cloud := &fakeCloud{
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 1),
		err:     stderrors.New("User credentials are invalid"),
	}
	s := NewSession(cloud, newStore())
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		done <- s.SignIn(ctx, Credentials{Username: "u", Password: "p"}, false)
	}()
	<-cloud.entered

	_ = s.SignOut(ctx)
	close(cloud.gate)
	<-done

	if n := cloud.logouts.Load(); n != 1 {
		t.Errorf("remote logouts = %d, want 1 (no token to revoke)", n)
	}
	if st := s.State(); st.Reason != ReasonSignedOut {
		t.Errorf("state = %v, want signed-out", st)
	}
}

func TestSignOutIdempotent(t *testing.T) {
	store := newStore()
	cloud := &fakeCloud{}
	s := NewSession(cloud, store)
	ctx := context.Background()

	if err := s.SignIn(ctx, Credentials{Username: "u", Password: "p"}, true); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	states := recordStates(s)

	for i := 0; i < 2; i++ {
		if err := s.SignOut(ctx); err != nil {
			t.Fatalf("SignOut #%d: %v", i+1, err)
		}
	}
	if len(*states) != 1 {
		t.Errorf("transitions = %d, want 1", len(*states))
	}
	if st := s.State(); st.Reason != ReasonSignedOut {
		t.Errorf("state = %v, want signed-out", st)
	}
	if _, err := store.Get(keychain.KeyPassword); !stderrors.Is(err, keychain.ErrNotFound) {
		t.Error("password still stored after SignOut")
	}
	if cloud.logouts.Load() != 2 {
		t.Errorf("remote logouts = %d, want 2", cloud.logouts.Load())
	}
}

// A first launch signs in interactively and saves; the next launch signs in silently.
func TestRelaunchSignsInSilently(t *testing.T) {
	store := newStore()
	ctx := context.Background()

	first := NewSession(&fakeCloud{}, store)
	if err := first.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if first.LoggedIn() {
		t.Fatal("first launch should not be logged in")
	}
	if err := first.SignIn(ctx, Credentials{Username: "u", Password: "p"}, true); err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if !first.CredentialsSaved() {
		t.Fatal("credentials should be saved after interactive sign-in")
	}

	cloud := &fakeCloud{}
	second := NewSession(cloud, store)
	if err := second.Initialize(ctx); err != nil {
		t.Fatalf("relaunch Initialize: %v", err)
	}
	if !second.LoggedIn() {
		t.Errorf("relaunch state = %v, want authenticated", second.State())
	}
	if cloud.logins.Load() != 1 {
		t.Errorf("relaunch login calls = %d, want 1", cloud.logins.Load())
	}
}
