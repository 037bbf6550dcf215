package keychain

import (
	"errors"
	"testing"

	"github.com/99designs/keyring"
)

func TestManagerRoundTrip(t *testing.T) {
	m := NewWithRing(keyring.NewArrayKeyring(nil))

	pairs := []struct {
		username string
		password string
	}{
		{"user@example.com", "hunter2"},
		{"ünïcødé", "p@ss:w=rd; with spaces"},
		{"a", "b"},
	}

	for _, p := range pairs {
		t.Run(p.username, func(t *testing.T) {
			if err := m.Set(KeyUsername, p.username); err != nil {
				t.Fatalf("Set username: %v", err)
			}
			if err := m.Set(KeyPassword, p.password); err != nil {
				t.Fatalf("Set password: %v", err)
			}

			gotUser, err := m.Get(KeyUsername)
			if err != nil {
				t.Fatalf("Get username: %v", err)
			}
			gotPass, err := m.Get(KeyPassword)
			if err != nil {
				t.Fatalf("Get password: %v", err)
			}
			if gotUser != p.username || gotPass != p.password {
				t.Errorf("round trip = (%q, %q), want (%q, %q)", gotUser, gotPass, p.username, p.password)
			}
		})
	}
}

func TestManagerMissingKey(t *testing.T) {
	m := NewWithRing(keyring.NewArrayKeyring(nil))

	if _, err := m.Get(KeyUsername); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get on empty ring err = %v, want ErrNotFound", err)
	}

	// Empty values are treated as absent.
	if err := m.Set(KeyPassword, ""); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := m.Get(KeyPassword); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get empty value err = %v, want ErrNotFound", err)
	}
}

func TestClearCredentialsIdempotent(t *testing.T) {
	m := NewWithRing(keyring.NewArrayKeyring([]keyring.Item{
		{Key: KeyUsername, Data: []byte("u")},
		{Key: KeyPassword, Data: []byte("p")},
	}))

	for i := 0; i < 2; i++ {
		if err := m.ClearCredentials(); err != nil {
			t.Fatalf("ClearCredentials #%d: %v", i+1, err)
		}
	}
	for _, key := range []string{KeyUsername, KeyPassword} {
		if _, err := m.Get(key); !errors.Is(err, ErrNotFound) {
			t.Errorf("Get(%q) after clear err = %v, want ErrNotFound", key, err)
		}
	}
}

func TestPasswordOutputKeepsWhitespace(t *testing.T) {
	tests := []struct {
		out  string
		want string
	}{
		{" pass \n", " pass "},
		{"hunter2\n", "hunter2"},
		{"\ttabbed\t\n", "\ttabbed\t"},
		{"no-newline", "no-newline"},
		{"ends in two\n\n", "ends in two\n"},
	}
	for _, tt := range tests {
		if got := passwordOutput(tt.out); got != tt.want {
			t.Errorf("passwordOutput(%q) = %q, want %q", tt.out, got, tt.want)
		}
	}
}
