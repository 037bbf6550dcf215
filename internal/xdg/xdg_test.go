package xdg

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDirsHonorEnvironment(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "cfg"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(base, "state"))

	tests := []struct {
		name string
		fn   func() (string, error)
		want string
	}{
		{name: "config", fn: ConfigDir, want: filepath.Join(base, "cfg", AppName)},
		{name: "state", fn: StateDir, want: filepath.Join(base, "state", AppName)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.fn()
			if err != nil {
				t.Fatalf("%s dir: %v", tt.name, err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			fi, err := os.Stat(got)
			if err != nil {
				t.Fatalf("dir not created: %v", err)
			}
			if fi.Mode().Perm() != 0o700 {
				t.Errorf("perm = %o, want 700", fi.Mode().Perm())
			}
		})
	}
}
