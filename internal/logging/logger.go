package logging

import (
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
)

// VerboseEnv enables debug diagnostics when set to "1".
const VerboseEnv = "GARAGEDOOR_VERBOSE"

// IsVerbose reports whether verbose diagnostics were requested through the environment.
func IsVerbose() bool {
	return os.Getenv(VerboseEnv) == "1"
}

// ParseLevel maps a config value to a pterm level. Unknown values mean info.
func ParseLevel(level string) pterm.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	case "off", "disabled", "none":
		return pterm.LogLevelDisabled
	}
	return pterm.LogLevelInfo
}

// New returns a structured logger writing to w. verbose forces debug level.
func New(w io.Writer, level string, verbose bool) *pterm.Logger {
	lvl := ParseLevel(level)
	if verbose || IsVerbose() {
		lvl = pterm.LogLevelDebug
	}
	return pterm.DefaultLogger.WithWriter(w).WithLevel(lvl)
}

// Nop returns a logger that discards everything.
func Nop() *pterm.Logger {
	return pterm.DefaultLogger.WithWriter(io.Discard).WithLevel(pterm.LogLevelDisabled)
}
