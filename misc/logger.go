package misc

import (
	"os"

	"github.com/BrugadaSyndrome/bslogger"
)

// NewLogger creates a named logger with the verbosity given by name: "Minimal", "Normal" or "All".
// Unknown names fall back to Normal.
func NewLogger(name string, verbosity string, logFile *os.File) bslogger.Logger {
	switch verbosity {
	case "Minimal", "minimal":
		return bslogger.NewLogger(name, bslogger.Minimal, logFile)
	case "All", "all":
		return bslogger.NewLogger(name, bslogger.All, logFile)
	default:
		return bslogger.NewLogger(name, bslogger.Normal, logFile)
	}
}
