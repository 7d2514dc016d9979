package logsvc

import (
	"io"
	"log"

	"github.com/trezcool/facultypref/core"
)

// NewTestLogger returns a logger that never reports to rollbar and discards output unless verbose.
func NewTestLogger(verbose ...bool) core.Logger {
	out := io.Discard
	if len(verbose) > 0 && verbose[0] {
		out = log.Writer()
	}
	return &RollbarLogger{std: log.New(out, "TEST : ", log.LstdFlags)}
}
