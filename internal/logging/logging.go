// Package logging builds the zap logger shared by the long-running loops.
package logging

import "go.uber.org/zap"

// New returns a production logger, or a development logger when verbose is
// set. Falls back to a no-op logger if construction fails.
func New(verbose bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
