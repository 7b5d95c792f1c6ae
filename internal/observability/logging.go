// Package observability holds the CLI logger shared by all commands.
//
// Log output goes to stderr with a console encoder so stdout stays clean for
// command results (prediction lines, status lines, saved-file notices).
package observability

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the process-wide logger. It defaults to a no-op logger so
// library tests that never call InitCLILogger do not panic; the root command
// initializes it before any subcommand runs.
var CLILogger = zap.NewNop()

// InitCLILogger configures the CLI logger at the given level. Verbose
// enables debug output regardless of level.
func InitCLILogger(level string, verbose bool) {
	lvl := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(level); err == nil {
		lvl = parsed
	}
	if verbose {
		lvl = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encCfg),
		zapcore.Lock(os.Stderr),
		lvl,
	)
	CLILogger = zap.New(core)
}

// Sync flushes buffered log entries. Called once on process exit.
func Sync() {
	_ = CLILogger.Sync()
}
