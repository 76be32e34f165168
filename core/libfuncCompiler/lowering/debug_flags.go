package lowering

import (
	"os"

	ethlog "github.com/ethereum/go-ethereum/log"
)

// Package-wide debug switch for verbose logging in the lowering stack.
// Default is off to keep logs clean unless explicitly enabled by tests or callers.
var (
	// DebugLogsEnabled toggles all lowering-related debug logs (builder + evaluator).
	DebugLogsEnabled = false
)

func init() {
	if os.Getenv("LOWER_DEBUG") == "1" || os.Getenv("LOWER_DEBUG") == "true" {
		DebugLogsEnabled = true
	}
}

// EnableLowerDebugLogs toggles all lowering-related debug logs.
// This is the single public entrypoint for enabling verbose lowering logging.
func EnableLowerDebugLogs(on bool) { DebugLogsEnabled = on }

func shouldLog() bool { return DebugLogsEnabled }

// LowerDebugWarn emits a warning only if debug logging is enabled.
func LowerDebugWarn(msg string, ctx ...interface{}) {
	if shouldLog() {
		ethlog.Warn(msg, ctx...)
	}
}

// LowerDebugInfo emits info only if debug logging is enabled.
func LowerDebugInfo(msg string, ctx ...interface{}) {
	if shouldLog() {
		ethlog.Info(msg, ctx...)
	}
}

// LowerDebugError emits an error only if debug logging is enabled.
func LowerDebugError(msg string, ctx ...interface{}) {
	if shouldLog() {
		ethlog.Error(msg, ctx...)
	}
}
