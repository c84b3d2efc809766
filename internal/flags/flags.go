package flags

// Package flags defines canonical CLI flag names shared across the CLI and
// engine. Keeping these as constants helps avoid drift between Cobra flag
// wiring and other code paths that reference flags by name.
// IMPORTANT: These are flag *names* without leading dashes.
const (
	// Input
	FlagTasks = "tasks"
	FlagName  = "name"

	// Runtime
	FlagTransport   = "transport"
	FlagConcurrency = "concurrency"
	FlagTimeout     = "timeout"
	FlagDryRun      = "dry-run"

	// Mail
	FlagNoMail = "no-mail"
	FlagConfig = "config"

	// Output
	FlagConsoleFormat = "console-format"
	FlagNoConsole     = "no-console"
	FlagEmit          = "emit"
	FlagOut           = "out"
	FlagOutFormat     = "out-format"
	FlagLogDir        = "log-dir"
	FlagLogLevel      = "log-level"
)
