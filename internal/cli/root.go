package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	buildVersion = "dev"
	buildCommit  = "unknown"
	buildDate    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "dirsentry",
	Short: "Check directory file counts against thresholds and report",
	Long: `Dirsentry runs one monitoring pass over a configured task list: it counts
the files in each listed directory (locally or on a remote host over SSH),
compares each count against that task's threshold, and emails a single
consolidated report of over-threshold directories and failures.

It is a scheduled job, not a service: one invocation reads the task list,
runs all checks, emits the report, and exits.

Examples:
	# Show available commands and global flags
	dirsentry --help

	# Run the checks from a task list
	dirsentry check --tasks tasks.yaml

	# Validate a task list without probing
	dirsentry tasks validate --tasks tasks.yaml

	# Print build info
	dirsentry version`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&cfg.Runtime.Verbose, "verbose", false, "Enable verbose diagnostics")
}

func SetBuildInfo(version, commit, date string) {
	if version != "" {
		buildVersion = version
	}
	if commit != "" {
		buildCommit = commit
	}
	if date != "" {
		buildDate = date
	}

	rootCmd.Version = fmt.Sprintf("%s (%s) %s", buildVersion, buildCommit, buildDate)
	rootCmd.SetVersionTemplate("{{.Version}}\n")
}

func BuildInfo() (version, commit, date string) {
	return buildVersion, buildCommit, buildDate
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
