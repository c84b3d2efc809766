package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/ssh/knownhosts"

	"dirsentry/internal/config"
	"dirsentry/internal/engine"
	"dirsentry/internal/flags"
	"dirsentry/internal/logging"
	"dirsentry/internal/mail"
	"dirsentry/internal/output"
	"dirsentry/internal/probe"
	"dirsentry/internal/report"
	"dirsentry/internal/tasklist"
)

var cfg = config.New()

// settingsFile is the optional app settings file (see --config).
var settingsFile string

// newSender builds the delivery collaborator; tests swap in a recording fake.
var newSender = func(cfg mail.SMTPConfig) (mail.Sender, error) {
	return mail.NewSMTPSender(cfg)
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run all configured file-count checks and report",
	Long: `Run every task in the task list once: count the files in each target
directory, compare against that task's threshold, and email one consolidated
report when anything is over threshold or failed. A clean run sends nothing.

One task's failure never stops the others; failed tasks appear in the report
under their own section, separate from run-level errors.

Delivery and session settings come from the environment (DIRSENTRY_SMTP_HOST,
DIRSENTRY_SSH_USER, ...) or a settings file via --config.

Exit codes:
	0 = clean run, nothing over threshold
	1 = over-threshold findings
	2 = partial failure (some tasks or the run errored)
	3 = fatal error (the run did not execute)

Examples:
	# Remote checks over SSH, report mailed to the task list's MailTo
	dirsentry check --tasks tasks.yaml

	# Local directories, print the report instead of mailing it
	dirsentry check --tasks tasks.yaml --transport local --no-mail

	# Machine-readable event stream
	dirsentry check --tasks tasks.yaml --no-console --emit ndjson`,
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runCheck(cmd.Context()))
	},
}

// runCheck owns the whole run. Everything before the executor starts is a
// setup error: it aborts immediately, goes to the admin notification, and
// exits 3 with zero probes run. Everything after is captured in the report.
func runCheck(ctx context.Context) int {
	if ctx == nil {
		ctx = context.Background()
	}
	runID := uuid.NewString()

	settings, sender, err := prepareDelivery()
	if err != nil {
		return failSetup(nil, nil, err)
	}

	if err := cfg.Validate(); err != nil {
		return failSetup(sender, settings, err)
	}

	logger, closeLog, err := logging.Setup(cfg.Output.LogDir, cfg.Output.LogLevel, runID)
	if err != nil {
		return failSetup(sender, settings, err)
	}
	defer func() { _ = closeLog() }()

	list, err := tasklist.Load(cfg.Input.TaskFile)
	if err != nil {
		logger.Error("setup failed", "error", err)
		return failSetup(sender, settings, err)
	}

	limit := list.MaxConcurrentJobs
	if cfg.Runtime.Concurrency > 0 {
		limit = cfg.Runtime.Concurrency
	}

	if cfg.Runtime.DryRun {
		printDryRun(list, limit)
		return 0
	}

	prober, err := buildProber(settings)
	if err != nil {
		logger.Error("setup failed", "error", err)
		return failSetup(sender, settings, err)
	}

	outMgr, err := setupOutputManager()
	if err != nil {
		logger.Error("setup failed", "error", err)
		return failSetup(sender, settings, err)
	}
	defer func() { _ = outMgr.Close() }()

	if !cfg.Output.NoConsole {
		fmt.Fprintf(os.Stderr, "Running %d checks (%s transport, %d concurrent)...\n",
			len(list.Tasks), cfg.Runtime.Transport, limit)
	}

	eng := engine.New(prober, outMgr, logger.With("run", cfg.Input.RunName), runID)
	sum, code := eng.Run(ctx, list.Tasks, limit)

	return deliverReport(ctx, logger, sender, sum, list.MailTo, runID, code)
}

// prepareDelivery loads app settings and builds the SMTP sender. A broken
// settings file is itself a setup error, reported without a sender.
func prepareDelivery() (*config.Settings, mail.Sender, error) {
	settings, err := config.LoadSettings(settingsFile)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Mail.NoMail || settings.SMTP.Host == "" {
		return settings, nil, nil
	}
	sender, err := newSender(mail.SMTPConfig{
		Host:     settings.SMTP.Host,
		Port:     settings.SMTP.Port,
		Username: settings.SMTP.Username,
		Password: settings.SMTP.Password,
		From:     settings.SMTP.From,
	})
	if err != nil {
		return nil, nil, err
	}
	return settings, sender, nil
}

// failSetup handles the fatal path: print the cause, send the admin failure
// notification when delivery is available, and return exit code 3.
func failSetup(sender mail.Sender, settings *config.Settings, cause error) int {
	fmt.Fprintf(os.Stderr, "Error: %v\n", cause)

	if sender != nil && settings != nil {
		if recipients := settings.AdminRecipients(); len(recipients) > 0 {
			n := report.BuildAdminFailure(recipients, cause)
			if err := sender.Send(context.Background(), n); err != nil {
				fmt.Fprintf(os.Stderr, "Error: admin notification failed: %v\n", err)
			}
		}
	}
	return engine.ExitCodeForRun(true, false, false)
}

func buildProber(settings *config.Settings) (probe.Prober, error) {
	if cfg.Runtime.Transport == "local" {
		return probe.NewLocal(), nil
	}

	sshCfg := probe.SSHConfig{
		User:                  settings.SSH.User,
		Port:                  settings.SSH.Port,
		Password:              settings.SSH.Password,
		KeyFile:               settings.SSH.KeyFile,
		Timeout:               cfg.Runtime.Timeout,
		InsecureIgnoreHostKey: settings.SSH.Insecure,
	}
	if settings.SSH.KnownHosts != "" {
		callback, err := knownhosts.New(settings.SSH.KnownHosts)
		if err != nil {
			return nil, fmt.Errorf("ssh: known_hosts: %w", err)
		}
		sshCfg.HostKeyCallback = callback
	}
	return probe.NewSSH(sshCfg)
}

func setupOutputManager() (*output.Manager, error) {
	outMgr := output.NewManager()

	if !cfg.Output.NoConsole {
		if err := outMgr.AddSink(output.NewConsoleSink(nil, cfg.Output.ConsoleFormat)); err != nil {
			_ = outMgr.Close()
			return nil, err
		}
	}

	for _, emit := range cfg.Output.Emit {
		es, err := output.NewEmitSink(os.Stdout, emit)
		if err != nil {
			_ = outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(es); err != nil {
			_ = outMgr.Close()
			return nil, err
		}
	}

	if cfg.Output.Out != "" {
		fs, err := output.NewFileSink(cfg.Output.Out, cfg.Output.OutFormat)
		if err != nil {
			_ = outMgr.Close()
			return nil, err
		}
		if err := outMgr.AddSink(fs); err != nil {
			_ = outMgr.Close()
			return nil, err
		}
	}

	return outMgr, nil
}

// deliverReport builds the operational notification and hands it to the
// delivery collaborator. A clean run sends nothing. Delivery failure after a
// completed run is not fatal, but it does mark the run as partially failed.
func deliverReport(ctx context.Context, logger *slog.Logger, sender mail.Sender, sum engine.Summary, recipients []string, runID string, code int) int {
	n, ok := report.Build(sum, recipients, runID)
	if !ok {
		if !cfg.Output.NoConsole {
			fmt.Fprintln(os.Stderr, "Nothing over threshold, no errors; no notification sent.")
		}
		return code
	}

	if sender == nil {
		fmt.Printf("Subject: %s\n\n%s", n.Subject, n.Body)
		return code
	}

	if err := sender.Send(ctx, n); err != nil {
		logger.Error("report delivery failed", "recipients", n.Recipients, "error", err)
		fmt.Fprintf(os.Stderr, "Error: report delivery failed: %v\n", err)
		if code < 2 {
			code = 2
		}
		return code
	}
	if !cfg.Output.NoConsole {
		fmt.Fprintf(os.Stderr, "Report sent to %v: %s\n", n.Recipients, n.Subject)
	}
	return code
}

func printDryRun(list *tasklist.TaskList, limit int) {
	fmt.Printf("Resolved %d tasks (%d concurrent, report to %v):\n", len(list.Tasks), limit, list.MailTo)
	for i, t := range list.Tasks {
		fmt.Printf("  %d. %s %s (max %d files)\n", i+1, t.ComputerName, t.Path, t.MaxFiles)
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// Input
	checkCmd.Flags().StringVar(&cfg.Input.TaskFile, flags.FlagTasks, "", "Path to the YAML task-list file (required)")
	checkCmd.Flags().StringVar(&cfg.Input.RunName, flags.FlagName, "", "Run name used in logs (default: task file base name)")

	// Runtime
	checkCmd.Flags().StringVar(&cfg.Runtime.Transport, flags.FlagTransport, "ssh", "Probe transport: local|ssh (default: ssh)")
	checkCmd.Flags().IntVar(&cfg.Runtime.Concurrency, flags.FlagConcurrency, 0, "Override the task list's MaxConcurrentJobs (0 = use task-list value)")
	checkCmd.Flags().DurationVar(&cfg.Runtime.Timeout, flags.FlagTimeout, cfg.Runtime.Timeout, "Per-probe transport timeout (default: 30s)")
	checkCmd.Flags().BoolVar(&cfg.Runtime.DryRun, flags.FlagDryRun, false, "Print resolved tasks without probing or mailing")

	// Mail
	checkCmd.Flags().BoolVar(&cfg.Mail.NoMail, flags.FlagNoMail, false, "Build the report but print it instead of mailing")
	checkCmd.Flags().StringVar(&settingsFile, flags.FlagConfig, "", "App settings file (SMTP/SSH); environment variables win")

	// Output
	checkCmd.Flags().StringVar(&cfg.Output.ConsoleFormat, flags.FlagConsoleFormat, "text", "Console output format: text|json|ndjson (default: text)")
	checkCmd.Flags().BoolVar(&cfg.Output.NoConsole, flags.FlagNoConsole, false, "Suppress console output (use with --emit/--out)")
	checkCmd.Flags().StringSliceVar(&cfg.Output.Emit, flags.FlagEmit, nil, "Emit additional structured stream to stdout: json|ndjson (repeatable)")
	checkCmd.Flags().StringVar(&cfg.Output.Out, flags.FlagOut, "", "Write structured results to this path")
	checkCmd.Flags().StringVar(&cfg.Output.OutFormat, flags.FlagOutFormat, "", "Structured output format for --out: json|ndjson (default: inferred from extension)")
	checkCmd.Flags().StringVar(&cfg.Output.LogDir, flags.FlagLogDir, "", "Directory for the JSON run log (empty = stderr only)")
	checkCmd.Flags().StringVar(&cfg.Output.LogLevel, flags.FlagLogLevel, "info", "Log level: debug|info|warn|error (default: info)")
}
