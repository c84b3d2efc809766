package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"dirsentry/internal/flags"
	"dirsentry/internal/tasklist"
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "Inspect task-list files",
}

var tasksValidateFile string

var tasksValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a task-list file without running any checks",
	Long: `Parse and validate a task-list file the same way check does, then print
the resolved tasks. No probes run and no mail is sent.`,
	Run: func(cmd *cobra.Command, args []string) {
		if tasksValidateFile == "" {
			fmt.Fprintln(os.Stderr, "Error: --tasks is required")
			os.Exit(3)
		}
		list, err := tasklist.Load(tasksValidateFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(3)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Task list OK: %d tasks, %d concurrent, report to %v\n",
			len(list.Tasks), list.MaxConcurrentJobs, list.MailTo)
		for i, t := range list.Tasks {
			fmt.Fprintf(cmd.OutOrStdout(), "  %d. %s %s (max %d files)\n", i+1, t.ComputerName, t.Path, t.MaxFiles)
		}
	},
}

func init() {
	rootCmd.AddCommand(tasksCmd)
	tasksCmd.AddCommand(tasksValidateCmd)
	tasksValidateCmd.Flags().StringVar(&tasksValidateFile, flags.FlagTasks, "", "Path to the YAML task-list file (required)")
}
