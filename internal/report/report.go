// Package report turns an aggregated run summary into outbound notification
// payloads for the delivery collaborator.
package report

import (
	"fmt"
	"strings"

	"dirsentry/internal/engine"
)

// Priority levels understood by the delivery collaborator.
const (
	PriorityNormal = "normal"
	PriorityHigh   = "high"
)

// AdminFailureSubject is the fixed subject for the admin failure
// notification sent when a run cannot start at all.
const AdminFailureSubject = "dirsentry: run failed"

// Notification is one outbound email record.
type Notification struct {
	Recipients []string
	Subject    string
	Priority   string
	Body       string
}

// Build renders the end-of-run operational report. The second return value
// is false when there is nothing to send: no over-threshold findings, no
// failed tasks, and no run errors.
func Build(sum engine.Summary, recipients []string, runID string) (Notification, bool) {
	if sum.Empty() {
		return Notification{}, false
	}

	priority := PriorityNormal
	if sum.ErrorCount() > 0 {
		priority = PriorityHigh
	}

	return Notification{
		Recipients: recipients,
		Subject:    Subject(sum),
		Priority:   priority,
		Body:       body(sum, runID),
	}, true
}

// BuildAdminFailure renders the notification for a setup error that stopped
// the run before any task executed. The body carries the single causing
// error.
func BuildAdminFailure(recipients []string, cause error) Notification {
	return Notification{
		Recipients: recipients,
		Subject:    AdminFailureSubject,
		Priority:   PriorityHigh,
		Body:       fmt.Sprintf("The monitoring run could not start.\n\nError: %v\n", cause),
	}
}

// Subject encodes the total over-threshold file count, suffixed with the
// error count when any task or run errors occurred:
//
//	"5 files"
//	"5 files, 1 error"
//	"0 files, 2 errors"
func Subject(sum engine.Summary) string {
	subject := fmt.Sprintf("%d files", sum.TotalFilesOverThreshold)
	if n := sum.ErrorCount(); n > 0 {
		subject += fmt.Sprintf(", %d %s", n, errorWord(n))
	}
	return subject
}

func errorWord(n int) string {
	if n == 1 {
		return "error"
	}
	return "errors"
}

func body(sum engine.Summary, runID string) string {
	var b strings.Builder

	if len(sum.Findings) > 0 {
		b.WriteString("Directories over threshold:\n\n")
		writeFindingsTable(&b, sum.Findings)
		b.WriteString("\n")
		fmt.Fprintf(&b, "Total files over threshold: %d\n", sum.TotalFilesOverThreshold)
	}

	if len(sum.Failed) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Task errors:\n\n")
		for _, f := range sum.Failed {
			fmt.Fprintf(&b, "  - %s %s (max %d): %s\n",
				f.Task.ComputerName, f.Task.Path, f.Task.MaxFiles, f.Message)
		}
	}

	if len(sum.RunErrors) > 0 {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Run errors:\n\n")
		for _, msg := range sum.RunErrors {
			fmt.Fprintf(&b, "  - %s\n", msg)
		}
	}

	if runID != "" {
		fmt.Fprintf(&b, "\nRun ID: %s\n", runID)
	}
	return b.String()
}

func writeFindingsTable(b *strings.Builder, findings []engine.Finding) {
	pathW, hostW := len("Path"), len("Host")
	for _, f := range findings {
		if len(f.Task.Path) > pathW {
			pathW = len(f.Task.Path)
		}
		if len(f.Task.ComputerName) > hostW {
			hostW = len(f.Task.ComputerName)
		}
	}

	fmt.Fprintf(b, "  %-*s  %-*s  %8s  %8s\n", pathW, "Path", hostW, "Host", "Files", "Max")
	for _, f := range findings {
		fmt.Fprintf(b, "  %-*s  %-*s  %8d  %8d\n",
			pathW, f.Task.Path, hostW, f.Task.ComputerName, f.FileCount, f.Task.MaxFiles)
	}
}
