package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirsentry/internal/config"
	"dirsentry/internal/mail"
	"dirsentry/internal/report"
)

// recordingSender captures notifications instead of talking to an SMTP server.
type recordingSender struct {
	sent []report.Notification
}

func (r *recordingSender) Send(_ context.Context, n report.Notification) error {
	r.sent = append(r.sent, n)
	return nil
}

// setupCheckTest isolates the package-level command state and routes delivery
// to a recording fake with an admin recipient configured.
func setupCheckTest(t *testing.T) *recordingSender {
	t.Helper()

	prevCfg, prevFile, prevNew := cfg, settingsFile, newSender
	t.Cleanup(func() { cfg, settingsFile, newSender = prevCfg, prevFile, prevNew })

	cfg = config.New()
	cfg.Output.NoConsole = true
	settingsFile = ""

	rec := &recordingSender{}
	newSender = func(mail.SMTPConfig) (mail.Sender, error) { return rec, nil }

	t.Setenv("DIRSENTRY_SMTP_HOST", "smtp.example.com")
	t.Setenv("DIRSENTRY_SMTP_FROM", "dirsentry@example.com")
	t.Setenv("DIRSENTRY_ADMIN_MAILTO", "ops@example.com")
	return rec
}

func TestRunCheck_InvalidTaskListNotifiesAdminWithoutProbing(t *testing.T) {
	rec := setupCheckTest(t)

	// A directory that would be a finding if any probe ran.
	spool := filepath.Join(t.TempDir(), "spool")
	require.NoError(t, os.MkdirAll(spool, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(spool, "a.dat"), []byte("x"), 0o644))

	// No mail_to, so the task list fails validation on its first rule.
	taskFile := filepath.Join(t.TempDir(), "tasks.yaml")
	require.NoError(t, os.WriteFile(taskFile, []byte(
		"max_concurrent_jobs: 1\ntasks:\n  - computer_name: host1\n    path: "+spool+"\n    max_files: 0\n",
	), 0o644))

	cfg.Input.TaskFile = taskFile
	cfg.Runtime.Transport = "local"

	code := runCheck(context.Background())

	assert.Equal(t, 3, code)
	require.Len(t, rec.sent, 1, "exactly one admin notification, no operational report")
	n := rec.sent[0]
	assert.Equal(t, report.AdminFailureSubject, n.Subject)
	assert.Equal(t, []string{"ops@example.com"}, n.Recipients)
	assert.Equal(t, report.PriorityHigh, n.Priority)
	assert.Contains(t, n.Body, "MailTo is required")
	assert.NotContains(t, n.Body, "over threshold", "no task may have executed")
}

func TestRunCheck_MissingTaskFlagNotifiesAdmin(t *testing.T) {
	rec := setupCheckTest(t)

	code := runCheck(context.Background())

	assert.Equal(t, 3, code)
	require.Len(t, rec.sent, 1)
	assert.Equal(t, report.AdminFailureSubject, rec.sent[0].Subject)
	assert.Contains(t, rec.sent[0].Body, "--tasks is required")
}

func TestRunCheck_NoAdminRecipientStillExitsFatal(t *testing.T) {
	rec := setupCheckTest(t)
	t.Setenv("DIRSENTRY_ADMIN_MAILTO", "")

	code := runCheck(context.Background())

	assert.Equal(t, 3, code)
	assert.Empty(t, rec.sent, "nothing to address the notification to")
}
