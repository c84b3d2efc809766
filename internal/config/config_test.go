package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	c := New()
	c.Input.TaskFile = "tasks.yaml"
	return c
}

func TestValidate_Defaults(t *testing.T) {
	c := validConfig()
	require.NoError(t, c.Validate())

	assert.Equal(t, "ssh", c.Runtime.Transport)
	assert.Equal(t, "text", c.Output.ConsoleFormat)
	assert.Equal(t, "info", c.Output.LogLevel)
	assert.Equal(t, 30*time.Second, c.Runtime.Timeout)
}

func TestValidate_TaskFileRequired(t *testing.T) {
	c := New()
	err := c.Validate()
	require.Error(t, err)
	assert.Equal(t, "--tasks is required", err.Error())
}

func TestValidate_RunNameDefaultsToTaskFileBase(t *testing.T) {
	c := validConfig()
	c.Input.TaskFile = "/etc/dirsentry/spool-watch.yaml"
	require.NoError(t, c.Validate())
	assert.Equal(t, "spool-watch", c.Input.RunName)
}

func TestValidate_ExplicitRunNameKept(t *testing.T) {
	c := validConfig()
	c.Input.RunName = "nightly"
	require.NoError(t, c.Validate())
	assert.Equal(t, "nightly", c.Input.RunName)
}

func TestValidate_Transport(t *testing.T) {
	c := validConfig()
	c.Runtime.Transport = "telnet"
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--transport")

	c = validConfig()
	c.Runtime.Transport = " LOCAL "
	require.NoError(t, c.Validate())
	assert.Equal(t, "local", c.Runtime.Transport)
}

func TestValidate_Timeout(t *testing.T) {
	c := validConfig()
	c.Runtime.Timeout = 0
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--timeout")
}

func TestValidate_ConsoleFormat(t *testing.T) {
	c := validConfig()
	c.Output.ConsoleFormat = "xml"
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--console-format")
}

func TestValidate_EmitValues(t *testing.T) {
	c := validConfig()
	c.Output.Emit = []string{"json,ndjson"}
	require.NoError(t, c.Validate())
	assert.Equal(t, []string{"json", "ndjson"}, c.Output.Emit)

	c = validConfig()
	c.Output.Emit = []string{"xml"}
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--emit")
}

func TestValidate_OutFormatInference(t *testing.T) {
	c := validConfig()
	c.Output.Out = "results.ndjson"
	require.NoError(t, c.Validate())
	assert.Equal(t, "ndjson", c.Output.OutFormat)

	c = validConfig()
	c.Output.Out = "results.csv"
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--out-format")
}

func TestValidate_LogLevel(t *testing.T) {
	c := validConfig()
	c.Output.LogLevel = "chatty"
	err := c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--log-level")
}

func TestValidate_FixedOrderFirstViolationWins(t *testing.T) {
	// Both the task file and the transport are wrong; input is checked first.
	c := New()
	c.Runtime.Transport = "telnet"
	err := c.Validate()
	require.Error(t, err)
	assert.Equal(t, "--tasks is required", err.Error())
}
