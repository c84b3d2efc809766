package tasklist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validDoc = `
mailto: ops@example.com
max_concurrent_jobs: "4"
tasks:
  - computer_name: host1
    path: /var/spool/in
    max_files: "100"
  - computer_name: host2
    path: /tmp/out
    max_files: "0"
`

func TestParse_ValidDocument(t *testing.T) {
	list, err := Parse([]byte(validDoc))
	require.NoError(t, err)

	assert.Equal(t, []string{"ops@example.com"}, list.MailTo)
	assert.Equal(t, 4, list.MaxConcurrentJobs)
	require.Len(t, list.Tasks, 2)
	assert.Equal(t, "host1", list.Tasks[0].ComputerName)
	assert.Equal(t, "/var/spool/in", list.Tasks[0].Path)
	assert.Equal(t, 100, list.Tasks[0].MaxFiles)
	assert.Equal(t, 0, list.Tasks[1].MaxFiles)
}

func TestParse_UnquotedNumbersAccepted(t *testing.T) {
	doc := `
mailto: ops@example.com
max_concurrent_jobs: 2
tasks:
  - computer_name: host1
    path: /var/spool
    max_files: 7
`
	list, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, 2, list.MaxConcurrentJobs)
	assert.Equal(t, 7, list.Tasks[0].MaxFiles)
}

func TestParse_RecipientListSplitting(t *testing.T) {
	doc := `
mailto: "ops@example.com; lead@example.com, oncall@example.com"
max_concurrent_jobs: "1"
tasks: []
`
	list, err := Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, []string{"ops@example.com", "lead@example.com", "oncall@example.com"}, list.MailTo)
	assert.Empty(t, list.Tasks)
}

func TestParse_FieldErrorsAreNamedAndOrdered(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want string
	}{
		{
			name: "missing mailto",
			doc:  "max_concurrent_jobs: \"2\"\ntasks: []\n",
			want: "MailTo is required",
		},
		{
			name: "jobs not a number",
			doc:  "mailto: a@b.c\nmax_concurrent_jobs: \"a\"\ntasks: []\n",
			want: `MaxConcurrentJobs needs to be a number, got "a"`,
		},
		{
			name: "jobs below one",
			doc:  "mailto: a@b.c\nmax_concurrent_jobs: \"0\"\ntasks: []\n",
			want: "MaxConcurrentJobs needs to be >= 1, got 0",
		},
		{
			name: "missing computer name",
			doc: `
mailto: a@b.c
max_concurrent_jobs: "1"
tasks:
  - path: /x
    max_files: "1"
`,
			want: "task 1: ComputerName is required",
		},
		{
			name: "missing path",
			doc: `
mailto: a@b.c
max_concurrent_jobs: "1"
tasks:
  - computer_name: h
    max_files: "1"
`,
			want: "task 1: Path is required",
		},
		{
			name: "max files not a number",
			doc: `
mailto: a@b.c
max_concurrent_jobs: "1"
tasks:
  - computer_name: h
    path: /x
    max_files: "x"
`,
			want: `task 1: MaxFiles needs to be a number, got "x"`,
		},
		{
			name: "max files negative",
			doc: `
mailto: a@b.c
max_concurrent_jobs: "1"
tasks:
  - computer_name: h
    path: /x
    max_files: "-1"
`,
			want: "task 1: MaxFiles needs to be >= 0, got -1",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse([]byte(tc.doc))
			require.Error(t, err)
			assert.Equal(t, tc.want, err.Error())
		})
	}
}

func TestParse_FailFastReportsFirstViolationOnly(t *testing.T) {
	// Both MailTo and the task are broken; only the first rule in field
	// order may surface.
	doc := `
max_concurrent_jobs: "a"
tasks:
  - path: /x
`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Equal(t, "MailTo is required", err.Error())
}

func TestParse_SecondTaskErrorNamesItsIndex(t *testing.T) {
	doc := `
mailto: a@b.c
max_concurrent_jobs: "1"
tasks:
  - computer_name: h1
    path: /ok
    max_files: "1"
  - computer_name: h2
    path: /bad
    max_files: "lots"
`
	_, err := Parse([]byte(doc))
	require.Error(t, err)
	assert.Equal(t, `task 2: MaxFiles needs to be a number, got "lots"`, err.Error())
}

func TestLoad_ReadsFromDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validDoc), 0o644))

	list, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, list.Tasks, 2)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read task list")
}

func TestParse_MalformedYAML(t *testing.T) {
	_, err := Parse([]byte("tasks: [unbalanced"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse task list")
}
