package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	srx "github.com/jamesainslie/go-srx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCommand_Stdin(t *testing.T) {
	rules := testdataPath(t, "default.srx")
	t.Chdir(t.TempDir())

	input := "Mr. Smith went home. He left.\nDr. No. Yes!\r\n\nLast line"
	stdout, _, err := runCommand(NewSplitCommand(), input, "-s", rules)
	require.NoError(t, err)

	want := "Mr. Smith went home.\n He left.\nDr. No.\n Yes!\n\nLast line\n"
	assert.Equal(t, want, stdout)
}

func TestSplitCommand_Language(t *testing.T) {
	rules := testdataPath(t, "default.srx")
	t.Chdir(t.TempDir())

	stdout, _, err := runCommand(NewSplitCommand(), "今日は晴れ。明日は雨！", "-s", rules, "-l", "ja")
	require.NoError(t, err)
	assert.Equal(t, "今日は晴れ。\n明日は雨！\n", stdout)
}

func TestSplitCommand_Files(t *testing.T) {
	rules := testdataPath(t, "default.srx")
	dir := t.TempDir()
	t.Chdir(dir)

	in := writeFile(t, dir, "in.txt", "One. Two.\n")
	out := filepath.Join(dir, "out.txt")

	stdout, _, err := runCommand(NewSplitCommand(), "", "--srxfile", rules, "--input", in, "--output", out)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "One.\n Two.\n", string(got))
}

func TestSplitCommand_ConfigFile(t *testing.T) {
	rules := testdataPath(t, "default.srx")
	dir := t.TempDir()
	t.Chdir(dir)
	writeFile(t, dir, "srx.yaml", "srxfile: "+rules+"\nlanguage: de\n")

	stdout, _, err := runCommand(NewSplitCommand(), "Am 3. oktober war es kalt. Gut.")
	require.NoError(t, err)
	assert.Equal(t, "Am 3. oktober war es kalt.\n Gut.\n", stdout)
}

func TestSplitCommand_Env(t *testing.T) {
	rules := testdataPath(t, "default.srx")
	t.Chdir(t.TempDir())
	t.Setenv("SRX_SRXFILE", rules)

	stdout, _, err := runCommand(NewSplitCommand(), "A. B c.")
	require.NoError(t, err)
	assert.Equal(t, "A. B c.\n", stdout)
}

func TestSplitCommand_Verbose(t *testing.T) {
	rules := testdataPath(t, "default.srx")
	t.Chdir(t.TempDir())

	_, stderr, err := runCommand(NewSplitCommand(), "Hi.", "-s", rules, "-v")
	require.NoError(t, err)

	for _, want := range []string{"Rule errors (1)", "Broken", "rule 0: beforebreak", "Rules for en (8)", "English#0", "Default#5", "resolved rules"} {
		assert.Contains(t, stderr, want)
	}
}

func TestSplitCommand_Errors(t *testing.T) {
	rules := testdataPath(t, "default.srx")
	dir := t.TempDir()
	t.Chdir(dir)
	bad := writeFile(t, dir, "bad.srx", "<srx><body>")

	tests := []struct {
		name      string
		args      []string
		errSubstr string
		errIs     error
	}{
		{
			name:      "missing srxfile",
			args:      nil,
			errSubstr: "srxfile is required",
		},
		{
			name:      "ruleset not found",
			args:      []string{"-s", filepath.Join(dir, "none.srx")},
			errSubstr: "open ruleset",
		},
		{
			name:  "invalid ruleset",
			args:  []string{"-s", bad},
			errIs: srx.ErrInvalidDocument,
		},
		{
			name:      "input not found",
			args:      []string{"-s", rules, "-i", filepath.Join(dir, "none.txt")},
			errSubstr: "open input",
		},
		{
			name:      "bad log level",
			args:      []string{"-s", rules, "--log-level", "loud"},
			errSubstr: "invalid log_level",
		},
		{
			name:      "positional args",
			args:      []string{"-s", rules, "extra"},
			errSubstr: "unknown command",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := runCommand(NewSplitCommand(), "text", tt.args...)
			require.Error(t, err)
			if tt.errIs != nil {
				assert.ErrorIs(t, err, tt.errIs)
			}
			if tt.errSubstr != "" {
				assert.Contains(t, err.Error(), tt.errSubstr)
			}
		})
	}
}

func TestSplitCommand_Cancelled(t *testing.T) {
	rules := testdataPath(t, "default.srx")
	t.Chdir(t.TempDir())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cmd := NewSplitCommand()
	cmd.SetContext(ctx)
	_, _, err := runCommand(cmd, "One. Two.", "-s", rules)
	assert.ErrorIs(t, err, context.Canceled)
}
