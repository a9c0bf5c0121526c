package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unsafeCall = `unsafe fn mod_priv() {}

pub fn call_it() {
    mod_priv()
}
`

func writeSource(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	t.Chdir(t.TempDir())
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestResolveColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	tests := []struct {
		mode string
		tty  bool
		want bool
	}{
		{"", true, true},
		{"auto", false, false},
		{"on", false, true},
		{"off", true, false},
	}
	for _, tt := range tests {
		got, err := resolveColor(tt.mode, tt.tty)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "mode %q tty %v", tt.mode, tt.tty)
	}

	_, err := resolveColor("always", true)
	assert.Error(t, err)
}

func TestCollectSources(t *testing.T) {
	dir := t.TempDir()
	b := writeSource(t, dir, "sub/b.fe", "")
	a := writeSource(t, dir, "a.fe", "")
	writeSource(t, dir, "notes.txt", "")
	explicit := writeSource(t, t.TempDir(), "other.src", "")

	paths, err := collectSources([]string{dir, explicit})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b, explicit}, paths)

	_, err = collectSources([]string{filepath.Join(dir, "missing.fe")})
	assert.Error(t, err)
}

func TestCheckReportsFailures(t *testing.T) {
	path := writeSource(t, t.TempDir(), "bad.fe", unsafeCall)

	stdout, stderr, err := execute(t, "check", "--color", "off", path)
	require.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, stdout, "error: unsafe function `mod_priv` can only be called in an unsafe function or block")
	assert.Contains(t, stdout, "  ┌─ "+path+":4:5\n")
	assert.Contains(t, stderr, "Checked 1 file in ")
	assert.Contains(t, stderr, "1 error, 0 warnings")
}

func TestCheckCleanFile(t *testing.T) {
	path := writeSource(t, t.TempDir(), "ok.fe", "pub fn call_it() {}\n")

	stdout, stderr, err := execute(t, "check", "--color", "off", path)
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "0 errors, 0 warnings")
}

func TestCheckJSONReport(t *testing.T) {
	dir := t.TempDir()
	bad := writeSource(t, dir, "a.fe", unsafeCall)
	ok := writeSource(t, dir, "b.fe", "pub fn call_it() {}\n")

	stdout, _, err := execute(t, "check", "--format", "json", "--color", "off", dir)
	require.ErrorIs(t, err, errCheckFailed)

	var report checkReport
	require.NoError(t, json.Unmarshal([]byte(stdout), &report))
	assert.Equal(t, 1, report.Errors)
	require.Len(t, report.Units, 2)
	assert.Equal(t, bad, report.Units[0].Path)
	require.Len(t, report.Units[0].Diagnostics, 1)
	assert.Equal(t, 4, report.Units[0].Diagnostics[0].Primary.Span.Start.Line)
	assert.Equal(t, "an unsafe function is called from a safe context", report.Units[0].Diagnostics[0].Description)
	assert.Equal(t, ok, report.Units[1].Path)
	assert.Empty(t, report.Units[1].Diagnostics)
}

func TestCheckRejectsUnknownFormat(t *testing.T) {
	path := writeSource(t, t.TempDir(), "ok.fe", "pub fn call_it() {}\n")

	_, _, err := execute(t, "check", "--format", "xml", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[output].format")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ferrum "+version+"\n", stdout)
}
