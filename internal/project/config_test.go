package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFindsManifestUpward(t *testing.T) {
	root := t.TempDir()
	path := writeManifest(t, root, `
[analysis]
jobs = 4
max_diagnostics = 20

[output]
color = "off"

[cache]
enabled = true
dir = ".cache"
`)
	nested := filepath.Join(root, "src", "contracts")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	m, ok, err := Load(nested)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, path, m.Path)
	assert.Equal(t, root, m.Root)
	assert.Equal(t, 4, m.Config.Analysis.Jobs)
	assert.Equal(t, 20, m.Config.Analysis.MaxDiagnostics)
	assert.Equal(t, "off", m.Config.Output.Color)
	assert.Equal(t, "pretty", m.Config.Output.Format, "unset keys keep defaults")
	assert.True(t, m.Config.Cache.Enabled)
	assert.Equal(t, filepath.Join(root, ".cache"), m.CacheDir())
}

func TestLoadWithoutManifest(t *testing.T) {
	m, ok, err := Load(t.TempDir())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, Default(), m.Config)
}

func TestLoadConfigRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"bad color", "[output]\ncolor = \"sometimes\"\n", "[output].color"},
		{"bad format", "[output]\nformat = \"xml\"\n", "[output].format"},
		{"negative jobs", "[analysis]\njobs = -1\n", "[analysis].jobs"},
		{"unknown key", "[analysis]\nstrict = true\n", "unknown keys: analysis.strict"},
		{"not toml", "[analysis\n", "failed to parse TOML"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), tt.content)
			_, err := LoadConfig(path)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}
