package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolvePaths(t *testing.T) {
	base := t.TempDir()
	cfg := Default()
	cfg.Paths.BaseDir = base
	cfg.Paths.LogsDir = filepath.Join(base, "elsewhere")

	paths, err := cfg.ResolvePaths()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(base, DefaultExportDir), paths.ExportDir)
	assert.Equal(t, filepath.Join(base, "elsewhere"), paths.LogsDir)

	require.NoError(t, paths.EnsureDirectories())
	info, err := os.Stat(paths.ExportDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.True(t, FileExists(paths.LogsDir))
}

func TestExportPath(t *testing.T) {
	paths := &Paths{ExportDir: "/tmp/exports"}

	p, err := paths.ExportPath("report.xlsx")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/exports", "report.xlsx"), p)

	for _, name := range []string{"", "../etc/passwd", "a/b.csv"} {
		_, err := paths.ExportPath(name)
		assert.Error(t, err, name)
	}
}
