package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aria-lang/popgen-go/internal/config"
)

func TestColumnsOf(t *testing.T) {
	columns, ok := columnsOf([]string{"ACG", "ATG"})
	require.True(t, ok)
	assert.Equal(t, []string{"AA", "CT", "GG"}, columns)

	_, ok = columnsOf([]string{"ACG"})
	assert.False(t, ok)
	_, ok = columnsOf([]string{"ACG", "AC"})
	assert.False(t, ok)
}

func TestLoadConfig(t *testing.T) {
	c, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.Default(), c)

	path := filepath.Join(t.TempDir(), "run.yaml")
	want := config.Default()
	want.Ingroup = "africa"
	want.Coding = true
	require.NoError(t, config.Save(path, want))

	c, err = loadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "africa", c.Ingroup)
	assert.True(t, c.Coding)
}

func TestFormatStat(t *testing.T) {
	assert.Equal(t, "0.250000", formatStat(0.25))
}
