package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	assert.Equal(t, 8000, c.Server.Port)
	assert.Equal(t, []string{"*"}, c.Server.CORSOrigins)
	assert.Equal(t, 24, c.Simulation.DefaultSteps)
	assert.Equal(t, 100, c.Simulation.DefaultPopulation)
	assert.Equal(t, int64(42), c.Simulation.DefaultSeed)
	assert.Equal(t, 6, c.Simulation.DetectorWindow)
	require.NoError(t, c.Validate())
}

func TestLoadPartialFileFillsDefaults(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
simulation:
  default_population: 250
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, c.Server.Port)
	assert.Equal(t, 250, c.Simulation.DefaultPopulation)
	// Untouched fields keep defaults.
	assert.Equal(t, 24, c.Simulation.DefaultSteps)
	assert.Equal(t, []string{"*"}, c.Server.CORSOrigins)
}

func TestLoadFullFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
  cors_origins: ["https://example.com"]
simulation:
  default_steps: 36
  default_population: 200
  default_seed: 7
  detector_window: 4
dataset:
  out_dir: out
  db_path: out/runs.db
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com"}, c.Server.CORSOrigins)
	assert.Equal(t, 36, c.Simulation.DefaultSteps)
	assert.Equal(t, int64(7), c.Simulation.DefaultSeed)
	assert.Equal(t, 4, c.Simulation.DetectorWindow)
	assert.Equal(t, "out/runs.db", c.Dataset.DBPath)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "server: [not a mapping")
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	c := Default()
	c.Server.Port = 70000
	assert.Error(t, c.Validate())

	c = Default()
	c.Simulation.DefaultSteps = -1
	assert.Error(t, c.Validate())

	c = Default()
	c.Simulation.DetectorWindow = -2
	assert.Error(t, c.Validate())
}
