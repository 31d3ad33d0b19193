package configpaths_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/padrelay/internal/configpaths"
)

func TestConfigCandidatePaths(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix layout")
	}
	t.Setenv("XDG_CONFIG_HOME", "/xdg")
	t.Setenv(configpaths.EnvConfig, "")

	jsonPaths, yamlPaths, tomlPaths := configpaths.ConfigCandidatePaths("/tmp/mine.toml")

	require.NotEmpty(t, tomlPaths)
	assert.Equal(t, "/tmp/mine.toml", tomlPaths[0])
	assert.Contains(t, jsonPaths, "/xdg/padrelay/relay.json")
	assert.Contains(t, yamlPaths, "/xdg/padrelay/config.yml")
	assert.Contains(t, tomlPaths, "/etc/padrelay/config.toml")
	assert.NotContains(t, jsonPaths, "/tmp/mine.toml")
}

func TestConfigCandidatePathsFromEnv(t *testing.T) {
	t.Setenv(configpaths.EnvConfig, "/srv/relay.yaml")

	_, yamlPaths, _ := configpaths.ConfigCandidatePaths("")
	require.NotEmpty(t, yamlPaths)
	assert.Equal(t, "/srv/relay.yaml", yamlPaths[0])
}

func TestDefaultNamedConfigPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix layout")
	}
	t.Setenv("XDG_CONFIG_HOME", "/xdg")

	p, err := configpaths.DefaultNamedConfigPath("relay", "yml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg", "padrelay", "relay.yaml"), p)

	p, err = configpaths.DefaultConfigPath("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/xdg", "padrelay", "config.json"), p)
}
