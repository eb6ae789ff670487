package vkcube

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 800, cfg.Width)
	assert.Equal(t, 600, cfg.Height)
	assert.True(t, cfg.FrontFaceCCW)
	require.NoError(t, cfg.Validate())
}

func TestLoadConfigOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vkcube.toml")
	doc := `
title = "cube"
width = 1024
validation = false
texture = "assets/crate.ppm"
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "cube", cfg.Title)
	assert.Equal(t, 1024, cfg.Width)
	assert.Equal(t, 600, cfg.Height)
	assert.False(t, cfg.Validation)
	assert.Equal(t, "assets/crate.ppm", cfg.Texture)
	assert.Equal(t, "shaders/vert.spv", cfg.VertexShader)
}

func TestLoadConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("width = -1\n"), 0o644))
	_, err := LoadConfig(path)
	assert.Error(t, err)

	require.NoError(t, os.WriteFile(path, []byte("width = [\n"), 0o644))
	_, err = LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigIfExistsMissing(t *testing.T) {
	cfg, err := LoadConfigIfExists(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}
