package vkcube

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeAssetTree(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.VertexShader = filepath.Join(dir, "vert.spv")
	cfg.FragmentShader = filepath.Join(dir, "frag.spv")
	cfg.Texture = filepath.Join(dir, "texture.png")

	require.NoError(t, os.WriteFile(cfg.VertexShader, spirvWords(spirvMagic, 1, 2, 3), 0o644))
	require.NoError(t, os.WriteFile(cfg.FragmentShader, spirvWords(spirvMagic, 4, 5), 0o644))

	img := image.NewNRGBA(image.Rect(0, 0, 4, 3))
	for y := 0; y < 3; y++ {
		for x := 0; x < 4; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 60), G: uint8(y * 80), A: 255})
		}
	}
	f, err := os.Create(cfg.Texture)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())
	return cfg
}

func TestLoadAssets(t *testing.T) {
	cfg := writeAssetTree(t)

	assets, err := LoadAssets(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, spirvWords(spirvMagic, 1, 2, 3), assets.VertexShader)
	assert.Equal(t, spirvWords(spirvMagic, 4, 5), assets.FragmentShader)
	assert.Equal(t, 4, assets.Width)
	assert.Equal(t, 3, assets.Height)
	assert.Len(t, assets.Pixels, 4*3*4)
}

func TestLoadAssetsMissingShader(t *testing.T) {
	cfg := writeAssetTree(t)
	require.NoError(t, os.Remove(cfg.FragmentShader))

	assets, err := LoadAssets(context.Background(), cfg)
	require.Error(t, err)
	assert.Nil(t, assets)
	assert.Contains(t, err.Error(), "fragment shader")
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestLoadAssetsCancelled(t *testing.T) {
	cfg := writeAssetTree(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LoadAssets(ctx, cfg)
	assert.ErrorIs(t, err, context.Canceled)
}
