package vkcube

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeImagePNG(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.NRGBA{R: 255, A: 255})
	src.Set(1, 0, color.NRGBA{B: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	path := filepath.Join(t.TempDir(), "tex.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	pixels, w, h, err := DecodeImageFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, w)
	assert.Equal(t, 1, h)
	assert.Equal(t, []byte{255, 0, 0, 255, 0, 0, 255, 255}, pixels)
}

func TestDecodeImagePPM(t *testing.T) {
	data := append([]byte("P6\n2 2\n255\n"),
		10, 20, 30, 40, 50, 60,
		70, 80, 90, 100, 110, 120,
	)
	pixels, w, h, err := DecodeImage(bytes.NewReader(data), ".PPM")
	require.NoError(t, err)
	assert.Equal(t, 2, w)
	assert.Equal(t, 2, h)
	require.Len(t, pixels, 16)
	assert.Equal(t, []byte{10, 20, 30, 255}, pixels[:4])
	assert.Equal(t, []byte{100, 110, 120, 255}, pixels[12:])
}

func TestDecodeImageFailures(t *testing.T) {
	_, _, _, err := DecodeImageFile(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	_, _, _, err = DecodeImage(bytes.NewReader([]byte("not an image")), ".png")
	assert.Error(t, err)
}
