package vkcube

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func spirvWords(words ...uint32) []byte {
	out := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

func TestLoadShaderCode(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "vert.spv")
	code := spirvWords(spirvMagic, 0x00010000, 0, 8, 0)
	require.NoError(t, os.WriteFile(good, code, 0o644))

	got, err := LoadShaderCode(good)
	require.NoError(t, err)
	assert.Equal(t, code, got)
	assert.Equal(t, []uint32{spirvMagic, 0x00010000, 0, 8, 0}, sliceUint32(got))
}

func TestLoadShaderCodeFailures(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadShaderCode(filepath.Join(dir, "missing.spv"))
	assert.Error(t, err)

	odd := filepath.Join(dir, "odd.spv")
	require.NoError(t, os.WriteFile(odd, []byte{0x03, 0x02, 0x23}, 0o644))
	_, err = LoadShaderCode(odd)
	assert.True(t, errors.Is(err, ErrInvalidShader))

	glsl := filepath.Join(dir, "shader.vert")
	require.NoError(t, os.WriteFile(glsl, []byte("#version 450\n\x00\x00\x00"), 0o644))
	_, err = LoadShaderCode(glsl)
	assert.True(t, errors.Is(err, ErrInvalidShader))
}
