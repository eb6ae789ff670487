package vkcube

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	vk "github.com/vulkan-go/vulkan"
)

func memoryProps(flags ...vk.MemoryPropertyFlagBits) vk.PhysicalDeviceMemoryProperties {
	var props vk.PhysicalDeviceMemoryProperties
	props.MemoryTypeCount = uint32(len(flags))
	for i, f := range flags {
		props.MemoryTypes[i] = vk.MemoryType{PropertyFlags: vk.MemoryPropertyFlags(f)}
	}
	return props
}

func TestFindMemoryType(t *testing.T) {
	props := memoryProps(
		vk.MemoryPropertyDeviceLocalBit,
		vk.MemoryPropertyHostVisibleBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit,
	)
	hostCoherent := vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)

	idx, err := FindMemoryType(props, 0b111, hostCoherent)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), idx)

	idx, err = FindMemoryType(props, 0b111, vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	require.NoError(t, err)
	assert.Equal(t, uint32(0), idx)

	//the filter hides type 0 so the first visible match wins
	idx, err = FindMemoryType(props, 0b110, vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit))
	require.NoError(t, err)
	assert.Equal(t, uint32(1), idx)
}

func TestFindMemoryTypeNoMatch(t *testing.T) {
	props := memoryProps(
		vk.MemoryPropertyDeviceLocalBit,
		vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit,
	)

	//bit 5 names a type the device does not have
	_, err := FindMemoryType(props, 1<<5, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoSuitableMemoryType))

	//allowed types exist but none is a superset of the requested flags
	_, err = FindMemoryType(props, 0b01, vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit))
	assert.True(t, errors.Is(err, ErrNoSuitableMemoryType))
}
