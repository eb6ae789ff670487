//go:generate glslc shaders/shader.vert -o shaders/vert.spv
//go:generate glslc shaders/shader.frag -o shaders/frag.spv

package vkcube

import (
	"encoding/binary"
	"os"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

const spirvMagic = 0x07230203

//LoadShaderCode reads a precompiled SPIR-V blob from path.
func LoadShaderCode(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read shader")
	}
	if err := validateSPIRV(data); err != nil {
		return nil, errors.Wrap(err, path)
	}
	return data, nil
}

func validateSPIRV(data []byte) error {
	if len(data) < 4 || len(data)%4 != 0 {
		return errors.Wrapf(ErrInvalidShader, "length %d is not a positive multiple of 4", len(data))
	}
	if binary.LittleEndian.Uint32(data) != spirvMagic {
		return errors.Wrap(ErrInvalidShader, "missing SPIR-V magic number")
	}
	return nil
}

//sliceUint32 repacks the byte code into the word slice Vulkan expects. Copying avoids
//alignment assumptions about data.
func sliceUint32(data []byte) []uint32 {
	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(data[i*4:])
	}
	return words
}

func NewShaderModule(device vk.Device, code []byte) (vk.ShaderModule, error) {
	if err := validateSPIRV(code); err != nil {
		return vk.NullShaderModule, err
	}
	var module vk.ShaderModule
	ret := vk.CreateShaderModule(device, &vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code)),
		PCode:    sliceUint32(code),
	}, nil, &module)
	if isError(ret) {
		return vk.NullShaderModule, errors.Wrap(NewError(ret), "create shader module")
	}
	return module, nil
}
