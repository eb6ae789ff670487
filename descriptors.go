package vkcube

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//newDescriptorPool sizes a pool for sets sets, each with one uniform buffer and one sampler.
func newDescriptorPool(device vk.Device, sets int) (vk.DescriptorPool, error) {
	var pool vk.DescriptorPool
	ret := vk.CreateDescriptorPool(device, &vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       uint32(sets),
		PoolSizeCount: 2,
		PPoolSizes: []vk.DescriptorPoolSize{
			{Type: vk.DescriptorTypeUniformBuffer, DescriptorCount: uint32(sets)},
			{Type: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: uint32(sets)},
		},
	}, nil, &pool)
	if isError(ret) {
		return pool, errors.Wrap(NewError(ret), "create descriptor pool")
	}
	return pool, nil
}

func allocateDescriptorSet(device vk.Device, pool vk.DescriptorPool, layout vk.DescriptorSetLayout) (vk.DescriptorSet, error) {
	var set vk.DescriptorSet
	ret := vk.AllocateDescriptorSets(device, &vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout},
	}, &set)
	if isError(ret) {
		return set, errors.Wrap(NewError(ret), "allocate descriptor set")
	}
	return set, nil
}

//writeDescriptorSet points binding 0 at uniform and binding 1 at the texture.
func writeDescriptorSet(device vk.Device, set vk.DescriptorSet, uniform *CoreBuffer, texture *CoreTexture) {
	writes := []vk.WriteDescriptorSet{
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      0,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeUniformBuffer,
			PBufferInfo: []vk.DescriptorBufferInfo{{
				Buffer: uniform.Buffer,
				Offset: 0,
				Range:  uniform.Size,
			}},
		},
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      1,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			PImageInfo: []vk.DescriptorImageInfo{{
				Sampler:     texture.Sampler,
				ImageView:   texture.Image.View,
				ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
			}},
		},
	}
	vk.UpdateDescriptorSets(device, uint32(len(writes)), writes, 0, nil)
}
