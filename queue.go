package vkcube

import vk "github.com/vulkan-go/vulkan"

//QueueFamilies is a fully resolved set of queue family indices for one physical device.
type QueueFamilies struct {
	Graphics uint32
	Present  uint32
	Transfer uint32
	//DedicatedTransfer is set when Transfer names a family other than Graphics.
	DedicatedTransfer bool
}

//Unique returns the distinct family indices in graphics, present, transfer order.
func (q QueueFamilies) Unique() []uint32 {
	out := []uint32{q.Graphics}
	for _, idx := range []uint32{q.Present, q.Transfer} {
		seen := false
		for _, have := range out {
			if have == idx {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, idx)
		}
	}
	return out
}

//SharedFamilies lists the families that touch uploaded resources. A single entry means
//exclusive sharing is enough.
func (q QueueFamilies) SharedFamilies() []uint32 {
	if q.DedicatedTransfer {
		return []uint32{q.Graphics, q.Transfer}
	}
	return []uint32{q.Graphics}
}

//ResolveQueueFamilies picks graphics, present and transfer families from props.
//Graphics and present take the first capable family; transfer prefers a family with the
//transfer bit that is not the graphics family and falls back to graphics otherwise.
//A nil presentSupport resolves a headless device where present mirrors graphics.
func ResolveQueueFamilies(props []vk.QueueFamilyProperties, presentSupport func(index uint32) bool) (QueueFamilies, error) {
	var families QueueFamilies
	var hasGraphics, hasPresent, hasTransfer bool

	for i := range props {
		props[i].Deref()
		idx := uint32(i)
		flags := props[i].QueueFlags
		if props[i].QueueCount == 0 {
			continue
		}
		if !hasGraphics && flags&vk.QueueFlags(vk.QueueGraphicsBit) != 0 {
			families.Graphics = idx
			hasGraphics = true
		}
		if !hasPresent && presentSupport != nil && presentSupport(idx) {
			families.Present = idx
			hasPresent = true
		}
	}

	if hasGraphics {
		for i := range props {
			idx := uint32(i)
			if props[i].QueueCount == 0 || idx == families.Graphics {
				continue
			}
			if props[i].QueueFlags&vk.QueueFlags(vk.QueueTransferBit) != 0 {
				families.Transfer = idx
				families.DedicatedTransfer = true
				hasTransfer = true
				break
			}
		}
		if !hasTransfer {
			families.Transfer = families.Graphics
		}
	}

	if presentSupport == nil && hasGraphics {
		families.Present = families.Graphics
		hasPresent = true
	}

	var missing []string
	if !hasGraphics {
		missing = append(missing, "graphics")
	}
	if !hasPresent {
		missing = append(missing, "present")
	}
	if len(missing) > 0 {
		return QueueFamilies{}, &MissingQueueFamiliesError{Missing: missing}
	}
	return families, nil
}

func queueFamilyProperties(gpu vk.PhysicalDevice) []vk.QueueFamilyProperties {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, nil)
	props := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(gpu, &count, props)
	return props
}

func queueCreateInfos(families QueueFamilies) []vk.DeviceQueueCreateInfo {
	var infos []vk.DeviceQueueCreateInfo
	for _, idx := range families.Unique() {
		infos = append(infos, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: idx,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		})
	}
	return infos
}
