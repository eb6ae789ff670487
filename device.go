package vkcube

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//CoreDevice is the selected physical device, its resolved queue families and the
//logical device opened on it.
type CoreDevice struct {
	gpu        vk.PhysicalDevice
	device     vk.Device
	families   QueueFamilies
	properties vk.PhysicalDeviceProperties
	memory     vk.PhysicalDeviceMemoryProperties

	graphics_queue vk.Queue
	present_queue  vk.Queue
	transfer_queue vk.Queue

	DeviceName string
}

//NewCoreDevice picks the first physical device that can render to surface and opens it.
//Passing vk.NullSurface selects a headless device with no swapchain requirement.
func NewCoreDevice(instance vk.Instance, surface vk.Surface, logs *Loggers) (*CoreDevice, error) {
	var count uint32
	ret := vk.EnumeratePhysicalDevices(instance, &count, nil)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "enumerate physical devices")
	}
	if count == 0 {
		return nil, errors.Wrap(ErrNoSuitableDevice, "no GPU devices found")
	}
	gpus := make([]vk.PhysicalDevice, count)
	ret = vk.EnumeratePhysicalDevices(instance, &count, gpus)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "enumerate physical devices")
	}

	var rejected []string
	for _, gpu := range gpus {
		families, extensions, err := checkPhysicalDevice(gpu, surface)
		if err != nil {
			rejected = append(rejected, err.Error())
			continue
		}
		core := &CoreDevice{gpu: gpu, families: families}
		if err := core.open(extensions); err != nil {
			return nil, err
		}
		logs.Info.Printf("selected %s (graphics %d, present %d, transfer %d, dedicated transfer %v)",
			core.DeviceName, families.Graphics, families.Present, families.Transfer, families.DedicatedTransfer)
		return core, nil
	}
	return nil, errors.Wrap(ErrNoSuitableDevice, strings.Join(rejected, "; "))
}

//checkPhysicalDevice returns the queue families and device extensions to enable, or the
//reason gpu cannot be used.
func checkPhysicalDevice(gpu vk.PhysicalDevice, surface vk.Surface) (QueueFamilies, []string, error) {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(gpu, &props)
	props.Deref()
	name := vk.ToString(props.DeviceName[:])

	headless := surface == vk.NullSurface
	var presentSupport func(uint32) bool
	if !headless {
		presentSupport = func(i uint32) bool {
			var supported vk.Bool32
			vk.GetPhysicalDeviceSurfaceSupport(gpu, i, surface, &supported)
			return supported.B()
		}
	}
	families, err := ResolveQueueFamilies(queueFamilyProperties(gpu), presentSupport)
	if err != nil {
		return families, nil, fmt.Errorf("%s: %v", name, err)
	}

	available, err := DeviceExtensions(gpu)
	if err != nil {
		return families, nil, fmt.Errorf("%s: %v", name, err)
	}
	var extensions []string
	if !headless {
		extensions = append(extensions, swapchainExtension)
	}
	if missing := missingNames(available, extensions); len(missing) > 0 {
		return families, nil, fmt.Errorf("%s: missing device extensions %v", name, missing)
	}
	//the portability subset must be enabled whenever the implementation advertises it
	if hasName(available, portabilitySubsetExtension) {
		extensions = append(extensions, portabilitySubsetExtension)
	}

	if !headless {
		support := querySurfaceSupport(gpu, surface)
		if len(support.formats) == 0 || len(support.presentModes) == 0 {
			return families, nil, fmt.Errorf("%s: no surface formats or present modes", name)
		}
	}

	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(gpu, &features)
	features.Deref()
	if features.SamplerAnisotropy != vk.True {
		return families, nil, fmt.Errorf("%s: sampler anisotropy unsupported", name)
	}
	return families, extensions, nil
}

func (c *CoreDevice) open(extensions []string) error {
	vk.GetPhysicalDeviceProperties(c.gpu, &c.properties)
	c.properties.Deref()
	c.properties.Limits.Deref()
	c.DeviceName = vk.ToString(c.properties.DeviceName[:])
	vk.GetPhysicalDeviceMemoryProperties(c.gpu, &c.memory)
	c.memory.Deref()

	infos := queueCreateInfos(c.families)
	var device vk.Device
	ret := vk.CreateDevice(c.gpu, &vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(infos)),
		PQueueCreateInfos:       infos,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		PEnabledFeatures: []vk.PhysicalDeviceFeatures{{
			SamplerAnisotropy: vk.True,
		}},
	}, nil, &device)
	if isError(ret) {
		return errors.Wrap(NewError(ret), "create device")
	}
	c.device = device

	vk.GetDeviceQueue(device, c.families.Graphics, 0, &c.graphics_queue)
	vk.GetDeviceQueue(device, c.families.Present, 0, &c.present_queue)
	vk.GetDeviceQueue(device, c.families.Transfer, 0, &c.transfer_queue)
	return nil
}

func (c *CoreDevice) Device() vk.Device { return c.device }
func (c *CoreDevice) PhysicalDevice() vk.PhysicalDevice { return c.gpu }
func (c *CoreDevice) Families() QueueFamilies { return c.families }
func (c *CoreDevice) MemoryProperties() vk.PhysicalDeviceMemoryProperties { return c.memory }
func (c *CoreDevice) GraphicsQueue() vk.Queue { return c.graphics_queue }
func (c *CoreDevice) PresentQueue() vk.Queue { return c.present_queue }
func (c *CoreDevice) TransferQueue() vk.Queue { return c.transfer_queue }

func (c *CoreDevice) MaxAnisotropy() float32 {
	return c.properties.Limits.MaxSamplerAnisotropy
}

func (c *CoreDevice) WaitIdle() error {
	if c == nil || c.device == nil {
		return nil
	}
	return NewError(vk.DeviceWaitIdle(c.device))
}

func (c *CoreDevice) Destroy() {
	if c == nil || c.device == nil {
		return
	}
	vk.DestroyDevice(c.device, nil)
	c.device = nil
}
