package vkcube

import (
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//CoreInstance owns the Vulkan instance, the optional debug report callback and the
//presentation surface created against it.
type CoreInstance struct {
	instance       vk.Instance
	debug_callback vk.DebugReportCallback
	surface        vk.Surface
	validation     bool
}

//NewCoreInstance creates an instance enabling required, plus portability enumeration when the
//loader offers it and the validation layer when validation is requested and installed.
func NewCoreInstance(name string, required []string, validation bool, logs *Loggers) (*CoreInstance, error) {
	available, err := InstanceExtensions()
	if err != nil {
		return nil, errors.Wrap(err, "enumerate instance extensions")
	}
	if missing := missingNames(available, required); len(missing) > 0 {
		return nil, errors.Errorf("missing required instance extensions: %v", missing)
	}

	extensions := append([]string{}, required...)
	var flags vk.InstanceCreateFlags
	if hasName(available, portabilityEnumerationExt) {
		extensions = mergeNames(extensions, []string{portabilityEnumerationExt})
		flags = vk.InstanceCreateFlags(instanceCreateEnumeratePortability)
	}

	var layers []string
	if validation {
		actualLayers, err := ValidationLayers()
		if err != nil {
			return nil, errors.Wrap(err, "enumerate layers")
		}
		switch {
		case !hasName(actualLayers, validationLayer):
			logs.Warn.Printf("%s not installed, validation disabled", validationLayer)
			validation = false
		case !hasName(available, debugReportExtension):
			logs.Warn.Printf("%s not available, validation disabled", debugReportExtension)
			validation = false
		default:
			layers = []string{validationLayer}
			extensions = mergeNames(extensions, []string{debugReportExtension})
		}
	}

	core := &CoreInstance{validation: validation}
	ret := vk.CreateInstance(&vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			ApiVersion:         uint32(vk.MakeVersion(1, 1, 0)),
			ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
			PApplicationName:   safeString(name),
			PEngineName:        "vkcube\x00",
		},
		Flags:                   flags,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: safeStrings(extensions),
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     safeStrings(layers),
	}, nil, &core.instance)
	if isError(ret) {
		return nil, errors.Wrap(NewError(ret), "create instance")
	}
	if err := vk.InitInstance(core.instance); err != nil {
		core.Destroy()
		return nil, errors.Wrap(err, "init instance")
	}
	logs.Info.Printf("instance created with %d extensions, %d layers", len(extensions), len(layers))

	if validation {
		core.debug_callback, err = newDebugCallback(core.instance)
		if err != nil {
			core.Destroy()
			return nil, errors.Wrap(err, "register debug callback")
		}
	}
	return core, nil
}

//AttachSurface asks the provider for a drawable surface bound to this instance.
func (c *CoreInstance) AttachSurface(provider SurfaceProvider) error {
	surface, err := provider.CreateSurface(c.instance)
	if err != nil {
		return errors.Wrap(err, "create surface")
	}
	c.surface = surface
	return nil
}

func (c *CoreInstance) Instance() vk.Instance { return c.instance }

func (c *CoreInstance) Surface() vk.Surface { return c.surface }

//Destroy tears down the debug callback, the surface and the instance in that order.
//The logical device must already be gone.
func (c *CoreInstance) Destroy() {
	if c == nil || c.instance == nil {
		return
	}
	if c.debug_callback != vk.NullDebugReportCallback {
		vk.DestroyDebugReportCallback(c.instance, c.debug_callback, nil)
		c.debug_callback = vk.NullDebugReportCallback
	}
	if c.surface != vk.NullSurface {
		vk.DestroySurface(c.instance, c.surface, nil)
		c.surface = vk.NullSurface
	}
	vk.DestroyInstance(c.instance, nil)
	c.instance = nil
}
