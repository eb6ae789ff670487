package vkcube

import (
	"strings"

	vk "github.com/vulkan-go/vulkan"
)

const (
	validationLayer            = "VK_LAYER_KHRONOS_validation"
	debugReportExtension       = "VK_EXT_debug_report"
	portabilityEnumerationExt  = "VK_KHR_portability_enumeration"
	portabilitySubsetExtension = "VK_KHR_portability_subset"
	swapchainExtension         = "VK_KHR_swapchain"

	//VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
	instanceCreateEnumeratePortability = 0x00000001
)

// InstanceExtensions gets a list of instance extensions available on the platform.
func InstanceExtensions() (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateInstanceExtensionProperties("", &count, nil)
	orPanic(NewError(ret))
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateInstanceExtensionProperties("", &count, list)
	orPanic(NewError(ret))
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, err
}

// DeviceExtensions gets a list of extensions available on the provided physical device.
func DeviceExtensions(gpu vk.PhysicalDevice) (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateDeviceExtensionProperties(gpu, "", &count, nil)
	orPanic(NewError(ret))
	list := make([]vk.ExtensionProperties, count)
	ret = vk.EnumerateDeviceExtensionProperties(gpu, "", &count, list)
	orPanic(NewError(ret))
	for _, ext := range list {
		ext.Deref()
		names = append(names, vk.ToString(ext.ExtensionName[:]))
	}
	return names, err
}

// ValidationLayers gets a list of validation layers available on the platform.
func ValidationLayers() (names []string, err error) {
	defer checkErr(&err)

	var count uint32
	ret := vk.EnumerateInstanceLayerProperties(&count, nil)
	orPanic(NewError(ret))
	list := make([]vk.LayerProperties, count)
	ret = vk.EnumerateInstanceLayerProperties(&count, list)
	orPanic(NewError(ret))
	for _, layer := range list {
		layer.Deref()
		names = append(names, vk.ToString(layer.LayerName[:]))
	}
	return names, err
}

//missingNames returns the entries of wanted absent from actual, in wanted order.
func missingNames(actual, wanted []string) []string {
	have := make(map[string]struct{}, len(actual))
	for _, name := range actual {
		have[strings.TrimRight(name, "\x00")] = struct{}{}
	}
	var missing []string
	for _, name := range wanted {
		if _, ok := have[strings.TrimRight(name, "\x00")]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func hasName(actual []string, name string) bool {
	return len(missingNames(actual, []string{name})) == 0
}

//mergeNames appends the wanted entries not already present in required.
func mergeNames(required, wanted []string) []string {
	out := append([]string{}, required...)
	for _, name := range wanted {
		if hasName(out, name) {
			continue
		}
		out = append(out, name)
	}
	return out
}

//safeString null-terminates s for the C side.
func safeString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = safeString(list[i])
	}
	return out
}
