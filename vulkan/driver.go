// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package vulkan implements the gfx driver boundary with the cgo Vulkan
// bindings. Every call here is a thin translation: handles and
// enumerations pass through, structures are copied field by field and
// results are returned untouched for the caller to check.
package vulkan

import (
	"unsafe"

	"github.com/devblok/trigon/gfx"
	vk "github.com/devblok/vulkan"
)

// Driver is the native gfx.Driver.
type Driver struct{}

var _ gfx.Driver = (*Driver)(nil)

// NewDriver returns a Driver. The bindings must be initialised through
// a loader before any call is made.
func NewDriver() *Driver {
	return &Driver{}
}

func layerProperties(layers []vk.LayerProperties) []gfx.LayerProperties {
	out := make([]gfx.LayerProperties, 0, len(layers))
	for _, layer := range layers {
		layer.Deref()
		out = append(out, gfx.LayerProperties{
			Name:                  vk.ToString(layer.LayerName[:]),
			Description:           vk.ToString(layer.Description[:]),
			SpecVersion:           layer.SpecVersion,
			ImplementationVersion: layer.ImplementationVersion,
		})
	}
	return out
}

func extensionNames(extensions []vk.ExtensionProperties) []string {
	out := make([]string, 0, len(extensions))
	for _, ext := range extensions {
		ext.Deref()
		out = append(out, vk.ToString(ext.ExtensionName[:]))
	}
	return out
}

// EnumerateInstanceLayers implements gfx.GlobalDriver.
func (d *Driver) EnumerateInstanceLayers() ([]gfx.LayerProperties, gfx.Result) {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return nil, gfx.Result(res)
	}
	layers := make([]vk.LayerProperties, count)
	res := vk.EnumerateInstanceLayerProperties(&count, layers)
	return layerProperties(layers[:count]), gfx.Result(res)
}

// EnumerateInstanceExtensions implements gfx.GlobalDriver.
func (d *Driver) EnumerateInstanceExtensions(layer string) ([]string, gfx.Result) {
	if layer != "" {
		layer = safeString(layer)
	}

	var count uint32
	if res := vk.EnumerateInstanceExtensionProperties(layer, &count, nil); res != vk.Success {
		return nil, gfx.Result(res)
	}
	extensions := make([]vk.ExtensionProperties, count)
	res := vk.EnumerateInstanceExtensionProperties(layer, &count, extensions)
	return extensionNames(extensions[:count]), gfx.Result(res)
}

// CreateInstance implements gfx.GlobalDriver.
func (d *Driver) CreateInstance(info gfx.InstanceInfo) (gfx.Instance, gfx.Result) {
	layers := safeStrings(info.Layers)
	extensions := safeStrings(info.Extensions)

	createInfo := vk.InstanceCreateInfo{
		SType: vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: &vk.ApplicationInfo{
			SType:              vk.StructureTypeApplicationInfo,
			PApplicationName:   safeString(info.ApplicationName),
			ApplicationVersion: info.ApplicationVersion,
			PEngineName:        safeString(info.EngineName),
			EngineVersion:      info.EngineVersion,
			ApiVersion:         info.APIVersion,
		},
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
	}

	var instance vk.Instance
	res := vk.CreateInstance(&createInfo, nil, &instance)
	if res != vk.Success {
		return 0, gfx.Result(res)
	}
	return gfx.Instance(uintptr(unsafe.Pointer(instance))), gfx.Success
}

// DestroyInstance implements gfx.InstanceDriver.
func (d *Driver) DestroyInstance(instance gfx.Instance) {
	vk.DestroyInstance(nativeInstance(instance), nil)
}

// EnumeratePhysicalDevices implements gfx.InstanceDriver.
func (d *Driver) EnumeratePhysicalDevices(instance gfx.Instance) ([]gfx.PhysicalDevice, gfx.Result) {
	in := nativeInstance(instance)

	var count uint32
	if res := vk.EnumeratePhysicalDevices(in, &count, nil); res != vk.Success {
		return nil, gfx.Result(res)
	}
	devices := make([]vk.PhysicalDevice, count)
	res := vk.EnumeratePhysicalDevices(in, &count, devices)

	out := make([]gfx.PhysicalDevice, 0, count)
	for _, pd := range devices[:count] {
		out = append(out, gfx.PhysicalDevice(uintptr(unsafe.Pointer(pd))))
	}
	return out, gfx.Result(res)
}

// PhysicalDeviceProperties implements gfx.InstanceDriver.
func (d *Driver) PhysicalDeviceProperties(device gfx.PhysicalDevice) gfx.PhysicalDeviceProperties {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(nativePhysicalDevice(device), &props)
	props.Deref()
	props.Limits.Deref()

	return gfx.PhysicalDeviceProperties{
		APIVersion:          props.ApiVersion,
		DriverVersion:       props.DriverVersion,
		VendorID:            props.VendorID,
		DeviceID:            props.DeviceID,
		Type:                gfx.PhysicalDeviceType(props.DeviceType),
		Name:                vk.ToString(props.DeviceName[:]),
		MaxImageDimension2D: props.Limits.MaxImageDimension2D,
	}
}

// PhysicalDeviceFeatures implements gfx.InstanceDriver.
func (d *Driver) PhysicalDeviceFeatures(device gfx.PhysicalDevice) gfx.PhysicalDeviceFeatures {
	var features vk.PhysicalDeviceFeatures
	vk.GetPhysicalDeviceFeatures(nativePhysicalDevice(device), &features)
	features.Deref()

	return gfx.PhysicalDeviceFeatures{
		GeometryShader:     features.GeometryShader == vk.True,
		TessellationShader: features.TessellationShader == vk.True,
		SamplerAnisotropy:  features.SamplerAnisotropy == vk.True,
	}
}

// PhysicalDeviceMemoryHeaps implements gfx.InstanceDriver.
func (d *Driver) PhysicalDeviceMemoryHeaps(device gfx.PhysicalDevice) []uint64 {
	var memory vk.PhysicalDeviceMemoryProperties
	vk.GetPhysicalDeviceMemoryProperties(nativePhysicalDevice(device), &memory)
	memory.Deref()

	heaps := make([]uint64, 0, memory.MemoryHeapCount)
	for i := uint32(0); i < memory.MemoryHeapCount; i++ {
		memory.MemoryHeaps[i].Deref()
		heaps = append(heaps, uint64(memory.MemoryHeaps[i].Size))
	}
	return heaps
}

// QueueFamilyProperties implements gfx.InstanceDriver.
func (d *Driver) QueueFamilyProperties(device gfx.PhysicalDevice) []gfx.QueueFamilyProperties {
	pd := nativePhysicalDevice(device)

	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(pd, &count, families)

	out := make([]gfx.QueueFamilyProperties, 0, count)
	for _, family := range families[:count] {
		family.Deref()
		out = append(out, gfx.QueueFamilyProperties{
			Flags: gfx.QueueFlags(family.QueueFlags),
			Count: family.QueueCount,
		})
	}
	return out
}

// EnumerateDeviceExtensions implements gfx.InstanceDriver.
func (d *Driver) EnumerateDeviceExtensions(device gfx.PhysicalDevice) ([]string, gfx.Result) {
	pd := nativePhysicalDevice(device)

	var count uint32
	if res := vk.EnumerateDeviceExtensionProperties(pd, "", &count, nil); res != vk.Success {
		return nil, gfx.Result(res)
	}
	extensions := make([]vk.ExtensionProperties, count)
	res := vk.EnumerateDeviceExtensionProperties(pd, "", &count, extensions)
	return extensionNames(extensions[:count]), gfx.Result(res)
}

// EnumerateDeviceLayers implements gfx.InstanceDriver.
func (d *Driver) EnumerateDeviceLayers(device gfx.PhysicalDevice) ([]gfx.LayerProperties, gfx.Result) {
	pd := nativePhysicalDevice(device)

	var count uint32
	if res := vk.EnumerateDeviceLayerProperties(pd, &count, nil); res != vk.Success {
		return nil, gfx.Result(res)
	}
	layers := make([]vk.LayerProperties, count)
	res := vk.EnumerateDeviceLayerProperties(pd, &count, layers)
	return layerProperties(layers[:count]), gfx.Result(res)
}

// SurfaceSupport implements gfx.InstanceDriver.
func (d *Driver) SurfaceSupport(device gfx.PhysicalDevice, family uint32, surface gfx.Surface) (bool, gfx.Result) {
	var supported vk.Bool32
	res := vk.GetPhysicalDeviceSurfaceSupport(nativePhysicalDevice(device), family, nativeSurface(surface), &supported)
	return supported.B(), gfx.Result(res)
}

// SurfaceFormats implements gfx.InstanceDriver.
func (d *Driver) SurfaceFormats(device gfx.PhysicalDevice, surface gfx.Surface) ([]gfx.SurfaceFormat, gfx.Result) {
	pd, s := nativePhysicalDevice(device), nativeSurface(surface)

	var count uint32
	if res := vk.GetPhysicalDeviceSurfaceFormats(pd, s, &count, nil); res != vk.Success {
		return nil, gfx.Result(res)
	}
	formats := make([]vk.SurfaceFormat, count)
	res := vk.GetPhysicalDeviceSurfaceFormats(pd, s, &count, formats)

	out := make([]gfx.SurfaceFormat, 0, count)
	for _, format := range formats[:count] {
		format.Deref()
		out = append(out, gfx.SurfaceFormat{
			Format:     gfx.Format(format.Format),
			ColorSpace: gfx.ColorSpace(format.ColorSpace),
		})
	}
	return out, gfx.Result(res)
}

// SurfacePresentModes implements gfx.InstanceDriver.
func (d *Driver) SurfacePresentModes(device gfx.PhysicalDevice, surface gfx.Surface) ([]gfx.PresentMode, gfx.Result) {
	pd, s := nativePhysicalDevice(device), nativeSurface(surface)

	var count uint32
	if res := vk.GetPhysicalDeviceSurfacePresentModes(pd, s, &count, nil); res != vk.Success {
		return nil, gfx.Result(res)
	}
	modes := make([]vk.PresentMode, count)
	res := vk.GetPhysicalDeviceSurfacePresentModes(pd, s, &count, modes)

	out := make([]gfx.PresentMode, 0, count)
	for _, mode := range modes[:count] {
		out = append(out, gfx.PresentMode(mode))
	}
	return out, gfx.Result(res)
}

func extent(e vk.Extent2D) gfx.Extent2D {
	e.Deref()
	return gfx.Extent2D{Width: e.Width, Height: e.Height}
}

// SurfaceCapabilities implements gfx.InstanceDriver.
func (d *Driver) SurfaceCapabilities(device gfx.PhysicalDevice, surface gfx.Surface) (gfx.SurfaceCapabilities, gfx.Result) {
	var caps vk.SurfaceCapabilities
	res := vk.GetPhysicalDeviceSurfaceCapabilities(nativePhysicalDevice(device), nativeSurface(surface), &caps)
	if res != vk.Success {
		return gfx.SurfaceCapabilities{}, gfx.Result(res)
	}
	caps.Deref()

	return gfx.SurfaceCapabilities{
		MinImageCount:           caps.MinImageCount,
		MaxImageCount:           caps.MaxImageCount,
		CurrentExtent:           extent(caps.CurrentExtent),
		MinImageExtent:          extent(caps.MinImageExtent),
		MaxImageExtent:          extent(caps.MaxImageExtent),
		MaxImageArrayLayers:     caps.MaxImageArrayLayers,
		CurrentTransform:        gfx.SurfaceTransform(caps.CurrentTransform),
		SupportedCompositeAlpha: uint32(caps.SupportedCompositeAlpha),
	}, gfx.Success
}

// DestroySurface implements gfx.InstanceDriver.
func (d *Driver) DestroySurface(instance gfx.Instance, surface gfx.Surface) {
	vk.DestroySurface(nativeInstance(instance), nativeSurface(surface), nil)
}

// CreateDevice implements gfx.InstanceDriver.
func (d *Driver) CreateDevice(device gfx.PhysicalDevice, info gfx.DeviceInfo) (gfx.Device, gfx.Result) {
	queues := make([]vk.DeviceQueueCreateInfo, 0, len(info.Queues))
	for _, q := range info.Queues {
		queues = append(queues, vk.DeviceQueueCreateInfo{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: q.Family,
			QueueCount:       uint32(len(q.Priorities)),
			PQueuePriorities: q.Priorities,
		})
	}
	layers := safeStrings(info.Layers)
	extensions := safeStrings(info.Extensions)

	createInfo := vk.DeviceCreateInfo{
		SType:                   vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount:    uint32(len(queues)),
		PQueueCreateInfos:       queues,
		EnabledLayerCount:       uint32(len(layers)),
		PpEnabledLayerNames:     layers,
		EnabledExtensionCount:   uint32(len(extensions)),
		PpEnabledExtensionNames: extensions,
		PEnabledFeatures:        []vk.PhysicalDeviceFeatures{{}},
	}

	var dev vk.Device
	res := vk.CreateDevice(nativePhysicalDevice(device), &createInfo, nil, &dev)
	if res != vk.Success {
		return 0, gfx.Result(res)
	}
	return gfx.Device(uintptr(unsafe.Pointer(dev))), gfx.Success
}
