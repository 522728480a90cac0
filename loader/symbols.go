// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package loader

// Scope is the tier a native entry point is resolved from.
type Scope int

// Resolution scopes, in the order they become available.
const (
	// ScopeExported symbols come straight from the shared library.
	ScopeExported Scope = iota
	// ScopeGlobal symbols are resolved without an instance.
	ScopeGlobal
	// ScopeInstance symbols need a live instance.
	ScopeInstance
	// ScopeDevice symbols need a live logical device.
	ScopeDevice
)

func (s Scope) String() string {
	switch s {
	case ScopeExported:
		return "exported"
	case ScopeGlobal:
		return "global"
	case ScopeInstance:
		return "instance"
	case ScopeDevice:
		return "device"
	}
	return "unknown"
}

// Symbol names a native entry point together with its scope.
type Symbol struct {
	Name  string
	Scope Scope
}

// Exported entry points.
var (
	GetInstanceProcAddr = Symbol{"vkGetInstanceProcAddr", ScopeExported}
)

// Global entry points.
var (
	EnumerateInstanceLayerProperties     = Symbol{"vkEnumerateInstanceLayerProperties", ScopeGlobal}
	EnumerateInstanceExtensionProperties = Symbol{"vkEnumerateInstanceExtensionProperties", ScopeGlobal}
	CreateInstance                       = Symbol{"vkCreateInstance", ScopeGlobal}
)

// Instance entry points.
var (
	DestroyInstance                        = Symbol{"vkDestroyInstance", ScopeInstance}
	EnumeratePhysicalDevices               = Symbol{"vkEnumeratePhysicalDevices", ScopeInstance}
	GetPhysicalDeviceProperties            = Symbol{"vkGetPhysicalDeviceProperties", ScopeInstance}
	GetPhysicalDeviceFeatures              = Symbol{"vkGetPhysicalDeviceFeatures", ScopeInstance}
	GetPhysicalDeviceMemoryProperties      = Symbol{"vkGetPhysicalDeviceMemoryProperties", ScopeInstance}
	GetPhysicalDeviceQueueFamilyProperties = Symbol{"vkGetPhysicalDeviceQueueFamilyProperties", ScopeInstance}
	EnumerateDeviceExtensionProperties     = Symbol{"vkEnumerateDeviceExtensionProperties", ScopeInstance}
	EnumerateDeviceLayerProperties         = Symbol{"vkEnumerateDeviceLayerProperties", ScopeInstance}
	GetDeviceProcAddr                      = Symbol{"vkGetDeviceProcAddr", ScopeInstance}
	CreateDevice                           = Symbol{"vkCreateDevice", ScopeInstance}
	GetPhysicalDeviceSurfaceSupport        = Symbol{"vkGetPhysicalDeviceSurfaceSupportKHR", ScopeInstance}
	GetPhysicalDeviceSurfaceCapabilities   = Symbol{"vkGetPhysicalDeviceSurfaceCapabilitiesKHR", ScopeInstance}
	GetPhysicalDeviceSurfaceFormats        = Symbol{"vkGetPhysicalDeviceSurfaceFormatsKHR", ScopeInstance}
	GetPhysicalDeviceSurfacePresentModes   = Symbol{"vkGetPhysicalDeviceSurfacePresentModesKHR", ScopeInstance}
	DestroySurface                         = Symbol{"vkDestroySurfaceKHR", ScopeInstance}
)

// Device entry points.
var (
	DestroyDevice          = Symbol{"vkDestroyDevice", ScopeDevice}
	DeviceWaitIdle         = Symbol{"vkDeviceWaitIdle", ScopeDevice}
	GetDeviceQueue         = Symbol{"vkGetDeviceQueue", ScopeDevice}
	QueueWaitIdle          = Symbol{"vkQueueWaitIdle", ScopeDevice}
	CreateSwapchain        = Symbol{"vkCreateSwapchainKHR", ScopeDevice}
	DestroySwapchain       = Symbol{"vkDestroySwapchainKHR", ScopeDevice}
	GetSwapchainImages     = Symbol{"vkGetSwapchainImagesKHR", ScopeDevice}
	AcquireNextImage       = Symbol{"vkAcquireNextImageKHR", ScopeDevice}
	QueuePresent           = Symbol{"vkQueuePresentKHR", ScopeDevice}
	CreateImageView        = Symbol{"vkCreateImageView", ScopeDevice}
	DestroyImageView       = Symbol{"vkDestroyImageView", ScopeDevice}
	CreateShaderModule     = Symbol{"vkCreateShaderModule", ScopeDevice}
	DestroyShaderModule    = Symbol{"vkDestroyShaderModule", ScopeDevice}
	CreateRenderPass       = Symbol{"vkCreateRenderPass", ScopeDevice}
	DestroyRenderPass      = Symbol{"vkDestroyRenderPass", ScopeDevice}
	CreatePipelineLayout   = Symbol{"vkCreatePipelineLayout", ScopeDevice}
	DestroyPipelineLayout  = Symbol{"vkDestroyPipelineLayout", ScopeDevice}
	CreateGraphicsPipeline = Symbol{"vkCreateGraphicsPipelines", ScopeDevice}
	DestroyPipeline        = Symbol{"vkDestroyPipeline", ScopeDevice}
	CreateFramebuffer      = Symbol{"vkCreateFramebuffer", ScopeDevice}
	DestroyFramebuffer     = Symbol{"vkDestroyFramebuffer", ScopeDevice}
	CreateCommandPool      = Symbol{"vkCreateCommandPool", ScopeDevice}
	DestroyCommandPool     = Symbol{"vkDestroyCommandPool", ScopeDevice}
	AllocateCommandBuffers = Symbol{"vkAllocateCommandBuffers", ScopeDevice}
	FreeCommandBuffers     = Symbol{"vkFreeCommandBuffers", ScopeDevice}
	BeginCommandBuffer     = Symbol{"vkBeginCommandBuffer", ScopeDevice}
	CmdBeginRenderPass     = Symbol{"vkCmdBeginRenderPass", ScopeDevice}
	CmdBindPipeline        = Symbol{"vkCmdBindPipeline", ScopeDevice}
	CmdDraw                = Symbol{"vkCmdDraw", ScopeDevice}
	CmdEndRenderPass       = Symbol{"vkCmdEndRenderPass", ScopeDevice}
	EndCommandBuffer       = Symbol{"vkEndCommandBuffer", ScopeDevice}
	CreateSemaphore        = Symbol{"vkCreateSemaphore", ScopeDevice}
	DestroySemaphore       = Symbol{"vkDestroySemaphore", ScopeDevice}
	QueueSubmit            = Symbol{"vkQueueSubmit", ScopeDevice}
)

// RecordDraw is everything a single draw recording touches.
var RecordDraw = []Symbol{
	BeginCommandBuffer,
	CmdBeginRenderPass,
	CmdBindPipeline,
	CmdDraw,
	CmdEndRenderPass,
	EndCommandBuffer,
}
