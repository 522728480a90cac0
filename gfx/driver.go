// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx

// GlobalDriver holds the calls available before an instance exists.
type GlobalDriver interface {
	EnumerateInstanceLayers() ([]LayerProperties, Result)
	// EnumerateInstanceExtensions lists extensions provided by layer,
	// or by the implementation when layer is empty.
	EnumerateInstanceExtensions(layer string) ([]string, Result)
	CreateInstance(info InstanceInfo) (Instance, Result)
}

// InstanceDriver holds the calls scoped to a live instance.
type InstanceDriver interface {
	DestroyInstance(instance Instance)

	EnumeratePhysicalDevices(instance Instance) ([]PhysicalDevice, Result)
	PhysicalDeviceProperties(device PhysicalDevice) PhysicalDeviceProperties
	PhysicalDeviceFeatures(device PhysicalDevice) PhysicalDeviceFeatures
	PhysicalDeviceMemoryHeaps(device PhysicalDevice) []uint64
	QueueFamilyProperties(device PhysicalDevice) []QueueFamilyProperties
	EnumerateDeviceExtensions(device PhysicalDevice) ([]string, Result)
	EnumerateDeviceLayers(device PhysicalDevice) ([]LayerProperties, Result)

	SurfaceSupport(device PhysicalDevice, family uint32, surface Surface) (bool, Result)
	SurfaceFormats(device PhysicalDevice, surface Surface) ([]SurfaceFormat, Result)
	SurfacePresentModes(device PhysicalDevice, surface Surface) ([]PresentMode, Result)
	SurfaceCapabilities(device PhysicalDevice, surface Surface) (SurfaceCapabilities, Result)
	DestroySurface(instance Instance, surface Surface)

	CreateDevice(device PhysicalDevice, info DeviceInfo) (Device, Result)
}

// DeviceDriver holds the calls scoped to a live logical device.
type DeviceDriver interface {
	DestroyDevice(device Device)
	DeviceWaitIdle(device Device) Result
	GetDeviceQueue(device Device, family, index uint32) Queue
	QueueWaitIdle(queue Queue) Result

	CreateSwapchain(device Device, info SwapchainInfo) (Swapchain, Result)
	DestroySwapchain(device Device, swapchain Swapchain)
	SwapchainImages(device Device, swapchain Swapchain) ([]Image, Result)

	CreateImageView(device Device, info ImageViewInfo) (ImageView, Result)
	DestroyImageView(device Device, view ImageView)

	CreateShaderModule(device Device, code []uint32) (ShaderModule, Result)
	DestroyShaderModule(device Device, module ShaderModule)

	CreateRenderPass(device Device, info RenderPassInfo) (RenderPass, Result)
	DestroyRenderPass(device Device, pass RenderPass)

	CreatePipelineLayout(device Device) (PipelineLayout, Result)
	DestroyPipelineLayout(device Device, layout PipelineLayout)

	CreateGraphicsPipeline(device Device, info GraphicsPipelineInfo) (Pipeline, Result)
	DestroyPipeline(device Device, pipeline Pipeline)

	CreateFramebuffer(device Device, info FramebufferInfo) (Framebuffer, Result)
	DestroyFramebuffer(device Device, framebuffer Framebuffer)

	CreateCommandPool(device Device, family uint32) (CommandPool, Result)
	DestroyCommandPool(device Device, pool CommandPool)
	AllocateCommandBuffers(device Device, pool CommandPool, count uint32) ([]CommandBuffer, Result)
	FreeCommandBuffers(device Device, pool CommandPool, buffers []CommandBuffer)
	RecordDraw(buffer CommandBuffer, info DrawInfo) Result

	CreateSemaphore(device Device) (Semaphore, Result)
	DestroySemaphore(device Device, semaphore Semaphore)

	AcquireNextImage(device Device, swapchain Swapchain, timeout uint64, signal Semaphore) (uint32, Result)
	QueueSubmit(queue Queue, info SubmitInfo) Result
	QueuePresent(queue Queue, info PresentInfo) Result
}

// Driver is the full native boundary.
type Driver interface {
	GlobalDriver
	InstanceDriver
	DeviceDriver
}
