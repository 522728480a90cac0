// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vulkan

import (
	"unsafe"

	"github.com/devblok/trigon/gfx"
	vk "github.com/devblok/vulkan"
)

// DestroyDevice implements gfx.DeviceDriver.
func (d *Driver) DestroyDevice(device gfx.Device) {
	vk.DestroyDevice(nativeDevice(device), nil)
}

// DeviceWaitIdle implements gfx.DeviceDriver.
func (d *Driver) DeviceWaitIdle(device gfx.Device) gfx.Result {
	return gfx.Result(vk.DeviceWaitIdle(nativeDevice(device)))
}

// GetDeviceQueue implements gfx.DeviceDriver.
func (d *Driver) GetDeviceQueue(device gfx.Device, family, index uint32) gfx.Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(nativeDevice(device), family, index, &queue)
	return gfx.Queue(uintptr(unsafe.Pointer(queue)))
}

// QueueWaitIdle implements gfx.DeviceDriver.
func (d *Driver) QueueWaitIdle(queue gfx.Queue) gfx.Result {
	return gfx.Result(vk.QueueWaitIdle(nativeQueue(queue)))
}

// CreateSwapchain implements gfx.DeviceDriver.
func (d *Driver) CreateSwapchain(device gfx.Device, info gfx.SwapchainInfo) (gfx.Swapchain, gfx.Result) {
	createInfo := vk.SwapchainCreateInfo{
		SType:           vk.StructureTypeSwapchainCreateInfo,
		Surface:         nativeSurface(info.Surface),
		MinImageCount:   info.MinImageCount,
		ImageFormat:     vk.Format(info.Format),
		ImageColorSpace: vk.ColorSpace(info.ColorSpace),
		ImageExtent: vk.Extent2D{
			Width:  info.Extent.Width,
			Height: info.Extent.Height,
		},
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     vk.SurfaceTransformFlagBits(info.PreTransform),
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      vk.PresentMode(info.PresentMode),
		Clipped:          bool32(info.Clipped),
		OldSwapchain:     vk.NullSwapchain,
	}

	var swapchain vk.Swapchain
	res := vk.CreateSwapchain(nativeDevice(device), &createInfo, nil, &swapchain)
	if res != vk.Success {
		return 0, gfx.Result(res)
	}
	return gfx.Swapchain(uintptr(unsafe.Pointer(swapchain))), gfx.Success
}

// DestroySwapchain implements gfx.DeviceDriver.
func (d *Driver) DestroySwapchain(device gfx.Device, swapchain gfx.Swapchain) {
	vk.DestroySwapchain(nativeDevice(device), nativeSwapchain(swapchain), nil)
}

// SwapchainImages implements gfx.DeviceDriver.
func (d *Driver) SwapchainImages(device gfx.Device, swapchain gfx.Swapchain) ([]gfx.Image, gfx.Result) {
	dev, sc := nativeDevice(device), nativeSwapchain(swapchain)

	var count uint32
	if res := vk.GetSwapchainImages(dev, sc, &count, nil); res != vk.Success {
		return nil, gfx.Result(res)
	}
	images := make([]vk.Image, count)
	res := vk.GetSwapchainImages(dev, sc, &count, images)

	out := make([]gfx.Image, 0, count)
	for _, image := range images[:count] {
		out = append(out, gfx.Image(uintptr(unsafe.Pointer(image))))
	}
	return out, gfx.Result(res)
}

// CreateImageView implements gfx.DeviceDriver.
func (d *Driver) CreateImageView(device gfx.Device, info gfx.ImageViewInfo) (gfx.ImageView, gfx.Result) {
	createInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    nativeImage(info.Image),
		ViewType: vk.ImageViewType2d,
		Format:   vk.Format(info.Format),
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: vk.ImageSubresourceRange{
			AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
			LevelCount: 1,
			LayerCount: 1,
		},
	}

	var view vk.ImageView
	res := vk.CreateImageView(nativeDevice(device), &createInfo, nil, &view)
	if res != vk.Success {
		return 0, gfx.Result(res)
	}
	return gfx.ImageView(uintptr(unsafe.Pointer(view))), gfx.Success
}

// DestroyImageView implements gfx.DeviceDriver.
func (d *Driver) DestroyImageView(device gfx.Device, view gfx.ImageView) {
	vk.DestroyImageView(nativeDevice(device), nativeImageView(view), nil)
}

// CreateShaderModule implements gfx.DeviceDriver. The code size is in
// bytes, hence four times the word count.
func (d *Driver) CreateShaderModule(device gfx.Device, code []uint32) (gfx.ShaderModule, gfx.Result) {
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code) * 4),
		PCode:    code,
	}

	var module vk.ShaderModule
	res := vk.CreateShaderModule(nativeDevice(device), &createInfo, nil, &module)
	if res != vk.Success {
		return 0, gfx.Result(res)
	}
	return gfx.ShaderModule(uintptr(unsafe.Pointer(module))), gfx.Success
}

// DestroyShaderModule implements gfx.DeviceDriver.
func (d *Driver) DestroyShaderModule(device gfx.Device, module gfx.ShaderModule) {
	vk.DestroyShaderModule(nativeDevice(device), nativeShaderModule(module), nil)
}

// CreateRenderPass implements gfx.DeviceDriver.
func (d *Driver) CreateRenderPass(device gfx.Device, info gfx.RenderPassInfo) (gfx.RenderPass, gfx.Result) {
	attachments := []vk.AttachmentDescription{{
		Format:         vk.Format(info.ColorFormat),
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}}

	colorAttachmentRef := []vk.AttachmentReference{{
		Attachment: 0,
		Layout:     vk.ImageLayoutColorAttachmentOptimal,
	}}

	subpassDependency := vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: 0,
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
	}

	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: uint32(len(colorAttachmentRef)),
		PColorAttachments:    colorAttachmentRef,
	}

	createInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{subpassDependency},
	}

	var pass vk.RenderPass
	res := vk.CreateRenderPass(nativeDevice(device), &createInfo, nil, &pass)
	if res != vk.Success {
		return 0, gfx.Result(res)
	}
	return gfx.RenderPass(uintptr(unsafe.Pointer(pass))), gfx.Success
}

// DestroyRenderPass implements gfx.DeviceDriver.
func (d *Driver) DestroyRenderPass(device gfx.Device, pass gfx.RenderPass) {
	vk.DestroyRenderPass(nativeDevice(device), nativeRenderPass(pass), nil)
}

// CreatePipelineLayout implements gfx.DeviceDriver. The layout is
// empty: no descriptor sets and no push constants.
func (d *Driver) CreatePipelineLayout(device gfx.Device) (gfx.PipelineLayout, gfx.Result) {
	createInfo := vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	}

	var layout vk.PipelineLayout
	res := vk.CreatePipelineLayout(nativeDevice(device), &createInfo, nil, &layout)
	if res != vk.Success {
		return 0, gfx.Result(res)
	}
	return gfx.PipelineLayout(uintptr(unsafe.Pointer(layout))), gfx.Success
}

// DestroyPipelineLayout implements gfx.DeviceDriver.
func (d *Driver) DestroyPipelineLayout(device gfx.Device, layout gfx.PipelineLayout) {
	vk.DestroyPipelineLayout(nativeDevice(device), nativePipelineLayout(layout), nil)
}

// CreateGraphicsPipeline implements gfx.DeviceDriver.
func (d *Driver) CreateGraphicsPipeline(device gfx.Device, info gfx.GraphicsPipelineInfo) (gfx.Pipeline, gfx.Result) {
	stages := make([]vk.PipelineShaderStageCreateInfo, 0, len(info.Stages))
	for _, stage := range info.Stages {
		stages = append(stages, vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFlagBits(stage.Stage),
			Module: nativeShaderModule(stage.Module),
			PName:  safeString(stage.Entry),
		})
	}

	vertexInputState := vk.PipelineVertexInputStateCreateInfo{
		SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
	}

	inputAssemblyState := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vk.PrimitiveTopology(info.Topology),
		PrimitiveRestartEnable: vk.False,
	}

	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		PViewports: []vk.Viewport{{
			X:        info.Viewport.X,
			Y:        info.Viewport.Y,
			Width:    info.Viewport.Width,
			Height:   info.Viewport.Height,
			MinDepth: info.Viewport.MinDepth,
			MaxDepth: info.Viewport.MaxDepth,
		}},
		ScissorCount: 1,
		PScissors: []vk.Rect2D{{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: vk.Extent2D{
				Width:  info.Scissor.Width,
				Height: info.Scissor.Height,
			},
		}},
	}

	rasterizationState := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonMode(info.PolygonMode),
		CullMode:                vk.CullModeFlags(info.CullMode),
		FrontFace:               vk.FrontFace(info.FrontFace),
		DepthBiasEnable:         vk.False,
		LineWidth:               info.LineWidth,
	}

	multisampleState := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCountFlagBits(info.Samples),
		SampleShadingEnable:  vk.False,
	}

	colorBlendState := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments: []vk.PipelineColorBlendAttachmentState{{
			BlendEnable:    bool32(info.BlendEnable),
			ColorWriteMask: vk.ColorComponentFlags(info.ColorWriteMask),
		}},
	}

	pipelineInfos := []vk.GraphicsPipelineCreateInfo{{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInputState,
		PInputAssemblyState: &inputAssemblyState,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizationState,
		PMultisampleState:   &multisampleState,
		PColorBlendState:    &colorBlendState,
		Layout:              nativePipelineLayout(info.Layout),
		RenderPass:          nativeRenderPass(info.RenderPass),
		Subpass:             0,
		BasePipelineIndex:   -1,
	}}

	pipelines := make([]vk.Pipeline, 1)
	res := vk.CreateGraphicsPipelines(nativeDevice(device), vk.PipelineCache(vk.NullHandle), 1, pipelineInfos, nil, pipelines)
	if res != vk.Success {
		return 0, gfx.Result(res)
	}
	return gfx.Pipeline(uintptr(unsafe.Pointer(pipelines[0]))), gfx.Success
}

// DestroyPipeline implements gfx.DeviceDriver.
func (d *Driver) DestroyPipeline(device gfx.Device, pipeline gfx.Pipeline) {
	vk.DestroyPipeline(nativeDevice(device), nativePipeline(pipeline), nil)
}

// CreateFramebuffer implements gfx.DeviceDriver.
func (d *Driver) CreateFramebuffer(device gfx.Device, info gfx.FramebufferInfo) (gfx.Framebuffer, gfx.Result) {
	attachments := make([]vk.ImageView, 0, len(info.Attachments))
	for _, view := range info.Attachments {
		attachments = append(attachments, nativeImageView(view))
	}

	createInfo := vk.FramebufferCreateInfo{
		SType:           vk.StructureTypeFramebufferCreateInfo,
		RenderPass:      nativeRenderPass(info.RenderPass),
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
		Width:           info.Extent.Width,
		Height:          info.Extent.Height,
		Layers:          1,
	}

	var framebuffer vk.Framebuffer
	res := vk.CreateFramebuffer(nativeDevice(device), &createInfo, nil, &framebuffer)
	if res != vk.Success {
		return 0, gfx.Result(res)
	}
	return gfx.Framebuffer(uintptr(unsafe.Pointer(framebuffer))), gfx.Success
}

// DestroyFramebuffer implements gfx.DeviceDriver.
func (d *Driver) DestroyFramebuffer(device gfx.Device, framebuffer gfx.Framebuffer) {
	vk.DestroyFramebuffer(nativeDevice(device), nativeFramebuffer(framebuffer), nil)
}

// CreateCommandPool implements gfx.DeviceDriver.
func (d *Driver) CreateCommandPool(device gfx.Device, family uint32) (gfx.CommandPool, gfx.Result) {
	createInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		QueueFamilyIndex: family,
	}

	var pool vk.CommandPool
	res := vk.CreateCommandPool(nativeDevice(device), &createInfo, nil, &pool)
	if res != vk.Success {
		return 0, gfx.Result(res)
	}
	return gfx.CommandPool(uintptr(unsafe.Pointer(pool))), gfx.Success
}

// DestroyCommandPool implements gfx.DeviceDriver.
func (d *Driver) DestroyCommandPool(device gfx.Device, pool gfx.CommandPool) {
	vk.DestroyCommandPool(nativeDevice(device), nativeCommandPool(pool), nil)
}

// AllocateCommandBuffers implements gfx.DeviceDriver.
func (d *Driver) AllocateCommandBuffers(device gfx.Device, pool gfx.CommandPool, count uint32) ([]gfx.CommandBuffer, gfx.Result) {
	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        nativeCommandPool(pool),
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	}

	buffers := make([]vk.CommandBuffer, count)
	res := vk.AllocateCommandBuffers(nativeDevice(device), &allocateInfo, buffers)
	if res != vk.Success {
		return nil, gfx.Result(res)
	}

	out := make([]gfx.CommandBuffer, 0, count)
	for _, buffer := range buffers {
		out = append(out, gfx.CommandBuffer(uintptr(unsafe.Pointer(buffer))))
	}
	return out, gfx.Success
}

// FreeCommandBuffers implements gfx.DeviceDriver.
func (d *Driver) FreeCommandBuffers(device gfx.Device, pool gfx.CommandPool, buffers []gfx.CommandBuffer) {
	native := make([]vk.CommandBuffer, 0, len(buffers))
	for _, buffer := range buffers {
		native = append(native, nativeCommandBuffer(buffer))
	}
	vk.FreeCommandBuffers(nativeDevice(device), nativeCommandPool(pool), uint32(len(native)), native)
}

// RecordDraw implements gfx.DeviceDriver. The buffer is recorded once
// and resubmitted every frame, so it is marked for simultaneous use.
func (d *Driver) RecordDraw(buffer gfx.CommandBuffer, info gfx.DrawInfo) gfx.Result {
	cb := nativeCommandBuffer(buffer)

	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit),
	}
	if res := vk.BeginCommandBuffer(cb, &beginInfo); res != vk.Success {
		return gfx.Result(res)
	}

	clearValues := make([]vk.ClearValue, 1)
	clearValues[0].SetColor(info.ClearColor[:])

	renderPassBeginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  nativeRenderPass(info.RenderPass),
		Framebuffer: nativeFramebuffer(info.Framebuffer),
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: vk.Extent2D{
				Width:  info.Extent.Width,
				Height: info.Extent.Height,
			},
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}

	vk.CmdBeginRenderPass(cb, &renderPassBeginInfo, vk.SubpassContentsInline)
	vk.CmdBindPipeline(cb, vk.PipelineBindPointGraphics, nativePipeline(info.Pipeline))
	vk.CmdDraw(cb, info.VertexCount, 1, 0, 0)
	vk.CmdEndRenderPass(cb)

	return gfx.Result(vk.EndCommandBuffer(cb))
}

// CreateSemaphore implements gfx.DeviceDriver.
func (d *Driver) CreateSemaphore(device gfx.Device) (gfx.Semaphore, gfx.Result) {
	createInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}

	var semaphore vk.Semaphore
	res := vk.CreateSemaphore(nativeDevice(device), &createInfo, nil, &semaphore)
	if res != vk.Success {
		return 0, gfx.Result(res)
	}
	return gfx.Semaphore(uintptr(unsafe.Pointer(semaphore))), gfx.Success
}

// DestroySemaphore implements gfx.DeviceDriver.
func (d *Driver) DestroySemaphore(device gfx.Device, semaphore gfx.Semaphore) {
	vk.DestroySemaphore(nativeDevice(device), nativeSemaphore(semaphore), nil)
}

// AcquireNextImage implements gfx.DeviceDriver. No fence is signaled.
func (d *Driver) AcquireNextImage(device gfx.Device, swapchain gfx.Swapchain, timeout uint64, signal gfx.Semaphore) (uint32, gfx.Result) {
	var index uint32
	res := vk.AcquireNextImage(nativeDevice(device), nativeSwapchain(swapchain), uint(timeout),
		nativeSemaphore(signal), vk.Fence(vk.NullHandle), &index)
	return index, gfx.Result(res)
}

// QueueSubmit implements gfx.DeviceDriver.
func (d *Driver) QueueSubmit(queue gfx.Queue, info gfx.SubmitInfo) gfx.Result {
	submitInfo := []vk.SubmitInfo{{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{nativeSemaphore(info.WaitSemaphore)},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(info.WaitStage)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{nativeCommandBuffer(info.CommandBuffer)},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{nativeSemaphore(info.SignalSemaphore)},
	}}
	return gfx.Result(vk.QueueSubmit(nativeQueue(queue), 1, submitInfo, vk.Fence(vk.NullHandle)))
}

// QueuePresent implements gfx.DeviceDriver.
func (d *Driver) QueuePresent(queue gfx.Queue, info gfx.PresentInfo) gfx.Result {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{nativeSemaphore(info.WaitSemaphore)},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{nativeSwapchain(info.Swapchain)},
		PImageIndices:      []uint32{info.ImageIndex},
	}
	return gfx.Result(vk.QueuePresent(nativeQueue(queue), &presentInfo))
}
