// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vulkan

import (
	"strings"
	"unsafe"

	"github.com/devblok/trigon/gfx"
	vk "github.com/devblok/vulkan"
)

// Conversions between the opaque gfx handles and the binding's pointer
// typed handles. Both sides are pointer sized.

func nativeInstance(h gfx.Instance) vk.Instance {
	return vk.Instance(unsafe.Pointer(uintptr(h)))
}

func nativePhysicalDevice(h gfx.PhysicalDevice) vk.PhysicalDevice {
	return vk.PhysicalDevice(unsafe.Pointer(uintptr(h)))
}

func nativeSurface(h gfx.Surface) vk.Surface {
	return vk.SurfaceFromPointer(uintptr(h))
}

func nativeDevice(h gfx.Device) vk.Device {
	return vk.Device(unsafe.Pointer(uintptr(h)))
}

func nativeQueue(h gfx.Queue) vk.Queue {
	return vk.Queue(unsafe.Pointer(uintptr(h)))
}

func nativeSwapchain(h gfx.Swapchain) vk.Swapchain {
	return vk.Swapchain(unsafe.Pointer(uintptr(h)))
}

func nativeImage(h gfx.Image) vk.Image {
	return vk.Image(unsafe.Pointer(uintptr(h)))
}

func nativeImageView(h gfx.ImageView) vk.ImageView {
	return vk.ImageView(unsafe.Pointer(uintptr(h)))
}

func nativeShaderModule(h gfx.ShaderModule) vk.ShaderModule {
	return vk.ShaderModule(unsafe.Pointer(uintptr(h)))
}

func nativeRenderPass(h gfx.RenderPass) vk.RenderPass {
	return vk.RenderPass(unsafe.Pointer(uintptr(h)))
}

func nativePipelineLayout(h gfx.PipelineLayout) vk.PipelineLayout {
	return vk.PipelineLayout(unsafe.Pointer(uintptr(h)))
}

func nativePipeline(h gfx.Pipeline) vk.Pipeline {
	return vk.Pipeline(unsafe.Pointer(uintptr(h)))
}

func nativeFramebuffer(h gfx.Framebuffer) vk.Framebuffer {
	return vk.Framebuffer(unsafe.Pointer(uintptr(h)))
}

func nativeCommandPool(h gfx.CommandPool) vk.CommandPool {
	return vk.CommandPool(unsafe.Pointer(uintptr(h)))
}

func nativeCommandBuffer(h gfx.CommandBuffer) vk.CommandBuffer {
	return vk.CommandBuffer(unsafe.Pointer(uintptr(h)))
}

func nativeSemaphore(h gfx.Semaphore) vk.Semaphore {
	return vk.Semaphore(unsafe.Pointer(uintptr(h)))
}

func bool32(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

// safeString returns s terminated by a NUL byte, as the binding passes
// Go strings to C without copying.
func safeString(s string) string {
	if strings.HasSuffix(s, "\x00") {
		return s
	}
	return s + "\x00"
}

func safeStrings(list []string) []string {
	if len(list) == 0 {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, s := range list {
		out = append(out, safeString(s))
	}
	return out
}
