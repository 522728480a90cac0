// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package gfx defines the types shared between the renderer core and
// the native graphics driver boundary. Handles are opaque and the zero
// value of every handle type is its null sentinel.
package gfx

// Releasable defines any memory-occupying item that can be freed.
type Releasable interface {

	// Release releases memory occupied by the implementing structure.
	Release()
}

// Handle is the untyped form of any native handle. It is what the
// resource ledger stores.
type Handle uintptr

// NullHandle is the null sentinel shared by all handle types.
const NullHandle Handle = 0

// IsNull reports whether h refers to nothing.
func (h Handle) IsNull() bool {
	return h == NullHandle
}

// Native handle types. Dispatchable and non-dispatchable objects alike
// are carried as pointer sized integers.
type (
	Instance       uintptr
	PhysicalDevice uintptr
	Surface        uintptr
	Device         uintptr
	Queue          uintptr
	Swapchain      uintptr
	Image          uintptr
	ImageView      uintptr
	ShaderModule   uintptr
	RenderPass     uintptr
	PipelineLayout uintptr
	Pipeline       uintptr
	Framebuffer    uintptr
	CommandPool    uintptr
	CommandBuffer  uintptr
	Semaphore      uintptr
)
