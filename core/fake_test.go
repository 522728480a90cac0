// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"fmt"
	"unsafe"

	"github.com/devblok/trigon/gfx"
	"github.com/devblok/trigon/shader"
	"github.com/pkg/errors"
)

var entryPoint byte

type fakeLibrary struct {
	openErr error
	opened  bool
	closed  int
}

func (f *fakeLibrary) Open(string) error {
	if f.openErr != nil {
		return f.openErr
	}
	f.opened = true
	return nil
}

func (f *fakeLibrary) Symbol(string) unsafe.Pointer {
	if !f.opened {
		return nil
	}
	return unsafe.Pointer(&entryPoint)
}

func (f *fakeLibrary) Handle() uintptr {
	if !f.opened {
		return 0
	}
	return 0x1000
}

func (f *fakeLibrary) Close() error {
	f.opened = false
	f.closed++
	return nil
}

type fakeDispatcher struct {
	missing     map[string]bool
	instanceErr error
}

func (f *fakeDispatcher) Init(unsafe.Pointer) error { return nil }

func (f *fakeDispatcher) InitInstance(gfx.Instance) error { return f.instanceErr }

func (f *fakeDispatcher) InstanceProc(_ gfx.Instance, name string) unsafe.Pointer {
	return f.proc(name)
}

func (f *fakeDispatcher) DeviceProc(_ gfx.Device, name string) unsafe.Pointer {
	return f.proc(name)
}

func (f *fakeDispatcher) proc(name string) unsafe.Pointer {
	if f.missing[name] {
		return nil
	}
	return unsafe.Pointer(&entryPoint)
}

// fakeDriver hands out unique handles, tracks which of them are alive
// and records every misuse it notices as a violation. A step listed in
// fail returns its result on every call, or only on the call number
// given in failAt.
type fakeDriver struct {
	next       uintptr
	live       map[gfx.Handle]string
	events     []string
	violations []string

	fail   map[string]gfx.Result
	failAt map[string]int
	calls  map[string]int

	pending bool
	waits   int

	instanceInfo  gfx.InstanceInfo
	deviceInfo    gfx.DeviceInfo
	swapchainInfo gfx.SwapchainInfo
	pipelineInfo  gfx.GraphicsPipelineInfo
	draws         []gfx.DrawInfo
	submits       []gfx.SubmitInfo
	presents      []gfx.PresentInfo
	nextImage     uint32
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		next:   0x100,
		live:   map[gfx.Handle]string{},
		fail:   map[string]gfx.Result{},
		failAt: map[string]int{},
		calls:  map[string]int{},
	}
}

func (f *fakeDriver) step(name string) gfx.Result {
	n := f.calls[name]
	f.calls[name]++
	r, ok := f.fail[name]
	if !ok {
		return gfx.Success
	}
	if at, has := f.failAt[name]; has && at != n {
		return gfx.Success
	}
	return r
}

func (f *fakeDriver) create(kind string) gfx.Handle {
	f.next++
	h := gfx.Handle(f.next)
	f.live[h] = kind
	f.events = append(f.events, "create "+kind)
	return h
}

func (f *fakeDriver) violate(format string, args ...interface{}) {
	f.violations = append(f.violations, fmt.Sprintf(format, args...))
}

func (f *fakeDriver) liveOf(kinds ...string) int {
	n := 0
	for _, k := range f.live {
		for _, want := range kinds {
			if k == want {
				n++
			}
		}
	}
	return n
}

var inFlightKinds = map[string]bool{
	"swapchain":      true,
	"command pool":   true,
	"command buffer": true,
	"semaphore":      true,
}

func (f *fakeDriver) destroy(kind string, h gfx.Handle) {
	if h.IsNull() {
		f.violate("destroy of null %s", kind)
		return
	}
	if f.live[h] != kind {
		f.violate("destroy of unknown %s %#x", kind, uintptr(h))
		return
	}
	if inFlightKinds[kind] && f.pending {
		f.violate("%s destroyed while work is pending", kind)
	}
	switch kind {
	case "device":
		if n := len(f.live) - 1 - f.liveOf("instance", "surface"); n > 0 {
			f.violate("device destroyed with %d live children", n)
		}
	case "instance":
		if n := len(f.live) - 1; n > 0 {
			f.violate("instance destroyed with %d live objects", n)
		}
	}
	delete(f.live, h)
	f.events = append(f.events, "destroy "+kind)
}

func (f *fakeDriver) EnumerateInstanceLayers() ([]gfx.LayerProperties, gfx.Result) {
	if r := f.step("layers"); r != gfx.Success {
		return nil, r
	}
	return []gfx.LayerProperties{{Name: ValidationLayer, Description: "Khronos validation"}}, gfx.Success
}

func (f *fakeDriver) EnumerateInstanceExtensions(layer string) ([]string, gfx.Result) {
	if layer != "" {
		return []string{"VK_EXT_validation_features"}, gfx.Success
	}
	return []string{"VK_KHR_surface", "VK_KHR_xlib_surface", DebugReportExtension}, gfx.Success
}

func (f *fakeDriver) CreateInstance(info gfx.InstanceInfo) (gfx.Instance, gfx.Result) {
	if r := f.step("instance"); r != gfx.Success {
		return 0, r
	}
	f.instanceInfo = info
	return gfx.Instance(f.create("instance")), gfx.Success
}

func (f *fakeDriver) DestroyInstance(instance gfx.Instance) {
	f.destroy("instance", gfx.Handle(instance))
}

const (
	integratedGPU gfx.PhysicalDevice = 0xA01
	discreteGPU   gfx.PhysicalDevice = 0xA02
)

func (f *fakeDriver) EnumeratePhysicalDevices(gfx.Instance) ([]gfx.PhysicalDevice, gfx.Result) {
	if r := f.step("enumerate"); r != gfx.Success {
		return nil, r
	}
	return []gfx.PhysicalDevice{integratedGPU, discreteGPU}, gfx.Success
}

func (f *fakeDriver) PhysicalDeviceProperties(d gfx.PhysicalDevice) gfx.PhysicalDeviceProperties {
	if d == discreteGPU {
		return gfx.PhysicalDeviceProperties{Name: "discrete", Type: gfx.DeviceTypeDiscreteGpu, MaxImageDimension2D: 16384}
	}
	return gfx.PhysicalDeviceProperties{Name: "integrated", Type: gfx.DeviceTypeIntegratedGpu, MaxImageDimension2D: 16384}
}

func (f *fakeDriver) PhysicalDeviceFeatures(gfx.PhysicalDevice) gfx.PhysicalDeviceFeatures {
	return gfx.PhysicalDeviceFeatures{GeometryShader: true}
}

func (f *fakeDriver) PhysicalDeviceMemoryHeaps(gfx.PhysicalDevice) []uint64 {
	return []uint64{1 << 30}
}

func (f *fakeDriver) QueueFamilyProperties(gfx.PhysicalDevice) []gfx.QueueFamilyProperties {
	return []gfx.QueueFamilyProperties{{Flags: gfx.QueueGraphics | gfx.QueueTransfer, Count: 1}}
}

func (f *fakeDriver) EnumerateDeviceExtensions(gfx.PhysicalDevice) ([]string, gfx.Result) {
	return []string{"VK_KHR_swapchain"}, gfx.Success
}

func (f *fakeDriver) EnumerateDeviceLayers(gfx.PhysicalDevice) ([]gfx.LayerProperties, gfx.Result) {
	return nil, gfx.Success
}

func (f *fakeDriver) SurfaceSupport(gfx.PhysicalDevice, uint32, gfx.Surface) (bool, gfx.Result) {
	return f.step("support") == gfx.Success, gfx.Success
}

func (f *fakeDriver) SurfaceFormats(gfx.PhysicalDevice, gfx.Surface) ([]gfx.SurfaceFormat, gfx.Result) {
	if r := f.step("formats"); r != gfx.Success {
		return nil, r
	}
	return []gfx.SurfaceFormat{
		{Format: gfx.FormatB8G8R8A8Srgb, ColorSpace: gfx.ColorSpaceSrgbNonlinear},
		{Format: gfx.FormatB8G8R8A8Unorm, ColorSpace: gfx.ColorSpaceSrgbNonlinear},
	}, gfx.Success
}

func (f *fakeDriver) SurfacePresentModes(gfx.PhysicalDevice, gfx.Surface) ([]gfx.PresentMode, gfx.Result) {
	return []gfx.PresentMode{gfx.PresentModeFifo, gfx.PresentModeMailbox}, gfx.Success
}

func (f *fakeDriver) SurfaceCapabilities(gfx.PhysicalDevice, gfx.Surface) (gfx.SurfaceCapabilities, gfx.Result) {
	return gfx.SurfaceCapabilities{
		MinImageCount:    2,
		MaxImageCount:    8,
		CurrentExtent:    gfx.Extent2D{Width: 800, Height: 600},
		MinImageExtent:   gfx.Extent2D{Width: 1, Height: 1},
		MaxImageExtent:   gfx.Extent2D{Width: 4096, Height: 4096},
		CurrentTransform: gfx.SurfaceTransformIdentity,
	}, gfx.Success
}

func (f *fakeDriver) DestroySurface(_ gfx.Instance, surface gfx.Surface) {
	f.destroy("surface", gfx.Handle(surface))
}

func (f *fakeDriver) CreateDevice(_ gfx.PhysicalDevice, info gfx.DeviceInfo) (gfx.Device, gfx.Result) {
	if r := f.step("device"); r != gfx.Success {
		return 0, r
	}
	f.deviceInfo = info
	return gfx.Device(f.create("device")), gfx.Success
}

func (f *fakeDriver) DestroyDevice(dev gfx.Device) {
	f.destroy("device", gfx.Handle(dev))
}

func (f *fakeDriver) DeviceWaitIdle(gfx.Device) gfx.Result {
	f.waits++
	f.pending = false
	f.events = append(f.events, "wait idle")
	return f.step("wait")
}

func (f *fakeDriver) GetDeviceQueue(_ gfx.Device, family, _ uint32) gfx.Queue {
	return gfx.Queue(0xB00 + uintptr(family))
}

func (f *fakeDriver) QueueWaitIdle(gfx.Queue) gfx.Result {
	return gfx.Success
}

func (f *fakeDriver) CreateSwapchain(_ gfx.Device, info gfx.SwapchainInfo) (gfx.Swapchain, gfx.Result) {
	if r := f.step("swapchain"); r != gfx.Success {
		return 0, r
	}
	f.swapchainInfo = info
	return gfx.Swapchain(f.create("swapchain")), gfx.Success
}

func (f *fakeDriver) DestroySwapchain(_ gfx.Device, swapchain gfx.Swapchain) {
	f.destroy("swapchain", gfx.Handle(swapchain))
}

func (f *fakeDriver) SwapchainImages(gfx.Device, gfx.Swapchain) ([]gfx.Image, gfx.Result) {
	if r := f.step("images"); r != gfx.Success {
		return nil, r
	}
	return []gfx.Image{0xC01, 0xC02, 0xC03}, gfx.Success
}

func (f *fakeDriver) CreateImageView(gfx.Device, gfx.ImageViewInfo) (gfx.ImageView, gfx.Result) {
	if r := f.step("view"); r != gfx.Success {
		return 0, r
	}
	return gfx.ImageView(f.create("image view")), gfx.Success
}

func (f *fakeDriver) DestroyImageView(_ gfx.Device, view gfx.ImageView) {
	f.destroy("image view", gfx.Handle(view))
}

func (f *fakeDriver) CreateShaderModule(_ gfx.Device, code []uint32) (gfx.ShaderModule, gfx.Result) {
	if r := f.step("shader"); r != gfx.Success {
		return 0, r
	}
	if len(code) == 0 {
		f.violate("empty shader code")
	}
	return gfx.ShaderModule(f.create("shader module")), gfx.Success
}

func (f *fakeDriver) DestroyShaderModule(_ gfx.Device, module gfx.ShaderModule) {
	f.destroy("shader module", gfx.Handle(module))
}

func (f *fakeDriver) CreateRenderPass(gfx.Device, gfx.RenderPassInfo) (gfx.RenderPass, gfx.Result) {
	if r := f.step("render pass"); r != gfx.Success {
		return 0, r
	}
	return gfx.RenderPass(f.create("render pass")), gfx.Success
}

func (f *fakeDriver) DestroyRenderPass(_ gfx.Device, pass gfx.RenderPass) {
	f.destroy("render pass", gfx.Handle(pass))
}

func (f *fakeDriver) CreatePipelineLayout(gfx.Device) (gfx.PipelineLayout, gfx.Result) {
	if r := f.step("layout"); r != gfx.Success {
		return 0, r
	}
	return gfx.PipelineLayout(f.create("pipeline layout")), gfx.Success
}

func (f *fakeDriver) DestroyPipelineLayout(_ gfx.Device, layout gfx.PipelineLayout) {
	f.destroy("pipeline layout", gfx.Handle(layout))
}

func (f *fakeDriver) CreateGraphicsPipeline(_ gfx.Device, info gfx.GraphicsPipelineInfo) (gfx.Pipeline, gfx.Result) {
	if r := f.step("pipeline"); r != gfx.Success {
		return 0, r
	}
	f.pipelineInfo = info
	return gfx.Pipeline(f.create("pipeline")), gfx.Success
}

func (f *fakeDriver) DestroyPipeline(_ gfx.Device, pipeline gfx.Pipeline) {
	f.destroy("pipeline", gfx.Handle(pipeline))
}

func (f *fakeDriver) CreateFramebuffer(gfx.Device, gfx.FramebufferInfo) (gfx.Framebuffer, gfx.Result) {
	if r := f.step("framebuffer"); r != gfx.Success {
		return 0, r
	}
	return gfx.Framebuffer(f.create("framebuffer")), gfx.Success
}

func (f *fakeDriver) DestroyFramebuffer(_ gfx.Device, fb gfx.Framebuffer) {
	f.destroy("framebuffer", gfx.Handle(fb))
}

func (f *fakeDriver) CreateCommandPool(gfx.Device, uint32) (gfx.CommandPool, gfx.Result) {
	if r := f.step("pool"); r != gfx.Success {
		return 0, r
	}
	return gfx.CommandPool(f.create("command pool")), gfx.Success
}

func (f *fakeDriver) DestroyCommandPool(_ gfx.Device, pool gfx.CommandPool) {
	if n := f.liveOf("command buffer"); n > 0 {
		f.violate("command pool destroyed with %d live buffers", n)
	}
	f.destroy("command pool", gfx.Handle(pool))
}

func (f *fakeDriver) AllocateCommandBuffers(_ gfx.Device, _ gfx.CommandPool, count uint32) ([]gfx.CommandBuffer, gfx.Result) {
	if r := f.step("buffers"); r != gfx.Success {
		return nil, r
	}
	buffers := make([]gfx.CommandBuffer, count)
	for i := range buffers {
		buffers[i] = gfx.CommandBuffer(f.create("command buffer"))
	}
	return buffers, gfx.Success
}

func (f *fakeDriver) FreeCommandBuffers(_ gfx.Device, _ gfx.CommandPool, buffers []gfx.CommandBuffer) {
	for _, b := range buffers {
		f.destroy("command buffer", gfx.Handle(b))
	}
}

func (f *fakeDriver) RecordDraw(_ gfx.CommandBuffer, info gfx.DrawInfo) gfx.Result {
	if r := f.step("record"); r != gfx.Success {
		return r
	}
	f.draws = append(f.draws, info)
	return gfx.Success
}

func (f *fakeDriver) CreateSemaphore(gfx.Device) (gfx.Semaphore, gfx.Result) {
	if r := f.step("semaphore"); r != gfx.Success {
		return 0, r
	}
	return gfx.Semaphore(f.create("semaphore")), gfx.Success
}

func (f *fakeDriver) DestroySemaphore(_ gfx.Device, semaphore gfx.Semaphore) {
	f.destroy("semaphore", gfx.Handle(semaphore))
}

func (f *fakeDriver) AcquireNextImage(gfx.Device, gfx.Swapchain, uint64, gfx.Semaphore) (uint32, gfx.Result) {
	if r := f.step("acquire"); r != gfx.Success {
		return 0, r
	}
	return f.nextImage, gfx.Success
}

func (f *fakeDriver) QueueSubmit(_ gfx.Queue, info gfx.SubmitInfo) gfx.Result {
	if r := f.step("submit"); r != gfx.Success {
		return r
	}
	f.pending = true
	f.submits = append(f.submits, info)
	return gfx.Success
}

func (f *fakeDriver) QueuePresent(_ gfx.Queue, info gfx.PresentInfo) gfx.Result {
	if r := f.step("present"); r != gfx.Success {
		return r
	}
	f.presents = append(f.presents, info)
	return gfx.Success
}

// fakeWindow creates its surfaces through the fake driver so they are
// tracked with everything else.
type fakeWindow struct {
	driver     *fakeDriver
	surfaceErr error
	closeAfter int
	polls      int
}

func (w *fakeWindow) InstanceExtensions() []string {
	return []string{"VK_KHR_surface", "VK_KHR_xlib_surface"}
}

func (w *fakeWindow) CreateSurface(gfx.Instance) (gfx.Surface, error) {
	if w.surfaceErr != nil {
		return 0, w.surfaceErr
	}
	return gfx.Surface(w.driver.create("surface")), nil
}

func (w *fakeWindow) DrawableSize() (uint32, uint32) {
	return 800, 600
}

func (w *fakeWindow) Poll() bool {
	w.polls++
	return w.closeAfter > 0 && w.polls >= w.closeAfter
}

type fakeShaders struct {
	err error
}

func (s fakeShaders) Modules() ([]shader.Module, error) {
	if s.err != nil {
		return nil, s.err
	}
	code := []byte{0x03, 0x02, 0x23, 0x07, 0, 0, 1, 0}
	return []shader.Module{
		{Name: "triangle", Stage: shader.VertexStage, Entry: "main", Code: code},
		{Name: "triangle", Stage: shader.FragmentStage, Entry: "main", Code: code},
	}, nil
}

var errFake = errors.New("fake failure")
