// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"context"
	"strings"
	"testing"

	"github.com/devblok/trigon/device"
	"github.com/devblok/trigon/gfx"
	"github.com/devblok/trigon/loader"
	"github.com/devblok/trigon/shader"
	"github.com/pkg/errors"
)

type harness struct {
	drv    *fakeDriver
	lib    *fakeLibrary
	disp   *fakeDispatcher
	win    *fakeWindow
	loader *loader.Loader
	ctx    *Context
}

func newHarness() *harness {
	h := &harness{
		drv:  newFakeDriver(),
		lib:  &fakeLibrary{},
		disp: &fakeDispatcher{missing: map[string]bool{}},
	}
	h.win = &fakeWindow{driver: h.drv}
	h.loader = loader.New(h.lib, h.disp)
	h.ctx = New(DefaultConfiguration(), h.loader, h.drv, h.win, fakeShaders{})
	return h
}

func (h *harness) checkClean(t *testing.T) {
	t.Helper()
	if len(h.drv.live) != 0 {
		t.Errorf("%d handles still alive: %v", len(h.drv.live), h.drv.live)
	}
	for _, v := range h.drv.violations {
		t.Errorf("violation: %s", v)
	}
	if h.loader.State() != loader.Unloaded {
		t.Errorf("loader left in state %s", h.loader.State())
	}
}

func kindsOf(events []string, prefix string) []string {
	var kinds []string
	for _, e := range events {
		if strings.HasPrefix(e, prefix) {
			kinds = append(kinds, strings.TrimPrefix(e, prefix))
		}
	}
	return kinds
}

func countEvents(events []string, name string) int {
	n := 0
	for _, e := range events {
		if e == name {
			n++
		}
	}
	return n
}

func TestInitialise(t *testing.T) {
	h := newHarness()
	if err := h.ctx.Initialise(); err != nil {
		t.Fatalf("Initialise: %v", err)
	}
	defer h.ctx.Destroy()

	if h.loader.State() != loader.DeviceReady {
		t.Errorf("loader state %s after initialisation", h.loader.State())
	}
	if name := h.ctx.PhysicalDevice().Name; name != "discrete" {
		t.Errorf("selected %q, want the discrete GPU", name)
	}
	if len(h.ctx.Devices()) != 2 {
		t.Errorf("enumerated %d devices", len(h.ctx.Devices()))
	}
	if !h.ctx.Report().HasLayer(ValidationLayer) {
		t.Error("layer report is empty")
	}

	sc := h.ctx.Swapchain()
	if sc.Format != PreferredSurfaceFormat {
		t.Errorf("negotiated format %+v", sc.Format)
	}
	if sc.PresentMode != gfx.PresentModeMailbox {
		t.Errorf("negotiated present mode %s", sc.PresentMode)
	}
	if sc.Extent != (gfx.Extent2D{Width: 800, Height: 600}) {
		t.Errorf("extent %+v", sc.Extent)
	}
	if h.drv.swapchainInfo.MinImageCount != 3 {
		t.Errorf("requested %d images, want 3", h.drv.swapchainInfo.MinImageCount)
	}
	if len(sc.Views) != len(sc.Images) {
		t.Errorf("%d views for %d images", len(sc.Views), len(sc.Images))
	}

	if n := len(h.drv.deviceInfo.Queues); n != 1 {
		t.Errorf("%d queue create infos for a shared family", n)
	}
	if len(h.drv.pipelineInfo.Stages) != 2 {
		t.Errorf("pipeline has %d stages", len(h.drv.pipelineInfo.Stages))
	}
	if h.drv.pipelineInfo.CullMode != gfx.CullModeBack || h.drv.pipelineInfo.FrontFace != gfx.FrontFaceClockwise {
		t.Errorf("unexpected raster state %+v", h.drv.pipelineInfo)
	}

	if len(h.drv.draws) != len(sc.Images) {
		t.Fatalf("%d command buffers recorded for %d images", len(h.drv.draws), len(sc.Images))
	}
	for i, d := range h.drv.draws {
		if d.VertexCount != 3 {
			t.Errorf("draw %d: %d vertices", i, d.VertexCount)
		}
		if d.ClearColor != [4]float32{0, 0, 0, 1} {
			t.Errorf("draw %d: clear color %v", i, d.ClearColor)
		}
		if d.Framebuffer != h.ctx.framebuffers[i] {
			t.Errorf("draw %d: framebuffer %#x", i, d.Framebuffer)
		}
	}
}

func TestDestroyReleasesInReverseOrder(t *testing.T) {
	h := newHarness()
	if err := h.ctx.Initialise(); err != nil {
		t.Fatalf("Initialise: %v", err)
	}
	created := kindsOf(h.drv.events, "create ")
	h.drv.events = nil

	if err := h.ctx.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	h.checkClean(t)

	destroyed := kindsOf(h.drv.events, "destroy ")
	if len(destroyed) != len(created) {
		t.Fatalf("destroyed %d of %d handles", len(destroyed), len(created))
	}
	for i := range created {
		if want := created[len(created)-1-i]; destroyed[i] != want {
			t.Errorf("release %d: %s, want %s", i, destroyed[i], want)
		}
	}
	if n := countEvents(h.drv.events, "wait idle"); n != 1 {
		t.Errorf("device waited idle %d times during teardown", n)
	}
	if h.lib.closed != 1 {
		t.Errorf("library closed %d times", h.lib.closed)
	}

	h.drv.events = nil
	if err := h.ctx.Destroy(); err != nil {
		t.Errorf("second Destroy: %v", err)
	}
	if len(h.drv.events) != 0 || h.lib.closed != 1 {
		t.Errorf("second Destroy did work: %v", h.drv.events)
	}
}

func TestInitialiseFaultInjection(t *testing.T) {
	cases := []struct {
		name  string
		setup func(h *harness)
		kind  error
	}{
		{"library", func(h *harness) { h.lib.openErr = errFake }, nil},
		{"layers", func(h *harness) { h.drv.fail["layers"] = gfx.ErrorInitializationFailed }, nil},
		{"instance", func(h *harness) { h.drv.fail["instance"] = gfx.ErrorIncompatibleDriver }, ErrInstanceCreation},
		{"instance dispatch", func(h *harness) { h.disp.instanceErr = errFake }, errFake},
		{"enumerate", func(h *harness) { h.drv.fail["enumerate"] = gfx.ErrorInitializationFailed }, nil},
		{"surface", func(h *harness) { h.win.surfaceErr = errFake }, errFake},
		{"presentation", func(h *harness) { h.drv.fail["support"] = gfx.ErrorSurfaceLost }, device.ErrNoPresentationQueue},
		{"device", func(h *harness) { h.drv.fail["device"] = gfx.ErrorExtensionNotPresent }, ErrDeviceCreation},
		{"formats", func(h *harness) { h.drv.fail["formats"] = gfx.ErrorSurfaceLost }, ErrSwapchainCreation},
		{"swapchain", func(h *harness) { h.drv.fail["swapchain"] = gfx.ErrorNativeWindowInUse }, ErrSwapchainCreation},
		{"swapchain images", func(h *harness) { h.drv.fail["images"] = gfx.ErrorOutOfHostMemory }, ErrSwapchainCreation},
		{"first image view", func(h *harness) { h.drv.fail["view"] = gfx.ErrorOutOfHostMemory }, ErrImageViewCreation},
		{"second image view", func(h *harness) {
			h.drv.fail["view"] = gfx.ErrorOutOfDeviceMemory
			h.drv.failAt["view"] = 1
		}, ErrImageViewCreation},
		{"shader source", func(h *harness) { h.ctx.shaders = fakeShaders{err: shader.ErrFileNotFound} }, shader.ErrFileNotFound},
		{"second shader module", func(h *harness) {
			h.drv.fail["shader"] = gfx.ErrorOutOfHostMemory
			h.drv.failAt["shader"] = 1
		}, ErrPipelineCreation},
		{"render pass", func(h *harness) { h.drv.fail["render pass"] = gfx.ErrorOutOfHostMemory }, ErrPipelineCreation},
		{"pipeline layout", func(h *harness) { h.drv.fail["layout"] = gfx.ErrorOutOfHostMemory }, ErrPipelineCreation},
		{"pipeline", func(h *harness) { h.drv.fail["pipeline"] = gfx.ErrorOutOfDeviceMemory }, ErrPipelineCreation},
		{"last framebuffer", func(h *harness) {
			h.drv.fail["framebuffer"] = gfx.ErrorOutOfDeviceMemory
			h.drv.failAt["framebuffer"] = 2
		}, ErrPipelineCreation},
		{"command pool", func(h *harness) { h.drv.fail["pool"] = gfx.ErrorOutOfHostMemory }, ErrCommandCreation},
		{"command buffers", func(h *harness) { h.drv.fail["buffers"] = gfx.ErrorOutOfHostMemory }, ErrCommandCreation},
		{"recording", func(h *harness) { h.drv.fail["record"] = gfx.ErrorOutOfDeviceMemory }, ErrCommandCreation},
		{"second semaphore", func(h *harness) {
			h.drv.fail["semaphore"] = gfx.ErrorOutOfHostMemory
			h.drv.failAt["semaphore"] = 1
		}, ErrSyncCreation},
		{"missing destroy symbol", func(h *harness) { h.disp.missing[loader.DestroySwapchain.Name] = true }, nil},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h := newHarness()
			c.setup(h)

			err := h.ctx.Initialise()
			if err == nil {
				t.Fatal("Initialise succeeded")
			}
			if c.kind != nil && !errors.Is(err, c.kind) {
				t.Errorf("error %v is not %v", err, c.kind)
			}
			h.checkClean(t)

			if err := h.ctx.Destroy(); err != nil {
				t.Errorf("Destroy after failure: %v", err)
			}
			h.checkClean(t)
		})
	}
}

func TestInitialiseLoadError(t *testing.T) {
	h := newHarness()
	h.lib.openErr = errFake

	err := h.ctx.Initialise()
	var le *loader.LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected *loader.LoadError, got %v", err)
	}
	if h.lib.closed != 0 {
		t.Errorf("library that never opened was closed %d times", h.lib.closed)
	}
}

func TestInitialiseMissingSymbol(t *testing.T) {
	h := newHarness()
	h.disp.missing[loader.CreateRenderPass.Name] = true

	err := h.ctx.Initialise()
	var se *loader.SymbolError
	if !errors.As(err, &se) {
		t.Fatalf("expected *loader.SymbolError, got %v", err)
	}
	if se.Name != loader.CreateRenderPass.Name {
		t.Errorf("missing symbol reported as %s", se.Name)
	}
	if h.drv.calls["render pass"] != 0 {
		t.Error("render pass was created without its entry point")
	}
	h.checkClean(t)
}

func TestDestroyReportsBarrierFailure(t *testing.T) {
	h := newHarness()
	if err := h.ctx.Initialise(); err != nil {
		t.Fatalf("Initialise: %v", err)
	}
	h.drv.fail["wait"] = gfx.ErrorDeviceLost

	err := h.ctx.Destroy()
	var re *gfx.ResultError
	if !errors.As(err, &re) || re.Result != gfx.ErrorDeviceLost {
		t.Errorf("expected the device lost error, got %v", err)
	}
	if len(h.drv.live) != 0 {
		t.Errorf("teardown stopped at a failed wait, %d handles alive", len(h.drv.live))
	}
}

func TestDrawFrame(t *testing.T) {
	h := newHarness()
	if err := h.ctx.Initialise(); err != nil {
		t.Fatalf("Initialise: %v", err)
	}
	h.drv.nextImage = 1

	if err := h.ctx.DrawFrame(); err != nil {
		t.Fatalf("DrawFrame: %v", err)
	}
	if len(h.drv.submits) != 1 || len(h.drv.presents) != 1 {
		t.Fatalf("%d submits and %d presents", len(h.drv.submits), len(h.drv.presents))
	}

	submit := h.drv.submits[0]
	if submit.CommandBuffer != h.ctx.commandBuffers[1] {
		t.Errorf("submitted %#x, want the buffer of image 1", submit.CommandBuffer)
	}
	if submit.WaitSemaphore != h.ctx.imageAvailable || submit.SignalSemaphore != h.ctx.renderFinished {
		t.Errorf("submit semaphores %+v", submit)
	}
	if submit.WaitStage != gfx.PipelineStageColorAttachmentOutput {
		t.Errorf("submit waits at %#x", submit.WaitStage)
	}

	present := h.drv.presents[0]
	if present.ImageIndex != 1 || present.WaitSemaphore != h.ctx.renderFinished {
		t.Errorf("present %+v", present)
	}

	if err := h.ctx.Destroy(); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	h.checkClean(t)
}

func TestDrawFrameSuboptimal(t *testing.T) {
	h := newHarness()
	if err := h.ctx.Initialise(); err != nil {
		t.Fatalf("Initialise: %v", err)
	}
	defer h.ctx.Destroy()

	h.drv.fail["acquire"] = gfx.Suboptimal
	h.drv.fail["present"] = gfx.Suboptimal
	if err := h.ctx.DrawFrame(); err != nil {
		t.Errorf("suboptimal frame failed: %v", err)
	}
}

func TestDrawFrameOutOfDate(t *testing.T) {
	h := newHarness()
	if err := h.ctx.Initialise(); err != nil {
		t.Fatalf("Initialise: %v", err)
	}
	defer h.ctx.Destroy()

	h.drv.fail["present"] = gfx.ErrorOutOfDate
	err := h.ctx.DrawFrame()
	if !errors.Is(err, ErrFrame) {
		t.Errorf("expected ErrFrame, got %v", err)
	}
	var re *gfx.ResultError
	if !errors.As(err, &re) || re.Result != gfx.ErrorOutOfDate {
		t.Errorf("native code lost: %v", err)
	}
}

func TestDrawFrameUninitialised(t *testing.T) {
	h := newHarness()
	if err := h.ctx.DrawFrame(); !errors.Is(err, ErrFrame) {
		t.Errorf("expected ErrFrame, got %v", err)
	}
}

func TestRunUntilWindowCloses(t *testing.T) {
	h := newHarness()
	if err := h.ctx.Initialise(); err != nil {
		t.Fatalf("Initialise: %v", err)
	}
	defer h.ctx.Destroy()

	h.win.closeAfter = 3
	tm := NewTime(TimeConfiguration{FramesPerSecond: 500, EventPollDelay: 1})
	defer tm.Release()

	if err := h.ctx.Run(context.Background(), tm); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if h.win.polls != 3 {
		t.Errorf("window polled %d times", h.win.polls)
	}
	if h.drv.pending {
		t.Error("Run returned with work pending")
	}
}

func TestRunCancelled(t *testing.T) {
	h := newHarness()
	if err := h.ctx.Initialise(); err != nil {
		t.Fatalf("Initialise: %v", err)
	}
	defer h.ctx.Destroy()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	tm := NewTime(TimeConfiguration{FramesPerSecond: 60, EventPollDelay: 16})
	defer tm.Release()

	if err := h.ctx.Run(ctx, tm); err != nil {
		t.Errorf("cancelled Run: %v", err)
	}
}

func TestRunStopsOnFrameError(t *testing.T) {
	h := newHarness()
	if err := h.ctx.Initialise(); err != nil {
		t.Fatalf("Initialise: %v", err)
	}
	defer h.ctx.Destroy()

	h.drv.fail["submit"] = gfx.ErrorDeviceLost
	tm := NewTime(TimeConfiguration{FramesPerSecond: 500, EventPollDelay: 1})
	defer tm.Release()

	if err := h.ctx.Run(context.Background(), tm); !errors.Is(err, ErrFrame) {
		t.Errorf("expected ErrFrame, got %v", err)
	}
}
