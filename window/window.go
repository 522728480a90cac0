// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package window provides the SDL2 window the renderer presents into.
// SDL has to be driven from the main OS thread.
package window

import (
	"unsafe"

	"github.com/devblok/trigon/gfx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
)

// Init starts the SDL video and event subsystems.
func Init() error {
	return errors.Wrap(sdl.Init(sdl.INIT_VIDEO|sdl.INIT_EVENTS), "sdl.Init()")
}

// Quit shuts SDL down.
func Quit() {
	sdl.Quit()
}

var _ gfx.Releasable = (*Window)(nil)

// Window is a fixed size Vulkan capable SDL window.
type Window struct {
	window *sdl.Window
	closed bool
}

// New opens a window of the given size.
func New(title string, width, height uint32) (*Window, error) {
	w, err := sdl.CreateWindow(title,
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		int32(width),
		int32(height),
		sdl.WINDOW_VULKAN)
	if err != nil {
		return nil, errors.Wrap(err, "sdl.CreateWindow()")
	}

	log.WithFields(log.Fields{
		"title":  title,
		"width":  width,
		"height": height,
	}).Debug("window created")
	return &Window{window: w}, nil
}

// InstanceExtensions returns the instance extensions SDL needs to
// create a surface.
func (w *Window) InstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

// CreateSurface creates a Vulkan surface for the window. The instance
// goes to SDL as a typed pointer, which is what it checks for.
func (w *Window) CreateSurface(instance gfx.Instance) (gfx.Surface, error) {
	if instance == 0 {
		return 0, errors.New("cannot create a surface for a null instance")
	}

	ptr, err := w.window.VulkanCreateSurface((*byte)(unsafe.Pointer(uintptr(instance))))
	if err != nil {
		return 0, errors.Wrap(err, "sdl.VulkanCreateSurface()")
	}
	return gfx.Surface(*(*uintptr)(ptr)), nil
}

// DrawableSize returns the size of the drawable area in pixels, which
// differs from the window size on high density displays.
func (w *Window) DrawableSize() (width, height uint32) {
	dw, dh := w.window.VulkanGetDrawableSize()
	return uint32(dw), uint32(dh)
}

// Poll drains the event queue and reports whether the window was
// asked to close, either by the window manager or with Escape.
func (w *Window) Poll() bool {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch et := event.(type) {
		case *sdl.KeyboardEvent:
			if et.Keysym.Sym == sdl.K_ESCAPE {
				w.closed = true
			}
		case *sdl.QuitEvent:
			w.closed = true
		}
	}
	return w.closed
}

// Release implements gfx.Releasable.
func (w *Window) Release() {
	if w.window == nil {
		return
	}
	if err := w.window.Destroy(); err != nil {
		log.WithError(err).Warn("window destroy failed")
	}
	w.window = nil
}
