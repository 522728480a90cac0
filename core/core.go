// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package core brings a Vulkan rendering context up and tears it down.
// Every handle the bootstrap creates is recorded on a Ledger and
// destroyed in reverse order, also when initialisation fails halfway.
package core

import (
	"github.com/devblok/trigon/gfx"
)

// Window is the window system the renderer presents into.
type Window interface {
	// InstanceExtensions lists the instance extensions the window
	// system needs for surface creation.
	InstanceExtensions() []string

	// CreateSurface creates a presentation surface for instance.
	CreateSurface(instance gfx.Instance) (gfx.Surface, error)

	// DrawableSize returns the current size of the window in pixels.
	DrawableSize() (width, height uint32)

	// Poll drains pending window events and reports whether the
	// window was closed.
	Poll() bool
}

// Renderer describes the rendering machinery.
// It's created only with internal values set,
// it needs to be initialised with Initialise() before use.
type Renderer interface {
	// Initialise sets up the configured rendering pipeline
	Initialise() error

	// DrawFrame renders and presents one frame
	DrawFrame() error

	// Destroy destroys internal members
	Destroy() error
}
