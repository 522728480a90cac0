// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package window

import (
	"unsafe"

	"github.com/devblok/trigon/loader"
	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"
)

// Library lets SDL own the Vulkan loader. Surfaces created by SDL must
// come from the same loader the renderer dispatches through, so a
// windowed renderer loads its library with this.
type Library struct {
	gipa unsafe.Pointer
}

var _ loader.Library = (*Library)(nil)

// Open implements loader.Library.
func (l *Library) Open(path string) error {
	if l.gipa != nil {
		return errors.New("library already open")
	}
	if err := sdl.VulkanLoadLibrary(path); err != nil {
		return errors.Wrap(err, "sdl.VulkanLoadLibrary()")
	}

	gipa := sdl.VulkanGetVkGetInstanceProcAddr()
	if gipa == nil {
		sdl.VulkanUnloadLibrary()
		return errors.New("sdl: vkGetInstanceProcAddr unavailable")
	}
	l.gipa = gipa
	return nil
}

// Symbol implements loader.Library. SDL only exports the instance
// resolver, everything else is reached through it.
func (l *Library) Symbol(name string) unsafe.Pointer {
	if name != loader.GetInstanceProcAddr.Name {
		return nil
	}
	return l.gipa
}

// Handle implements loader.Library. SDL keeps the real handle to
// itself, the resolver address identifies the load instead.
func (l *Library) Handle() uintptr {
	return uintptr(l.gipa)
}

// Close implements loader.Library.
func (l *Library) Close() error {
	if l.gipa == nil {
		return nil
	}
	l.gipa = nil
	sdl.VulkanUnloadLibrary()
	return nil
}
