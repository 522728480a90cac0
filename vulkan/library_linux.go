// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vulkan

// #cgo linux LDFLAGS: -ldl
// #include <dlfcn.h>
// #include <stdlib.h>
import "C"

import (
	"unsafe"

	"github.com/devblok/trigon/loader"
	"github.com/pkg/errors"
)

// DefaultLibrary is opened when no path is configured.
const DefaultLibrary = "libvulkan.so.1"

// Library opens the Vulkan loader with dlopen. It serves headless use,
// a window system that owns its own loader provides its own Library.
type Library struct {
	h unsafe.Pointer
}

var _ loader.Library = (*Library)(nil)

// Open implements loader.Library.
func (l *Library) Open(path string) error {
	if l.h != nil {
		return errors.New("library already open")
	}
	if path == "" {
		path = DefaultLibrary
	}

	name := C.CString(path)
	defer C.free(unsafe.Pointer(name))

	h := C.dlopen(name, C.RTLD_LAZY|C.RTLD_GLOBAL)
	if h == nil {
		return errors.Errorf("dlopen: %s", C.GoString(C.dlerror()))
	}
	l.h = h
	return nil
}

// Symbol implements loader.Library.
func (l *Library) Symbol(name string) unsafe.Pointer {
	if l.h == nil {
		return nil
	}
	sym := C.CString(name)
	defer C.free(unsafe.Pointer(sym))
	return C.dlsym(l.h, sym)
}

// Handle implements loader.Library.
func (l *Library) Handle() uintptr {
	return uintptr(l.h)
}

// Close implements loader.Library.
func (l *Library) Close() error {
	if l.h == nil {
		return nil
	}
	h := l.h
	l.h = nil
	if C.dlclose(h) != 0 {
		return errors.Errorf("dlclose: %s", C.GoString(C.dlerror()))
	}
	return nil
}
