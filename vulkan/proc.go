// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vulkan

// #include <stdint.h>
// #include <stdlib.h>
//
// typedef void (*trigonVoidFunction)(void);
// typedef trigonVoidFunction (*trigonProcAddr)(void *handle, const char *name);
//
// // Both vkGetInstanceProcAddr and vkGetDeviceProcAddr take a
// // dispatchable handle and a name, so one trampoline serves both.
// static void *trigonGetProcAddr(void *resolver, uintptr_t handle, const char *name) {
// 	return (void *)((trigonProcAddr)resolver)((void *)handle, name);
// }
import "C"

import (
	"unsafe"
)

// getDeviceProcAddr is looked up through the instance resolver once an
// instance exists.
const getDeviceProcAddr = "vkGetDeviceProcAddr"

// lookupFunc calls resolver with a dispatchable handle and a symbol
// name, returning the entry point or nil.
type lookupFunc func(resolver unsafe.Pointer, handle uintptr, name string) unsafe.Pointer

func nativeLookup(resolver unsafe.Pointer, handle uintptr, name string) unsafe.Pointer {
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	return C.trigonGetProcAddr(resolver, C.uintptr_t(handle), cname)
}

// procTable holds the two resolvers of the native API.
type procTable struct {
	lookup lookupFunc

	instanceResolver unsafe.Pointer
	deviceResolver   unsafe.Pointer
}

func newProcTable(lookup lookupFunc) *procTable {
	return &procTable{lookup: lookup}
}

func (p *procTable) setInstanceResolver(resolver unsafe.Pointer) {
	p.instanceResolver = resolver
	p.deviceResolver = nil
}

// bindInstance fetches the device resolver through instance.
func (p *procTable) bindInstance(instance uintptr) bool {
	if p.instanceResolver == nil || instance == 0 {
		return false
	}
	p.deviceResolver = p.lookup(p.instanceResolver, instance, getDeviceProcAddr)
	return p.deviceResolver != nil
}

func (p *procTable) instanceProc(instance uintptr, name string) unsafe.Pointer {
	if p.instanceResolver == nil {
		return nil
	}
	return p.lookup(p.instanceResolver, instance, name)
}

func (p *procTable) deviceProc(device uintptr, name string) unsafe.Pointer {
	if p.deviceResolver == nil || device == 0 {
		return nil
	}
	return p.lookup(p.deviceResolver, device, name)
}
