// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vulkan

import (
	"unsafe"

	"github.com/devblok/trigon/gfx"
	"github.com/devblok/trigon/loader"
	vk "github.com/devblok/vulkan"
	"github.com/pkg/errors"
)

// Dispatch routes the bindings' function tables through the resolver
// exported by whichever library the loader opened. Lookups for the
// loader go straight through that resolver.
type Dispatch struct {
	procs *procTable
}

var _ loader.Dispatcher = (*Dispatch)(nil)

// NewDispatch returns the dispatcher for the cgo bindings.
func NewDispatch() *Dispatch {
	return &Dispatch{procs: newProcTable(nativeLookup)}
}

// Init implements loader.Dispatcher.
func (d *Dispatch) Init(getInstanceProcAddr unsafe.Pointer) error {
	if getInstanceProcAddr == nil {
		return errors.New("vulkan: nil vkGetInstanceProcAddr")
	}
	vk.SetGetInstanceProcAddr(getInstanceProcAddr)
	if err := vk.Init(); err != nil {
		return errors.Wrap(err, "vk.Init()")
	}
	d.procs.setInstanceResolver(getInstanceProcAddr)
	return nil
}

// InitInstance implements loader.Dispatcher.
func (d *Dispatch) InitInstance(instance gfx.Instance) error {
	if err := vk.InitInstance(nativeInstance(instance)); err != nil {
		return errors.Wrap(err, "vk.InitInstance()")
	}
	if !d.procs.bindInstance(uintptr(instance)) {
		return errors.Errorf("vulkan: %s unavailable", getDeviceProcAddr)
	}
	return nil
}

// InstanceProc implements loader.Dispatcher.
func (d *Dispatch) InstanceProc(instance gfx.Instance, name string) unsafe.Pointer {
	return d.procs.instanceProc(uintptr(instance), name)
}

// DeviceProc implements loader.Dispatcher.
func (d *Dispatch) DeviceProc(device gfx.Device, name string) unsafe.Pointer {
	return d.procs.deviceProc(uintptr(device), name)
}
