// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package loader resolves native graphics entry points in three tiers.
// Exported symbols come from the shared library, instance symbols from
// an instance bound resolver and device symbols from a device bound
// resolver. The loader walks a tagged state machine and refuses to
// resolve anything whose owner is not alive, so a pointer that outlived
// its instance or device can never be handed out.
package loader

import (
	"unsafe"

	"github.com/devblok/trigon/gfx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// State is the loader lifecycle tag.
type State int

// Loader states, each one implies all previous ones.
const (
	Unloaded State = iota
	LibraryLoaded
	InstanceReady
	DeviceReady
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case LibraryLoaded:
		return "library-loaded"
	case InstanceReady:
		return "instance-ready"
	case DeviceReady:
		return "device-ready"
	}
	return "invalid"
}

// Library is a dynamically loaded native library.
type Library interface {
	// Open loads the library from path, an empty path selects the
	// platform default.
	Open(path string) error
	// Symbol looks up an exported symbol, nil when absent.
	Symbol(name string) unsafe.Pointer
	// Handle identifies the loaded library, zero when not loaded.
	Handle() uintptr
	Close() error
}

// Dispatcher turns the resolver exported by the library into instance
// and device level lookups.
type Dispatcher interface {
	// Init installs the instance resolver obtained from the library.
	Init(getInstanceProcAddr unsafe.Pointer) error
	// InitInstance binds instance level dispatch to instance.
	InitInstance(instance gfx.Instance) error
	// InstanceProc resolves name against instance, which may be null
	// for global entry points.
	InstanceProc(instance gfx.Instance, name string) unsafe.Pointer
	// DeviceProc resolves name against device.
	DeviceProc(device gfx.Device, name string) unsafe.Pointer
}

type functionTable map[string]unsafe.Pointer

// Loader owns the library handle and the scoped function tables.
type Loader struct {
	library  Library
	dispatch Dispatcher

	state    State
	path     string
	instance gfx.Instance
	device   gfx.Device

	exportedTable functionTable
	globalTable   functionTable
	instanceTable functionTable
	deviceTable   functionTable
}

// New creates an unloaded Loader.
func New(library Library, dispatch Dispatcher) *Loader {
	return &Loader{
		library:  library,
		dispatch: dispatch,
		state:    Unloaded,
	}
}

// State returns the current lifecycle tag.
func (l *Loader) State() State {
	return l.state
}

// Handle returns the library handle, or gfx.NullHandle when nothing is
// loaded.
func (l *Loader) Handle() gfx.Handle {
	if l.state == Unloaded {
		return gfx.NullHandle
	}
	return gfx.Handle(l.library.Handle())
}

// LoadLibrary opens the native library and installs its instance
// resolver.
func (l *Loader) LoadLibrary(path string) error {
	if l.state != Unloaded {
		return errors.Errorf("loader: library already loaded (state %s)", l.state)
	}

	if err := l.library.Open(path); err != nil {
		return &LoadError{Path: path, Err: err}
	}

	gipa := l.library.Symbol(GetInstanceProcAddr.Name)
	if gipa == nil {
		l.library.Close()
		return &LoadError{
			Path: path,
			Err:  &SymbolError{Name: GetInstanceProcAddr.Name, Scope: ScopeExported, State: LibraryLoaded},
		}
	}

	if err := l.dispatch.Init(gipa); err != nil {
		l.library.Close()
		return &LoadError{Path: path, Err: err}
	}

	l.path = path
	l.state = LibraryLoaded
	l.exportedTable = functionTable{GetInstanceProcAddr.Name: gipa}
	l.globalTable = functionTable{}

	log.WithField("path", path).Debug("vulkan library loaded")
	return nil
}

// BindInstance makes instance level symbols resolvable against
// instance.
func (l *Loader) BindInstance(instance gfx.Instance) error {
	if l.state != LibraryLoaded {
		return errors.Errorf("loader: cannot bind instance in state %s", l.state)
	}
	if instance == 0 {
		return errors.New("loader: cannot bind a null instance")
	}
	if err := l.dispatch.InitInstance(instance); err != nil {
		return errors.Wrap(err, "loader: instance dispatch")
	}

	l.instance = instance
	l.instanceTable = functionTable{}
	l.state = InstanceReady
	return nil
}

// BindDevice makes device level symbols resolvable against device.
func (l *Loader) BindDevice(device gfx.Device) error {
	if l.state != InstanceReady {
		return errors.Errorf("loader: cannot bind device in state %s", l.state)
	}
	if device == 0 {
		return errors.New("loader: cannot bind a null device")
	}

	l.device = device
	l.deviceTable = functionTable{}
	l.state = DeviceReady
	return nil
}

// ReleaseDevice forgets the device and every pointer resolved against
// it. Does nothing unless a device is bound.
func (l *Loader) ReleaseDevice() {
	if l.state != DeviceReady {
		return
	}
	l.device = 0
	l.deviceTable = nil
	l.state = InstanceReady
}

// ReleaseInstance forgets the instance and every pointer resolved
// against it, including a still bound device.
func (l *Loader) ReleaseInstance() {
	l.ReleaseDevice()
	if l.state != InstanceReady {
		return
	}
	l.instance = 0
	l.instanceTable = nil
	l.state = LibraryLoaded
}

// Close releases every scope and unloads the library.
func (l *Loader) Close() error {
	l.ReleaseInstance()
	if l.state != LibraryLoaded {
		return nil
	}
	l.exportedTable = nil
	l.globalTable = nil
	l.state = Unloaded
	if err := l.library.Close(); err != nil {
		return &LoadError{Path: l.path, Err: err}
	}
	return nil
}

// Resolve returns the entry point for sym from its scope's table,
// resolving and memoizing it on first use.
func (l *Loader) Resolve(sym Symbol) (unsafe.Pointer, error) {
	table, lookup := l.scope(sym.Scope)
	if table == nil {
		return nil, &SymbolError{Name: sym.Name, Scope: sym.Scope, State: l.state}
	}

	if ptr, ok := table[sym.Name]; ok {
		return ptr, nil
	}

	ptr := lookup(sym.Name)
	if ptr == nil {
		return nil, &SymbolError{Name: sym.Name, Scope: sym.Scope, State: l.state}
	}
	table[sym.Name] = ptr
	return ptr, nil
}

// Require resolves all of syms and fails on the first one missing.
// Call sites use it right before the native calls it guards.
func (l *Loader) Require(syms ...Symbol) error {
	for _, sym := range syms {
		if _, err := l.Resolve(sym); err != nil {
			return err
		}
	}
	return nil
}

// scope returns the live table for s and the lookup that fills it,
// or a nil table when s is not available in the current state.
func (l *Loader) scope(s Scope) (functionTable, func(string) unsafe.Pointer) {
	switch s {
	case ScopeExported:
		if l.state >= LibraryLoaded {
			return l.exportedTable, l.library.Symbol
		}
	case ScopeGlobal:
		if l.state >= LibraryLoaded {
			return l.globalTable, func(name string) unsafe.Pointer {
				return l.dispatch.InstanceProc(0, name)
			}
		}
	case ScopeInstance:
		if l.state >= InstanceReady {
			instance := l.instance
			return l.instanceTable, func(name string) unsafe.Pointer {
				return l.dispatch.InstanceProc(instance, name)
			}
		}
	case ScopeDevice:
		if l.state >= DeviceReady {
			device := l.device
			return l.deviceTable, func(name string) unsafe.Pointer {
				return l.dispatch.DeviceProc(device, name)
			}
		}
	}
	return nil, nil
}
