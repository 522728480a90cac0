// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package vulkan

import (
	"testing"
	"unsafe"

	vk "github.com/devblok/vulkan"
)

func TestSafeString(t *testing.T) {
	cases := map[string]string{
		"":                     "\x00",
		"VK_KHR_surface":       "VK_KHR_surface\x00",
		"VK_KHR_swapchain\x00": "VK_KHR_swapchain\x00",
	}
	for in, want := range cases {
		if got := safeString(in); got != want {
			t.Errorf("safeString(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSafeStrings(t *testing.T) {
	if got := safeStrings(nil); got != nil {
		t.Errorf("safeStrings(nil) = %v, want nil", got)
	}

	got := safeStrings([]string{"a", "b\x00"})
	if len(got) != 2 || got[0] != "a\x00" || got[1] != "b\x00" {
		t.Errorf("safeStrings() = %q", got)
	}
}

func TestBool32(t *testing.T) {
	if bool32(true) != vk.True {
		t.Error("bool32(true) != vk.True")
	}
	if bool32(false) != vk.False {
		t.Error("bool32(false) != vk.False")
	}
}

func TestLibraryOpenMissing(t *testing.T) {
	var lib Library
	if err := lib.Open("/nonexistent/libvulkan.so.1"); err == nil {
		t.Fatal("Open() succeeded for a missing library")
	}
	if lib.Handle() != 0 {
		t.Errorf("Handle() = %#x after a failed Open", lib.Handle())
	}
	if lib.Symbol("vkGetInstanceProcAddr") != nil {
		t.Error("Symbol() resolved without an open library")
	}
	if err := lib.Close(); err != nil {
		t.Errorf("Close() on an unopened library: %v", err)
	}
}

func TestDispatchInitNil(t *testing.T) {
	if err := NewDispatch().Init(nil); err == nil {
		t.Error("Init(nil) succeeded")
	}
}

type lookupCall struct {
	resolver unsafe.Pointer
	handle   uintptr
	name     string
}

var instanceEntry, deviceEntry, symbolEntry byte

var (
	instanceResolver = unsafe.Pointer(&instanceEntry)
	deviceResolver   = unsafe.Pointer(&deviceEntry)
)

func recordingLookup(calls *[]lookupCall) lookupFunc {
	return func(resolver unsafe.Pointer, handle uintptr, name string) unsafe.Pointer {
		*calls = append(*calls, lookupCall{resolver, handle, name})
		if name == getDeviceProcAddr {
			return deviceResolver
		}
		return unsafe.Pointer(&symbolEntry)
	}
}

func TestProcTableUnset(t *testing.T) {
	var calls []lookupCall
	procs := newProcTable(recordingLookup(&calls))

	if procs.instanceProc(0, "vkCreateInstance") != nil {
		t.Error("instanceProc resolved without a resolver")
	}
	if procs.bindInstance(0x10) {
		t.Error("bindInstance succeeded without a resolver")
	}
	if procs.deviceProc(0x20, "vkCreateSwapchainKHR") != nil {
		t.Error("deviceProc resolved without a device resolver")
	}
	if len(calls) != 0 {
		t.Errorf("lookup called %d times", len(calls))
	}
}

func TestProcTableTiers(t *testing.T) {
	var calls []lookupCall
	procs := newProcTable(recordingLookup(&calls))
	procs.setInstanceResolver(instanceResolver)

	if procs.instanceProc(0, "vkCreateInstance") == nil {
		t.Fatal("global lookup failed")
	}
	if procs.deviceProc(0x20, "vkCreateSwapchainKHR") != nil {
		t.Error("deviceProc resolved before an instance was bound")
	}
	if procs.bindInstance(0) {
		t.Error("bindInstance accepted a null instance")
	}
	if !procs.bindInstance(0x10) {
		t.Fatal("bindInstance failed")
	}
	if procs.deviceProc(0x20, "vkCreateSwapchainKHR") == nil {
		t.Fatal("device lookup failed")
	}

	want := []lookupCall{
		{instanceResolver, 0, "vkCreateInstance"},
		{instanceResolver, 0x10, getDeviceProcAddr},
		{deviceResolver, 0x20, "vkCreateSwapchainKHR"},
	}
	if len(calls) != len(want) {
		t.Fatalf("lookups %+v, want %+v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("lookup %d = %+v, want %+v", i, calls[i], want[i])
		}
	}

	procs.setInstanceResolver(instanceResolver)
	if procs.deviceProc(0x20, "vkCreateSwapchainKHR") != nil {
		t.Error("device resolver survived a new instance resolver")
	}
}

func TestProcTableMissingDeviceResolver(t *testing.T) {
	procs := newProcTable(func(unsafe.Pointer, uintptr, string) unsafe.Pointer { return nil })
	procs.setInstanceResolver(instanceResolver)
	if procs.bindInstance(0x10) {
		t.Error("bindInstance succeeded without vkGetDeviceProcAddr")
	}
}
