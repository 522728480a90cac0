// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/devblok/trigon/device"
	"github.com/devblok/trigon/gfx"
	"github.com/devblok/trigon/loader"
	"github.com/pkg/errors"
)

// Probe is what a headless instance can tell about the machine.
type Probe struct {
	Report  LayerReport                 `json:"report"`
	Devices []device.PhysicalDeviceInfo `json:"devices"`
}

// ProbeDevices loads the library, creates a windowless instance and
// describes every physical device it sees. Everything it creates is
// released again before it returns.
func ProbeDevices(cfg InstanceConfiguration, ld *loader.Loader, driver gfx.Driver) (probe Probe, err error) {
	ledger := NewLedger()
	defer func() {
		if uerr := ledger.Unwind(); uerr != nil && err == nil {
			err = uerr
		}
	}()

	if err := ld.LoadLibrary(cfg.LibraryPath); err != nil {
		return probe, err
	}
	if err := ledger.Push(KindLibrary, ld.Handle(), ld.Close); err != nil {
		ld.Close()
		return probe, err
	}

	if err := ld.Require(loader.EnumerateInstanceLayerProperties, loader.EnumerateInstanceExtensionProperties, loader.CreateInstance); err != nil {
		return probe, err
	}
	if probe.Report, err = AvailableLayersAndExtensions(driver); err != nil {
		return probe, err
	}

	instance, err := CreateInstance(driver, InstanceInfo(cfg, nil, probe.Report))
	if err != nil {
		return probe, err
	}
	if err := ld.BindInstance(instance); err != nil {
		driver.DestroyInstance(instance)
		return probe, err
	}
	release := func() error {
		defer ld.ReleaseInstance()
		if err := ld.Require(loader.DestroyInstance); err != nil {
			return err
		}
		driver.DestroyInstance(instance)
		return nil
	}
	if err := ledger.Push(KindInstance, gfx.Handle(instance), release); err != nil {
		release()
		return probe, err
	}

	err = ld.Require(
		loader.EnumeratePhysicalDevices,
		loader.GetPhysicalDeviceProperties,
		loader.GetPhysicalDeviceFeatures,
		loader.GetPhysicalDeviceMemoryProperties,
		loader.GetPhysicalDeviceQueueFamilyProperties,
		loader.EnumerateDeviceExtensionProperties,
		loader.EnumerateDeviceLayerProperties,
	)
	if err != nil {
		return probe, err
	}
	if probe.Devices, err = device.Enumerate(instance, driver); err != nil {
		return probe, errors.Wrap(err, "probing devices")
	}
	return probe, nil
}
