// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package device discovers physical devices, ranks them and finds the
// queue families a renderer needs on the chosen one.
package device

import (
	"github.com/devblok/trigon/gfx"
	"github.com/pkg/errors"
)

// package errors
var (
	ErrNoDevice            = errors.New("no physical devices available")
	ErrNoSuitableDevice    = errors.New("no suitable physical device")
	ErrNoGraphicsQueue     = errors.New("no queue family with graphics capability")
	ErrNoPresentationQueue = errors.New("no queue family with presentation capability")
)

// PhysicalDeviceInfo describes available physical properties of a rendering device
type PhysicalDeviceInfo struct {
	Handle        gfx.PhysicalDevice `json:"-"`
	Index         int
	ID            int
	VendorID      int
	DriverVersion int
	APIVersion    string
	Name          string
	Type          gfx.PhysicalDeviceType
	Invalid       bool
	Extensions    []string
	Layers        []string
	Memory        uint64

	MaxImageDimension2D uint32
	GeometryShader      bool
	QueueFamilies       []gfx.QueueFamilyProperties

	Score int
}

// Enumerate lists the physical devices of instance along with
// everything the selector and the device report need. A device whose
// extension or layer query fails is still listed, marked Invalid.
func Enumerate(instance gfx.Instance, driver gfx.InstanceDriver) ([]PhysicalDeviceInfo, error) {
	handles, res := driver.EnumeratePhysicalDevices(instance)
	if err := gfx.Check("vk.EnumeratePhysicalDevices", res, gfx.Incomplete); err != nil {
		return nil, errors.Wrap(err, "physical device enumeration failed")
	}
	if len(handles) == 0 {
		return nil, ErrNoDevice
	}

	pdi := make([]PhysicalDeviceInfo, len(handles))
	for i, handle := range handles {
		pdi[i].Handle = handle
		pdi[i].Index = i

		// Get extension info
		if extensions, res := driver.EnumerateDeviceExtensions(handle); res.Fatal(gfx.Incomplete) {
			pdi[i].Invalid = true
		} else {
			pdi[i].Extensions = extensions
		}

		// Get layers info
		if layers, res := driver.EnumerateDeviceLayers(handle); res.Fatal(gfx.Incomplete) {
			pdi[i].Invalid = true
		} else {
			for _, layer := range layers {
				pdi[i].Layers = append(pdi[i].Layers, layer.Name)
			}
		}

		// Get memory info
		for _, heap := range driver.PhysicalDeviceMemoryHeaps(handle) {
			pdi[i].Memory += heap
		}

		// Get general device info
		props := driver.PhysicalDeviceProperties(handle)
		pdi[i].ID = int(props.DeviceID)
		pdi[i].VendorID = int(props.VendorID)
		pdi[i].DriverVersion = int(props.DriverVersion)
		pdi[i].APIVersion = VersionString(props.APIVersion)
		pdi[i].Name = props.Name
		pdi[i].Type = props.Type
		pdi[i].MaxImageDimension2D = props.MaxImageDimension2D

		pdi[i].GeometryShader = driver.PhysicalDeviceFeatures(handle).GeometryShader
		pdi[i].QueueFamilies = driver.QueueFamilyProperties(handle)

		pdi[i].Score = Score(pdi[i])
	}
	return pdi, nil
}
