// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/devblok/trigon/device"
	"github.com/devblok/trigon/gfx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DeviceInfo builds the logical device parameters: one queue with
// priority 1 from every distinct family of families and every
// extension the physical device offers.
func DeviceInfo(physical device.PhysicalDeviceInfo, families device.QueueFamilyAssignment, layers []string) gfx.DeviceInfo {
	info := gfx.DeviceInfo{
		Layers:     layers,
		Extensions: physical.Extensions,
	}
	seen := map[uint32]bool{}
	for _, family := range families {
		if seen[family] {
			continue
		}
		seen[family] = true
		info.Queues = append(info.Queues, gfx.QueueInfo{
			Family:     family,
			Priorities: []float32{1.0},
		})
	}
	return info
}

// CreateLogicalDevice opens the logical device on physical.
func CreateLogicalDevice(driver gfx.InstanceDriver, physical device.PhysicalDeviceInfo, families device.QueueFamilyAssignment, layers []string) (gfx.Device, error) {
	info := DeviceInfo(physical, families, layers)

	dev, res := driver.CreateDevice(physical.Handle, info)
	if err := gfx.CheckKind(ErrDeviceCreation, "vk.CreateDevice", res); err != nil {
		return 0, err
	}
	if dev == 0 {
		return 0, errors.Wrap(ErrDeviceCreation, "driver returned a null device")
	}

	log.WithFields(log.Fields{
		"device":     physical.Name,
		"queues":     len(info.Queues),
		"extensions": len(info.Extensions),
	}).Info("logical device created")
	return dev, nil
}
