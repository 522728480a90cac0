// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"github.com/devblok/trigon/gfx"
	"github.com/pkg/errors"
)

// QueueFamilyAssignment holds one family index when a single family
// can both render and present, otherwise the graphics family followed
// by the presentation family.
type QueueFamilyAssignment []uint32

// Graphics returns the family used for rendering.
func (a QueueFamilyAssignment) Graphics() uint32 {
	return a[0]
}

// Present returns the family used for presentation.
func (a QueueFamilyAssignment) Present() uint32 {
	return a[len(a)-1]
}

// Shared reports whether graphics and presentation use one family.
func (a QueueFamilyAssignment) Shared() bool {
	return len(a) == 1
}

// FindQueueFamilies looks for graphics and presentation capable queue
// families of device for surface.
func FindQueueFamilies(driver gfx.InstanceDriver, device PhysicalDeviceInfo, surface gfx.Surface) (QueueFamilyAssignment, error) {
	families := device.QueueFamilies
	if families == nil {
		families = driver.QueueFamilyProperties(device.Handle)
	}

	var (
		graphics, present           uint32
		graphicsFound, presentFound bool
	)
	for idx, family := range families {
		index := uint32(idx)

		supported, res := driver.SurfaceSupport(device.Handle, index, surface)
		if err := gfx.Check("vk.GetPhysicalDeviceSurfaceSupport", res); err != nil {
			return nil, errors.Wrapf(err, "queue family %d", index)
		}
		isGraphics := family.Count > 0 && family.Flags&gfx.QueueGraphics != 0

		if isGraphics && supported {
			return QueueFamilyAssignment{index}, nil
		}
		if isGraphics && !graphicsFound {
			graphics, graphicsFound = index, true
		}
		if supported && !presentFound {
			present, presentFound = index, true
		}
	}

	if !presentFound {
		return nil, ErrNoPresentationQueue
	}
	if !graphicsFound {
		return nil, ErrNoGraphicsQueue
	}
	return QueueFamilyAssignment{graphics, present}, nil
}
