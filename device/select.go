// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package device

import (
	"fmt"

	"github.com/devblok/trigon/gfx"
)

const discreteBonus = 1000

// Score rates a device for rendering. Discrete GPUs get a large bonus
// and the maximum 2D image dimension stands in for raw capability. A
// device without geometry shaders scores 0, which disqualifies it.
func Score(info PhysicalDeviceInfo) int {
	if !info.GeometryShader {
		return 0
	}

	var score int
	if info.Type == gfx.DeviceTypeDiscreteGpu {
		score += discreteBonus
	}
	score += int(info.MaxImageDimension2D)
	return score
}

// SelectBest returns the highest scoring device. Ties go to the device
// enumerated first. Devices marked Invalid are never selected.
func SelectBest(devices []PhysicalDeviceInfo) (PhysicalDeviceInfo, error) {
	if len(devices) == 0 {
		return PhysicalDeviceInfo{}, ErrNoDevice
	}

	best, bestScore := -1, 0
	for i := range devices {
		if devices[i].Invalid {
			continue
		}
		if score := Score(devices[i]); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		return PhysicalDeviceInfo{}, ErrNoSuitableDevice
	}

	selected := devices[best]
	selected.Score = bestScore
	return selected, nil
}

// VersionString formats a packed API version as major.minor.patch.
func VersionString(version uint32) string {
	return fmt.Sprintf("%d.%d.%d", version>>22, (version>>12)&0x3ff, version&0xfff)
}
