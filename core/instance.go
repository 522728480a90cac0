// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/devblok/trigon/gfx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Names used for the instance.
const (
	EngineName = "Trigon"

	ValidationLayer      = "VK_LAYER_KHRONOS_validation"
	DebugReportExtension = "VK_EXT_debug_report"
)

// APIVersion is the Vulkan version the renderer is written against.
var APIVersion = MakeVersion(1, 0, 0)

// MakeVersion packs a Vulkan version number.
func MakeVersion(major, minor, patch uint32) uint32 {
	return major<<22 | minor<<12 | patch
}

// LayerInfo is an instance layer and the extensions it provides.
type LayerInfo struct {
	Name        string
	Description string
	Extensions  []string
}

// LayerReport lists what the Vulkan implementation offers before an
// instance is created.
type LayerReport struct {
	Layers     []LayerInfo
	Extensions []string
}

// HasLayer reports whether name is available.
func (r LayerReport) HasLayer(name string) bool {
	for _, l := range r.Layers {
		if l.Name == name {
			return true
		}
	}
	return false
}

// HasExtension reports whether name is available from the
// implementation or from any layer.
func (r LayerReport) HasExtension(name string) bool {
	for _, e := range r.Extensions {
		if e == name {
			return true
		}
	}
	for _, l := range r.Layers {
		for _, e := range l.Extensions {
			if e == name {
				return true
			}
		}
	}
	return false
}

// AvailableLayersAndExtensions queries instance layers, the extensions
// of each layer and the instance extensions.
func AvailableLayersAndExtensions(driver gfx.GlobalDriver) (LayerReport, error) {
	var report LayerReport

	layers, res := driver.EnumerateInstanceLayers()
	if err := gfx.Check("vk.EnumerateInstanceLayerProperties", res, gfx.Incomplete); err != nil {
		return report, err
	}
	for _, layer := range layers {
		extensions, res := driver.EnumerateInstanceExtensions(layer.Name)
		if err := gfx.Check("vk.EnumerateInstanceExtensionProperties", res, gfx.Incomplete); err != nil {
			return report, errors.Wrapf(err, "layer %s", layer.Name)
		}
		report.Layers = append(report.Layers, LayerInfo{
			Name:        layer.Name,
			Description: layer.Description,
			Extensions:  extensions,
		})
	}

	extensions, res := driver.EnumerateInstanceExtensions("")
	if err := gfx.Check("vk.EnumerateInstanceExtensionProperties", res, gfx.Incomplete); err != nil {
		return report, err
	}
	report.Extensions = extensions
	return report, nil
}

// LogReport writes the layer report to the log.
func LogReport(report LayerReport) {
	for _, l := range report.Layers {
		log.WithFields(log.Fields{
			"layer":      l.Name,
			"extensions": l.Extensions,
		}).Info("instance layer available")
	}
	log.WithField("extensions", report.Extensions).Info("instance extensions available")
}

// InstanceInfo builds the instance parameters from cfg and the
// extensions the window system needs. In debug mode the validation
// layer and the debug report extension are added when report says
// they exist.
func InstanceInfo(cfg InstanceConfiguration, windowExtensions []string, report LayerReport) gfx.InstanceInfo {
	info := gfx.InstanceInfo{
		ApplicationName:    cfg.ApplicationName,
		ApplicationVersion: MakeVersion(1, 0, 0),
		EngineName:         EngineName,
		EngineVersion:      MakeVersion(1, 0, 0),
		APIVersion:         APIVersion,
		Layers:             appendUnique(nil, cfg.Layers...),
		Extensions:         appendUnique(appendUnique(nil, windowExtensions...), cfg.Extensions...),
	}

	if cfg.DebugMode {
		if report.HasLayer(ValidationLayer) {
			info.Layers = appendUnique(info.Layers, ValidationLayer)
		} else {
			log.WithField("layer", ValidationLayer).Warn("debug mode requested but validation layer is not available")
		}
		if report.HasExtension(DebugReportExtension) {
			info.Extensions = appendUnique(info.Extensions, DebugReportExtension)
		}
	}
	return info
}

// CreateInstance creates the Vulkan instance.
func CreateInstance(driver gfx.GlobalDriver, info gfx.InstanceInfo) (gfx.Instance, error) {
	instance, res := driver.CreateInstance(info)
	if err := gfx.CheckKind(ErrInstanceCreation, "vk.CreateInstance", res); err != nil {
		return 0, err
	}
	if instance == 0 {
		return 0, errors.Wrap(ErrInstanceCreation, "driver returned a null instance")
	}
	log.WithFields(log.Fields{
		"layers":     info.Layers,
		"extensions": info.Extensions,
	}).Info("instance created")
	return instance, nil
}

func appendUnique(list []string, items ...string) []string {
	for _, item := range items {
		found := false
		for _, existing := range list {
			if existing == item {
				found = true
				break
			}
		}
		if !found {
			list = append(list, item)
		}
	}
	return list
}
