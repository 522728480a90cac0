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

// PreferredSurfaceFormat is picked whenever the surface offers it.
var PreferredSurfaceFormat = gfx.SurfaceFormat{
	Format:     gfx.FormatB8G8R8A8Unorm,
	ColorSpace: gfx.ColorSpaceSrgbNonlinear,
}

// Swapchain is the negotiated swapchain with its images and views.
// Images belong to the swapchain, views are owned separately.
type Swapchain struct {
	Handle      gfx.Swapchain
	Format      gfx.SurfaceFormat
	PresentMode gfx.PresentMode
	Extent      gfx.Extent2D
	Images      []gfx.Image
	Views       []gfx.ImageView
}

// NegotiateSurfaceFormat picks PreferredSurfaceFormat when offered,
// otherwise the first format the surface lists.
func NegotiateSurfaceFormat(formats []gfx.SurfaceFormat) (gfx.SurfaceFormat, error) {
	if len(formats) == 0 {
		return gfx.SurfaceFormat{}, errors.Wrap(ErrSwapchainCreation, "surface reports no formats")
	}
	for _, f := range formats {
		if f == PreferredSurfaceFormat {
			return f, nil
		}
	}
	log.WithFields(log.Fields{
		"format":     formats[0].Format,
		"colorspace": formats[0].ColorSpace,
	}).Warn("preferred surface format unavailable, using first reported")
	return formats[0], nil
}

// NegotiatePresentMode picks mailbox when offered and otherwise fifo,
// which every surface supports.
func NegotiatePresentMode(modes []gfx.PresentMode) gfx.PresentMode {
	for _, m := range modes {
		if m == gfx.PresentModeMailbox {
			return m
		}
	}
	return gfx.PresentModeFifo
}

// ComputeExtent returns the current extent of the surface, or the
// window size clamped into the supported range when the surface
// leaves the choice to the swapchain.
func ComputeExtent(caps gfx.SurfaceCapabilities, width, height uint32) gfx.Extent2D {
	if caps.CurrentExtent.Width != gfx.ExtentUndefined {
		return caps.CurrentExtent
	}
	return gfx.Extent2D{
		Width:  clamp(width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// ComputeImageCount asks for one image more than the minimum, bounded
// by the maximum when the surface has one.
func ComputeImageCount(caps gfx.SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

func clamp(v, min, max uint32) uint32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// SwapchainInfo assembles swapchain parameters from the negotiated
// values.
func SwapchainInfo(surface gfx.Surface, caps gfx.SurfaceCapabilities, format gfx.SurfaceFormat, mode gfx.PresentMode, extent gfx.Extent2D) gfx.SwapchainInfo {
	return gfx.SwapchainInfo{
		Surface:       surface,
		MinImageCount: ComputeImageCount(caps),
		Format:        format.Format,
		ColorSpace:    format.ColorSpace,
		Extent:        extent,
		PreTransform:  caps.CurrentTransform,
		PresentMode:   mode,
		Clipped:       true,
	}
}

// CreateSwapchain creates the swapchain and fetches its images.
// The swapchain is destroyed again if its images cannot be listed.
func CreateSwapchain(driver gfx.DeviceDriver, dev gfx.Device, info gfx.SwapchainInfo) (gfx.Swapchain, []gfx.Image, error) {
	swapchain, res := driver.CreateSwapchain(dev, info)
	if err := gfx.CheckKind(ErrSwapchainCreation, "vk.CreateSwapchain", res); err != nil {
		return 0, nil, err
	}

	images, res := driver.SwapchainImages(dev, swapchain)
	if err := gfx.CheckKind(ErrSwapchainCreation, "vk.GetSwapchainImages", res, gfx.Incomplete); err != nil {
		driver.DestroySwapchain(dev, swapchain)
		return 0, nil, err
	}

	log.WithFields(log.Fields{
		"images":  len(images),
		"width":   info.Extent.Width,
		"height":  info.Extent.Height,
		"present": info.PresentMode,
	}).Info("swapchain created")
	return swapchain, images, nil
}

// CreateImageViews creates one color view per image. When a view
// fails, the views created before it are destroyed.
func CreateImageViews(driver gfx.DeviceDriver, dev gfx.Device, images []gfx.Image, format gfx.Format) ([]gfx.ImageView, error) {
	views := make([]gfx.ImageView, 0, len(images))
	for idx, image := range images {
		view, res := driver.CreateImageView(dev, gfx.ImageViewInfo{
			Image:  image,
			Format: format,
		})
		if err := gfx.CheckKind(ErrImageViewCreation, "vk.CreateImageView", res); err != nil {
			for _, v := range views {
				driver.DestroyImageView(dev, v)
			}
			return nil, errors.Wrapf(err, "with index %d", idx)
		}
		views = append(views, view)
	}
	return views, nil
}
