// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"testing"

	"github.com/devblok/trigon/gfx"
	"github.com/pkg/errors"
)

func TestComputeExtent(t *testing.T) {
	bounded := gfx.SurfaceCapabilities{
		CurrentExtent:  gfx.Extent2D{Width: gfx.ExtentUndefined, Height: gfx.ExtentUndefined},
		MinImageExtent: gfx.Extent2D{Width: 100, Height: 100},
		MaxImageExtent: gfx.Extent2D{Width: 1920, Height: 1080},
	}
	fixed := gfx.SurfaceCapabilities{
		CurrentExtent:  gfx.Extent2D{Width: 1024, Height: 768},
		MinImageExtent: gfx.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: gfx.Extent2D{Width: 4096, Height: 4096},
	}

	cases := []struct {
		name          string
		caps          gfx.SurfaceCapabilities
		width, height uint32
		want          gfx.Extent2D
	}{
		{"within bounds", bounded, 800, 600, gfx.Extent2D{Width: 800, Height: 600}},
		{"too small", bounded, 10, 20, gfx.Extent2D{Width: 100, Height: 100}},
		{"too large", bounded, 4000, 3000, gfx.Extent2D{Width: 1920, Height: 1080}},
		{"mixed", bounded, 50, 5000, gfx.Extent2D{Width: 100, Height: 1080}},
		{"current extent wins", fixed, 800, 600, gfx.Extent2D{Width: 1024, Height: 768}},
	}
	for _, c := range cases {
		if got := ComputeExtent(c.caps, c.width, c.height); got != c.want {
			t.Errorf("%s: got %+v, want %+v", c.name, got, c.want)
		}
	}
}

func TestComputeImageCount(t *testing.T) {
	cases := []struct {
		min, max, want uint32
	}{
		{2, 8, 3},
		{2, 0, 3},
		{3, 3, 3},
		{1, 2, 2},
	}
	for _, c := range cases {
		caps := gfx.SurfaceCapabilities{MinImageCount: c.min, MaxImageCount: c.max}
		got := ComputeImageCount(caps)
		if got != c.want {
			t.Errorf("min %d max %d: got %d, want %d", c.min, c.max, got, c.want)
		}
		if got < c.min || (c.max > 0 && got > c.max) {
			t.Errorf("min %d max %d: %d out of bounds", c.min, c.max, got)
		}
	}
}

func TestNegotiateSurfaceFormat(t *testing.T) {
	srgb := gfx.SurfaceFormat{Format: gfx.FormatB8G8R8A8Srgb, ColorSpace: gfx.ColorSpaceSrgbNonlinear}
	rgba := gfx.SurfaceFormat{Format: gfx.FormatR8G8B8A8Unorm, ColorSpace: gfx.ColorSpaceSrgbNonlinear}

	got, err := NegotiateSurfaceFormat([]gfx.SurfaceFormat{srgb, PreferredSurfaceFormat})
	if err != nil || got != PreferredSurfaceFormat {
		t.Errorf("preferred format not picked: %+v, %v", got, err)
	}

	got, err = NegotiateSurfaceFormat([]gfx.SurfaceFormat{rgba, srgb})
	if err != nil || got != rgba {
		t.Errorf("fallback is not the first format: %+v, %v", got, err)
	}

	if _, err := NegotiateSurfaceFormat(nil); !errors.Is(err, ErrSwapchainCreation) {
		t.Errorf("empty format list: %v", err)
	}
}

func TestNegotiatePresentMode(t *testing.T) {
	cases := []struct {
		modes []gfx.PresentMode
		want  gfx.PresentMode
	}{
		{[]gfx.PresentMode{gfx.PresentModeFifo, gfx.PresentModeMailbox}, gfx.PresentModeMailbox},
		{[]gfx.PresentMode{gfx.PresentModeImmediate, gfx.PresentModeFifo}, gfx.PresentModeFifo},
		{[]gfx.PresentMode{gfx.PresentModeImmediate}, gfx.PresentModeFifo},
		{nil, gfx.PresentModeFifo},
	}
	for _, c := range cases {
		if got := NegotiatePresentMode(c.modes); got != c.want {
			t.Errorf("%v: got %s, want %s", c.modes, got, c.want)
		}
	}
}

func TestCreateImageViews(t *testing.T) {
	for k := 0; k <= 4; k++ {
		drv := newFakeDriver()
		images := make([]gfx.Image, k)
		for i := range images {
			images[i] = gfx.Image(0xC00 + i)
		}

		views, err := CreateImageViews(drv, 1, images, gfx.FormatB8G8R8A8Unorm)
		if err != nil {
			t.Fatalf("%d images: %v", k, err)
		}
		if len(views) != k {
			t.Errorf("%d images gave %d views", k, len(views))
		}
		seen := map[gfx.ImageView]bool{}
		for _, v := range views {
			if seen[v] {
				t.Errorf("view %#x handed out twice", v)
			}
			seen[v] = true
		}
	}
}

func TestCreateImageViewsCleansUp(t *testing.T) {
	drv := newFakeDriver()
	drv.fail["view"] = gfx.ErrorOutOfDeviceMemory
	drv.failAt["view"] = 2

	views, err := CreateImageViews(drv, 1, []gfx.Image{1, 2, 3, 4}, gfx.FormatB8G8R8A8Unorm)
	if !errors.Is(err, ErrImageViewCreation) {
		t.Errorf("expected ErrImageViewCreation, got %v", err)
	}
	var re *gfx.ResultError
	if !errors.As(err, &re) || re.Result != gfx.ErrorOutOfDeviceMemory {
		t.Errorf("native code lost: %v", err)
	}
	if views != nil {
		t.Errorf("partial views returned: %v", views)
	}
	if len(drv.live) != 0 {
		t.Errorf("%d views leaked", len(drv.live))
	}
	for _, v := range drv.violations {
		t.Error(v)
	}
}

func TestCreateSwapchainImagesFailure(t *testing.T) {
	drv := newFakeDriver()
	drv.fail["images"] = gfx.ErrorOutOfHostMemory

	info := SwapchainInfo(1, gfx.SurfaceCapabilities{MinImageCount: 2}, PreferredSurfaceFormat, gfx.PresentModeFifo, gfx.Extent2D{Width: 1, Height: 1})
	if _, _, err := CreateSwapchain(drv, 1, info); !errors.Is(err, ErrSwapchainCreation) {
		t.Errorf("expected ErrSwapchainCreation, got %v", err)
	}
	if len(drv.live) != 0 {
		t.Error("swapchain leaked after failing to list its images")
	}
}
