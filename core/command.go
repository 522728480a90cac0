// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/devblok/trigon/gfx"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
)

// CreateCommandPool creates a command pool for family.
func CreateCommandPool(driver gfx.DeviceDriver, dev gfx.Device, family uint32) (gfx.CommandPool, error) {
	pool, res := driver.CreateCommandPool(dev, family)
	if err := gfx.CheckKind(ErrCommandCreation, "vk.CreateCommandPool", res); err != nil {
		return 0, err
	}
	return pool, nil
}

// AllocateCommandBuffers allocates count primary command buffers.
func AllocateCommandBuffers(driver gfx.DeviceDriver, dev gfx.Device, pool gfx.CommandPool, count int) ([]gfx.CommandBuffer, error) {
	buffers, res := driver.AllocateCommandBuffers(dev, pool, uint32(count))
	if err := gfx.CheckKind(ErrCommandCreation, "vk.AllocateCommandBuffers", res); err != nil {
		return nil, err
	}
	if len(buffers) != count {
		driver.FreeCommandBuffers(dev, pool, buffers)
		return nil, errors.Wrapf(ErrCommandCreation, "allocated %d command buffers, wanted %d", len(buffers), count)
	}
	return buffers, nil
}

// RecordCommandBuffers records the draw into every buffer, buffer i
// rendering into framebuffer i.
func RecordCommandBuffers(driver gfx.DeviceDriver, buffers []gfx.CommandBuffer, framebuffers []gfx.Framebuffer, pass gfx.RenderPass, pipeline gfx.Pipeline, extent gfx.Extent2D, clear mgl32.Vec4, vertices uint32) error {
	if len(buffers) != len(framebuffers) {
		return errors.Wrapf(ErrCommandCreation, "%d command buffers for %d framebuffers", len(buffers), len(framebuffers))
	}
	for idx, buffer := range buffers {
		res := driver.RecordDraw(buffer, gfx.DrawInfo{
			RenderPass:  pass,
			Framebuffer: framebuffers[idx],
			Pipeline:    pipeline,
			Extent:      extent,
			ClearColor:  [4]float32(clear),
			VertexCount: vertices,
		})
		if err := gfx.CheckKind(ErrCommandCreation, "vk.EndCommandBuffer", res); err != nil {
			return errors.Wrapf(err, "command buffer %d", idx)
		}
	}
	return nil
}

// CreateSemaphore creates a binary semaphore.
func CreateSemaphore(driver gfx.DeviceDriver, dev gfx.Device) (gfx.Semaphore, error) {
	semaphore, res := driver.CreateSemaphore(dev)
	if err := gfx.CheckKind(ErrSyncCreation, "vk.CreateSemaphore", res); err != nil {
		return 0, err
	}
	return semaphore, nil
}
