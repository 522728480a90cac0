// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"context"

	"github.com/devblok/trigon/gfx"
	"github.com/devblok/trigon/loader"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// DrawFrame acquires the next swapchain image, submits its recorded
// command buffer and presents it.
func (c *Context) DrawFrame() error {
	if c.device == 0 || len(c.commandBuffers) == 0 {
		return errors.Wrap(ErrFrame, "renderer is not initialised")
	}
	err := c.loader.Require(
		loader.QueueWaitIdle,
		loader.AcquireNextImage,
		loader.QueueSubmit,
		loader.QueuePresent,
	)
	if err != nil {
		return err
	}

	if err := gfx.CheckKind(ErrFrame, "vk.QueueWaitIdle", c.driver.QueueWaitIdle(c.presentQueue)); err != nil {
		return err
	}

	index, res := c.driver.AcquireNextImage(c.device, c.swapchain.Handle, gfx.TimeoutInfinite, c.imageAvailable)
	if err := gfx.CheckKind(ErrFrame, "vk.AcquireNextImage", res, gfx.Suboptimal); err != nil {
		return err
	}
	if int(index) >= len(c.commandBuffers) {
		return errors.Wrapf(ErrFrame, "acquired image %d of %d", index, len(c.commandBuffers))
	}

	res = c.driver.QueueSubmit(c.graphicsQueue, gfx.SubmitInfo{
		WaitSemaphore:   c.imageAvailable,
		WaitStage:       gfx.PipelineStageColorAttachmentOutput,
		CommandBuffer:   c.commandBuffers[index],
		SignalSemaphore: c.renderFinished,
	})
	if err := gfx.CheckKind(ErrFrame, "vk.QueueSubmit", res); err != nil {
		return err
	}

	res = c.driver.QueuePresent(c.presentQueue, gfx.PresentInfo{
		WaitSemaphore: c.renderFinished,
		Swapchain:     c.swapchain.Handle,
		ImageIndex:    index,
	})
	return gfx.CheckKind(ErrFrame, "vk.QueuePresent", res, gfx.Suboptimal)
}

// Run polls the window and draws frames on the tickers of t until the
// window is closed or ctx is done. The device is idle when Run returns.
func (c *Context) Run(ctx context.Context, t *Time) error {
	var frames uint64
	for {
		select {
		case <-ctx.Done():
			log.WithField("frames", frames).Info("render loop cancelled")
			return c.waitIdle()
		case <-t.EventTicker().C:
			if c.window.Poll() {
				log.WithField("frames", frames).Info("window closed")
				return c.waitIdle()
			}
		case <-t.FpsTicker().C:
			if err := c.DrawFrame(); err != nil {
				if werr := c.waitIdle(); werr != nil {
					log.WithError(werr).Warn("wait after failed frame")
				}
				return err
			}
			frames++
		}
	}
}

func (c *Context) waitIdle() error {
	if c.device == 0 {
		return nil
	}
	if err := c.loader.Require(loader.DeviceWaitIdle); err != nil {
		return err
	}
	return gfx.Check("vk.DeviceWaitIdle", c.driver.DeviceWaitIdle(c.device))
}
