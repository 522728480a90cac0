// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/devblok/trigon/device"
	"github.com/devblok/trigon/gfx"
	"github.com/devblok/trigon/loader"
	"github.com/devblok/trigon/shader"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

var _ Renderer = (*Context)(nil)

// Context owns everything the renderer creates, from the loaded
// library down to the frame semaphores.
type Context struct {
	cfg     Configuration
	loader  *loader.Loader
	driver  gfx.Driver
	window  Window
	shaders shader.Source
	ledger  *Ledger

	report   LayerReport
	instance gfx.Instance
	layers   []string
	devices  []device.PhysicalDeviceInfo
	physical device.PhysicalDeviceInfo
	surface  gfx.Surface
	families device.QueueFamilyAssignment

	device        gfx.Device
	graphicsQueue gfx.Queue
	presentQueue  gfx.Queue

	swapchain      Swapchain
	modules        []ShaderModule
	renderPass     gfx.RenderPass
	pipelineLayout gfx.PipelineLayout
	pipeline       gfx.Pipeline
	framebuffers   []gfx.Framebuffer
	commandPool    gfx.CommandPool
	commandBuffers []gfx.CommandBuffer
	imageAvailable gfx.Semaphore
	renderFinished gfx.Semaphore
}

// New creates a context. Nothing is created until Initialise is
// called.
func New(cfg Configuration, ld *loader.Loader, driver gfx.Driver, window Window, shaders shader.Source) *Context {
	return &Context{
		cfg:     cfg,
		loader:  ld,
		driver:  driver,
		window:  window,
		shaders: shaders,
		ledger:  NewLedger(),
	}
}

type stage struct {
	name string
	run  func() error
}

func (c *Context) stages() []stage {
	return []stage{
		{"library", c.loadLibrary},
		{"layer report", c.queryLayers},
		{"instance", c.createInstance},
		{"physical device", c.selectPhysicalDevice},
		{"surface", c.createSurface},
		{"queue families", c.findQueueFamilies},
		{"logical device", c.createDevice},
		{"swapchain", c.createSwapchain},
		{"image views", c.createImageViews},
		{"shader modules", c.createShaderModules},
		{"render pass", c.createRenderPass},
		{"pipeline layout", c.createPipelineLayout},
		{"pipeline", c.createPipeline},
		{"framebuffers", c.createFramebuffers},
		{"command buffers", c.createCommandBuffers},
		{"semaphores", c.createSemaphores},
	}
}

// Initialise brings the whole context up. On failure everything
// created so far is released again before the error is returned.
func (c *Context) Initialise() error {
	for _, s := range c.stages() {
		if err := s.run(); err != nil {
			log.WithError(err).WithField("stage", s.name).Error("initialisation failed")
			if uerr := c.ledger.Unwind(); uerr != nil {
				log.WithError(uerr).Warn("teardown after failed initialisation was incomplete")
			}
			c.reset()
			return errors.Wrapf(err, "initialising %s", s.name)
		}
		log.WithField("stage", s.name).Debug("stage ready")
	}
	log.WithFields(log.Fields{
		"device": c.physical.Name,
		"images": len(c.swapchain.Images),
	}).Info("renderer initialised")
	return nil
}

// Destroy releases everything in reverse order of creation. It may be
// called more than once.
func (c *Context) Destroy() error {
	err := c.ledger.Unwind()
	c.reset()
	return err
}

// reset forgets handles that are no longer owned.
func (c *Context) reset() {
	cfg, ld, driver, window, shaders, ledger := c.cfg, c.loader, c.driver, c.window, c.shaders, c.ledger
	*c = Context{
		cfg:     cfg,
		loader:  ld,
		driver:  driver,
		window:  window,
		shaders: shaders,
		ledger:  ledger,
	}
}

// Devices returns every enumerated physical device with its score.
func (c *Context) Devices() []device.PhysicalDeviceInfo {
	return c.devices
}

// PhysicalDevice returns the selected physical device.
func (c *Context) PhysicalDevice() device.PhysicalDeviceInfo {
	return c.physical
}

// Report returns the instance layers and extensions found at startup.
func (c *Context) Report() LayerReport {
	return c.report
}

// Swapchain returns the negotiated swapchain.
func (c *Context) Swapchain() Swapchain {
	return c.swapchain
}

// record pushes a handle on the ledger, releasing it immediately if
// the ledger refuses it.
func (c *Context) record(kind Kind, handle gfx.Handle, release func() error) error {
	if err := c.ledger.Push(kind, handle, release); err != nil {
		if rerr := release(); rerr != nil {
			log.WithError(rerr).WithField("kind", kind).Warn("release of rejected resource failed")
		}
		return err
	}
	return nil
}

// destroyer wraps a destroy call so it is only made once sym resolves
// at its scope.
func (c *Context) destroyer(sym loader.Symbol, destroy func()) func() error {
	return func() error {
		if err := c.loader.Require(sym); err != nil {
			return err
		}
		destroy()
		return nil
	}
}

func (c *Context) loadLibrary() error {
	if err := c.loader.LoadLibrary(c.cfg.Instance.LibraryPath); err != nil {
		return err
	}
	return c.record(KindLibrary, c.loader.Handle(), c.loader.Close)
}

func (c *Context) queryLayers() error {
	if err := c.loader.Require(loader.EnumerateInstanceLayerProperties, loader.EnumerateInstanceExtensionProperties); err != nil {
		return err
	}
	report, err := AvailableLayersAndExtensions(c.driver)
	if err != nil {
		return err
	}
	c.report = report
	LogReport(report)
	return nil
}

func (c *Context) createInstance() error {
	if err := c.loader.Require(loader.CreateInstance); err != nil {
		return err
	}
	info := InstanceInfo(c.cfg.Instance, c.window.InstanceExtensions(), c.report)
	instance, err := CreateInstance(c.driver, info)
	if err != nil {
		return err
	}

	// An unbound instance scope cannot resolve its own destroy call.
	if err := c.loader.BindInstance(instance); err != nil {
		c.driver.DestroyInstance(instance)
		return err
	}

	release := func() error {
		defer c.loader.ReleaseInstance()
		if err := c.loader.Require(loader.DestroyInstance); err != nil {
			return err
		}
		c.driver.DestroyInstance(instance)
		return nil
	}
	if err := c.record(KindInstance, gfx.Handle(instance), release); err != nil {
		return err
	}
	c.instance = instance
	c.layers = info.Layers
	return nil
}

func (c *Context) selectPhysicalDevice() error {
	err := c.loader.Require(
		loader.EnumeratePhysicalDevices,
		loader.GetPhysicalDeviceProperties,
		loader.GetPhysicalDeviceFeatures,
		loader.GetPhysicalDeviceMemoryProperties,
		loader.GetPhysicalDeviceQueueFamilyProperties,
		loader.EnumerateDeviceExtensionProperties,
		loader.EnumerateDeviceLayerProperties,
	)
	if err != nil {
		return err
	}

	devices, err := device.Enumerate(c.instance, c.driver)
	if err != nil {
		return err
	}
	c.devices = devices

	best, err := device.SelectBest(devices)
	if err != nil {
		return err
	}
	c.physical = best
	log.WithFields(log.Fields{
		"device": best.Name,
		"type":   best.Type,
		"score":  best.Score,
	}).Info("physical device selected")
	return nil
}

func (c *Context) createSurface() error {
	surface, err := c.window.CreateSurface(c.instance)
	if err != nil {
		return err
	}
	instance := c.instance
	release := c.destroyer(loader.DestroySurface, func() {
		c.driver.DestroySurface(instance, surface)
	})
	if err := c.record(KindSurface, gfx.Handle(surface), release); err != nil {
		return err
	}
	c.surface = surface
	return nil
}

func (c *Context) findQueueFamilies() error {
	if err := c.loader.Require(loader.GetPhysicalDeviceSurfaceSupport); err != nil {
		return err
	}
	families, err := device.FindQueueFamilies(c.driver, c.physical, c.surface)
	if err != nil {
		return err
	}
	c.families = families
	log.WithFields(log.Fields{
		"graphics": families.Graphics(),
		"present":  families.Present(),
	}).Info("queue families found")
	return nil
}

func (c *Context) createDevice() error {
	if err := c.loader.Require(loader.CreateDevice, loader.GetDeviceProcAddr); err != nil {
		return err
	}
	dev, err := CreateLogicalDevice(c.driver, c.physical, c.families, c.layers)
	if err != nil {
		return err
	}

	if err := c.loader.BindDevice(dev); err != nil {
		c.driver.DestroyDevice(dev)
		return err
	}

	release := func() error {
		defer c.loader.ReleaseDevice()
		if err := c.loader.Require(loader.DestroyDevice); err != nil {
			return err
		}
		c.driver.DestroyDevice(dev)
		return nil
	}
	if err := c.record(KindDevice, gfx.Handle(dev), release); err != nil {
		return err
	}
	c.device = dev

	c.ledger.SetBarrier(func() error {
		if err := c.loader.Require(loader.DeviceWaitIdle); err != nil {
			return err
		}
		return gfx.Check("vk.DeviceWaitIdle", c.driver.DeviceWaitIdle(dev))
	})

	if err := c.loader.Require(loader.GetDeviceQueue); err != nil {
		return err
	}
	c.graphicsQueue = c.driver.GetDeviceQueue(dev, c.families.Graphics(), 0)
	c.presentQueue = c.driver.GetDeviceQueue(dev, c.families.Present(), 0)
	return nil
}

func (c *Context) createSwapchain() error {
	err := c.loader.Require(
		loader.GetPhysicalDeviceSurfaceCapabilities,
		loader.GetPhysicalDeviceSurfaceFormats,
		loader.GetPhysicalDeviceSurfacePresentModes,
		loader.CreateSwapchain,
		loader.GetSwapchainImages,
		loader.DestroySwapchain,
	)
	if err != nil {
		return err
	}

	caps, res := c.driver.SurfaceCapabilities(c.physical.Handle, c.surface)
	if err := gfx.CheckKind(ErrSwapchainCreation, "vk.GetPhysicalDeviceSurfaceCapabilities", res); err != nil {
		return err
	}
	formats, res := c.driver.SurfaceFormats(c.physical.Handle, c.surface)
	if err := gfx.CheckKind(ErrSwapchainCreation, "vk.GetPhysicalDeviceSurfaceFormats", res, gfx.Incomplete); err != nil {
		return err
	}
	modes, res := c.driver.SurfacePresentModes(c.physical.Handle, c.surface)
	if err := gfx.CheckKind(ErrSwapchainCreation, "vk.GetPhysicalDeviceSurfacePresentModes", res, gfx.Incomplete); err != nil {
		return err
	}

	format, err := NegotiateSurfaceFormat(formats)
	if err != nil {
		return err
	}
	mode := NegotiatePresentMode(modes)
	width, height := c.window.DrawableSize()
	extent := ComputeExtent(caps, width, height)

	info := SwapchainInfo(c.surface, caps, format, mode, extent)
	if !c.families.Shared() {
		log.WithField("families", []uint32(c.families)).Warn("graphics and present families differ, images are owned exclusively")
	}
	handle, images, err := CreateSwapchain(c.driver, c.device, info)
	if err != nil {
		return err
	}

	dev := c.device
	release := c.destroyer(loader.DestroySwapchain, func() {
		c.driver.DestroySwapchain(dev, handle)
	})
	if err := c.record(KindSwapchain, gfx.Handle(handle), release); err != nil {
		return err
	}
	c.swapchain = Swapchain{
		Handle:      handle,
		Format:      format,
		PresentMode: mode,
		Extent:      extent,
		Images:      images,
	}
	return nil
}

func (c *Context) createImageViews() error {
	if err := c.loader.Require(loader.CreateImageView, loader.DestroyImageView); err != nil {
		return err
	}
	views, err := CreateImageViews(c.driver, c.device, c.swapchain.Images, c.swapchain.Format.Format)
	if err != nil {
		return err
	}

	dev := c.device
	for i, view := range views {
		release := c.destroyer(loader.DestroyImageView, func() {
			c.driver.DestroyImageView(dev, view)
		})
		if err := c.record(KindImageView, gfx.Handle(view), release); err != nil {
			for _, v := range views[i+1:] {
				c.driver.DestroyImageView(dev, v)
			}
			return err
		}
	}
	c.swapchain.Views = views
	return nil
}

func (c *Context) createShaderModules() error {
	modules, err := c.shaders.Modules()
	if err != nil {
		return err
	}
	if err := c.loader.Require(loader.CreateShaderModule, loader.DestroyShaderModule); err != nil {
		return err
	}
	created, err := CreateShaderModules(c.driver, c.device, modules)
	if err != nil {
		return err
	}

	dev := c.device
	for i, m := range created {
		module := m.Handle
		release := c.destroyer(loader.DestroyShaderModule, func() {
			c.driver.DestroyShaderModule(dev, module)
		})
		if err := c.record(KindShaderModule, gfx.Handle(module), release); err != nil {
			for _, rest := range created[i+1:] {
				c.driver.DestroyShaderModule(dev, rest.Handle)
			}
			return err
		}
	}
	c.modules = created
	return nil
}

func (c *Context) createRenderPass() error {
	if err := c.loader.Require(loader.CreateRenderPass, loader.DestroyRenderPass); err != nil {
		return err
	}
	pass, err := CreateRenderPass(c.driver, c.device, c.swapchain.Format.Format)
	if err != nil {
		return err
	}
	dev := c.device
	release := c.destroyer(loader.DestroyRenderPass, func() {
		c.driver.DestroyRenderPass(dev, pass)
	})
	if err := c.record(KindRenderPass, gfx.Handle(pass), release); err != nil {
		return err
	}
	c.renderPass = pass
	return nil
}

func (c *Context) createPipelineLayout() error {
	if err := c.loader.Require(loader.CreatePipelineLayout, loader.DestroyPipelineLayout); err != nil {
		return err
	}
	layout, err := CreatePipelineLayout(c.driver, c.device)
	if err != nil {
		return err
	}
	dev := c.device
	release := c.destroyer(loader.DestroyPipelineLayout, func() {
		c.driver.DestroyPipelineLayout(dev, layout)
	})
	if err := c.record(KindPipelineLayout, gfx.Handle(layout), release); err != nil {
		return err
	}
	c.pipelineLayout = layout
	return nil
}

func (c *Context) createPipeline() error {
	if err := c.loader.Require(loader.CreateGraphicsPipeline, loader.DestroyPipeline); err != nil {
		return err
	}
	state := DefaultPipelineState(c.swapchain.Extent)
	pipeline, err := CreateGraphicsPipeline(c.driver, c.device, state, c.modules, c.pipelineLayout, c.renderPass)
	if err != nil {
		return err
	}
	dev := c.device
	release := c.destroyer(loader.DestroyPipeline, func() {
		c.driver.DestroyPipeline(dev, pipeline)
	})
	if err := c.record(KindPipeline, gfx.Handle(pipeline), release); err != nil {
		return err
	}
	c.pipeline = pipeline
	return nil
}

func (c *Context) createFramebuffers() error {
	if err := c.loader.Require(loader.CreateFramebuffer, loader.DestroyFramebuffer); err != nil {
		return err
	}
	framebuffers, err := CreateFramebuffers(c.driver, c.device, c.renderPass, c.swapchain.Views, c.swapchain.Extent)
	if err != nil {
		return err
	}

	dev := c.device
	for i, fb := range framebuffers {
		release := c.destroyer(loader.DestroyFramebuffer, func() {
			c.driver.DestroyFramebuffer(dev, fb)
		})
		if err := c.record(KindFramebuffer, gfx.Handle(fb), release); err != nil {
			for _, rest := range framebuffers[i+1:] {
				c.driver.DestroyFramebuffer(dev, rest)
			}
			return err
		}
	}
	c.framebuffers = framebuffers
	return nil
}

func (c *Context) createCommandBuffers() error {
	syms := append([]loader.Symbol{
		loader.CreateCommandPool,
		loader.DestroyCommandPool,
		loader.AllocateCommandBuffers,
		loader.FreeCommandBuffers,
	}, loader.RecordDraw...)
	if err := c.loader.Require(syms...); err != nil {
		return err
	}

	dev := c.device
	pool, err := CreateCommandPool(c.driver, dev, c.families.Graphics())
	if err != nil {
		return err
	}
	release := c.destroyer(loader.DestroyCommandPool, func() {
		c.driver.DestroyCommandPool(dev, pool)
	})
	if err := c.record(KindCommandPool, gfx.Handle(pool), release); err != nil {
		return err
	}
	c.commandPool = pool

	buffers, err := AllocateCommandBuffers(c.driver, dev, pool, len(c.framebuffers))
	if err != nil {
		return err
	}
	var first gfx.Handle
	if len(buffers) > 0 {
		first = gfx.Handle(buffers[0])
	}
	release = c.destroyer(loader.FreeCommandBuffers, func() {
		c.driver.FreeCommandBuffers(dev, pool, buffers)
	})
	if err := c.record(KindCommandBuffers, first, release); err != nil {
		return err
	}
	c.commandBuffers = buffers

	return RecordCommandBuffers(
		c.driver,
		buffers,
		c.framebuffers,
		c.renderPass,
		c.pipeline,
		c.swapchain.Extent,
		c.cfg.Renderer.ClearColor,
		c.cfg.Renderer.VertexCount,
	)
}

func (c *Context) createSemaphores() error {
	if err := c.loader.Require(loader.CreateSemaphore, loader.DestroySemaphore); err != nil {
		return err
	}
	dev := c.device
	for _, target := range []*gfx.Semaphore{&c.imageAvailable, &c.renderFinished} {
		semaphore, err := CreateSemaphore(c.driver, dev)
		if err != nil {
			return err
		}
		release := c.destroyer(loader.DestroySemaphore, func() {
			c.driver.DestroySemaphore(dev, semaphore)
		})
		if err := c.record(KindSemaphore, gfx.Handle(semaphore), release); err != nil {
			return err
		}
		*target = semaphore
	}
	return nil
}
