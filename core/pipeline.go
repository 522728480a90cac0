// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/devblok/trigon/gfx"
	"github.com/devblok/trigon/shader"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// ShaderModule is a created shader module and where it plugs in.
type ShaderModule struct {
	Handle gfx.ShaderModule
	Stage  gfx.ShaderStage
	Entry  string
	Name   string
}

func stageBit(s shader.Stage) (gfx.ShaderStage, error) {
	switch s {
	case shader.VertexStage:
		return gfx.ShaderStageVertex, nil
	case shader.FragmentStage:
		return gfx.ShaderStageFragment, nil
	}
	return 0, errors.Errorf("unsupported shader stage %s", s)
}

// CreateShaderModules creates a module per shader. Modules already
// created are destroyed when a later one fails.
func CreateShaderModules(driver gfx.DeviceDriver, dev gfx.Device, modules []shader.Module) ([]ShaderModule, error) {
	created := make([]ShaderModule, 0, len(modules))
	cleanup := func() {
		for _, m := range created {
			driver.DestroyShaderModule(dev, m.Handle)
		}
	}

	for _, m := range modules {
		stage, err := stageBit(m.Stage)
		if err != nil {
			cleanup()
			return nil, errors.Wrap(ErrPipelineCreation, err.Error())
		}
		handle, res := driver.CreateShaderModule(dev, m.Words())
		if err := gfx.CheckKind(ErrPipelineCreation, "vk.CreateShaderModule", res); err != nil {
			cleanup()
			return nil, errors.Wrapf(err, "shader %s (%s)", m.Name, m.Stage)
		}
		log.WithFields(log.Fields{
			"name":  m.Name,
			"stage": m.Stage,
			"entry": m.Entry,
		}).Info("shader module created")
		created = append(created, ShaderModule{
			Handle: handle,
			Stage:  stage,
			Entry:  m.Entry,
			Name:   m.Name,
		})
	}
	return created, nil
}

// CreateRenderPass creates the single subpass render pass that clears
// and presents one color attachment of format.
func CreateRenderPass(driver gfx.DeviceDriver, dev gfx.Device, format gfx.Format) (gfx.RenderPass, error) {
	pass, res := driver.CreateRenderPass(dev, gfx.RenderPassInfo{ColorFormat: format})
	if err := gfx.CheckKind(ErrPipelineCreation, "vk.CreateRenderPass", res); err != nil {
		return 0, err
	}
	return pass, nil
}

// CreatePipelineLayout creates an empty pipeline layout.
func CreatePipelineLayout(driver gfx.DeviceDriver, dev gfx.Device) (gfx.PipelineLayout, error) {
	layout, res := driver.CreatePipelineLayout(dev)
	if err := gfx.CheckKind(ErrPipelineCreation, "vk.CreatePipelineLayout", res); err != nil {
		return 0, err
	}
	return layout, nil
}

// DefaultPipelineState is the fixed function state of the triangle
// pipeline for a given extent.
func DefaultPipelineState(extent gfx.Extent2D) gfx.GraphicsPipelineInfo {
	return gfx.GraphicsPipelineInfo{
		Viewport: gfx.Viewport{
			Width:    float32(extent.Width),
			Height:   float32(extent.Height),
			MinDepth: 0,
			MaxDepth: 1,
		},
		Scissor:        extent,
		Topology:       gfx.PrimitiveTopologyTriangleList,
		PolygonMode:    gfx.PolygonModeFill,
		CullMode:       gfx.CullModeBack,
		FrontFace:      gfx.FrontFaceClockwise,
		LineWidth:      1.0,
		Samples:        1,
		BlendEnable:    false,
		ColorWriteMask: gfx.ColorComponentAll,
	}
}

// CreateGraphicsPipeline creates the pipeline from state with the given
// shader modules, layout and render pass.
func CreateGraphicsPipeline(driver gfx.DeviceDriver, dev gfx.Device, state gfx.GraphicsPipelineInfo, modules []ShaderModule, layout gfx.PipelineLayout, pass gfx.RenderPass) (gfx.Pipeline, error) {
	state.Layout = layout
	state.RenderPass = pass
	state.Stages = nil
	for _, m := range modules {
		state.Stages = append(state.Stages, gfx.ShaderStageInfo{
			Stage:  m.Stage,
			Module: m.Handle,
			Entry:  m.Entry,
		})
	}

	pipeline, res := driver.CreateGraphicsPipeline(dev, state)
	if err := gfx.CheckKind(ErrPipelineCreation, "vk.CreateGraphicsPipelines", res); err != nil {
		return 0, err
	}
	return pipeline, nil
}

// CreateFramebuffers creates a framebuffer per view. Framebuffers
// already created are destroyed when a later one fails.
func CreateFramebuffers(driver gfx.DeviceDriver, dev gfx.Device, pass gfx.RenderPass, views []gfx.ImageView, extent gfx.Extent2D) ([]gfx.Framebuffer, error) {
	framebuffers := make([]gfx.Framebuffer, 0, len(views))
	for idx, view := range views {
		fb, res := driver.CreateFramebuffer(dev, gfx.FramebufferInfo{
			RenderPass:  pass,
			Attachments: []gfx.ImageView{view},
			Extent:      extent,
		})
		if err := gfx.CheckKind(ErrPipelineCreation, "vk.CreateFramebuffer", res); err != nil {
			for _, f := range framebuffers {
				driver.DestroyFramebuffer(dev, f)
			}
			return nil, errors.Wrapf(err, "with index %d", idx)
		}
		framebuffers = append(framebuffers, fb)
	}
	return framebuffers, nil
}
