// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx

// Enumerations below use the numeric values of the native API so the
// driver boundary can pass them through unchanged.

// Format is an image format.
type Format uint32

// Formats the renderer refers to by name.
const (
	FormatUndefined     Format = 0
	FormatR8G8B8A8Unorm Format = 37
	FormatB8G8R8A8Unorm Format = 44
	FormatB8G8R8A8Srgb  Format = 50
)

// ColorSpace is a presentation color space.
type ColorSpace uint32

// ColorSpaceSrgbNonlinear is the only color space every surface supports.
const ColorSpaceSrgbNonlinear ColorSpace = 0

// PresentMode is a swapchain presentation mode.
type PresentMode uint32

// Presentation modes.
const (
	PresentModeImmediate   PresentMode = 0
	PresentModeMailbox     PresentMode = 1
	PresentModeFifo        PresentMode = 2
	PresentModeFifoRelaxed PresentMode = 3
)

func (m PresentMode) String() string {
	switch m {
	case PresentModeImmediate:
		return "immediate"
	case PresentModeMailbox:
		return "mailbox"
	case PresentModeFifo:
		return "fifo"
	case PresentModeFifoRelaxed:
		return "fifo_relaxed"
	}
	return "unknown"
}

// QueueFlags are the capability bits of a queue family.
type QueueFlags uint32

// Queue capability bits.
const (
	QueueGraphics      QueueFlags = 0x1
	QueueCompute       QueueFlags = 0x2
	QueueTransfer      QueueFlags = 0x4
	QueueSparseBinding QueueFlags = 0x8
)

// PhysicalDeviceType classifies a GPU.
type PhysicalDeviceType uint32

// Device types.
const (
	DeviceTypeOther         PhysicalDeviceType = 0
	DeviceTypeIntegratedGpu PhysicalDeviceType = 1
	DeviceTypeDiscreteGpu   PhysicalDeviceType = 2
	DeviceTypeVirtualGpu    PhysicalDeviceType = 3
	DeviceTypeCPU           PhysicalDeviceType = 4
)

func (t PhysicalDeviceType) String() string {
	switch t {
	case DeviceTypeIntegratedGpu:
		return "integrated"
	case DeviceTypeDiscreteGpu:
		return "discrete"
	case DeviceTypeVirtualGpu:
		return "virtual"
	case DeviceTypeCPU:
		return "cpu"
	}
	return "other"
}

// MarshalText lets device reports carry the readable type name.
func (t PhysicalDeviceType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// SurfaceTransform is a set of surface transform bits.
type SurfaceTransform uint32

// SurfaceTransformIdentity leaves images as they are.
const SurfaceTransformIdentity SurfaceTransform = 0x1

// ShaderStage is a programmable pipeline stage bit.
type ShaderStage uint32

// Shader stages.
const (
	ShaderStageVertex   ShaderStage = 0x1
	ShaderStageFragment ShaderStage = 0x10
)

// PipelineStage is a pipeline stage bit used for synchronization.
type PipelineStage uint32

// PipelineStageColorAttachmentOutput is where color writes happen.
const PipelineStageColorAttachmentOutput PipelineStage = 0x400

// Fixed function values used by the pipeline description.
type (
	PrimitiveTopology uint32
	PolygonMode       uint32
	CullMode          uint32
	FrontFace         uint32
)

// Fixed function values.
const (
	PrimitiveTopologyTriangleList PrimitiveTopology = 3
	PolygonModeFill               PolygonMode       = 0
	CullModeNone                  CullMode          = 0
	CullModeBack                  CullMode          = 0x2
	FrontFaceCounterClockwise     FrontFace         = 0
	FrontFaceClockwise            FrontFace         = 1

	ColorComponentAll uint32 = 0xF
)

// ExtentUndefined is the width a surface reports when the swapchain
// decides its own extent.
const ExtentUndefined uint32 = 0xFFFFFFFF

// TimeoutInfinite makes waits block until they are satisfied.
const TimeoutInfinite = ^uint64(0)

// Extent2D is a width and height in pixels.
type Extent2D struct {
	Width  uint32
	Height uint32
}

// SurfaceCapabilities describes what a surface supports for a device.
type SurfaceCapabilities struct {
	MinImageCount           uint32
	MaxImageCount           uint32
	CurrentExtent           Extent2D
	MinImageExtent          Extent2D
	MaxImageExtent          Extent2D
	MaxImageArrayLayers     uint32
	CurrentTransform        SurfaceTransform
	SupportedCompositeAlpha uint32
}

// SurfaceFormat is a supported format and color space pair.
type SurfaceFormat struct {
	Format     Format
	ColorSpace ColorSpace
}

// PhysicalDeviceProperties is the general description of a GPU.
type PhysicalDeviceProperties struct {
	APIVersion          uint32
	DriverVersion       uint32
	VendorID            uint32
	DeviceID            uint32
	Type                PhysicalDeviceType
	Name                string
	MaxImageDimension2D uint32
}

// PhysicalDeviceFeatures is the subset of device features the
// renderer inspects.
type PhysicalDeviceFeatures struct {
	GeometryShader     bool
	TessellationShader bool
	SamplerAnisotropy  bool
}

// QueueFamilyProperties describes one queue family of a device.
type QueueFamilyProperties struct {
	Flags QueueFlags
	Count uint32
}

// LayerProperties describes an available layer.
type LayerProperties struct {
	Name                  string
	Description           string
	SpecVersion           uint32
	ImplementationVersion uint32
}

// InstanceInfo holds parameters for instance creation.
type InstanceInfo struct {
	ApplicationName    string
	ApplicationVersion uint32
	EngineName         string
	EngineVersion      uint32
	APIVersion         uint32
	Layers             []string
	Extensions         []string
}

// QueueInfo requests queues from one family.
type QueueInfo struct {
	Family     uint32
	Priorities []float32
}

// DeviceInfo holds parameters for logical device creation.
type DeviceInfo struct {
	Queues     []QueueInfo
	Layers     []string
	Extensions []string
}

// SwapchainInfo holds parameters for swapchain creation. Images are
// always used as color attachments with exclusive sharing and opaque
// composite alpha.
type SwapchainInfo struct {
	Surface       Surface
	MinImageCount uint32
	Format        Format
	ColorSpace    ColorSpace
	Extent        Extent2D
	PreTransform  SurfaceTransform
	PresentMode   PresentMode
	Clipped       bool
}

// ImageViewInfo describes a 2D color view of a whole image.
type ImageViewInfo struct {
	Image  Image
	Format Format
}

// RenderPassInfo describes the single subpass color render pass.
type RenderPassInfo struct {
	ColorFormat Format
}

// ShaderStageInfo binds a shader module entry point to a stage.
type ShaderStageInfo struct {
	Stage  ShaderStage
	Module ShaderModule
	Entry  string
}

// GraphicsPipelineInfo is the complete static pipeline description.
type GraphicsPipelineInfo struct {
	Stages         []ShaderStageInfo
	Layout         PipelineLayout
	RenderPass     RenderPass
	Viewport       Viewport
	Scissor        Extent2D
	Topology       PrimitiveTopology
	PolygonMode    PolygonMode
	CullMode       CullMode
	FrontFace      FrontFace
	LineWidth      float32
	Samples        uint32
	BlendEnable    bool
	ColorWriteMask uint32
}

// Viewport is a floating point viewport rectangle with depth range.
type Viewport struct {
	X, Y, Width, Height float32
	MinDepth, MaxDepth  float32
}

// FramebufferInfo describes a framebuffer for a render pass.
type FramebufferInfo struct {
	RenderPass  RenderPass
	Attachments []ImageView
	Extent      Extent2D
}

// DrawInfo describes what gets recorded into a command buffer.
type DrawInfo struct {
	RenderPass  RenderPass
	Framebuffer Framebuffer
	Pipeline    Pipeline
	Extent      Extent2D
	ClearColor  [4]float32
	VertexCount uint32
}

// SubmitInfo describes a single command buffer submission.
type SubmitInfo struct {
	WaitSemaphore   Semaphore
	WaitStage       PipelineStage
	CommandBuffer   CommandBuffer
	SignalSemaphore Semaphore
}

// PresentInfo describes presentation of a single swapchain image.
type PresentInfo struct {
	WaitSemaphore Semaphore
	Swapchain     Swapchain
	ImageIndex    uint32
}
