// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gobuffalo/envy"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Configuration defines a global engine configuration setting
type Configuration struct {
	Time     TimeConfiguration
	Instance InstanceConfiguration
	Renderer RendererConfiguration
}

// TimeConfiguration is used to configure time services
type TimeConfiguration struct {
	// FramesPerSecond caps frames per second that is put out
	// To unlimit, set to 0
	FramesPerSecond int

	// EventPollDelay is the window event polling interval in milliseconds
	EventPollDelay int
}

// InstanceConfiguration is used to configure the Vulkan instance
type InstanceConfiguration struct {
	ApplicationName string

	// LibraryPath of the Vulkan loader, empty for the platform default
	LibraryPath string

	// DebugMode requests validation layers when they are available
	DebugMode  bool
	Extensions []string
	Layers     []string
}

// RendererConfiguration is used to configure the renderer
type RendererConfiguration struct {
	ScreenWidth  uint32
	ScreenHeight uint32

	// ShaderDirectory and ShaderArchive select where compiled shaders
	// come from, the embedded shader is used when both are empty
	ShaderDirectory string
	ShaderArchive   string

	ClearColor  mgl32.Vec4
	VertexCount uint32
}

// DefaultConfiguration is what the renderer runs with when nothing
// is overridden.
func DefaultConfiguration() Configuration {
	return Configuration{
		Time: TimeConfiguration{
			FramesPerSecond: 60,
			EventPollDelay:  16,
		},
		Instance: InstanceConfiguration{
			ApplicationName: "Trigon",
		},
		Renderer: RendererConfiguration{
			ScreenWidth:  800,
			ScreenHeight: 600,
			ClearColor:   mgl32.Vec4{0, 0, 0, 1},
			VertexCount:  3,
		},
	}
}

// Environment keys read by LoadConfiguration.
const (
	EnvFramesPerSecond = "TRIGON_FPS"
	EnvEventPollDelay  = "TRIGON_EVENT_POLL_DELAY"
	EnvLibraryPath     = "TRIGON_VULKAN_LIBRARY"
	EnvDebugMode       = "TRIGON_DEBUG"
	EnvLayers          = "TRIGON_LAYERS"
	EnvExtensions      = "TRIGON_EXTENSIONS"
	EnvScreenWidth     = "TRIGON_SCREEN_WIDTH"
	EnvScreenHeight    = "TRIGON_SCREEN_HEIGHT"
	EnvShaderDirectory = "TRIGON_SHADER_DIRECTORY"
	EnvShaderArchive   = "TRIGON_SHADER_ARCHIVE"
	EnvClearColor      = "TRIGON_CLEAR_COLOR"
)

// LoadConfiguration starts from DefaultConfiguration and applies the
// TRIGON_* variables found in the environment and in the given .env
// files. Variables already set in the environment take precedence
// over the files.
func LoadConfiguration(files ...string) (Configuration, error) {
	cfg := DefaultConfiguration()

	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			return cfg, errors.Wrapf(err, "loading %s", f)
		}
	}
	envy.Reload()

	var err error
	if cfg.Time.FramesPerSecond, err = envInt(EnvFramesPerSecond, cfg.Time.FramesPerSecond); err != nil {
		return cfg, err
	}
	if cfg.Time.EventPollDelay, err = envInt(EnvEventPollDelay, cfg.Time.EventPollDelay); err != nil {
		return cfg, err
	}

	cfg.Instance.LibraryPath = envy.Get(EnvLibraryPath, cfg.Instance.LibraryPath)
	if cfg.Instance.DebugMode, err = envBool(EnvDebugMode, cfg.Instance.DebugMode); err != nil {
		return cfg, err
	}
	cfg.Instance.Layers = envList(EnvLayers, cfg.Instance.Layers)
	cfg.Instance.Extensions = envList(EnvExtensions, cfg.Instance.Extensions)

	width, err := envInt(EnvScreenWidth, int(cfg.Renderer.ScreenWidth))
	if err != nil {
		return cfg, err
	}
	height, err := envInt(EnvScreenHeight, int(cfg.Renderer.ScreenHeight))
	if err != nil {
		return cfg, err
	}
	if width <= 0 || height <= 0 {
		return cfg, errors.Errorf("invalid screen size %dx%d", width, height)
	}
	cfg.Renderer.ScreenWidth, cfg.Renderer.ScreenHeight = uint32(width), uint32(height)

	cfg.Renderer.ShaderDirectory = envy.Get(EnvShaderDirectory, cfg.Renderer.ShaderDirectory)
	cfg.Renderer.ShaderArchive = envy.Get(EnvShaderArchive, cfg.Renderer.ShaderArchive)
	if cfg.Renderer.ClearColor, err = envColor(EnvClearColor, cfg.Renderer.ClearColor); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func envInt(key string, fallback int) (int, error) {
	raw := envy.Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback, errors.Wrapf(err, "%s", key)
	}
	return v, nil
}

func envBool(key string, fallback bool) (bool, error) {
	raw := envy.Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback, errors.Wrapf(err, "%s", key)
	}
	return v, nil
}

func envList(key string, fallback []string) []string {
	raw := envy.Get(key, "")
	if raw == "" {
		return fallback
	}
	var list []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

// envColor parses "r,g,b,a" with components in [0, 1].
func envColor(key string, fallback mgl32.Vec4) (mgl32.Vec4, error) {
	raw := envy.Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	parts := strings.Split(raw, ",")
	if len(parts) != 4 {
		return fallback, errors.Errorf("%s: want 4 components, got %d", key, len(parts))
	}
	var color mgl32.Vec4
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return fallback, errors.Wrapf(err, "%s", key)
		}
		if v < 0 || v > 1 {
			return fallback, errors.Errorf("%s: component %d out of range", key, i)
		}
		color[i] = float32(v)
	}
	return color, nil
}
