// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"github.com/devblok/trigon/core"
	"github.com/devblok/trigon/loader"
	"github.com/devblok/trigon/shader"
	"github.com/devblok/trigon/vulkan"
	"github.com/devblok/trigon/window"
	log "github.com/sirupsen/logrus"
)

func init() {
	runtime.LockOSThread()
}

var (
	debug        = flag.Bool("vkdbg", false, "Load Vulkan validation layers and log verbosely")
	configFile   = flag.String("config", "", "Read TRIGON_* settings from this .env file")
	shaderDir    = flag.String("shaders", "", "Load compiled shaders from this directory")
	shaderKar    = flag.String("archive", "", "Load compiled shaders from this kar archive")
	cpuProfile   = flag.String("cpuprof", "", "Profile CPU usage to file")
	traceProfile = flag.String("trace", "", "Trace output for profiling")
)

func main() {
	flag.Parse()
	os.Exit(run())
}

func run() int {
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			log.WithError(err).Error("cannot create cpu profile")
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.WithError(err).Error("cannot start cpu profile")
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	if *traceProfile != "" {
		f, err := os.Create(*traceProfile)
		if err != nil {
			log.WithError(err).Error("cannot create trace file")
			return 1
		}
		defer f.Close()
		if err := trace.Start(f); err != nil {
			log.WithError(err).Error("cannot start trace")
			return 1
		}
		defer trace.Stop()
	}

	var files []string
	if *configFile != "" {
		files = append(files, *configFile)
	}
	cfg, err := core.LoadConfiguration(files...)
	if err != nil {
		log.WithError(err).Error("invalid configuration")
		return 1
	}
	cfg.Instance.DebugMode = cfg.Instance.DebugMode || *debug
	if *shaderDir != "" {
		cfg.Renderer.ShaderDirectory = *shaderDir
	}
	if *shaderKar != "" {
		cfg.Renderer.ShaderArchive = *shaderKar
	}

	if err := window.Init(); err != nil {
		log.WithError(err).Error("cannot start the window system")
		return 1
	}
	defer window.Quit()

	win, err := window.New(cfg.Instance.ApplicationName, cfg.Renderer.ScreenWidth, cfg.Renderer.ScreenHeight)
	if err != nil {
		log.WithError(err).Error("cannot open window")
		return 1
	}
	defer win.Release()

	ld := loader.New(&window.Library{}, vulkan.NewDispatch())
	renderer := core.New(cfg, ld, vulkan.NewDriver(), win, shaderSource(cfg.Renderer))
	if err := renderer.Initialise(); err != nil {
		log.WithError(err).Error("renderer initialisation failed")
		return 1
	}
	defer func() {
		if err := renderer.Destroy(); err != nil {
			log.WithError(err).Warn("renderer teardown was incomplete")
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	t := core.NewTime(cfg.Time)
	defer t.Release()

	if err := renderer.Run(ctx, t); err != nil {
		log.WithError(err).Error("render loop failed")
		return 1
	}
	return 0
}

// shaderSource picks the archive over the directory and falls back to
// the shader compiled into the binary.
func shaderSource(cfg core.RendererConfiguration) shader.Source {
	switch {
	case cfg.ShaderArchive != "":
		return shader.Archive(cfg.ShaderArchive)
	case cfg.ShaderDirectory != "":
		return shader.Directory(cfg.ShaderDirectory)
	}
	return shader.Builtin()
}
