// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/devblok/trigon/core"
	"github.com/devblok/trigon/loader"
	"github.com/devblok/trigon/vulkan"
	log "github.com/sirupsen/logrus"
)

var (
	debug   = flag.Bool("vkdbg", false, "Load Vulkan validation layers and log verbosely")
	library = flag.String("library", "", "Path of the Vulkan loader library")
	indent  = flag.Bool("indent", false, "Indent the JSON output")
)

func main() {
	flag.Parse()
	log.SetOutput(os.Stderr)
	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	cfg, err := core.LoadConfiguration()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	cfg.Instance.DebugMode = cfg.Instance.DebugMode || *debug
	if *library != "" {
		cfg.Instance.LibraryPath = *library
	}

	ld := loader.New(&vulkan.Library{}, vulkan.NewDispatch())
	probe, err := core.ProbeDevices(cfg.Instance, ld, vulkan.NewDriver())
	if err != nil {
		log.WithError(err).Fatal("device probe failed")
	}

	enc := json.NewEncoder(os.Stdout)
	if *indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(probe); err != nil {
		log.WithError(err).Fatal("cannot encode report")
	}
}
