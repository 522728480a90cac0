// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shader

import (
	"path"

	"github.com/devblok/trigon/utility/kar"
	"github.com/gobuffalo/packd"
	"github.com/gobuffalo/packr"
	"github.com/gogpu/naga"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/mmap"
)

// Directory loads compiled shaders from a directory tree.
type Directory string

// Modules implements Source.
func (d Directory) Modules() ([]Module, error) {
	paths, stages, err := Discover(string(d))
	if err != nil {
		return nil, err
	}

	var modules []Module
	for idx, p := range paths {
		code, err := Load(p)
		if err != nil {
			return nil, err
		}
		name, _ := StageOf(path.Base(p))
		modules = append(modules, Module{
			Name:  name,
			Stage: stages[idx],
			Entry: "main",
			Code:  code,
		})
	}
	return pipelineOrder(modules)
}

// Archive loads compiled shaders from a memory mapped kar bundle.
type Archive string

// Modules implements Source.
func (a Archive) Modules() ([]Module, error) {
	r, err := mmap.Open(string(a))
	if err != nil {
		return nil, errors.Wrap(ErrFileNotFound, string(a))
	}
	defer r.Close()

	archive, err := kar.Open(r)
	if err != nil {
		return nil, errors.Wrapf(err, "opening shader bundle %s", a)
	}

	header := archive.Header()
	var modules []Module
	for _, entry := range header.Names() {
		name, stage := StageOf(path.Base(entry))
		if stage == UnknownStage {
			continue
		}
		code, err := archive.ReadAll(entry)
		if err != nil {
			return nil, err
		}
		if len(code) == 0 || len(code)%4 != 0 {
			return nil, errors.Wrap(ErrMalformed, entry)
		}
		log.WithFields(log.Fields{
			"bundle": string(a),
			"file":   entry,
			"size":   len(code),
		}).Info("loaded shader")
		modules = append(modules, Module{
			Name:  name,
			Stage: stage,
			Entry: "main",
			Code:  code,
		})
	}
	return pipelineOrder(modules)
}

// Entry points of the embedded WGSL shader.
const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)

// Embedded compiles a WGSL shader holding both pipeline stages, found
// by Name in Box. The vertex entry point is vs_main and the fragment
// entry point is fs_main.
type Embedded struct {
	Box  packd.Finder
	Name string
}

// compileOptions keeps naga's validation pass on.
func compileOptions() naga.CompileOptions {
	return naga.DefaultOptions()
}

// Modules implements Source.
func (e Embedded) Modules() ([]Module, error) {
	source, err := e.Box.Find(e.Name)
	if err != nil {
		return nil, errors.Wrap(ErrFileNotFound, e.Name)
	}

	code, err := naga.CompileWithOptions(string(source), compileOptions())
	if err != nil {
		return nil, errors.Wrapf(err, "compiling %s", e.Name)
	}
	if len(code) == 0 || len(code)%4 != 0 {
		return nil, errors.Wrap(ErrMalformed, e.Name)
	}

	name := e.Name[:len(e.Name)-len(path.Ext(e.Name))]
	log.WithFields(log.Fields{
		"source": e.Name,
		"size":   len(code),
	}).Info("compiled shader")

	return []Module{
		{Name: name, Stage: VertexStage, Entry: VertexEntry, Code: code},
		{Name: name, Stage: FragmentStage, Entry: FragmentEntry, Code: code},
	}, nil
}

var assets = packr.NewBox("./assets")

// Builtin returns the triangle shader shipped inside the binary.
func Builtin() Source {
	return Embedded{Box: assets, Name: "triangle.wgsl"}
}
