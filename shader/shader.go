// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package shader finds and loads SPIR-V shader code for the pipeline.
// Code can come from a directory of compiled shaders, from a kar bundle
// or from the WGSL source embedded in the binary.
package shader

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"unsafe"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// package errors
var (
	ErrFileNotFound = errors.New("shader file not found")
	ErrMalformed    = errors.New("shader code is not a whole number of words")
	ErrNoShaders    = errors.New("no vertex and fragment shader pair found")
)

const shaderSuffix = ".spv"

// Stage is the pipeline stage a shader is written for.
type Stage int

// Shader stages
const (
	UnknownStage Stage = iota
	VertexStage
	FragmentStage
)

func (s Stage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	}
	return "unknown"
}

// Module is shader code ready to be handed to the driver.
type Module struct {
	Name  string
	Stage Stage
	Entry string
	Code  []byte
}

// Words returns the code as SPIR-V words.
func (m Module) Words() []uint32 {
	return SliceUint32(m.Code)
}

// Source provides the shader modules of a pipeline.
type Source interface {
	Modules() ([]Module, error)
}

// Load reads a whole shader file.
func Load(path string) ([]byte, error) {
	data, err := ioutil.ReadFile(path)
	if os.IsNotExist(err) || os.IsPermission(err) {
		return nil, errors.Wrap(ErrFileNotFound, path)
	} else if err != nil {
		return nil, errors.Wrapf(err, "reading shader %s", path)
	}
	if len(data) == 0 || len(data)%4 != 0 {
		return nil, errors.Wrap(ErrMalformed, path)
	}
	log.WithFields(log.Fields{
		"path": path,
		"size": len(data),
	}).Info("loaded shader")
	return data, nil
}

// StageOf derives the stage from a name.(vert|frag).spv file name.
// It is important that the file name does not contain more than two dots,
// the first is always the name of the shader, second is type, and the third one
// ensured that the shader is compiled (only compiled shaders have an .spv extension).
func StageOf(fileName string) (string, Stage) {
	if !strings.HasSuffix(fileName, shaderSuffix) {
		return "", UnknownStage
	}
	nodes := strings.Split(strings.TrimSuffix(fileName, shaderSuffix), ".")
	if len(nodes) != 2 {
		return "", UnknownStage
	}

	switch nodes[1] {
	case "vert":
		return nodes[0], VertexStage
	case "frag":
		return nodes[0], FragmentStage
	}
	return "", UnknownStage
}

// Discover lists the compiled shader files under dir.
func Discover(dir string) ([]string, []Stage, error) {
	var (
		shaders []string
		stages  []Stage
	)
	if err := filepath.Walk(dir, func(path string, f os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if f.IsDir() {
			return nil
		}
		if _, stage := StageOf(f.Name()); stage != UnknownStage {
			shaders = append(shaders, path)
			stages = append(stages, stage)
		}
		return nil
	}); err != nil {
		if os.IsNotExist(errors.Cause(err)) {
			return nil, nil, errors.Wrap(ErrFileNotFound, dir)
		}
		return nil, nil, err
	}
	return shaders, stages, nil
}

// SliceUint32 reslices bytes into a uint32, that is used
// to submit shaders for processing
func SliceUint32(data []byte) []uint32 {
	if len(data) < 4 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&data[0])), len(data)/4)
}

// pipelineOrder keeps the first vertex and the first fragment module,
// vertex first, and fails unless both are present.
func pipelineOrder(modules []Module) ([]Module, error) {
	var vertex, fragment *Module
	for i := range modules {
		switch modules[i].Stage {
		case VertexStage:
			if vertex == nil {
				vertex = &modules[i]
			}
		case FragmentStage:
			if fragment == nil {
				fragment = &modules[i]
			}
		}
	}
	if vertex == nil || fragment == nil {
		return nil, ErrNoShaders
	}
	return []Module{*vertex, *fragment}, nil
}
