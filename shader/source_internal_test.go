// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package shader

import (
	"testing"

	"github.com/gogpu/naga"
)

func TestCompileOptionsValidate(t *testing.T) {
	opts := compileOptions()
	if !opts.Validate {
		t.Error("WGSL sources compile without validation")
	}
	if opts.SPIRVVersion != naga.DefaultOptions().SPIRVVersion {
		t.Errorf("SPIR-V version %v, want %v", opts.SPIRVVersion, naga.DefaultOptions().SPIRVVersion)
	}
}
