// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package loader

import (
	"fmt"
)

// LoadError is returned when the native library cannot be opened or
// does not provide the instance resolver.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	path := e.Path
	if path == "" {
		path = "<default>"
	}
	return fmt.Sprintf("loader: could not load %s: %s", path, e.Err)
}

// Unwrap returns the underlying cause.
func (e *LoadError) Unwrap() error {
	return e.Err
}

// SymbolError is returned when an entry point cannot be resolved,
// either because it does not exist or because its owning scope is not
// live in the current state.
type SymbolError struct {
	Name  string
	Scope Scope
	State State
}

func (e *SymbolError) Error() string {
	return fmt.Sprintf("loader: unresolved %s symbol %s in state %s", e.Scope, e.Name, e.State)
}
