// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package core

import (
	"github.com/pkg/errors"
)

// Failure kinds carried by *gfx.ResultError, match them with errors.Is.
var (
	ErrInstanceCreation  = errors.New("instance creation failed")
	ErrDeviceCreation    = errors.New("logical device creation failed")
	ErrSwapchainCreation = errors.New("swapchain creation failed")
	ErrImageViewCreation = errors.New("image view creation failed")
	ErrPipelineCreation  = errors.New("pipeline creation failed")
	ErrCommandCreation   = errors.New("command setup failed")
	ErrSyncCreation      = errors.New("synchronization setup failed")
	ErrFrame             = errors.New("frame submission failed")
)

// ErrOutOfOrder is returned by Ledger.Push when a resource is
// recorded before something it depends on has been released.
var ErrOutOfOrder = errors.New("resource recorded out of dependency order")
