// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package gfx

import (
	"fmt"
)

// Result is a status code returned by the native driver.
type Result int32

// Status codes known to the driver boundary.
const (
	Success                   Result = 0
	NotReady                  Result = 1
	Timeout                   Result = 2
	EventSet                  Result = 3
	EventReset                Result = 4
	Incomplete                Result = 5
	ErrorOutOfHostMemory      Result = -1
	ErrorOutOfDeviceMemory    Result = -2
	ErrorInitializationFailed Result = -3
	ErrorDeviceLost           Result = -4
	ErrorMemoryMapFailed      Result = -5
	ErrorLayerNotPresent      Result = -6
	ErrorExtensionNotPresent  Result = -7
	ErrorFeatureNotPresent    Result = -8
	ErrorIncompatibleDriver   Result = -9
	ErrorTooManyObjects       Result = -10
	ErrorFormatNotSupported   Result = -11
	ErrorFragmentedPool       Result = -12
	ErrorSurfaceLost          Result = -1000000000
	ErrorNativeWindowInUse    Result = -1000000001
	Suboptimal                Result = 1000001003
	ErrorOutOfDate            Result = -1000001004
)

var resultNames = map[Result]string{
	Success:                   "VK_SUCCESS",
	NotReady:                  "VK_NOT_READY",
	Timeout:                   "VK_TIMEOUT",
	EventSet:                  "VK_EVENT_SET",
	EventReset:                "VK_EVENT_RESET",
	Incomplete:                "VK_INCOMPLETE",
	ErrorOutOfHostMemory:      "VK_ERROR_OUT_OF_HOST_MEMORY",
	ErrorOutOfDeviceMemory:    "VK_ERROR_OUT_OF_DEVICE_MEMORY",
	ErrorInitializationFailed: "VK_ERROR_INITIALIZATION_FAILED",
	ErrorDeviceLost:           "VK_ERROR_DEVICE_LOST",
	ErrorMemoryMapFailed:      "VK_ERROR_MEMORY_MAP_FAILED",
	ErrorLayerNotPresent:      "VK_ERROR_LAYER_NOT_PRESENT",
	ErrorExtensionNotPresent:  "VK_ERROR_EXTENSION_NOT_PRESENT",
	ErrorFeatureNotPresent:    "VK_ERROR_FEATURE_NOT_PRESENT",
	ErrorIncompatibleDriver:   "VK_ERROR_INCOMPATIBLE_DRIVER",
	ErrorTooManyObjects:       "VK_ERROR_TOO_MANY_OBJECTS",
	ErrorFormatNotSupported:   "VK_ERROR_FORMAT_NOT_SUPPORTED",
	ErrorFragmentedPool:       "VK_ERROR_FRAGMENTED_POOL",
	ErrorSurfaceLost:          "VK_ERROR_SURFACE_LOST_KHR",
	ErrorNativeWindowInUse:    "VK_ERROR_NATIVE_WINDOW_IN_USE_KHR",
	Suboptimal:                "VK_SUBOPTIMAL_KHR",
	ErrorOutOfDate:            "VK_ERROR_OUT_OF_DATE_KHR",
}

// String returns the driver's name for the code, or a numeric
// description for codes this package does not know.
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("VK_UNKNOWN_RESULT(%d)", int32(r))
}

// Fatal reports whether r aborts the operation that returned it.
// Zero is success, positive codes other than the ones listed in
// allowed are treated as unexpected and therefore fatal.
func (r Result) Fatal(allowed ...Result) bool {
	if r == Success {
		return false
	}
	for _, a := range allowed {
		if r == a {
			return false
		}
	}
	return true
}

// ResultError carries a fatal driver status together with the call
// that produced it. Kind, when set, classifies the failure and is
// returned by Unwrap.
type ResultError struct {
	Kind   error
	Op     string
	Result Result
}

func (e *ResultError) Error() string {
	if e.Kind != nil {
		return fmt.Sprintf("%s(): %s: %s", e.Op, e.Kind, e.Result)
	}
	return fmt.Sprintf("%s(): %s", e.Op, e.Result)
}

// Unwrap returns the failure kind.
func (e *ResultError) Unwrap() error {
	return e.Kind
}

// Check turns a driver status into an error. It returns nil for
// success and for any of the allowed codes.
func Check(op string, r Result, allowed ...Result) error {
	return CheckKind(nil, op, r, allowed...)
}

// CheckKind is Check with the failure classified as kind.
func CheckKind(kind error, op string, r Result, allowed ...Result) error {
	if !r.Fatal(allowed...) {
		return nil
	}
	return &ResultError{
		Kind:   kind,
		Op:     op,
		Result: r,
	}
}
