//go:build !opencl

package ripple

import "errors"

func newOpenCLStepper(width, height int) (stepper, error) {
	return nil, errors.New("OpenCL support is not enabled; rebuild with -tags opencl")
}
