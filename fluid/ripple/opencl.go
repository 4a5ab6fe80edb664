//go:build opencl

package ripple

import (
	"errors"
	"fmt"
	"strings"
	"unsafe"

	"github.com/jgillich/go-opencl/cl"
)

const waveKernelSource = `__kernel void wave_step(
    const int width,
    const int height,
    const float damp,
    const float speed,
    __global const float* curr,
    __global const float* prev,
    __global float* next_buffer)
{
    int idx = get_global_id(0);
    if (idx >= width * height) {
        return;
    }
    int x = idx % width;
    int y = idx / width;
    if (x <= 0 || x >= width - 1 || y <= 0 || y >= height - 1) {
        return;
    }
    float c = curr[idx];
    float lap = curr[idx - 1] + curr[idx + 1] + curr[idx - width] + curr[idx + width] - 4.0f * c;
    next_buffer[idx] = ((2.0f * c - prev[idx]) + speed * lap) * damp;
}

__kernel void reflect_rows(
    const int width,
    const int height,
    const float reflect,
    __global float* buffer)
{
    int x = get_global_id(0);
    if (x >= width) {
        return;
    }
    int last = height - 1;
    buffer[x] = -buffer[width + x] * reflect;
    buffer[last * width + x] = -buffer[(last - 1) * width + x] * reflect;
}

__kernel void reflect_cols(
    const int width,
    const int height,
    const float reflect,
    __global float* buffer)
{
    int y = get_global_id(0) + 1;
    if (y >= height - 1) {
        return;
    }
    int base = y * width;
    buffer[base] = -buffer[base + 1] * reflect;
    buffer[base + width - 1] = -buffer[base + width - 2] * reflect;
}`

// openCLStepper runs the wave update on an OpenCL device and keeps the
// height buffers resident between ticks.
type openCLStepper struct {
	context   *cl.Context
	queue     *cl.CommandQueue
	program   *cl.Program
	wave      *cl.Kernel
	rows      *cl.Kernel
	cols      *cl.Kernel
	currBuf   *cl.MemObject
	prevBuf   *cl.MemObject
	nextBuf   *cl.MemObject
	width     int
	height    int
	device    string
	coldStart bool
}

func pickDevice(platforms []*cl.Platform) *cl.Device {
	for _, kind := range []cl.DeviceType{cl.DeviceTypeGPU, cl.DeviceTypeCPU} {
		for _, p := range platforms {
			devices, err := p.GetDevices(kind)
			if err != nil && err != cl.ErrDeviceNotFound {
				continue
			}
			if len(devices) > 0 {
				return devices[0]
			}
		}
	}
	return nil
}

func newOpenCLStepper(width, height int) (stepper, error) {
	platforms, err := cl.GetPlatforms()
	if err != nil {
		msg := "querying OpenCL platforms"
		if strings.Contains(err.Error(), "-1001") {
			msg += ": no ICD loader reported any platforms"
		}
		return nil, fmt.Errorf("%s: %w", msg, err)
	}
	device := pickDevice(platforms)
	if device == nil {
		return nil, errors.New("no suitable OpenCL devices found")
	}

	s := &openCLStepper{
		width:     width,
		height:    height,
		device:    device.Name(),
		coldStart: true,
	}
	if err := s.init(device); err != nil {
		s.close()
		return nil, err
	}
	return s, nil
}

func (s *openCLStepper) init(device *cl.Device) error {
	var err error
	if s.context, err = cl.CreateContext([]*cl.Device{device}); err != nil {
		return fmt.Errorf("creating OpenCL context: %w", err)
	}
	if s.queue, err = s.context.CreateCommandQueue(device, 0); err != nil {
		return fmt.Errorf("creating OpenCL command queue: %w", err)
	}
	if s.program, err = s.context.CreateProgramWithSource([]string{waveKernelSource}); err != nil {
		return fmt.Errorf("creating OpenCL program: %w", err)
	}
	if err := s.program.BuildProgram([]*cl.Device{device}, ""); err != nil {
		if buildErr, ok := err.(cl.BuildError); ok {
			return fmt.Errorf("building OpenCL program: %s", string(buildErr))
		}
		return fmt.Errorf("building OpenCL program: %w", err)
	}
	if s.wave, err = s.program.CreateKernel("wave_step"); err != nil {
		return fmt.Errorf("creating wave kernel: %w", err)
	}
	if s.rows, err = s.program.CreateKernel("reflect_rows"); err != nil {
		return fmt.Errorf("creating boundary row kernel: %w", err)
	}
	if s.cols, err = s.program.CreateKernel("reflect_cols"); err != nil {
		return fmt.Errorf("creating boundary column kernel: %w", err)
	}
	byteSize := s.width * s.height * int(unsafe.Sizeof(float32(0)))
	if s.currBuf, err = s.context.CreateEmptyBuffer(cl.MemReadWrite, byteSize); err != nil {
		return fmt.Errorf("allocating current buffer: %w", err)
	}
	if s.prevBuf, err = s.context.CreateEmptyBuffer(cl.MemReadWrite, byteSize); err != nil {
		return fmt.Errorf("allocating previous buffer: %w", err)
	}
	if s.nextBuf, err = s.context.CreateEmptyBuffer(cl.MemReadWrite, byteSize); err != nil {
		return fmt.Errorf("allocating next buffer: %w", err)
	}
	w, h := int32(s.width), int32(s.height)
	if err := s.wave.SetArgs(w, h, float32(1), float32(waveSpeed), s.currBuf, s.prevBuf, s.nextBuf); err != nil {
		return fmt.Errorf("setting kernel arguments: %w", err)
	}
	if err := s.rows.SetArgs(w, h, float32(boundaryReflect), s.nextBuf); err != nil {
		return fmt.Errorf("setting boundary row kernel arguments: %w", err)
	}
	if err := s.cols.SetArgs(w, h, float32(boundaryReflect), s.nextBuf); err != nil {
		return fmt.Errorf("setting boundary column kernel arguments: %w", err)
	}
	return nil
}

func (s *openCLStepper) name() string { return "opencl:" + s.device }

func (s *openCLStepper) bind(damp, speed, reflect float32) error {
	if err := s.wave.SetArgFloat32(2, damp); err != nil {
		return err
	}
	if err := s.wave.SetArgFloat32(3, speed); err != nil {
		return err
	}
	if err := s.wave.SetArgBuffer(4, s.currBuf); err != nil {
		return err
	}
	if err := s.wave.SetArgBuffer(5, s.prevBuf); err != nil {
		return err
	}
	if err := s.wave.SetArgBuffer(6, s.nextBuf); err != nil {
		return err
	}
	for _, k := range []*cl.Kernel{s.rows, s.cols} {
		if err := k.SetArgFloat32(2, reflect); err != nil {
			return err
		}
		if err := k.SetArgBuffer(3, s.nextBuf); err != nil {
			return err
		}
	}
	return nil
}

func (s *openCLStepper) step(f *waveField, damp, speed, reflect float32) error {
	size := s.width * s.height
	if len(f.curr) != size || len(f.prev) != size {
		return errors.New("unexpected field buffer size")
	}
	// Splats land in curr on the host; the device copy is stale after one.
	if f.currDirty {
		if _, err := s.queue.EnqueueWriteBufferFloat32(s.currBuf, false, 0, f.curr, nil); err != nil {
			return fmt.Errorf("writing current buffer: %w", err)
		}
		f.currDirty = false
	}
	if s.coldStart {
		if _, err := s.queue.EnqueueWriteBufferFloat32(s.prevBuf, false, 0, f.prev, nil); err != nil {
			return fmt.Errorf("writing previous buffer: %w", err)
		}
	}
	if err := s.bind(damp, speed, reflect); err != nil {
		return fmt.Errorf("binding buffers: %w", err)
	}
	if _, err := s.queue.EnqueueNDRangeKernel(s.wave, nil, []int{size}, nil, nil); err != nil {
		return fmt.Errorf("enqueueing kernel: %w", err)
	}
	if _, err := s.queue.EnqueueNDRangeKernel(s.rows, nil, []int{s.width}, nil, nil); err != nil {
		return fmt.Errorf("applying boundary rows: %w", err)
	}
	if s.height > 2 {
		if _, err := s.queue.EnqueueNDRangeKernel(s.cols, nil, []int{s.height - 2}, nil, nil); err != nil {
			return fmt.Errorf("applying boundary columns: %w", err)
		}
	}
	s.prevBuf, s.currBuf, s.nextBuf = s.currBuf, s.nextBuf, s.prevBuf
	if _, err := s.queue.EnqueueReadBufferFloat32(s.currBuf, true, 0, f.curr, nil); err != nil {
		return fmt.Errorf("reading current buffer: %w", err)
	}
	if _, err := s.queue.EnqueueReadBufferFloat32(s.prevBuf, true, 0, f.prev, nil); err != nil {
		return fmt.Errorf("reading previous buffer: %w", err)
	}
	s.coldStart = false
	return nil
}

func (s *openCLStepper) close() {
	for _, buf := range []*cl.MemObject{s.nextBuf, s.prevBuf, s.currBuf} {
		if buf != nil {
			buf.Release()
		}
	}
	s.nextBuf, s.prevBuf, s.currBuf = nil, nil, nil
	for _, k := range []*cl.Kernel{s.wave, s.rows, s.cols} {
		if k != nil {
			k.Release()
		}
	}
	s.wave, s.rows, s.cols = nil, nil, nil
	if s.program != nil {
		s.program.Release()
		s.program = nil
	}
	if s.queue != nil {
		s.queue.Release()
		s.queue = nil
	}
	if s.context != nil {
		s.context.Release()
		s.context = nil
	}
}
