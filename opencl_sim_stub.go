//go:build !opencl

package main

import "errors"

type openCLFluidSolver struct{}

func newOpenCLFluidSolver(width, height int) (*openCLFluidSolver, error) {
	return nil, errors.New("OpenCL support is not enabled; rebuild with -tags opencl")
}

func (s *openCLFluidSolver) Step(p frameParams, stroke *brushStroke, diffusionIters, pressureIters int) error {
	return errors.New("OpenCL solver unavailable")
}

func (s *openCLFluidSolver) Density() []float32 { return nil }

func (s *openCLFluidSolver) Velocity() []float32 { return nil }

func (s *openCLFluidSolver) Clear() error { return errors.New("OpenCL solver unavailable") }

func (s *openCLFluidSolver) Close() {}

func (s *openCLFluidSolver) DeviceName() string { return "" }
