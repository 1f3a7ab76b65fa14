package main

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// simConfig fixes the solver's grid size, iteration counts, and worker count
// at startup. None of these change during a run; live grid resize is
// explicitly unsupported.
type simConfig struct {
	width, height  int
	diffusionIters int
	pressureIters  int
	workers        int
}

func (c simConfig) validate() error {
	if c.width <= 0 || c.height <= 0 {
		return fmt.Errorf("invalid grid dimensions %dx%d: both must be positive", c.width, c.height)
	}
	if c.diffusionIters < 0 {
		return fmt.Errorf("diffusion iterations must be non-negative, got %d", c.diffusionIters)
	}
	if c.pressureIters < 1 {
		return fmt.Errorf("pressure iterations must be at least 1, got %d", c.pressureIters)
	}
	return nil
}

// simulation owns the grid field store and sequences the compute dispatches
// for each frame: advection, diffusion sub-steps, pressure projection, brush
// injection. Each dispatch reads one buffer of a pair and writes the other;
// the pair is swapped only after the dispatch's barrier, so no pass ever
// aliases its input and output and a partially-written frame is never
// promoted to current.
type simulation struct {
	cfg   simConfig
	store *fieldStore
	disp  *gridDispatcher

	// Frame-local copies of the pre-diffusion fields: the Jacobi stencil
	// needs b, x_prev, and x_next as three distinct operands.
	denSeed *colorField
	velSeed *vectorField

	// Scratch for diagnostics reductions.
	statBuf []float64

	frame uint64
}

func newSimulation(cfg simConfig) (*simulation, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	store, err := newFieldStore(cfg.width, cfg.height)
	if err != nil {
		return nil, err
	}
	return &simulation{
		cfg:     cfg,
		store:   store,
		disp:    newGridDispatcher(cfg.height, cfg.workers),
		denSeed: newColorField(cfg.width, cfg.height),
		velSeed: newVectorField(cfg.width, cfg.height),
		statBuf: make([]float64, cfg.width*cfg.height),
	}, nil
}

// step advances the fluid by one frame. stroke is nil when no pointer input
// is active this frame. After step returns, the current density and velocity
// buffers hold the completed frame and are safe to read until the next call.
func (s *simulation) step(p frameParams, stroke *brushStroke) error {
	if err := p.validate(); err != nil {
		return fmt.Errorf("frame parameters: %w", err)
	}
	s.advect(p)
	s.diffuse(p)
	s.project()
	if stroke != nil {
		s.brush(*stroke)
	}
	s.frame++
	return nil
}

func (s *simulation) advect(p frameParams) {
	st := s.store
	advectFields(s.disp, p,
		st.velocity.current(), st.density.current(),
		st.velocity.scratch(), st.density.scratch())
	st.velocity.swap()
	st.density.swap()
}

func (s *simulation) diffuse(p frameParams) {
	alpha := diffuseAlpha(p)
	if alpha <= 0 || s.cfg.diffusionIters <= 0 {
		return
	}
	st := s.store
	s.denSeed.copyFrom(st.density.current())
	s.velSeed.copyFrom(st.velocity.current())
	for i := 0; i < s.cfg.diffusionIters; i++ {
		diffuseColorStep(s.disp, alpha, s.denSeed, st.density.current(), st.density.scratch())
		st.density.swap()
		diffuseVectorStep(s.disp, alpha, s.velSeed, st.velocity.current(), st.velocity.scratch())
		st.velocity.swap()
	}
}

// project enforces incompressibility on the velocity field produced by
// diffusion. The pressure pair warm-starts from the previous frame's
// solution; the gradient subtraction reads the final Jacobi iteration only.
func (s *simulation) project() {
	st := s.store
	computeDivergence(s.disp, st.velocity.current(), st.divergence)
	for i := 0; i < s.cfg.pressureIters; i++ {
		pressureJacobiStep(s.disp, st.divergence, st.pressure.current(), st.pressure.scratch())
		st.pressure.swap()
	}
	subtractGradient(s.disp, st.pressure.current(), st.velocity.current(), st.velocity.scratch())
	st.velocity.swap()
}

func (s *simulation) brush(stroke brushStroke) {
	st := s.store
	applyBrush(s.disp, stroke,
		st.density.current(), st.velocity.current(),
		st.density.scratch(), st.velocity.scratch())
	st.density.swap()
	st.velocity.swap()
}

// clear resets ink, velocity, and the pressure seed for every cell.
func (s *simulation) clear() {
	s.store.clearAll()
}

// density returns the completed frame's ink buffer for rendering. The caller
// must not retain it across a step.
func (s *simulation) density() *colorField {
	return s.store.density.current()
}

// velocity returns the completed frame's velocity buffer for the debug view.
func (s *simulation) velocity() *vectorField {
	return s.store.velocity.current()
}

// inkMass sums ink concentration over the whole grid.
func (s *simulation) inkMass() float64 {
	den := s.density()
	for i, c := range den.cells {
		s.statBuf[i] = float64(c.W())
	}
	return floats.Sum(s.statBuf)
}

// divergenceResidual recomputes the discrete divergence of the current
// velocity field and returns its infinity norm. After projection this should
// sit near zero; it is the convergence signal for tuning the pressure
// iteration count.
func (s *simulation) divergenceResidual() float64 {
	st := s.store
	computeDivergence(s.disp, st.velocity.current(), st.divergence)
	for i, v := range st.divergence.cells {
		s.statBuf[i] = float64(v)
	}
	return floats.Norm(s.statBuf, math.Inf(1))
}
