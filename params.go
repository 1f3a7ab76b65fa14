package main

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// frameParams carries the per-frame simulation parameters. The values are
// read from the control surface once per frame and passed explicitly into
// each stage, so stage functions stay pure given their inputs and buffers.
type frameParams struct {
	dt      float32 // seconds of simulated time this frame
	elapsed float32 // seconds since simulation start

	viscosity  float32 // diffusion coefficient, >= 0
	inkDecay   float32 // density dissipation per advection pass, in (0,1]
	velDamping float32 // velocity dissipation per advection pass, in (0,1]
}

// validate range-checks the parameters at the configuration boundary. The
// solver itself never clamps; extreme values are rejected here instead of
// silently producing a diverging Jacobi iteration.
func (p frameParams) validate() error {
	if p.dt <= 0 {
		return fmt.Errorf("time step must be positive, got %g", p.dt)
	}
	if p.viscosity < 0 {
		return fmt.Errorf("viscosity must be non-negative, got %g", p.viscosity)
	}
	if p.inkDecay <= 0 || p.inkDecay > 1 {
		return fmt.Errorf("ink decay must be in (0,1], got %g", p.inkDecay)
	}
	if p.velDamping <= 0 || p.velDamping > 1 {
		return fmt.Errorf("velocity damping must be in (0,1], got %g", p.velDamping)
	}
	return nil
}

// brushMode selects how a stroke modifies the grid.
type brushMode int

const (
	// brushPaint blends covered cells toward the brush color and injects
	// velocity from pointer motion.
	brushPaint brushMode = iota

	// brushSmudge redistributes existing ink toward a local box-blurred
	// average without adding new ink; it still injects velocity.
	brushSmudge
)

func (m brushMode) String() string {
	switch m {
	case brushPaint:
		return "paint"
	case brushSmudge:
		return "smudge"
	default:
		return fmt.Sprintf("brushMode(%d)", int(m))
	}
}

// brushStroke describes one frame's pointer interaction as a capsule: the
// segment between the previous and current pointer grid positions plus a
// radius, so fast motion leaves no gaps between frames.
type brushStroke struct {
	from, to mgl32.Vec2
	radius   float32
	strength float32 // velocity-injection factor applied to the displacement
	mode     brushMode
	color    mgl32.Vec4 // RGB ink color, W is brush alpha
}
