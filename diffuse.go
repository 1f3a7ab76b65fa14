package main

import "github.com/go-gl/mathgl/mgl32"

// diffuseAlpha derives the Jacobi coefficient for the implicit diffusion
// solve (I - alpha^-1*laplacian) from viscosity and the time step, with unit
// cell size: alpha = 1/(viscosity*dt). Larger viscosity or time step gives a
// smaller alpha, weighting neighbors more and diffusing harder. Returns 0
// when viscosity*dt is not positive, which disables the stage.
func diffuseAlpha(p frameParams) float32 {
	k := p.viscosity * p.dt
	if k <= 0 {
		return 0
	}
	return 1 / k
}

// diffuseColorStep runs one Jacobi relaxation sub-step for the density field:
// x_new = (x_left + x_right + x_up + x_down + alpha*b_center) / (4 + alpha),
// where b is the pre-diffusion field and xPrev the previous sub-step's
// result. Out-of-grid neighbors reuse the center value (zero-gradient
// boundary), which the clamped index lookups encode. xPrev and xNext must be
// different buffers.
func diffuseColorStep(d *gridDispatcher, alpha float32, b, xPrev, xNext *colorField) {
	width, height := xPrev.width, xPrev.height
	inv := 1 / (4 + alpha)
	d.run(func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			up := clampIndex(y-1, height-1)
			down := clampIndex(y+1, height-1)
			for x := 0; x < width; x++ {
				left := clampIndex(x-1, width-1)
				right := clampIndex(x+1, width-1)
				sum := xPrev.at(left, y).
					Add(xPrev.at(right, y)).
					Add(xPrev.at(x, up)).
					Add(xPrev.at(x, down)).
					Add(b.at(x, y).Mul(alpha))
				xNext.set(x, y, sum.Mul(inv))
			}
		}
	})
}

// diffuseVectorStep is the velocity counterpart of diffuseColorStep, applying
// viscous diffusion with the same stencil and boundary rule.
func diffuseVectorStep(d *gridDispatcher, alpha float32, b, xPrev, xNext *vectorField) {
	width, height := xPrev.width, xPrev.height
	inv := 1 / (4 + alpha)
	d.run(func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			up := clampIndex(y-1, height-1)
			down := clampIndex(y+1, height-1)
			for x := 0; x < width; x++ {
				left := clampIndex(x-1, width-1)
				right := clampIndex(x+1, width-1)
				sum := xPrev.at(left, y).
					Add(xPrev.at(right, y)).
					Add(xPrev.at(x, up)).
					Add(xPrev.at(x, down)).
					Add(b.at(x, y).Mul(alpha))
				xNext.set(x, y, mgl32.Vec2{sum.X() * inv, sum.Y() * inv})
			}
		}
	})
}
