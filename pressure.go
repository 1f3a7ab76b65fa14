package main

import "github.com/go-gl/mathgl/mgl32"

// The three ordered projection sub-passes below enforce incompressibility
// (zero discrete divergence) on the velocity field. Grid y grows downward;
// divergence and gradient use the same orientation throughout, so the choice
// does not affect the result.

// computeDivergence writes the discrete divergence of vel into div:
// 0.5*((v_right.x - v_left.x) + (v_down.y - v_up.y)). Neighbors outside the
// grid are solid walls and contribute zero velocity.
func computeDivergence(d *gridDispatcher, vel *vectorField, div *scalarField) {
	width, height := vel.width, vel.height
	d.run(func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < width; x++ {
				var left, right, up, down float32
				if x > 0 {
					left = vel.at(x-1, y).X()
				}
				if x < width-1 {
					right = vel.at(x+1, y).X()
				}
				if y > 0 {
					up = vel.at(x, y-1).Y()
				}
				if y < height-1 {
					down = vel.at(x, y+1).Y()
				}
				div.set(x, y, 0.5*((right-left)+(down-up)))
			}
		}
	})
}

// pressureJacobiStep runs one Jacobi iteration of the discrete Poisson solve:
// p_new = (p_left + p_right + p_up + p_down - divergence) / 4. The boundary
// is pure Neumann: an out-of-grid neighbor substitutes the center cell's own
// pressure (no gradient through the wall), encoded by the clamped index
// lookups. Substituting a zero wall pressure instead produces visible edge
// artifacts and must not be used. pPrev and pNext must be different buffers.
func pressureJacobiStep(d *gridDispatcher, div, pPrev, pNext *scalarField) {
	width, height := pPrev.width, pPrev.height
	d.run(func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			up := clampIndex(y-1, height-1)
			down := clampIndex(y+1, height-1)
			for x := 0; x < width; x++ {
				left := clampIndex(x-1, width-1)
				right := clampIndex(x+1, width-1)
				sum := pPrev.at(left, y) + pPrev.at(right, y) +
					pPrev.at(x, up) + pPrev.at(x, down)
				pNext.set(x, y, (sum-div.at(x, y))*0.25)
			}
		}
	})
}

// subtractGradient removes the pressure gradient from the velocity field:
// v_new = v_old - 0.5*(p_right - p_left, p_down - p_up), using the same
// Neumann substitution as the pressure solve. It must read the final pressure
// iteration's output, never an intermediate one. velIn and velOut must be
// different buffers.
func subtractGradient(d *gridDispatcher, pressure *scalarField, velIn, velOut *vectorField) {
	width, height := velIn.width, velIn.height
	d.run(func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			up := clampIndex(y-1, height-1)
			down := clampIndex(y+1, height-1)
			for x := 0; x < width; x++ {
				left := clampIndex(x-1, width-1)
				right := clampIndex(x+1, width-1)
				gx := 0.5 * (pressure.at(right, y) - pressure.at(left, y))
				gy := 0.5 * (pressure.at(x, down) - pressure.at(x, up))
				velOut.set(x, y, velIn.at(x, y).Sub(mgl32.Vec2{gx, gy}))
			}
		}
	})
}
