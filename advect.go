package main

// advectFields performs one semi-Lagrangian advection pass: every cell traces
// backward through the velocity field by -velocity*dt and bilinearly resamples
// both density and velocity at the upstream position. Source positions outside
// the grid are clamped by the field samplers, which is the boundary condition
// for this stage. The resampled density is scaled by the ink-decay factor and
// the resampled velocity by the velocity-damping factor.
//
// velIn/denIn must be different buffers from velOut/denOut.
func advectFields(d *gridDispatcher, p frameParams, velIn *vectorField, denIn *colorField, velOut *vectorField, denOut *colorField) {
	width := velIn.width
	dt := p.dt
	d.run(func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < width; x++ {
				vel := velIn.at(x, y)
				srcX := float32(x) - vel.X()*dt
				srcY := float32(y) - vel.Y()*dt
				denOut.set(x, y, denIn.sample(srcX, srcY).Mul(p.inkDecay))
				velOut.set(x, y, velIn.sample(srcX, srcY).Mul(p.velDamping))
			}
		}
	})
}
