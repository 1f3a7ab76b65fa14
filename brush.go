package main

import "github.com/go-gl/mathgl/mgl32"

// distSqToSegment returns the squared distance from pt to the segment
// starting at from with direction seg. segLenSq caches seg.Dot(seg); when the
// pointer has not moved the segment degenerates to its start point.
func distSqToSegment(pt, from, seg mgl32.Vec2, segLenSq float32) float32 {
	ap := pt.Sub(from)
	var t float32
	if segLenSq > 1e-6 {
		t = clampf(ap.Dot(seg)/segLenSq, 0, 1)
	}
	diff := ap.Sub(seg.Mul(t))
	return diff.Dot(diff)
}

// paintCell blends a cell toward the brush color by the brush alpha. RGB
// mixes toward the brush RGB; concentration accumulates toward full coverage,
// so repeated strokes are monotone and idempotent once alpha reaches 1.
func paintCell(den, color mgl32.Vec4) mgl32.Vec4 {
	a := color.W()
	return mgl32.Vec4{
		mixf(den.X(), color.X(), a),
		mixf(den.Y(), color.Y(), a),
		mixf(den.Z(), color.Z(), a),
		clampf(den.W()+a*(1-den.W()), 0, 1),
	}
}

// smudgeCell mixes a cell strongly toward the box-blurred average of its
// local window, mechanically blending neighboring ink without creating any.
// Window samples outside the stroke footprint substitute the center cell's own
// value, the same mirror rule the solver applies at the grid edge: ink never
// crosses the footprint boundary in either direction, so a stroke held at the
// edge of a blot redistributes ink instead of pulling more in. Window lookups
// clamp at the grid edge with a fixed divisor, which keeps the redistribution
// mass-neutral there too.
func smudgeCell(denIn *colorField, x, y int, den mgl32.Vec4, from, seg mgl32.Vec2, segLenSq, r2 float32) mgl32.Vec4 {
	var sum mgl32.Vec4
	maxX, maxY := denIn.width-1, denIn.height-1
	for oy := -smudgeWindowRadius; oy <= smudgeWindowRadius; oy++ {
		sy := clampIndex(y+oy, maxY)
		for ox := -smudgeWindowRadius; ox <= smudgeWindowRadius; ox++ {
			sx := clampIndex(x+ox, maxX)
			pt := mgl32.Vec2{float32(sx), float32(sy)}
			if distSqToSegment(pt, from, seg, segLenSq) <= r2 {
				sum = sum.Add(denIn.at(sx, sy))
			} else {
				sum = sum.Add(den)
			}
		}
	}
	window := 2*smudgeWindowRadius + 1
	avg := sum.Mul(1 / float32(window*window))
	return mgl32.Vec4{
		mixf(den.X(), avg.X(), smudgeBlend),
		mixf(den.Y(), avg.Y(), smudgeBlend),
		mixf(den.Z(), avg.Z(), smudgeBlend),
		mixf(den.W(), avg.W(), smudgeBlend),
	}
}

// applyBrush maps the stroke capsule onto the grid. Every cell is written:
// cells within radius of the segment are painted or smudged and receive
// velocity from the pointer displacement scaled by the stroke strength; all
// other cells pass through unchanged. This is the pass that finalizes the
// frame's output buffers, so it always covers the full grid.
//
// denIn/velIn must be different buffers from denOut/velOut.
func applyBrush(d *gridDispatcher, stroke brushStroke, denIn *colorField, velIn *vectorField, denOut *colorField, velOut *vectorField) {
	width := denIn.width
	seg := stroke.to.Sub(stroke.from)
	segLenSq := seg.Dot(seg)
	r2 := stroke.radius * stroke.radius
	push := seg.Mul(stroke.strength)

	d.run(func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			for x := 0; x < width; x++ {
				den := denIn.at(x, y)
				vel := velIn.at(x, y)
				cell := mgl32.Vec2{float32(x), float32(y)}
				if distSqToSegment(cell, stroke.from, seg, segLenSq) <= r2 {
					switch stroke.mode {
					case brushPaint:
						den = paintCell(den, stroke.color)
					case brushSmudge:
						den = smudgeCell(denIn, x, y, den, stroke.from, seg, segLenSq, r2)
					}
					vel = vel.Add(push)
				}
				denOut.set(x, y, den)
				velOut.set(x, y, vel)
			}
		}
	})
}
