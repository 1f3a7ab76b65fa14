package main

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

// testParams returns lossless frame parameters so individual stages can be
// checked in isolation.
func testParams(dt float32) frameParams {
	return frameParams{
		dt:         dt,
		viscosity:  0,
		inkDecay:   1,
		velDamping: 1,
	}
}

func TestAdvectStationaryFieldIsIdentity(t *testing.T) {
	const w, h = 16, 16
	d := newGridDispatcher(h, 2)
	velIn := newVectorField(w, h)
	denIn := newColorField(w, h)
	velOut := newVectorField(w, h)
	denOut := newColorField(w, h)

	denIn.set(5, 7, mgl32.Vec4{0.2, 0.4, 0.6, 0.8})
	denIn.set(0, 0, mgl32.Vec4{1, 0, 0, 1})

	for _, dt := range []float32{0.016, 1, 10} {
		advectFields(d, testParams(dt), velIn, denIn, velOut, denOut)
		for i := range denIn.cells {
			if denOut.cells[i] != denIn.cells[i] {
				t.Fatalf("dt=%g: cell %d changed under zero velocity", dt, i)
			}
		}
	}
}

func TestAdvectSamplesUpstream(t *testing.T) {
	const w, h = 16, 16
	d := newGridDispatcher(h, 2)
	velIn := newVectorField(w, h)
	denIn := newColorField(w, h)
	velOut := newVectorField(w, h)
	denOut := newColorField(w, h)

	// Rightward impulse at (8,8): the cell must pull its new density from
	// one cell to the left, not push it to the right.
	velIn.set(8, 8, mgl32.Vec2{1, 0})
	denIn.set(7, 8, mgl32.Vec4{0, 0, 0, 0.75})
	denIn.set(8, 8, mgl32.Vec4{0, 0, 0, 0.25})

	advectFields(d, testParams(1), velIn, denIn, velOut, denOut)

	if got := denOut.at(8, 8).W(); math.Abs(float64(got-0.75)) > 1e-6 {
		t.Errorf("cell (8,8) alpha = %f, want upstream value 0.75", got)
	}
	if got := denOut.at(9, 8).W(); got != 0 {
		t.Errorf("cell (9,8) alpha = %f, want 0 (nothing is pushed downstream)", got)
	}
}

func TestAdvectAppliesDissipation(t *testing.T) {
	const w, h = 8, 8
	d := newGridDispatcher(h, 2)
	velIn := newVectorField(w, h)
	denIn := newColorField(w, h)
	velOut := newVectorField(w, h)
	denOut := newColorField(w, h)

	denIn.set(4, 4, mgl32.Vec4{1, 1, 1, 1})
	velIn.set(6, 6, mgl32.Vec2{0, 4})

	p := testParams(1e-6) // near-zero trace keeps samples on the source cell
	p.inkDecay = 0.5
	p.velDamping = 0.25
	advectFields(d, p, velIn, denIn, velOut, denOut)

	if got := denOut.at(4, 4).W(); math.Abs(float64(got-0.5)) > 1e-4 {
		t.Errorf("ink decay: alpha = %f, want 0.5", got)
	}
	if got := velOut.at(6, 6).Y(); math.Abs(float64(got-1)) > 1e-4 {
		t.Errorf("velocity damping: vy = %f, want 1", got)
	}
}

func TestAdvectClampsOutOfGridSources(t *testing.T) {
	const w, h = 8, 8
	d := newGridDispatcher(h, 2)
	velIn := newVectorField(w, h)
	denIn := newColorField(w, h)
	velOut := newVectorField(w, h)
	denOut := newColorField(w, h)

	// Every border cell traces far outside the grid; the source must clamp
	// to the nearest in-bounds coordinate instead of wrapping.
	denIn.set(0, 0, mgl32.Vec4{0, 0, 0, 1})
	velIn.set(0, 0, mgl32.Vec2{100, 100}) // backward trace goes to (-100,-100)

	advectFields(d, testParams(1), velIn, denIn, velOut, denOut)

	if got := denOut.at(0, 0).W(); got != 1 {
		t.Errorf("corner cell alpha = %f, want clamped corner sample 1", got)
	}
}
