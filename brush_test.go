package main

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestDistSqToSegment(t *testing.T) {
	from := mgl32.Vec2{2, 2}
	seg := mgl32.Vec2{4, 0} // segment from (2,2) to (6,2)
	segLenSq := seg.Dot(seg)

	for _, tc := range []struct {
		pt   mgl32.Vec2
		want float32
	}{
		{mgl32.Vec2{4, 2}, 0},  // on the segment
		{mgl32.Vec2{4, 5}, 9},  // above the middle
		{mgl32.Vec2{0, 2}, 4},  // left of the start cap
		{mgl32.Vec2{9, 2}, 9},  // right of the end cap
		{mgl32.Vec2{2, 2}, 0},  // start point
	} {
		if got := distSqToSegment(tc.pt, from, seg, segLenSq); math.Abs(float64(got-tc.want)) > 1e-5 {
			t.Errorf("distSq(%v) = %f, want %f", tc.pt, got, tc.want)
		}
	}

	// Degenerate segment: distance collapses to distance from the start point.
	if got := distSqToSegment(mgl32.Vec2{5, 6}, mgl32.Vec2{2, 2}, mgl32.Vec2{}, 0); math.Abs(float64(got-25)) > 1e-5 {
		t.Errorf("degenerate segment distSq = %f, want 25", got)
	}
}

func TestPaintSingleClick(t *testing.T) {
	const w, h = 256, 256
	d := newGridDispatcher(h, 4)
	denIn := newColorField(w, h)
	velIn := newVectorField(w, h)
	denOut := newColorField(w, h)
	velOut := newVectorField(w, h)

	click := mgl32.Vec2{128, 128}
	stroke := brushStroke{
		from:   click,
		to:     click,
		radius: 10,
		mode:   brushPaint,
		color:  mgl32.Vec4{0, 0, 0, 1},
	}
	applyBrush(d, stroke, denIn, velIn, denOut, velOut)

	if got := denOut.at(128, 128).W(); got != 1 {
		t.Errorf("clicked cell alpha = %f, want 1", got)
	}
	if got := denOut.at(150, 150).W(); got != 0 {
		t.Errorf("cell outside the brush radius alpha = %f, want 0", got)
	}
}

func TestPaintAlphaMonotoneWithCeiling(t *testing.T) {
	color := mgl32.Vec4{0.1, 0.2, 0.3, 0.5}
	den := mgl32.Vec4{}
	prev := float32(0)
	for i := 0; i < 20; i++ {
		den = paintCell(den, color)
		a := den.W()
		if a < prev {
			t.Fatalf("pass %d: alpha %f dropped below %f", i, a, prev)
		}
		if a > 1 {
			t.Fatalf("pass %d: alpha %f exceeded 1", i, a)
		}
		prev = a
	}

	// A fully opaque brush saturates in one pass and stays there.
	den = paintCell(mgl32.Vec4{}, mgl32.Vec4{0, 0, 0, 1})
	if den.W() != 1 {
		t.Fatalf("opaque brush alpha = %f, want 1", den.W())
	}
	if again := paintCell(den, mgl32.Vec4{0, 0, 0, 1}); again.W() != 1 {
		t.Errorf("repainting a saturated cell changed alpha to %f", again.W())
	}
}

func TestSmudgeConservesInk(t *testing.T) {
	const w, h = 64, 64
	d := newGridDispatcher(h, 4)
	denIn := newColorField(w, h)
	velIn := newVectorField(w, h)
	denOut := newColorField(w, h)
	velOut := newVectorField(w, h)

	// A small blob placed well inside the stroke footprint, so every cell its
	// smudge windows touch is itself smudged.
	for y := 30; y <= 33; y++ {
		for x := 30; x <= 33; x++ {
			denIn.set(x, y, mgl32.Vec4{0.2, 0.1, 0.05, 0.8})
		}
	}
	var before float64
	for _, c := range denIn.cells {
		before += float64(c.W())
	}

	stroke := brushStroke{
		from:   mgl32.Vec2{32, 32},
		to:     mgl32.Vec2{32, 32},
		radius: 20,
		mode:   brushSmudge,
	}
	applyBrush(d, stroke, denIn, velIn, denOut, velOut)

	var after float64
	for _, c := range denOut.cells {
		after += float64(c.W())
	}
	if math.Abs(after-before) > before*1e-4 {
		t.Errorf("smudge changed total ink from %f to %f", before, after)
	}
}

func TestSmudgeConservesInkAtStrokeEdge(t *testing.T) {
	const w, h = 64, 64
	d := newGridDispatcher(h, 4)
	denIn := newColorField(w, h)
	velIn := newVectorField(w, h)
	denOut := newColorField(w, h)
	velOut := newVectorField(w, h)

	// An ink column cut through by the footprint edge of a narrow stroke:
	// cells x<=37 are covered, the rest of the column is not. Smudging must
	// not pull ink in from the uncovered side.
	for y := 10; y <= 54; y++ {
		for x := 34; x <= 42; x++ {
			denIn.set(x, y, mgl32.Vec4{0.2, 0.1, 0.05, 1})
		}
	}
	var before float64
	for _, c := range denIn.cells {
		before += float64(c.W())
	}

	stroke := brushStroke{
		from:   mgl32.Vec2{32, 10},
		to:     mgl32.Vec2{32, 54},
		radius: 5,
		mode:   brushSmudge,
	}
	applyBrush(d, stroke, denIn, velIn, denOut, velOut)

	var after float64
	for _, c := range denOut.cells {
		after += float64(c.W())
	}
	if math.Abs(after-before) > before*1e-4 {
		t.Errorf("smudge at the footprint edge changed total ink from %f to %f", before, after)
	}
}

func TestSmudgeCreatesNoInkOnEmptyCanvas(t *testing.T) {
	const w, h = 32, 32
	d := newGridDispatcher(h, 2)
	denIn := newColorField(w, h)
	velIn := newVectorField(w, h)
	denOut := newColorField(w, h)
	velOut := newVectorField(w, h)

	stroke := brushStroke{
		from:   mgl32.Vec2{5, 5},
		to:     mgl32.Vec2{25, 25},
		radius: 6,
		mode:   brushSmudge,
	}
	applyBrush(d, stroke, denIn, velIn, denOut, velOut)

	for i, c := range denOut.cells {
		if c != (mgl32.Vec4{}) {
			t.Fatalf("cell %d gained ink %v from smudging an empty canvas", i, c)
		}
	}
}

func TestBrushCapsuleCoversSegmentInterior(t *testing.T) {
	const w, h = 64, 64
	d := newGridDispatcher(h, 2)
	denIn := newColorField(w, h)
	velIn := newVectorField(w, h)
	denOut := newColorField(w, h)
	velOut := newVectorField(w, h)

	stroke := brushStroke{
		from:   mgl32.Vec2{10, 20},
		to:     mgl32.Vec2{50, 20},
		radius: 3,
		mode:   brushPaint,
		color:  mgl32.Vec4{0, 0, 0, 1},
	}
	applyBrush(d, stroke, denIn, velIn, denOut, velOut)

	// Mid-segment cells are inside the capsule even though they are far from
	// both endpoints.
	for _, x := range []int{10, 30, 50} {
		if got := denOut.at(x, 20).W(); got != 1 {
			t.Errorf("cell (%d,20) alpha = %f, want 1 inside the capsule", x, got)
		}
	}
	if got := denOut.at(30, 28).W(); got != 0 {
		t.Errorf("cell (30,28) alpha = %f, want 0 outside the capsule", got)
	}
}

func TestBrushInjectsVelocityAlongStroke(t *testing.T) {
	const w, h = 32, 32
	d := newGridDispatcher(h, 2)
	denIn := newColorField(w, h)
	velIn := newVectorField(w, h)
	denOut := newColorField(w, h)
	velOut := newVectorField(w, h)
	velIn.set(16, 16, mgl32.Vec2{0.5, 0})

	stroke := brushStroke{
		from:     mgl32.Vec2{14, 16},
		to:       mgl32.Vec2{18, 16},
		radius:   4,
		strength: 2,
		mode:     brushPaint,
		color:    mgl32.Vec4{0, 0, 0, 0.5},
	}
	applyBrush(d, stroke, denIn, velIn, denOut, velOut)

	// Displacement (4,0) scaled by strength 2 adds to the existing velocity.
	got := velOut.at(16, 16)
	want := mgl32.Vec2{8.5, 0}
	if got != want {
		t.Errorf("footprint velocity = %v, want %v", got, want)
	}
	// Far cells pass through untouched.
	if got := velOut.at(2, 2); got != (mgl32.Vec2{}) {
		t.Errorf("distant cell velocity = %v, want zero", got)
	}
	if got := denOut.at(2, 2); got != (mgl32.Vec4{}) {
		t.Errorf("distant cell density = %v, want zero", got)
	}
}
