package main

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// clampIndex constrains a cell index to the inclusive [0, max] range.
func clampIndex(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

// clampf constrains v to lie within the inclusive [lo, hi] range.
func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// mixf linearly interpolates between a and b by t.
func mixf(a, b, t float32) float32 {
	return a + (b-a)*t
}

// colorField stores one RGBA value per cell: RGB is ink color, A is ink
// concentration in [0,1].
type colorField struct {
	width, height int
	cells         []mgl32.Vec4
}

func newColorField(width, height int) *colorField {
	return &colorField{
		width: width, height: height,
		cells: make([]mgl32.Vec4, width*height),
	}
}

func (f *colorField) at(x, y int) mgl32.Vec4 {
	return f.cells[y*f.width+x]
}

func (f *colorField) set(x, y int, v mgl32.Vec4) {
	f.cells[y*f.width+x] = v
}

func (f *colorField) clear() {
	for i := range f.cells {
		f.cells[i] = mgl32.Vec4{}
	}
}

func (f *colorField) copyFrom(src *colorField) {
	copy(f.cells, src.cells)
}

// sample bilinearly interpolates the field at a fractional cell position.
// Positions outside the grid extent are clamped to the nearest in-bounds
// coordinate; cell (x,y) sits at float position (x,y).
func (f *colorField) sample(x, y float32) mgl32.Vec4 {
	x = clampf(x, 0, float32(f.width-1))
	y = clampf(y, 0, float32(f.height-1))
	x0 := clampIndex(int(x), f.width-1)
	y0 := clampIndex(int(y), f.height-1)
	x1 := clampIndex(x0+1, f.width-1)
	y1 := clampIndex(y0+1, f.height-1)
	tx := x - float32(x0)
	ty := y - float32(y0)

	top := f.at(x0, y0).Mul(1 - tx).Add(f.at(x1, y0).Mul(tx))
	bottom := f.at(x0, y1).Mul(1 - tx).Add(f.at(x1, y1).Mul(tx))
	return top.Mul(1 - ty).Add(bottom.Mul(ty))
}

// vectorField stores one 2D velocity vector per cell.
type vectorField struct {
	width, height int
	cells         []mgl32.Vec2
}

func newVectorField(width, height int) *vectorField {
	return &vectorField{
		width: width, height: height,
		cells: make([]mgl32.Vec2, width*height),
	}
}

func (f *vectorField) at(x, y int) mgl32.Vec2 {
	return f.cells[y*f.width+x]
}

func (f *vectorField) set(x, y int, v mgl32.Vec2) {
	f.cells[y*f.width+x] = v
}

func (f *vectorField) clear() {
	for i := range f.cells {
		f.cells[i] = mgl32.Vec2{}
	}
}

func (f *vectorField) copyFrom(src *vectorField) {
	copy(f.cells, src.cells)
}

// sample bilinearly interpolates the velocity at a fractional cell position
// with the same clamping rule as colorField.sample.
func (f *vectorField) sample(x, y float32) mgl32.Vec2 {
	x = clampf(x, 0, float32(f.width-1))
	y = clampf(y, 0, float32(f.height-1))
	x0 := clampIndex(int(x), f.width-1)
	y0 := clampIndex(int(y), f.height-1)
	x1 := clampIndex(x0+1, f.width-1)
	y1 := clampIndex(y0+1, f.height-1)
	tx := x - float32(x0)
	ty := y - float32(y0)

	top := f.at(x0, y0).Mul(1 - tx).Add(f.at(x1, y0).Mul(tx))
	bottom := f.at(x0, y1).Mul(1 - tx).Add(f.at(x1, y1).Mul(tx))
	return top.Mul(1 - ty).Add(bottom.Mul(ty))
}

// scalarField stores one scalar per cell (pressure, divergence).
type scalarField struct {
	width, height int
	cells         []float32
}

func newScalarField(width, height int) *scalarField {
	return &scalarField{
		width: width, height: height,
		cells: make([]float32, width*height),
	}
}

func (f *scalarField) at(x, y int) float32 {
	return f.cells[y*f.width+x]
}

func (f *scalarField) set(x, y int, v float32) {
	f.cells[y*f.width+x] = v
}

func (f *scalarField) clear() {
	for i := range f.cells {
		f.cells[i] = 0
	}
}

// bufferPair owns the two physical buffers behind one logical field and
// tracks which one is current. A compute dispatch reads current() and writes
// scratch(); swap() promotes the scratch buffer once the dispatch completes.
// current() and scratch() are pure accessors with no side effects.
type bufferPair[F any] struct {
	front, back *F
}

func (p *bufferPair[F]) current() *F { return p.front }

func (p *bufferPair[F]) scratch() *F { return p.back }

func (p *bufferPair[F]) swap() { p.front, p.back = p.back, p.front }

// fieldStore owns every grid buffer used by the solver pipeline. Grid
// dimensions are fixed for the lifetime of the store.
type fieldStore struct {
	width, height int

	density  bufferPair[colorField]
	velocity bufferPair[vectorField]

	// pressure is double-buffered for the projection stage's Jacobi solve
	// and warm-starts each frame from the previous frame's solution.
	pressure bufferPair[scalarField]

	// divergence is transient: fully rewritten by every projection pass.
	divergence *scalarField
}

// newFieldStore allocates all simulation buffers. Invalid grid dimensions are
// a configuration error, reported before any buffer is allocated.
func newFieldStore(width, height int) (*fieldStore, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid grid dimensions %dx%d: both must be positive", width, height)
	}
	return &fieldStore{
		width:  width,
		height: height,
		density: bufferPair[colorField]{
			front: newColorField(width, height),
			back:  newColorField(width, height),
		},
		velocity: bufferPair[vectorField]{
			front: newVectorField(width, height),
			back:  newVectorField(width, height),
		},
		pressure: bufferPair[scalarField]{
			front: newScalarField(width, height),
			back:  newScalarField(width, height),
		},
		divergence: newScalarField(width, height),
	}, nil
}

// clearAll zeroes ink and velocity in both physical buffers and resets the
// pressure pair so no stale solve seed survives a canvas clear.
func (s *fieldStore) clearAll() {
	s.density.current().clear()
	s.density.scratch().clear()
	s.velocity.current().clear()
	s.velocity.scratch().clear()
	s.pressure.current().clear()
	s.pressure.scratch().clear()
	s.divergence.clear()
}
