package main

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// viewTransform maps between screen pixels and grid cells, accounting for pan
// and zoom so pointer positions land on exact cells. The grid is drawn
// centered: a screen point is offset from the screen center, scaled by the
// inverse zoom, and placed relative to the grid center plus pan.
type viewTransform struct {
	zoom             float64
	panX, panY       float64 // in grid cells
	screenW, screenH int
	gridW, gridH     int
}

func newViewTransform(gridW, gridH int) viewTransform {
	return viewTransform{
		zoom:  defaultZoom,
		gridW: gridW,
		gridH: gridH,
	}
}

// screenToGrid converts a screen-pixel position to fractional grid
// coordinates. Results may lie outside the grid; the brush distance test and
// the advection sampler handle that by construction.
func (v viewTransform) screenToGrid(sx, sy float64) (float64, float64) {
	gx := float64(v.gridW)/2 + v.panX + (sx-float64(v.screenW)/2)/v.zoom
	gy := float64(v.gridH)/2 + v.panY + (sy-float64(v.screenH)/2)/v.zoom
	return gx, gy
}

// gridToScreen is the exact inverse of screenToGrid.
func (v viewTransform) gridToScreen(gx, gy float64) (float64, float64) {
	sx := float64(v.screenW)/2 + (gx-float64(v.gridW)/2-v.panX)*v.zoom
	sy := float64(v.screenH)/2 + (gy-float64(v.gridH)/2-v.panY)*v.zoom
	return sx, sy
}

// inkPalette holds the brush colors the C key cycles through. W is the brush
// alpha used for paint blending.
var inkPalette = []mgl32.Vec4{
	{0.05, 0.05, 0.08, 0.9}, // india ink
	{0.12, 0.10, 0.45, 0.9}, // indigo
	{0.55, 0.05, 0.10, 0.9}, // crimson
	{0.02, 0.35, 0.30, 0.9}, // teal
	{0.60, 0.40, 0.05, 0.9}, // ochre
}

// controlPanel is the keyboard-driven control surface. The solver reads its
// values once per frame and never mutates them.
type controlPanel struct {
	viscosity  float32
	inkDecay   float32
	velDamping float32

	brushRadius   float32
	brushStrength float32
	mode          brushMode
	colorIndex    int
}

func newControlPanel() controlPanel {
	return controlPanel{
		viscosity:     defaultViscosity,
		inkDecay:      defaultInkDecay,
		velDamping:    defaultVelDamping,
		brushRadius:   defaultBrushRadius,
		brushStrength: defaultBrushStrength,
		mode:          brushPaint,
	}
}

func (c *controlPanel) brushColor() mgl32.Vec4 {
	return inkPalette[c.colorIndex%len(inkPalette)]
}

// params assembles the per-frame simulation parameters from the panel state.
func (c *controlPanel) params(dt, elapsed float32) frameParams {
	return frameParams{
		dt:         dt,
		elapsed:    elapsed,
		viscosity:  c.viscosity,
		inkDecay:   c.inkDecay,
		velDamping: c.velDamping,
	}
}

// handleInput processes the control keys for this tick and reports whether a
// canvas clear was requested.
//
//	[ / ]    brush radius down/up
//	M        toggle paint/smudge
//	C        cycle ink color
//	, / .    viscosity down/up
//	Backspace clear canvas
func (c *controlPanel) handleInput() (clearRequested bool) {
	if inpututil.IsKeyJustPressed(ebiten.KeyLeftBracket) {
		c.brushRadius = clampf(c.brushRadius-brushRadiusStep, minBrushRadius, maxBrushRadius)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyRightBracket) {
		c.brushRadius = clampf(c.brushRadius+brushRadiusStep, minBrushRadius, maxBrushRadius)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyM) {
		if c.mode == brushPaint {
			c.mode = brushSmudge
		} else {
			c.mode = brushPaint
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		c.colorIndex = (c.colorIndex + 1) % len(inkPalette)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyComma) {
		c.viscosity = clampf(c.viscosity-viscosityStep, 0, maxViscosity)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyPeriod) {
		c.viscosity = clampf(c.viscosity+viscosityStep, 0, maxViscosity)
	}
	return inpututil.IsKeyJustPressed(ebiten.KeyBackspace)
}

// handleViewInput applies pan (arrow keys) and zoom (mouse wheel) to the view
// transform.
func (v *viewTransform) handleViewInput() {
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		v.panX -= panStep / v.zoom
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		v.panX += panStep / v.zoom
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		v.panY -= panStep / v.zoom
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		v.panY += panStep / v.zoom
	}
	if _, wheelY := ebiten.Wheel(); wheelY != 0 {
		zoom := v.zoom
		if wheelY > 0 {
			zoom *= zoomStep
		} else {
			zoom /= zoomStep
		}
		v.zoom = float64(clampf(float32(zoom), minZoom, maxZoom))
	}
}
