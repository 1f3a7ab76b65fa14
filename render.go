package main

import (
	"fmt"
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/mazznoer/colorgrad"
)

// velocityGradient is the 256-entry lookup table for the velocity-magnitude
// debug view.
var velocityGradient = buildVelocityGradient()

func buildVelocityGradient() [256]color.RGBA {
	var lut [256]color.RGBA
	grad := colorgrad.Viridis()
	for i, c := range grad.Colors(256) {
		lut[i] = color.RGBAModel.Convert(c).(color.RGBA)
	}
	return lut
}

// Draw composites the completed frame's ink over the paper color and blits it
// through the pan/zoom transform. Only the current buffers are read; the
// solver finished the frame in Update, so there are no torn reads.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.frameImg == nil {
		g.frameImg = ebiten.NewImage(g.view.gridW, g.view.gridH)
		g.pix = make([]byte, g.view.gridW*g.view.gridH*4)
	}

	if g.showVelocity {
		g.fillVelocityPixels()
	} else {
		g.fillInkPixels()
	}
	g.frameImg.WritePixels(g.pix)

	screen.Fill(color.RGBA{24, 24, 28, 255})
	op := &ebiten.DrawImageOptions{}
	op.Filter = ebiten.FilterLinear
	op.GeoM.Translate(
		-(float64(g.view.gridW)/2 + g.view.panX),
		-(float64(g.view.gridH)/2 + g.view.panY),
	)
	op.GeoM.Scale(g.view.zoom, g.view.zoom)
	op.GeoM.Translate(float64(g.view.screenW)/2, float64(g.view.screenH)/2)
	screen.DrawImage(g.frameImg, op)

	if *debugFlag {
		g.drawDebugOverlay(screen)
	}
}

// inkCell returns the RGBA ink value for one cell, regardless of which
// backend produced the frame.
func (g *Game) inkCell(i int) (r, gr, b, a float32) {
	if g.gpu != nil {
		d := g.gpu.Density()
		base := i * 4
		return d[base], d[base+1], d[base+2], d[base+3]
	}
	c := g.sim.density().cells[i]
	return c.X(), c.Y(), c.Z(), c.W()
}

// velCell returns one cell's velocity components.
func (g *Game) velCell(i int) (vx, vy float32) {
	if g.gpu != nil {
		v := g.gpu.Velocity()
		return v[i*2], v[i*2+1]
	}
	c := g.sim.velocity().cells[i]
	return c.X(), c.Y()
}

// fillInkPixels writes mix(paper, ink_rgb, ink_alpha) for every cell.
func (g *Game) fillInkPixels() {
	cells := g.view.gridW * g.view.gridH
	for i := 0; i < cells; i++ {
		r, gr, b, a := g.inkCell(i)
		a = clampf(a, 0, 1)
		base := i * 4
		g.pix[base] = byte(mixf(paperR, clampf(r, 0, 1), a) * 255)
		g.pix[base+1] = byte(mixf(paperG, clampf(gr, 0, 1), a) * 255)
		g.pix[base+2] = byte(mixf(paperB, clampf(b, 0, 1), a) * 255)
		g.pix[base+3] = 255
	}
}

// fillVelocityPixels renders velocity magnitude through the gradient lookup
// table for the alternate debug view.
func (g *Game) fillVelocityPixels() {
	cells := g.view.gridW * g.view.gridH
	for i := 0; i < cells; i++ {
		vx, vy := g.velCell(i)
		mag := clampf(float32(math.Hypot(float64(vx), float64(vy)))*velocityViewScale, 0, 1)
		c := velocityGradient[int(mag*255)]
		base := i * 4
		g.pix[base] = c.R
		g.pix[base+1] = c.G
		g.pix[base+2] = c.B
		g.pix[base+3] = 255
	}
}

func (g *Game) drawDebugOverlay(screen *ebiten.Image) {
	msg := fmt.Sprintf("FPS: %.1f (%.1f TPS)\nStep: %.2f ms\nBrush: %s r=%.0f\nViscosity: %.5f\nZoom: %.2f",
		ebiten.ActualFPS(), ebiten.ActualTPS(),
		g.lastStepDur.Seconds()*1000,
		g.panel.mode, g.panel.brushRadius,
		g.panel.viscosity, g.view.zoom)
	if g.gpu != nil {
		msg += "\nBackend: OpenCL (" + g.gpu.DeviceName() + ")"
	} else {
		msg += fmt.Sprintf("\nInk mass: %.1f\nDiv residual: %.4f", g.sim.inkMass(), g.sim.divergenceResidual())
	}
	ebitenutil.DebugPrint(screen, msg)
}
