package main

import (
	"math"
	"testing"
)

func TestScreenToGridRoundTrip(t *testing.T) {
	v := viewTransform{
		zoom: 1.7, panX: -12.5, panY: 40,
		screenW: 768, screenH: 768,
		gridW: 256, gridH: 256,
	}
	for _, pt := range [][2]float64{
		{0, 0},
		{384, 384},
		{767, 123},
		{-50, 900}, // off-screen pointer positions still map consistently
	} {
		gx, gy := v.screenToGrid(pt[0], pt[1])
		sx, sy := v.gridToScreen(gx, gy)
		if math.Abs(sx-pt[0]) > 1e-9 || math.Abs(sy-pt[1]) > 1e-9 {
			t.Errorf("round trip of (%g,%g) gave (%g,%g)", pt[0], pt[1], sx, sy)
		}
	}
}

func TestScreenCenterMapsToPannedGridCenter(t *testing.T) {
	v := viewTransform{
		zoom: 2, panX: 10, panY: -5,
		screenW: 600, screenH: 400,
		gridW: 200, gridH: 100,
	}
	gx, gy := v.screenToGrid(300, 200)
	if gx != 110 || gy != 45 {
		t.Errorf("screen center mapped to (%g,%g), want (110,45)", gx, gy)
	}
}

func TestZoomScalesPointerDisplacement(t *testing.T) {
	v := newViewTransform(256, 256)
	v.screenW, v.screenH = 768, 768
	v.zoom = 4

	gx0, _ := v.screenToGrid(384, 384)
	gx1, _ := v.screenToGrid(384+40, 384)
	if got := gx1 - gx0; math.Abs(got-10) > 1e-9 {
		t.Errorf("40 screen pixels at zoom 4 moved %g cells, want 10", got)
	}
}

func TestControlPanelColorCycleWraps(t *testing.T) {
	c := newControlPanel()
	first := c.brushColor()
	for i := 0; i < len(inkPalette); i++ {
		c.colorIndex = (c.colorIndex + 1) % len(inkPalette)
	}
	if got := c.brushColor(); got != first {
		t.Errorf("full color cycle ended on %v, want %v", got, first)
	}
}

func TestControlPanelParams(t *testing.T) {
	c := newControlPanel()
	c.viscosity = 0.002
	p := c.params(1.0/60, 3.5)
	if err := p.validate(); err != nil {
		t.Fatalf("panel produced invalid params: %v", err)
	}
	if p.viscosity != 0.002 || p.dt != 1.0/60 || p.elapsed != 3.5 {
		t.Errorf("params = %+v, want panel values carried through", p)
	}
}
