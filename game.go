package main

import (
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Game drives the simulation from the display loop: it gathers pointer and
// panel input, assembles the frame's parameters and brush stroke, runs the
// solver pipeline, and hands the finished density buffer to rendering.
type Game struct {
	sim   *simulation
	gpu   *openCLFluidSolver
	panel controlPanel
	view  viewTransform

	// Pointer history. lastGrid is always the last processed pointer
	// position, so strokes stay continuous across mode changes and across
	// press/release boundaries.
	lastGrid mgl32.Vec2
	haveLast bool

	showVelocity bool

	start       time.Time
	lastTick    time.Time
	lastStepDur time.Duration

	frameImg *ebiten.Image
	pix      []byte

	frame uint64
	diag  *diagServer
}

func newGame(sim *simulation, gpu *openCLFluidSolver, diag *diagServer) *Game {
	return &Game{
		sim:   sim,
		gpu:   gpu,
		panel: newControlPanel(),
		view:  newViewTransform(sim.cfg.width, sim.cfg.height),
		diag:  diag,
		start: time.Now(),
	}
}

// frameDT measures the elapsed wall time since the previous tick, clamped so
// a stalled frame cannot destabilize the solver.
func (g *Game) frameDT(now time.Time) float32 {
	if g.lastTick.IsZero() {
		g.lastTick = now
		return float32(1.0 / defaultTPS)
	}
	dt := float32(now.Sub(g.lastTick).Seconds())
	g.lastTick = now
	return clampf(dt, minFrameDT, maxFrameDT)
}

// pointerStroke builds this frame's brush stroke from the pointer state, or
// returns nil when the button is up. The pointer position is mapped
// screen→grid through the current pan/zoom transform.
func (g *Game) pointerStroke() *brushStroke {
	mx, my := ebiten.CursorPosition()
	gx, gy := g.view.screenToGrid(float64(mx), float64(my))
	cur := mgl32.Vec2{float32(gx), float32(gy)}
	defer func() {
		g.lastGrid = cur
		g.haveLast = true
	}()

	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		return nil
	}
	from := cur
	if g.haveLast && !inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		from = g.lastGrid
	}
	return &brushStroke{
		from:     from,
		to:       cur,
		radius:   g.panel.brushRadius,
		strength: g.panel.brushStrength,
		mode:     g.panel.mode,
		color:    g.panel.brushColor(),
	}
}

// Update advances the simulation by one frame.
func (g *Game) Update() error {
	now := time.Now()
	dt := g.frameDT(now)

	if g.panel.handleInput() {
		g.sim.clear()
		if g.gpu != nil {
			if err := g.gpu.Clear(); err != nil {
				return err
			}
		}
	}
	g.view.handleViewInput()
	if inpututil.IsKeyJustPressed(ebiten.KeyV) {
		g.showVelocity = !g.showVelocity
	}

	stroke := g.pointerStroke()
	params := g.panel.params(dt, float32(now.Sub(g.start).Seconds()))

	stepStart := time.Now()
	if g.gpu != nil {
		if err := g.gpu.Step(params, stroke, g.sim.cfg.diffusionIters, g.sim.cfg.pressureIters); err != nil {
			return err
		}
	} else {
		if err := g.sim.step(params, stroke); err != nil {
			return err
		}
	}
	g.lastStepDur = time.Since(stepStart)
	g.frame++

	g.publishDiagnostics()
	return nil
}

// Layout reports the logical screen size and records it for the pointer
// mapping.
func (g *Game) Layout(_, _ int) (int, int) {
	g.view.screenW = g.view.gridW * windowScale
	g.view.screenH = g.view.gridH * windowScale
	return g.view.screenW, g.view.screenH
}

// diagInterval spaces out stat broadcasts; the reductions walk the full grid.
const diagInterval = 15

func (g *Game) publishDiagnostics() {
	if g.diag == nil {
		return
	}
	if g.frame%diagInterval != 0 {
		return
	}
	stats := diagStats{
		Frame:      g.frame,
		TPS:        ebiten.ActualTPS(),
		StepMillis: g.lastStepDur.Seconds() * 1000,
		BrushMode:  g.panel.mode.String(),
		Viscosity:  float64(g.panel.viscosity),
	}
	if g.gpu == nil {
		stats.InkMass = g.sim.inkMass()
		stats.Divergence = g.sim.divergenceResidual()
	}
	g.diag.broadcast(stats)
}
