package main

// Simulation and rendering configuration constants. These values define the
// default grid size, solver tuning, and brush behavior for the living ink
// simulation. Grid resolution is fixed at startup and is independent of the
// window's pixel resolution.
const (
	defaultGridW, defaultGridH = 256, 256
	windowScale                = 3
	defaultTPS                 = 60.0

	// Solver iteration counts. Both are quality/performance trade-offs;
	// they are exposed as flags so convergence can be tuned without
	// rebuilding.
	defaultDiffusionIters = 20
	defaultPressureIters  = 40

	// Physics defaults. Decay and damping are dissipation factors in (0,1]
	// applied during advection; viscosity drives the implicit diffusion
	// solve.
	defaultViscosity  = 0.00005
	defaultInkDecay   = 0.999
	defaultVelDamping = 0.998
	viscosityStep     = 0.00005
	maxViscosity      = 0.01

	// Elapsed wall time is clamped into this range so a stalled frame
	// cannot feed the solver an unstable time step.
	minFrameDT = 1.0 / 240.0
	maxFrameDT = 1.0 / 20.0

	// Brush defaults and limits.
	defaultBrushRadius   = 20.0
	minBrushRadius       = 1.0
	maxBrushRadius       = 100.0
	brushRadiusStep      = 2.0
	defaultBrushStrength = 40.0

	// Smudge mode mixes each covered cell strongly toward the box-blurred
	// average of its local window. The window is fixed, not user-tunable.
	smudgeWindowRadius = 2
	smudgeBlend        = 0.85

	// View defaults, matching the control panel's slider ranges.
	defaultZoom = 0.8
	minZoom     = 0.1
	maxZoom     = 5.0
	zoomStep    = 1.1
	panStep     = 8.0

	// Velocity magnitudes are scaled by this factor before gradient lookup
	// in the debug view.
	velocityViewScale = 0.02
)

// Paper background the ink is composited over.
const (
	paperR = 0.93
	paperG = 0.90
	paperB = 0.84
)
