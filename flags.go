package main

import "flag"

// Command-line flags that control grid resolution, solver tuning, and
// optional runtime services. Physics defaults live in config.go; anything a
// user may want to tune per run is declared here.
var (
	// gridWidthFlag and gridHeightFlag size the simulation grid in cells.
	gridWidthFlag  = flag.Int("grid-width", defaultGridW, "simulation grid width in cells")
	gridHeightFlag = flag.Int("grid-height", defaultGridH, "simulation grid height in cells")

	// diffusionItersFlag sets the Jacobi iteration count for the implicit
	// diffusion solve.
	diffusionItersFlag = flag.Int("diffusion-iters", defaultDiffusionIters, "Jacobi iterations for the diffusion solve")

	// pressureItersFlag sets the Jacobi iteration count for the Poisson
	// pressure solve.
	pressureItersFlag = flag.Int("pressure-iters", defaultPressureIters, "Jacobi iterations for the pressure solve")

	// openCLFlag selects the OpenCL compute backend; requires building with
	// -tags opencl. Initialization failure is fatal when requested.
	openCLFlag = flag.Bool("opencl", false, "run the solver pipeline on an OpenCL device")

	// diagAddrFlag enables the WebSocket diagnostics server when non-empty.
	diagAddrFlag = flag.String("diag-addr", "", "listen address for the diagnostics WebSocket server (disabled when empty)")

	// debugFlag enables the FPS, timing, and solver-stat overlay.
	debugFlag = flag.Bool("debug", false, "show FPS and solver statistics overlay")

	// cpuProfileFlag writes a pprof CPU profile for the whole run.
	cpuProfileFlag = flag.String("cpuprofile", "", "write a CPU profile to the given path")
)
