package main

import (
	"flag"
	"log"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	flag.Parse()

	cfg := simConfig{
		width:          *gridWidthFlag,
		height:         *gridHeightFlag,
		diffusionIters: *diffusionItersFlag,
		pressureIters:  *pressureItersFlag,
		workers:        runtime.NumCPU(),
	}
	sim, err := newSimulation(cfg)
	if err != nil {
		log.Fatalf("Simulation setup failed: %v", err)
	}

	var gpu *openCLFluidSolver
	if *openCLFlag {
		solver, err := newOpenCLFluidSolver(cfg.width, cfg.height)
		if err != nil {
			log.Fatalf("OpenCL initialization failed: %v", err)
		}
		log.Printf("OpenCL solver enabled (device: %s)", solver.DeviceName())
		gpu = solver
		defer gpu.Close()
	}

	var diag *diagServer
	if *diagAddrFlag != "" {
		diag = startDiagServer(*diagAddrFlag)
	}

	if *cpuProfileFlag != "" {
		f, err := os.Create(*cpuProfileFlag)
		if err != nil {
			log.Fatalf("CPU profile setup failed: %v", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("CPU profile setup failed: %v", err)
		}
		log.Printf("Writing CPU profile to %s", *cpuProfileFlag)
		defer func() {
			pprof.StopCPUProfile()
			f.Close()
		}()
	}

	g := newGame(sim, gpu, diag)

	ebiten.SetWindowSize(cfg.width*windowScale, cfg.height*windowScale)
	ebiten.SetWindowTitle("Living Ink")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatalf("Game loop failed: %v", err)
	}
}
