// Command morphogen grows organic meshes with a Gray-Scott
// reaction-diffusion simulation and writes them as STL.
//
// Jobs come from either a Lisp growth script or a TOML config file:
//
//	morphogen -script reef.lisp -o out/
//	morphogen -config jobs.toml -o out/
//
// Each job writes <name>.stl under the output directory. With previewing
// enabled the file is rewritten at every preview emission, so it always
// holds the latest snapshot of the growth.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/chazu/morphogen/pkg/engine"
	"github.com/chazu/morphogen/pkg/jobfile"
	"github.com/chazu/morphogen/pkg/mesh"
	"github.com/chazu/morphogen/pkg/sim"
)

func main() {
	scriptPath := flag.String("script", "", "Lisp growth script to evaluate")
	configPath := flag.String("config", "", "TOML job file to load")
	outDir := flag.String("o", ".", "output directory for STL files")
	flag.Parse()

	log.SetFlags(log.Ltime)

	if err := run(*scriptPath, *configPath, *outDir); err != nil {
		log.Fatal(err)
	}
}

func run(scriptPath, configPath, outDir string) error {
	if (scriptPath == "") == (configPath == "") {
		return fmt.Errorf("need exactly one of -script or -config")
	}

	var jobs []sim.Job
	var err error
	if scriptPath != "" {
		jobs, err = loadScript(scriptPath)
	} else {
		jobs, err = jobfile.Load(configPath)
	}
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("%s declares no jobs", scriptPath)
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("output directory: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	for _, job := range jobs {
		path := filepath.Join(outDir, job.Name+".stl")
		log.Printf("job %s: %d^3 grid, %d iterations -> %s",
			job.Name, job.Config.Resolution, job.Config.Iterations, path)

		start := time.Now()
		if err := job.Run(ctx, mesh.NewSTLFile(path)); err != nil {
			return fmt.Errorf("job %s: %w", job.Name, err)
		}
		log.Printf("job %s: done in %v", job.Name, time.Since(start).Round(time.Millisecond))
	}
	return nil
}

func loadScript(path string) ([]sim.Job, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	jobs, evalErrs, err := engine.NewEngine().Evaluate(string(source))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			log.Printf("%s: %v", path, e)
		}
		return nil, fmt.Errorf("%s: %d script error(s)", path, len(evalErrs))
	}
	return jobs, nil
}
