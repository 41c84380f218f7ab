// Command helios runs a LiDAR survey simulation described by a JSON run
// configuration, optionally persisting the simulated point cloud to a SQLite
// database.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/bhjolly/helios/internal/config"
	"github.com/bhjolly/helios/internal/monitoring"
	"github.com/bhjolly/helios/internal/pulse"
	"github.com/bhjolly/helios/internal/report"
	"github.com/bhjolly/helios/internal/scan"
	"github.com/bhjolly/helios/internal/sim"
	"github.com/bhjolly/helios/internal/storage/sqlite"
)

var (
	configPath = flag.String("config", "", "Path to the JSON run configuration (required)")
	dbOverride = flag.String("db", "", "Override the configured output database path")
	quiet      = flag.Bool("quiet", false, "Suppress diagnostic logging")
)

func main() {
	flag.Parse()
	if *configPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *quiet {
		monitoring.Quiet()
	}

	cfg, err := config.LoadRunConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load run configuration: %v", err)
	}
	if *dbOverride != "" {
		cfg.OutputPath = dbOverride
	}

	sv := cfg.Survey()
	for run := 0; run < cfg.GetNumRuns(); run++ {
		monitoring.Logf("Helios: run %d/%d", run+1, cfg.GetNumRuns())
		if err := runOnce(cfg); err != nil {
			log.Fatalf("Run %d of survey %q failed: %v", run+1, sv.Name, err)
		}
	}
}

func runOnce(cfg *config.RunConfig) error {
	sv := cfg.Survey()
	scene := cfg.GroundScene()
	head := scan.NewRotatingHead(cfg.GetHeadRotatePerSecRad())
	platform := scan.NewLinearPlatform(sv.Legs[0].Platform.Position, 0, scene)
	scanner := scan.NewSimScanner(cfg.Device(), cfg.GetEmittedPowerModel(), cfg.GetPulseFreqHz(), head, platform)

	dispatcher, err := pulse.NewDispatcher(pulse.Config{
		Strategy:  cfg.GetStrategy(),
		ChunkSize: cfg.GetChunkSize(),
		Workers:   cfg.GetWorkers(),
	})
	if err != nil {
		return err
	}
	defer dispatcher.Close()

	var callback sim.Callback
	var store *sqlite.Store
	var runID string
	if cfg.GetExportToFile() {
		store, err = sqlite.Open(cfg.GetOutputPath())
		if err != nil {
			return err
		}
		defer store.Close()
		runID, err = store.BeginRun(sv.Name)
		if err != nil {
			return err
		}
		scanner.SetOutputPath(store.Path())
		callback = func(ms []scan.Measurement, ts []scan.TrajectorySample, _ string) {
			if err := store.WriteCycle(runID, ms, ts); err != nil {
				monitoring.Logf("Helios: failed to persist cycle: %v", err)
			}
		}
	}

	simulation := sim.NewSimulation(sim.Config{
		Scanner:           scanner,
		Dispatcher:        dispatcher,
		Strategy:          cfg.GetStrategy(),
		FixedGpsTimeStart: cfg.GetFixedGpsTimeStart(),
		Callback:          callback,
		CallbackFrequency: cfg.GetCallbackFrequency(),
		ExportToFile:      cfg.GetExportToFile(),
		SimSpeedFactor:    cfg.GetSimSpeedFactor(),
		Reporter: &report.LogReporter{
			SurveyName: sv.Name,
			PulseCount: scanner.PulseCount,
		},
	})

	// Ctrl-C stops the run cleanly after the step in flight. The watcher
	// goroutine exits with the run, so multi-run surveys do not accumulate
	// one per run.
	ctx, stopSignals := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()
	runDone := make(chan struct{})
	defer close(runDone)
	go stopOnInterrupt(ctx, simulation, runDone)

	playback := sim.NewSurveyPlayback(simulation, sv, scanner)
	if err := playback.Start(); err != nil {
		return err
	}

	if dropped := dispatcher.FailureCount(); dropped > 0 {
		monitoring.Logf("Helios: %d pulse tasks failed", dropped)
	}
	if store != nil {
		powers, err := store.ReceivedPowers(runID)
		if err != nil {
			return err
		}
		monitoring.Logf("Helios: run %s: %s", runID, report.Summarize(powers))
	}
	return nil
}

// stopOnInterrupt requests a simulation stop when ctx is cancelled by a
// signal. It returns as soon as either the signal arrives or runDone closes.
func stopOnInterrupt(ctx context.Context, simulation *sim.Simulation, runDone <-chan struct{}) {
	select {
	case <-ctx.Done():
		monitoring.Logf("Helios: stop requested")
		simulation.Stop()
	case <-runDone:
	}
}
