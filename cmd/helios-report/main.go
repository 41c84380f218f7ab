// Command helios-report summarizes a stored simulation run and optionally
// renders the simulated point cloud as an HTML scatter chart.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/bhjolly/helios/internal/report"
	"github.com/bhjolly/helios/internal/scan"
	"github.com/bhjolly/helios/internal/storage/sqlite"
	"github.com/bhjolly/helios/internal/units"
)

var (
	dbPath  = flag.String("db", "helios.db", "Path to the simulation output database")
	runID   = flag.String("run", "", "Run id to report on (default: most recent run)")
	outPath = flag.String("out", "", "Write an HTML point-cloud chart to this path")
)

func main() {
	flag.Parse()

	store, err := sqlite.Open(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer store.Close()

	runs, err := store.Runs()
	if err != nil {
		log.Fatalf("Failed to list runs: %v", err)
	}
	if len(runs) == 0 {
		log.Fatalf("No runs stored in %s", *dbPath)
	}

	id := *runID
	if id == "" {
		id = runs[len(runs)-1].ID
	}

	powers, err := store.ReceivedPowers(id)
	if err != nil {
		log.Fatalf("Failed to read run %s: %v", id, err)
	}
	fmt.Printf("run %s: %s\n", id, report.Summarize(powers))

	if *outPath == "" {
		return
	}

	ms, err := store.Measurements(id)
	if err != nil {
		log.Fatalf("Failed to read measurements: %v", err)
	}
	if err := renderPointCloud(ms, id, *outPath); err != nil {
		log.Fatalf("Failed to render chart: %v", err)
	}
	fmt.Printf("wrote %s\n", *outPath)
}

// dbmRange returns the received-power extremes of a run in dBm, seeded from
// the first measurement so the bounds hold even when every return is above
// or below zero dBm. ms must not be empty.
func dbmRange(ms []scan.Measurement) (minDBm, maxDBm float64) {
	minDBm = units.WattsToDBm(ms[0].ReceivedPowerW)
	maxDBm = minDBm
	for _, m := range ms[1:] {
		dbm := units.WattsToDBm(m.ReceivedPowerW)
		if dbm < minDBm {
			minDBm = dbm
		}
		if dbm > maxDBm {
			maxDBm = dbm
		}
	}
	return minDBm, maxDBm
}

// renderPointCloud draws the hit positions in the ground plane, colored by
// received power in dBm.
func renderPointCloud(ms []scan.Measurement, runID, path string) error {
	if len(ms) == 0 {
		return fmt.Errorf("run %s has no measurements to plot", runID)
	}
	data := make([]opts.ScatterData, 0, len(ms))
	for _, m := range ms {
		dbm := units.WattsToDBm(m.ReceivedPowerW)
		data = append(data, opts.ScatterData{Value: []interface{}{m.Hit.X, m.Hit.Y, dbm}})
	}
	minDBm, maxDBm := dbmRange(ms)

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Helios Point Cloud",
			Theme:     "dark",
			Width:     "900px",
			Height:    "900px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Simulated Point Cloud",
			Subtitle: fmt.Sprintf("run=%s points=%d", runID, len(data)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(minDBm),
			Max:        float32(maxDBm),
			Dimension:  "2",
			InRange: &opts.VisualMapInRange{
				Color: []string{"#440154", "#31688e", "#35b779", "#fde725"},
			},
		}),
	)
	scatter.AddSeries("returns", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return scatter.Render(f)
}
