// Package report computes post-run statistics over stored measurements and
// logs the simulation lifecycle.
package report

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/bhjolly/helios/internal/monitoring"
	"github.com/bhjolly/helios/internal/units"
)

// Summary aggregates the received-power distribution of one run.
type Summary struct {
	Count   int
	MinW    float64
	MaxW    float64
	MeanW   float64
	StdDevW float64
	P50W    float64
	P95W    float64
}

// Summarize computes the received-power summary. An empty input yields a
// zero summary.
func Summarize(powersW []float64) Summary {
	if len(powersW) == 0 {
		return Summary{}
	}

	sorted := make([]float64, len(powersW))
	copy(sorted, powersW)
	sort.Float64s(sorted)

	s := Summary{
		Count: len(sorted),
		MinW:  sorted[0],
		MaxW:  sorted[len(sorted)-1],
		MeanW: stat.Mean(sorted, nil),
		P50W:  stat.Quantile(0.5, stat.Empirical, sorted, nil),
		P95W:  stat.Quantile(0.95, stat.Empirical, sorted, nil),
	}
	if len(sorted) > 1 {
		s.StdDevW = stat.StdDev(sorted, nil)
	}
	return s
}

// String renders the summary with powers in dBm, the usual unit for receiver
// budgets.
func (s Summary) String() string {
	if s.Count == 0 {
		return "no measurements"
	}
	return fmt.Sprintf(
		"%d measurements, mean %.2f dBm (stddev %.2f W), min %.2f dBm, max %.2f dBm, p50 %.2f dBm, p95 %.2f dBm",
		s.Count,
		units.WattsToDBm(s.MeanW), s.StdDevW,
		units.WattsToDBm(s.MinW), units.WattsToDBm(s.MaxW),
		units.WattsToDBm(s.P50W), units.WattsToDBm(s.P95W),
	)
}

// LogReporter logs the simulation lifecycle through the package diagnostic
// logger. PulseCount, when set, is sampled at finish time for a throughput
// line.
type LogReporter struct {
	SurveyName string
	PulseCount func() int64
}

// PreStart logs the run start.
func (r *LogReporter) PreStart() {
	monitoring.Logf("Report: survey %q starting", r.SurveyName)
}

// PreFinish logs the main-loop duration and, when a pulse counter is bound,
// the achieved pulse rate.
func (r *LogReporter) PreFinish(mainLoopSeconds float64) {
	if r.PulseCount != nil && mainLoopSeconds > 0 {
		pulses := r.PulseCount()
		monitoring.Logf("Report: main loop took %.3fs, %d pulses (%.0f pulses/s)",
			mainLoopSeconds, pulses, float64(pulses)/mainLoopSeconds)
		return
	}
	monitoring.Logf("Report: main loop took %.3fs", mainLoopSeconds)
}

// PostFinish logs the total run duration.
func (r *LogReporter) PostFinish(totalSeconds float64) {
	monitoring.Logf("Report: survey %q finished in %.3fs", r.SurveyName, totalSeconds)
}
