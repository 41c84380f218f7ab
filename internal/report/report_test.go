package report

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/bhjolly/helios/internal/monitoring"
	"github.com/bhjolly/helios/internal/sim"
)

func TestSummarize(t *testing.T) {
	powers := []float64{4e-9, 1e-9, 3e-9, 2e-9, 5e-9}
	s := Summarize(powers)

	if s.Count != 5 {
		t.Errorf("Count = %d, want 5", s.Count)
	}
	if s.MinW != 1e-9 || s.MaxW != 5e-9 {
		t.Errorf("Min/Max = %v/%v", s.MinW, s.MaxW)
	}
	if math.Abs(s.MeanW-3e-9) > 1e-18 {
		t.Errorf("MeanW = %v, want 3e-9", s.MeanW)
	}
	if s.StdDevW <= 0 {
		t.Errorf("StdDevW = %v, want positive", s.StdDevW)
	}
	if s.P50W < 1e-9 || s.P50W > 5e-9 {
		t.Errorf("P50W = %v out of data range", s.P50W)
	}
	if s.P95W < s.P50W {
		t.Errorf("P95W = %v below P50W = %v", s.P95W, s.P50W)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	if s.Count != 0 {
		t.Errorf("Count = %d, want 0", s.Count)
	}
	if got := s.String(); got != "no measurements" {
		t.Errorf("String() = %q", got)
	}
}

func TestSummarizeSingleValue(t *testing.T) {
	s := Summarize([]float64{2e-9})
	if s.Count != 1 || s.MeanW != 2e-9 || s.StdDevW != 0 {
		t.Errorf("Summarize single = %+v", s)
	}
}

func TestSummaryStringUsesDBm(t *testing.T) {
	s := Summarize([]float64{1e-6}) // 1 uW = -30 dBm
	got := s.String()
	if !strings.Contains(got, "-30.00 dBm") {
		t.Errorf("String() = %q, want -30.00 dBm", got)
	}
}

func TestLogReporterImplementsLifecycle(t *testing.T) {
	var _ sim.Reporter = (*LogReporter)(nil)

	var lines []string
	monitoring.SetLogger(func(format string, v ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, v...))
	})
	defer monitoring.Quiet()

	r := &LogReporter{
		SurveyName: "strip",
		PulseCount: func() int64 { return 5000 },
	}
	r.PreStart()
	r.PreFinish(2.5)
	r.PostFinish(3.0)

	if len(lines) != 3 {
		t.Fatalf("logged %d lines, want 3", len(lines))
	}
	if !strings.Contains(lines[0], `"strip" starting`) {
		t.Errorf("start line = %q", lines[0])
	}
	if !strings.Contains(lines[1], "5000 pulses") || !strings.Contains(lines[1], "2000 pulses/s") {
		t.Errorf("finish line = %q", lines[1])
	}
	if !strings.Contains(lines[2], "finished in 3.000s") {
		t.Errorf("post line = %q", lines[2])
	}
}
