package config

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bhjolly/helios/internal/energy"
	"github.com/bhjolly/helios/internal/geom"
	"github.com/bhjolly/helios/internal/pulse"
	"github.com/bhjolly/helios/internal/units"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// twoLegs is the minimal runnable survey: one traversed segment ending on a
// waypoint.
func twoLegs() []LegConfig {
	return []LegConfig{
		{Z: 400, SpeedMps: 30, ScannerActive: true, Sweep: 40},
		{X: 200, Z: 400},
	}
}

func TestLoadRunConfig(t *testing.T) {
	path := writeConfig(t, "run.json", `{
		"survey_name": "test flight",
		"parallelization": "dynamic",
		"chunk_size": 16,
		"callback_frequency": 250,
		"fixed_gps_time_start": "2024-01-01 00:00:00",
		"sim_speed_factor": 2.0,
		"export_to_file": true,
		"output_path": "out/flight.db",
		"pulse_freq_hz": 50000,
		"emitted_power_model": "legacy",
		"wavelength_nm": 1550,
		"beam_divergence_mrad": 0.5,
		"legs": [
			{"x": 0, "y": 0, "z": 400, "speed_mps": 30, "scanner_active": true, "sweep": 40},
			{"x": 200, "y": 0, "z": 400, "speed_mps": 30}
		]
	}`)

	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("LoadRunConfig: %v", err)
	}

	if got := cfg.GetSurveyName(); got != "test flight" {
		t.Errorf("GetSurveyName() = %q", got)
	}
	if got := cfg.GetStrategy(); got != pulse.StrategyDynamicChunk {
		t.Errorf("GetStrategy() = %v", got)
	}
	if got := cfg.GetChunkSize(); got != 16 {
		t.Errorf("GetChunkSize() = %d", got)
	}
	if got := cfg.GetCallbackFrequency(); got != 250 {
		t.Errorf("GetCallbackFrequency() = %d", got)
	}
	if got := cfg.GetFixedGpsTimeStart(); got != "2024-01-01 00:00:00" {
		t.Errorf("GetFixedGpsTimeStart() = %q", got)
	}
	if got := cfg.GetSimSpeedFactor(); got != 2.0 {
		t.Errorf("GetSimSpeedFactor() = %v", got)
	}
	if !cfg.GetExportToFile() {
		t.Error("GetExportToFile() = false")
	}
	if got := cfg.GetOutputPath(); got != "out/flight.db" {
		t.Errorf("GetOutputPath() = %q", got)
	}
	if got := cfg.GetPulseFreqHz(); got != 50000.0 {
		t.Errorf("GetPulseFreqHz() = %v", got)
	}
	if got := cfg.GetEmittedPowerModel(); got != energy.ModelLegacy {
		t.Errorf("GetEmittedPowerModel() = %v", got)
	}

	dev := cfg.Device()
	if dev.WavelengthM != 1550e-9 {
		t.Errorf("Device().WavelengthM = %v", dev.WavelengthM)
	}
	if dev.BeamDivergenceRad != 0.5e-3 {
		t.Errorf("Device().BeamDivergenceRad = %v", dev.BeamDivergenceRad)
	}
	// Unset device fields fall back to defaults.
	if dev.AveragePowerW != 4.0 {
		t.Errorf("Device().AveragePowerW = %v", dev.AveragePowerW)
	}
}

func TestDefaultsWithMinimalConfig(t *testing.T) {
	path := writeConfig(t, "minimal.json", `{
		"legs": [
			{"z": 400, "speed_mps": 30, "scanner_active": true, "sweep": 40},
			{"x": 100, "z": 400}
		]
	}`)
	cfg, err := LoadRunConfig(path)
	if err != nil {
		t.Fatalf("LoadRunConfig: %v", err)
	}

	if got := cfg.GetStrategy(); got != pulse.StrategyChunk {
		t.Errorf("GetStrategy() = %v, want chunk", got)
	}
	if got := cfg.GetChunkSize(); got != 32 {
		t.Errorf("GetChunkSize() = %d, want 32", got)
	}
	if got := cfg.GetWorkers(); got != 0 {
		t.Errorf("GetWorkers() = %d, want 0", got)
	}
	if got := cfg.GetCallbackFrequency(); got != 1000 {
		t.Errorf("GetCallbackFrequency() = %d, want 1000", got)
	}
	if got := cfg.GetFixedGpsTimeStart(); got != "" {
		t.Errorf("GetFixedGpsTimeStart() = %q, want empty", got)
	}
	if got := cfg.GetSimSpeedFactor(); got != 1.0 {
		t.Errorf("GetSimSpeedFactor() = %v, want 1", got)
	}
	if cfg.GetExportToFile() {
		t.Error("GetExportToFile() = true, want false")
	}
	if got := cfg.GetEmittedPowerModel(); got != energy.ModelCurrent {
		t.Errorf("GetEmittedPowerModel() = %v, want current", got)
	}
	if got := cfg.GetNumRuns(); got != 1 {
		t.Errorf("GetNumRuns() = %d, want 1", got)
	}
	if got := cfg.GetSweepUnits(); got != units.Degrees {
		t.Errorf("GetSweepUnits() = %q, want deg", got)
	}
}

func TestSurveyAssembly(t *testing.T) {
	cfg := &RunConfig{
		SurveyName: ptrString("strip"),
		Legs: []LegConfig{
			{X: 0, Y: 0, Z: 400, SpeedMps: 30, ScannerActive: true, Sweep: 90},
			{X: 300, Y: 0, Z: 400, SpeedMps: 30},
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	sv := cfg.Survey()
	if sv.Name != "strip" {
		t.Errorf("Name = %q", sv.Name)
	}
	if len(sv.Legs) != 2 {
		t.Fatalf("len(Legs) = %d", len(sv.Legs))
	}

	want := geom.Vec3{X: 300, Y: 0, Z: 400}
	if diff := cmp.Diff(want, sv.Legs[1].Platform.Position); diff != "" {
		t.Errorf("leg 1 waypoint mismatch (-want +got):\n%s", diff)
	}
	if !sv.Legs[0].Scanner.Active {
		t.Error("leg 0 scanner inactive")
	}
	if got := sv.Legs[0].Scanner.SweepRad; got < 1.570 || got > 1.571 {
		t.Errorf("leg 0 SweepRad = %v, want ~pi/2", got)
	}
	if got := sv.Length(); got != 300 {
		t.Errorf("Length() = %v, want 300", got)
	}
}

func TestSweepUnitsApplyToLegs(t *testing.T) {
	cfg := &RunConfig{
		SweepUnits: ptrString(units.Milliradians),
		Legs: []LegConfig{
			{Z: 400, SpeedMps: 30, ScannerActive: true, Sweep: 200},
			{X: 100, Z: 400},
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	sv := cfg.Survey()
	if got := sv.Legs[0].Scanner.SweepRad; math.Abs(got-0.2) > 1e-12 {
		t.Errorf("SweepRad = %v, want 0.2 (200 mrad)", got)
	}
}

func TestPowerThresholdDBm(t *testing.T) {
	cfg := &RunConfig{
		PowerThresholdDBm: ptrFloat64(-60),
		Legs:              twoLegs(),
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	// -60 dBm is 1 nW.
	if got := cfg.Device().PowerThresholdW; math.Abs(got-1e-9) > 1e-21 {
		t.Errorf("PowerThresholdW = %v, want 1e-9", got)
	}
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	path := writeConfig(t, "run.yaml", `{}`)
	if _, err := LoadRunConfig(path); err == nil {
		t.Fatal("expected error for non-.json extension")
	}
}

func TestLoadRejectsOversizeFile(t *testing.T) {
	big := `{"survey_name": "` + strings.Repeat("x", 2*1024*1024) + `"}`
	path := writeConfig(t, "big.json", big)
	if _, err := LoadRunConfig(path); err == nil {
		t.Fatal("expected error for oversize config")
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := writeConfig(t, "bad.json", `{"survey_name": `)
	if _, err := LoadRunConfig(path); err == nil {
		t.Fatal("expected error for malformed JSON")
	}
}

func TestLoadRejectsEmptyConfig(t *testing.T) {
	// An empty object parses but describes nothing to fly: it must fail
	// validation, not crash the run later.
	path := writeConfig(t, "empty.json", `{}`)
	if _, err := LoadRunConfig(path); err == nil {
		t.Fatal("expected error for config without legs")
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name string
		cfg  RunConfig
	}{
		{"unknown strategy", RunConfig{Parallelization: ptrString("threads"), Legs: twoLegs()}},
		{"unknown model", RunConfig{EmittedPowerModel: ptrString("quantum"), Legs: twoLegs()}},
		{"unknown sweep units", RunConfig{SweepUnits: ptrString("arcmin"), Legs: twoLegs()}},
		{"zero chunk size", RunConfig{ChunkSize: ptrInt(0), Legs: twoLegs()}},
		{"zero workers", RunConfig{Workers: ptrInt(0), Legs: twoLegs()}},
		{"negative callback frequency", RunConfig{CallbackFrequency: ptrInt(-1), Legs: twoLegs()}},
		{"zero pulse frequency", RunConfig{PulseFreqHz: ptrFloat64(0), Legs: twoLegs()}},
		{"negative speed factor", RunConfig{SimSpeedFactor: ptrFloat64(-1), Legs: twoLegs()}},
		{"zero runs", RunConfig{NumRuns: ptrInt(0), Legs: twoLegs()}},
		{"conflicting power thresholds", RunConfig{
			PowerThresholdW:   ptrFloat64(1e-9),
			PowerThresholdDBm: ptrFloat64(-60),
			Legs:              twoLegs(),
		}},
		{"no legs", RunConfig{}},
		{"single leg", RunConfig{Legs: []LegConfig{{SpeedMps: 10}}}},
		{"stationary leg", RunConfig{Legs: []LegConfig{{SpeedMps: 0}, {X: 1}}}},
		{"negative sweep", RunConfig{Legs: []LegConfig{{SpeedMps: 10, Sweep: -1}, {X: 1}}}},
		{"reflectance above one", RunConfig{Scene: &SceneConfig{Reflectance: ptrFloat64(1.5)}, Legs: twoLegs()}},
		{"negative specularity", RunConfig{Scene: &SceneConfig{Specularity: ptrFloat64(-0.1)}, Legs: twoLegs()}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}
}

func TestValidateAcceptsExportFlag(t *testing.T) {
	cfg := RunConfig{ExportToFile: ptrBool(true), Legs: twoLegs()}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
