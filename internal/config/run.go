// Package config loads and validates the JSON run configuration that wires a
// survey, a scanner device, and the engine parameters together.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bhjolly/helios/internal/energy"
	"github.com/bhjolly/helios/internal/geom"
	"github.com/bhjolly/helios/internal/pulse"
	"github.com/bhjolly/helios/internal/scan"
	"github.com/bhjolly/helios/internal/survey"
	"github.com/bhjolly/helios/internal/units"
)

// LegConfig describes one survey leg. The waypoint is the position the
// platform flies toward from the previous leg's waypoint.
type LegConfig struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`

	SpeedMps      float64 `json:"speed_mps"`
	ScannerActive bool    `json:"scanner_active"`
	// Sweep is the head sweep angle for the leg, in the run's sweep_units
	// (degrees unless configured otherwise).
	Sweep float64 `json:"sweep"`
}

// SceneConfig describes the ground-plane scene pulses reflect off.
type SceneConfig struct {
	Reflectance      *float64 `json:"reflectance,omitempty"`
	Specularity      *float64 `json:"specularity,omitempty"`
	SpecularExponent *float64 `json:"specular_exponent,omitempty"`
}

// RunConfig is the root configuration for one simulation run. Fields omitted
// from the JSON file keep their defaults, so partial configs are safe.
type RunConfig struct {
	SurveyName *string `json:"survey_name,omitempty"`
	NumRuns    *int    `json:"num_runs,omitempty"`

	// Engine params
	Parallelization   *string  `json:"parallelization,omitempty"` // "sequential", "chunk" or "dynamic"
	ChunkSize         *int     `json:"chunk_size,omitempty"`
	Workers           *int     `json:"workers,omitempty"`
	CallbackFrequency *int     `json:"callback_frequency,omitempty"`
	FixedGpsTimeStart *string  `json:"fixed_gps_time_start,omitempty"`
	SimSpeedFactor    *float64 `json:"sim_speed_factor,omitempty"`
	ExportToFile      *bool    `json:"export_to_file,omitempty"`
	OutputPath        *string  `json:"output_path,omitempty"`

	// Scanner params
	PulseFreqHz         *float64 `json:"pulse_freq_hz,omitempty"`
	HeadRotatePerSecDeg *float64 `json:"head_rotate_per_sec_deg,omitempty"`
	EmittedPowerModel   *string  `json:"emitted_power_model,omitempty"` // "current" or "legacy"
	SweepUnits          *string  `json:"sweep_units,omitempty"`         // "deg", "rad" or "mrad"

	// Device params
	AveragePowerW         *float64 `json:"average_power_w,omitempty"`
	WavelengthNm          *float64 `json:"wavelength_nm,omitempty"`
	BeamWaistRadiusM      *float64 `json:"beam_waist_radius_m,omitempty"`
	MinRangeM             *float64 `json:"min_range_m,omitempty"`
	ApertureDiameterM     *float64 `json:"aperture_diameter_m,omitempty"`
	BeamDivergenceMrad    *float64 `json:"beam_divergence_mrad,omitempty"`
	EfficiencySys         *float64 `json:"efficiency_sys,omitempty"`
	AtmosphericExtinction *float64 `json:"atmospheric_extinction,omitempty"`
	PowerThresholdW       *float64 `json:"power_threshold_w,omitempty"`
	PowerThresholdDBm     *float64 `json:"power_threshold_dbm,omitempty"`

	Scene *SceneConfig `json:"scene,omitempty"`
	Legs  []LegConfig  `json:"legs,omitempty"`
}

// Helper functions to create pointers
func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyRunConfig returns a RunConfig with all fields set to nil.
func EmptyRunConfig() *RunConfig {
	return &RunConfig{}
}

// LoadRunConfig loads a RunConfig from a JSON file. The file is validated to
// ensure it has a .json extension and is under the max file size.
func LoadRunConfig(path string) (*RunConfig, error) {
	// Validate the config file path.
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	// Check file size for safety (max 1MB)
	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyRunConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *RunConfig) Validate() error {
	if c.Parallelization != nil {
		if _, err := pulse.ParseStrategy(*c.Parallelization); err != nil {
			return fmt.Errorf("invalid parallelization: %w", err)
		}
	}

	if c.EmittedPowerModel != nil {
		if _, err := energy.ParseModel(*c.EmittedPowerModel); err != nil {
			return fmt.Errorf("invalid emitted_power_model: %w", err)
		}
	}

	if c.ChunkSize != nil && *c.ChunkSize < 1 {
		return fmt.Errorf("chunk_size must be at least 1, got %d", *c.ChunkSize)
	}

	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", *c.Workers)
	}

	if c.CallbackFrequency != nil && *c.CallbackFrequency < 0 {
		return fmt.Errorf("callback_frequency must be non-negative, got %d", *c.CallbackFrequency)
	}

	if c.PulseFreqHz != nil && *c.PulseFreqHz <= 0 {
		return fmt.Errorf("pulse_freq_hz must be positive, got %f", *c.PulseFreqHz)
	}

	if c.SimSpeedFactor != nil && *c.SimSpeedFactor <= 0 {
		return fmt.Errorf("sim_speed_factor must be positive, got %f", *c.SimSpeedFactor)
	}

	if c.NumRuns != nil && *c.NumRuns < 1 {
		return fmt.Errorf("num_runs must be at least 1, got %d", *c.NumRuns)
	}

	if c.SweepUnits != nil && !units.IsValidAngleUnit(*c.SweepUnits) {
		return fmt.Errorf("sweep_units must be one of %v, got %q", units.ValidAngleUnits, *c.SweepUnits)
	}

	if c.PowerThresholdW != nil && c.PowerThresholdDBm != nil {
		return fmt.Errorf("power_threshold_w and power_threshold_dbm are mutually exclusive")
	}

	// The last leg is a destination waypoint, so a runnable survey needs at
	// least one leg before it.
	if len(c.Legs) < 2 {
		return fmt.Errorf("a survey needs at least 2 legs, got %d", len(c.Legs))
	}
	for i, leg := range c.Legs {
		// The last leg is a pure waypoint; its speed is never used.
		if i+1 < len(c.Legs) && leg.SpeedMps <= 0 {
			return fmt.Errorf("leg %d: speed_mps must be positive, got %f", i, leg.SpeedMps)
		}
		if leg.Sweep < 0 {
			return fmt.Errorf("leg %d: sweep must be non-negative, got %f", i, leg.Sweep)
		}
	}

	if c.Scene != nil {
		if c.Scene.Reflectance != nil && (*c.Scene.Reflectance < 0 || *c.Scene.Reflectance > 1) {
			return fmt.Errorf("scene reflectance must be between 0 and 1, got %f", *c.Scene.Reflectance)
		}
		if c.Scene.Specularity != nil && (*c.Scene.Specularity < 0 || *c.Scene.Specularity > 1) {
			return fmt.Errorf("scene specularity must be between 0 and 1, got %f", *c.Scene.Specularity)
		}
	}

	return nil
}

// GetSurveyName returns the survey_name value or the default.
func (c *RunConfig) GetSurveyName() string {
	if c.SurveyName == nil {
		return "unnamed survey"
	}
	return *c.SurveyName
}

// GetNumRuns returns the num_runs value or the default.
func (c *RunConfig) GetNumRuns() int {
	if c.NumRuns == nil {
		return 1
	}
	return *c.NumRuns
}

// GetStrategy parses and returns the parallelization strategy. Validate
// guarantees the value parses, so an unset or invalid field falls back to
// the chunk strategy.
func (c *RunConfig) GetStrategy() pulse.Strategy {
	if c.Parallelization == nil {
		return pulse.StrategyChunk
	}
	s, err := pulse.ParseStrategy(*c.Parallelization)
	if err != nil {
		return pulse.StrategyChunk
	}
	return s
}

// GetChunkSize returns the chunk_size value or the default.
func (c *RunConfig) GetChunkSize() int {
	if c.ChunkSize == nil {
		return 32
	}
	return *c.ChunkSize
}

// GetWorkers returns the workers value, or zero to let the dispatcher size
// itself from GOMAXPROCS.
func (c *RunConfig) GetWorkers() int {
	if c.Workers == nil {
		return 0
	}
	return *c.Workers
}

// GetCallbackFrequency returns the callback_frequency value or the default.
func (c *RunConfig) GetCallbackFrequency() int {
	if c.CallbackFrequency == nil {
		return 1000
	}
	return *c.CallbackFrequency
}

// GetFixedGpsTimeStart returns the fixed_gps_time_start value or the empty
// string, which means the wall clock decides.
func (c *RunConfig) GetFixedGpsTimeStart() string {
	if c.FixedGpsTimeStart == nil {
		return ""
	}
	return *c.FixedGpsTimeStart
}

// GetSimSpeedFactor returns the sim_speed_factor value or the default.
func (c *RunConfig) GetSimSpeedFactor() float64 {
	if c.SimSpeedFactor == nil {
		return 1.0
	}
	return *c.SimSpeedFactor
}

// GetExportToFile returns the export_to_file value or the default.
func (c *RunConfig) GetExportToFile() bool {
	if c.ExportToFile == nil {
		return false
	}
	return *c.ExportToFile
}

// GetOutputPath returns the output_path value or the default.
func (c *RunConfig) GetOutputPath() string {
	if c.OutputPath == nil {
		return "helios.db"
	}
	return *c.OutputPath
}

// GetPulseFreqHz returns the pulse_freq_hz value or the default.
func (c *RunConfig) GetPulseFreqHz() float64 {
	if c.PulseFreqHz == nil {
		return 100000.0
	}
	return *c.PulseFreqHz
}

// GetHeadRotatePerSecRad returns the head rotation speed in radians per
// second, converting from the configured degrees.
func (c *RunConfig) GetHeadRotatePerSecRad() float64 {
	if c.HeadRotatePerSecDeg == nil {
		return units.DegToRad(3600.0)
	}
	return units.DegToRad(*c.HeadRotatePerSecDeg)
}

// GetSweepUnits returns the angle units leg sweep values are expressed in.
func (c *RunConfig) GetSweepUnits() string {
	if c.SweepUnits == nil {
		return units.Degrees
	}
	return *c.SweepUnits
}

// GetEmittedPowerModel parses and returns the energy model. Validate
// guarantees the value parses.
func (c *RunConfig) GetEmittedPowerModel() energy.Model {
	if c.EmittedPowerModel == nil {
		return energy.ModelCurrent
	}
	m, err := energy.ParseModel(*c.EmittedPowerModel)
	if err != nil {
		return energy.ModelCurrent
	}
	return m
}

// Device assembles the scanner device from the configured values, falling
// back to parameters resembling a 1064 nm airborne survey sensor.
func (c *RunConfig) Device() scan.Device {
	d := scan.Device{
		AveragePowerW:         4.0,
		WavelengthM:           1064e-9,
		BeamWaistRadiusM:      0.002,
		MinRangeM:             1.0,
		ApertureDiameterM:     0.15,
		BeamDivergenceRad:     0.0003,
		EfficiencySys:         0.95,
		AtmosphericExtinction: 0.002,
		PowerThresholdW:       0.0,
	}
	if c.AveragePowerW != nil {
		d.AveragePowerW = *c.AveragePowerW
	}
	if c.WavelengthNm != nil {
		d.WavelengthM = *c.WavelengthNm * 1e-9
	}
	if c.BeamWaistRadiusM != nil {
		d.BeamWaistRadiusM = *c.BeamWaistRadiusM
	}
	if c.MinRangeM != nil {
		d.MinRangeM = *c.MinRangeM
	}
	if c.ApertureDiameterM != nil {
		d.ApertureDiameterM = *c.ApertureDiameterM
	}
	if c.BeamDivergenceMrad != nil {
		d.BeamDivergenceRad = *c.BeamDivergenceMrad * 1e-3
	}
	if c.EfficiencySys != nil {
		d.EfficiencySys = *c.EfficiencySys
	}
	if c.AtmosphericExtinction != nil {
		d.AtmosphericExtinction = *c.AtmosphericExtinction
	}
	if c.PowerThresholdW != nil {
		d.PowerThresholdW = *c.PowerThresholdW
	}
	if c.PowerThresholdDBm != nil {
		d.PowerThresholdW = units.DBmToWatts(*c.PowerThresholdDBm)
	}
	return d
}

// GroundScene assembles the scene from the configured values.
func (c *RunConfig) GroundScene() *scan.GroundScene {
	g := &scan.GroundScene{
		Reflectance:      0.5,
		Specularity:      0.0,
		SpecularExponent: 10.0,
	}
	if c.Scene == nil {
		return g
	}
	if c.Scene.Reflectance != nil {
		g.Reflectance = *c.Scene.Reflectance
	}
	if c.Scene.Specularity != nil {
		g.Specularity = *c.Scene.Specularity
	}
	if c.Scene.SpecularExponent != nil {
		g.SpecularExponent = *c.Scene.SpecularExponent
	}
	return g
}

// Survey assembles the survey from the configured legs.
func (c *RunConfig) Survey() *survey.Survey {
	sv := &survey.Survey{
		Name:           c.GetSurveyName(),
		NumRuns:        c.GetNumRuns(),
		SimSpeedFactor: c.GetSimSpeedFactor(),
	}
	for _, lc := range c.Legs {
		sv.Legs = append(sv.Legs, &survey.Leg{
			Platform: survey.PlatformSettings{
				Position: geom.Vec3{X: lc.X, Y: lc.Y, Z: lc.Z},
				SpeedMps: lc.SpeedMps,
			},
			Scanner: survey.ScannerSettings{
				Active:   lc.ScannerActive,
				SweepRad: units.ToRadians(lc.Sweep, c.GetSweepUnits()),
			},
		})
	}
	sv.CalculateLength()
	return sv
}
