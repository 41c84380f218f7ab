package units

import (
	"math"
	"testing"
)

func TestIsValidAngleUnit(t *testing.T) {
	testCases := []struct {
		unit  string
		valid bool
	}{
		{Radians, true},
		{Degrees, true},
		{Milliradians, true},
		{"grad", false},
		{"", false},
		{"DEG", false},
	}

	for _, tc := range testCases {
		if got := IsValidAngleUnit(tc.unit); got != tc.valid {
			t.Errorf("IsValidAngleUnit(%q) = %v, want %v", tc.unit, got, tc.valid)
		}
	}
}

func TestDegRadRoundTrip(t *testing.T) {
	for _, deg := range []float64{0, 45, 90, 180, 360, -30} {
		back := RadToDeg(DegToRad(deg))
		if math.Abs(back-deg) > 1e-12 {
			t.Errorf("round trip %v deg = %v", deg, back)
		}
	}
	if got := DegToRad(180); math.Abs(got-math.Pi) > 1e-15 {
		t.Errorf("DegToRad(180) = %v, want pi", got)
	}
}

func TestConvertAngle(t *testing.T) {
	testCases := []struct {
		name   string
		rad    float64
		units  string
		expect float64
	}{
		{"to_degrees", math.Pi, Degrees, 180},
		{"to_milliradians", 0.5, Milliradians, 500},
		{"to_radians", 1.25, Radians, 1.25},
		{"unknown_unit_defaults_to_radians", 1.25, "furlongs", 1.25},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ConvertAngle(tc.rad, tc.units); math.Abs(got-tc.expect) > 1e-12 {
				t.Errorf("ConvertAngle(%v, %q) = %v, want %v", tc.rad, tc.units, got, tc.expect)
			}
		})
	}
}

func TestToRadians(t *testing.T) {
	testCases := []struct {
		name   string
		value  float64
		units  string
		expect float64
	}{
		{"from_degrees", 180, Degrees, math.Pi},
		{"from_milliradians", 500, Milliradians, 0.5},
		{"from_radians", 1.25, Radians, 1.25},
		{"unknown_unit_defaults_to_radians", 1.25, "furlongs", 1.25},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ToRadians(tc.value, tc.units); math.Abs(got-tc.expect) > 1e-12 {
				t.Errorf("ToRadians(%v, %q) = %v, want %v", tc.value, tc.units, got, tc.expect)
			}
		})
	}
}

func TestConvertAngleRoundTrip(t *testing.T) {
	for _, unit := range ValidAngleUnits {
		back := ToRadians(ConvertAngle(0.7, unit), unit)
		if math.Abs(back-0.7) > 1e-12 {
			t.Errorf("round trip through %q = %v, want 0.7", unit, back)
		}
	}
}

func TestWattsToDBm(t *testing.T) {
	// 1 mW is 0 dBm by definition
	if got := WattsToDBm(0.001); math.Abs(got) > 1e-12 {
		t.Errorf("WattsToDBm(1mW) = %v, want 0", got)
	}
	// 1 W is 30 dBm
	if got := WattsToDBm(1.0); math.Abs(got-30) > 1e-12 {
		t.Errorf("WattsToDBm(1W) = %v, want 30", got)
	}
	if got := WattsToDBm(0); !math.IsInf(got, -1) {
		t.Errorf("WattsToDBm(0) = %v, want -Inf", got)
	}
}

func TestDBmToWattsRoundTrip(t *testing.T) {
	for _, w := range []float64{1e-12, 1e-9, 0.001, 1.0} {
		back := DBmToWatts(WattsToDBm(w))
		if math.Abs(back-w)/w > 1e-9 {
			t.Errorf("round trip %v W = %v", w, back)
		}
	}
}
