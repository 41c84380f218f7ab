package sqlite

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/bhjolly/helios/internal/geom"
	"github.com/bhjolly/helios/internal/monitoring"
	"github.com/bhjolly/helios/internal/scan"
)

func init() {
	monitoring.Quiet()
}

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "helios.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestWriteAndReadBack(t *testing.T) {
	store := openTestStore(t)

	runID, err := store.BeginRun("strip survey")
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	ms := []scan.Measurement{
		{LegIndex: 0, GpsTimeNs: 1e9, Hit: geom.Vec3{X: 1, Y: 2, Z: 0}, RangeM: 100, IncidenceRad: 0.1, EmittedPowerW: 4, ReceivedPowerW: 1e-9},
		{LegIndex: 0, GpsTimeNs: 2e9, Hit: geom.Vec3{X: 2, Y: 2, Z: 0}, RangeM: 101, IncidenceRad: 0.2, EmittedPowerW: 4, ReceivedPowerW: 2e-9},
		{LegIndex: 1, GpsTimeNs: 3e9, Hit: geom.Vec3{X: 3, Y: 2, Z: 0}, RangeM: 102, IncidenceRad: 0.3, EmittedPowerW: 4, ReceivedPowerW: 3e-9},
	}
	ts := []scan.TrajectorySample{
		{LegIndex: 0, GpsTimeNs: 1e9, Position: geom.Vec3{Z: 400}},
		{LegIndex: 0, GpsTimeNs: 2e9, Position: geom.Vec3{X: 1, Z: 400}},
	}
	require.NoError(t, store.WriteCycle(runID, ms, ts))

	got, err := store.Measurements(runID)
	require.NoError(t, err)
	require.Equal(t, ms, got)

	powers, err := store.ReceivedPowers(runID)
	require.NoError(t, err)
	require.Equal(t, []float64{1e-9, 2e-9, 3e-9}, powers)

	runs, err := store.Runs()
	require.NoError(t, err)
	require.Len(t, runs, 1)
	require.Equal(t, runID, runs[0].ID)
	require.Equal(t, "strip survey", runs[0].SurveyName)
	require.Equal(t, 3, runs[0].Measurements)
	require.Equal(t, 2, runs[0].Trajectories)
}

func TestRunsAreIsolated(t *testing.T) {
	store := openTestStore(t)

	first, err := store.BeginRun("first")
	require.NoError(t, err)
	second, err := store.BeginRun("second")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	require.NoError(t, store.WriteMeasurements(first, []scan.Measurement{{RangeM: 50, ReceivedPowerW: 1e-9}}))
	require.NoError(t, store.WriteMeasurements(second, []scan.Measurement{
		{RangeM: 60, ReceivedPowerW: 2e-9},
		{RangeM: 61, ReceivedPowerW: 3e-9},
	}))

	powers, err := store.ReceivedPowers(first)
	require.NoError(t, err)
	require.Equal(t, []float64{1e-9}, powers)

	powers, err = store.ReceivedPowers(second)
	require.NoError(t, err)
	require.Len(t, powers, 2)
}

func TestEmptyBatchesAreNoOps(t *testing.T) {
	store := openTestStore(t)

	runID, err := store.BeginRun("empty")
	require.NoError(t, err)
	require.NoError(t, store.WriteMeasurements(runID, nil))
	require.NoError(t, store.WriteTrajectories(runID, nil))

	ms, err := store.Measurements(runID)
	require.NoError(t, err)
	require.Empty(t, ms)
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "helios.db")

	store, err := Open(path)
	require.NoError(t, err)
	runID, err := store.BeginRun("persisted")
	require.NoError(t, err)
	require.NoError(t, store.WriteMeasurements(runID, []scan.Measurement{{RangeM: 42}}))
	require.NoError(t, store.Close())

	// Reopening applies no further migrations and sees the same data.
	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	ms, err := store.Measurements(runID)
	require.NoError(t, err)
	require.Len(t, ms, 1)
	require.Equal(t, 42.0, ms[0].RangeM)
	require.Equal(t, path, store.Path())
}
