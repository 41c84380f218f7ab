// Package gpstime derives the simulated GPS time-of-week that timestamps
// every measurement. GPS time is expressed in nanoseconds since the start of
// the current GPS week and wraps every 604800 seconds.
package gpstime

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bhjolly/helios/internal/monitoring"
	"github.com/bhjolly/helios/internal/timeutil"
)

const (
	// EpochOffsetSeconds is the leap-corrected difference between the Unix
	// epoch (1970-01-01) and the GPS epoch (1980-01-06).
	EpochOffsetSeconds int64 = 315964809

	// WeekSeconds is the length of one GPS week.
	WeekSeconds int64 = 604800

	// WeekNanos is one GPS week in nanoseconds.
	WeekNanos float64 = 604800000000000.0

	// calendarLayout is the exact accepted calendar form for fixed start
	// times.
	calendarLayout = "2006-01-02 15:04:05"
)

// CurrentGpsTime returns the GPS time-of-week in nanoseconds for the given
// fixed start specification. An empty fixedStart reads the supplied clock; a
// value containing a colon is parsed as a "YYYY-MM-DD hh:mm:ss" calendar
// datetime in UTC; anything else is parsed as an integer POSIX timestamp.
//
// A malformed value is a configuration error: it is logged with the
// offending literal and returned so the caller can abort startup. It is
// never retried or defaulted.
func CurrentGpsTime(fixedStart string, clock timeutil.Clock) (float64, error) {
	now, err := epochSeconds(fixedStart, clock)
	if err != nil {
		monitoring.Logf(
			"GpsTime: provided GPS start time was %q\n"+
				"Please, ensure the format is either a POSIX timestamp, an empty string\n"+
				"or a datetime with EXACT format: \"YYYY-MM-DD hh:mm:ss\"",
			fixedStart,
		)
		return 0, err
	}

	return float64((now-EpochOffsetSeconds)%WeekSeconds) * 1e9, nil
}

// epochSeconds resolves the fixed start specification to seconds since the
// Unix epoch.
func epochSeconds(fixedStart string, clock timeutil.Clock) (int64, error) {
	if fixedStart == "" {
		return clock.Now().Unix(), nil
	}
	if strings.Contains(fixedStart, ":") {
		t, err := time.ParseInLocation(calendarLayout, fixedStart, time.UTC)
		if err != nil {
			return 0, fmt.Errorf("parse GPS start datetime %q: %w", fixedStart, err)
		}
		return t.Unix(), nil
	}
	secs, err := strconv.ParseInt(fixedStart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse GPS start timestamp %q: %w", fixedStart, err)
	}
	return secs, nil
}

// WrapWeek wraps a GPS time into the current week by subtraction. The step
// loop advances time by far less than one week per step, so at most one
// wraparound can occur; this invariant is relied on here and exercised by
// tests rather than re-checked per step.
func WrapWeek(tNanos float64) float64 {
	if tNanos > WeekNanos {
		tNanos -= WeekNanos
	}
	return tNanos
}
