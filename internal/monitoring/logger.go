// Package monitoring carries the swappable diagnostic logger shared by the
// simulator packages.
package monitoring

import "log"

// Logf is the package-level diagnostic logger. It defaults to log.Printf but
// may be replaced by SetLogger. Tests and quiet CLI runs redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil installs a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Quiet mutes all diagnostic output. Equivalent to SetLogger(nil).
func Quiet() {
	SetLogger(nil)
}
