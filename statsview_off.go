//go:build !statsview
// +build !statsview

package main

import "io"

// This binary was built without the statsview build constraint.
func launchStatsview(output io.Writer) {
}

func statsviewAvailable() bool {
	return false
}
