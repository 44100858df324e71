//go:build statsview
// +build statsview

package main

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

const statsviewAddress = "localhost:12600"
const statsviewURL = "/debug/statsview"

// launchStatsview starts a new goroutine running the statsview server.
// Graphical statistics are served at localhost:12600/debug/statsview and
// standard Go pprof statistics at localhost:12600/debug/pprof/.
func launchStatsview(output io.Writer) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(statsviewAddress))
		mgr := statsview.New()
		mgr.Start()
	}()

	fmt.Fprintf(output, "stats server available at %s%s\n", statsviewAddress, statsviewURL)
}

// statsviewAvailable returns true if a statsview is available to launch.
func statsviewAvailable() bool {
	return true
}
