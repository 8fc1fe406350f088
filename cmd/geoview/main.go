// main.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

// This file contains the implementation of the main() function, which
// initializes the viewer against the headless engine and runs the
// startup pipeline until it settles.

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/kkakarots/geoview/app"
	"github.com/kkakarots/geoview/chrome"
	"github.com/kkakarots/geoview/engine"
	"github.com/kkakarots/geoview/events"
	"github.com/kkakarots/geoview/log"
)

var (
	logLevel = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir   = flag.String("logdir", "", "log file directory")
	query    = flag.String("options", "", "startup options query string, e.g. \"source=x.czml&view=30,10\"")
	settle   = flag.Duration("settle", 2*time.Second, "how long to run after startup so camera persistence can settle")
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: geoview [flags] [query-string]\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	// Initialize the logging system first and foremost.
	lg := log.New(*logLevel, *logDir)
	defer lg.CatchAndLogCrash()

	q := *query
	if flag.NArg() > 0 {
		q = flag.Arg(0)
	}

	stream := events.NewStream(lg)
	ch := chrome.NewTerminal(lg)
	history := engine.NewMemoryHistory()

	newViewer := func(opts engine.Options, es *events.Stream, lg *log.Logger) (engine.Viewer, error) {
		return engine.NewHeadless(opts, es, lg)
	}

	b, err := app.Run(context.Background(), q, newViewer, ch, history, stream, lg)
	if err != nil {
		lg.Errorf("startup failed: %v", err)
		os.Exit(1)
	}
	defer b.Shutdown()

	// Give the debounced persister a chance to write the restored view.
	time.Sleep(*settle)

	fmt.Printf("datasets attached: %d\n", b.Viewer.DataSets().Len())
	if e := b.Viewer.TrackedEntity(); e != nil {
		fmt.Printf("tracking entity: %s\n", e.ID)
	}
	fmt.Printf("live entities: %d\n", b.Viewer.Entities().Len())
	fmt.Printf("state: %s\n", history.Current())

	if b.Stats != nil {
		st := b.Stats.Sample()
		fmt.Printf("cpu: %.1f%%  heap: %d MB\n", st.CPUPercent, st.MemoryInUse/(1024*1024))
	}
}
