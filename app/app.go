// app/app.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package app is the startup orchestrator: it resolves the option bag
// into viewer configuration, loads the optional external dataset,
// restores the camera, wires camera persistence, and injects the demo
// satellite track.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/goforj/godump"

	"github.com/kkakarots/geoview/chrome"
	"github.com/kkakarots/geoview/dataset"
	"github.com/kkakarots/geoview/engine"
	"github.com/kkakarots/geoview/events"
	"github.com/kkakarots/geoview/geo"
	"github.com/kkakarots/geoview/log"
	"github.com/kkakarots/geoview/options"
	"github.com/kkakarots/geoview/persist"
	"github.com/kkakarots/geoview/stats"
	"github.com/kkakarots/geoview/track"
	"github.com/kkakarots/geoview/view"
)

// ViewerConstructor builds the engine instance; it is a parameter so the
// same pipeline runs against any engine implementation.
type ViewerConstructor func(engine.Options, *events.Stream, *log.Logger) (engine.Viewer, error)

// DemoWaypoints is the fixed satellite sample track injected at the end
// of every startup: hourly waypoints at 1000m.
var DemoWaypoints = []geo.Waypoint{
	{Time: time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), Longitude: 30, Latitude: 10, Height: 1000},
	{Time: time.Date(2023, 1, 1, 1, 0, 0, 0, time.UTC), Longitude: 31, Latitude: 11, Height: 1000},
	{Time: time.Date(2023, 1, 1, 2, 0, 0, 0, time.UTC), Longitude: 32, Latitude: 10, Height: 1000},
	{Time: time.Date(2023, 1, 1, 3, 0, 0, 0, time.UTC), Longitude: 33, Latitude: 11, Height: 1000},
}

// Bootstrap is the assembled application after Run.
type Bootstrap struct {
	Bag       *options.Bag
	Viewer    engine.Viewer
	Loader    *dataset.Loader
	Persister *persist.CameraPersister
	Stats     *stats.Sampler
	chrome    chrome.Chrome
	history   engine.History
	stream    *events.Stream
	lg        *log.Logger
}

// Run executes the startup pipeline in order: parse options, construct
// the viewer, load the optional dataset, apply view and theme, wire
// persistence, and inject the demo track. Only viewer construction is
// fatal; every other failure is reported through the chrome and startup
// continues. The steps after the load are sequenced after it settles
// even though most have no data dependency on it: the lookAt-vs-flyTo
// decision must be resolved before camera state is considered settled
// for persistence.
func Run(ctx context.Context, query string, newViewer ViewerConstructor,
	ch chrome.Chrome, history engine.History, stream *events.Stream, lg *log.Logger) (*Bootstrap, error) {
	ch.SetLoadingIndicator(true)
	defer ch.SetLoadingIndicator(false)

	bag := options.Parse(query)

	viewer, err := newViewer(viewerOptions(bag), stream, lg)
	if err != nil {
		// Fatal: without an engine there is nothing to orchestrate.
		ch.ShowLoadError("viewer", err)
		return nil, fmt.Errorf("viewer construction: %w", err)
	}

	b := &Bootstrap{
		Bag:     bag,
		Viewer:  viewer,
		Loader:  dataset.NewLoader(lg),
		chrome:  ch,
		history: history,
		stream:  stream,
		lg:      lg,
	}

	if source := bag.Source(); source != "" {
		b.loadSource(ctx, source)
	}

	if pose := view.ParseView(bag.View()); pose != nil {
		view.ApplyView(pose, viewer.Camera())
	}

	if theme := bag.Theme(); theme != "" {
		if err := ch.ApplyTheme(theme); err != nil {
			ch.ShowLoadError(theme, err)
		}
	}

	if bag.Debug() {
		lg.Debugf("resolved options:\n%s", godump.DumpStr(viewerOptions(bag)))
		lg.Debugf("option bag: %s", bag.Serialize())
	}

	if bag.Stats() {
		b.Stats = stats.NewSampler(lg)
	}

	if !bag.SaveCameraDisabled() {
		b.Persister = persist.New(viewer.Camera(), bag, history, lg)
		b.Persister.Start()
	}

	b.injectDemoTrack()

	return b, nil
}

// viewerOptions maps the option bag onto viewer construction options.
// Supplying a TMS imagery URL replaces the base layer and disables the
// picker, which would otherwise override it on first use.
func viewerOptions(bag *options.Bag) engine.Options {
	return engine.Options{
		BaseLayerURL:    bag.TMSImageryURL(),
		BaseLayerPicker: bag.TMSImageryURL() == "",
		Scene3DOnly:     bag.Scene3DOnly(),
		Inspector:       bag.Inspector(),
		Debug:           bag.Debug(),
		Terrain:         "world",
		CanvasWidth:     1024,
		CanvasHeight:    768,
	}
}

// loadSource runs the load/attach/post-load pipeline for the source
// option. All failures are reported and swallowed; the rest of startup
// never depends on the outcome beyond the post-load camera policy.
func (b *Bootstrap) loadSource(ctx context.Context, source string) {
	format := dataset.ResolveFormat(source, b.Bag.SourceType())

	lctx := dataset.LoadContext{
		CameraPose:       b.Viewer.Camera().Pose(),
		CanvasWidth:      1024,
		CanvasHeight:     768,
		OverlayContainer: "viewer",
	}

	ds, err := b.Viewer.DataSets().Add(b.Loader.Load(ctx, source, format, lctx))
	if err != nil {
		b.chrome.ShowLoadError(source, err)
		return
	}

	b.applyPostLoadPolicy(ds, source)
}

// applyPostLoadPolicy decides the camera action for a successful attach,
// in strict precedence order: lookAt tracking, then fly-to, then
// nothing.
func (b *Bootstrap) applyPostLoadPolicy(ds *dataset.DataSet, source string) {
	if id := b.Bag.LookAt(); id != "" {
		if e := ds.GetByID(id); e != nil {
			b.Viewer.SetTrackedEntity(e)
		} else {
			b.chrome.ShowLoadError(source,
				fmt.Errorf("No entity with id %q exists in the provided data source.", id))
		}
		return
	}

	if !b.Bag.Enabled(options.KeyView) && !b.Bag.FlyToDisabled() {
		if err := b.Viewer.FlyTo(ds); err != nil {
			b.chrome.ShowLoadError(source, err)
		}
	}
}

// injectDemoTrack synthesizes the satellite track and adds it straight
// to the viewer's live entities, bypassing the source loader.
func (b *Bootstrap) injectDemoTrack() {
	e, err := track.Synthesize("satellite", DemoWaypoints)
	if err != nil {
		// The fixed sample can't actually fail, but keep the report path
		// uniform if someone edits the waypoints.
		b.chrome.ShowLoadError("satellite", err)
		return
	}
	b.Viewer.Entities().Add(e)
	b.lg.Infof("injected demo track with %d samples", len(e.Track.Samples))
}

// Shutdown stops background work; safe to call once after Run succeeds.
func (b *Bootstrap) Shutdown() {
	if b.Persister != nil {
		b.Persister.Stop()
	}
}
