// app/app_test.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package app

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kkakarots/geoview/chrome"
	"github.com/kkakarots/geoview/engine"
	"github.com/kkakarots/geoview/events"
	"github.com/kkakarots/geoview/log"
)

const czmlSample = `[
  {"id": "document", "name": "sample", "version": "1.0"},
  {"id": "sat-1", "name": "Satellite",
   "position": {"cartographicDegrees": [31.0, 11.0, 2000.0]}}
]`

func headlessConstructor(opts engine.Options, stream *events.Stream, lg *log.Logger) (engine.Viewer, error) {
	return engine.NewHeadless(opts, stream, lg)
}

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.czml")
	if err := os.WriteFile(path, []byte(czmlSample), 0o644); err != nil {
		t.Fatalf("%v", err)
	}
	return path
}

func run(t *testing.T, query string) (*Bootstrap, *chrome.Terminal, *engine.MemoryHistory, error) {
	t.Helper()

	ch := chrome.NewTerminal(nil)
	history := engine.NewMemoryHistory()
	b, err := Run(context.Background(), query, headlessConstructor, ch, history, events.NewStream(nil), nil)
	if b != nil {
		t.Cleanup(b.Shutdown)
	}
	return b, ch, history, err
}

func TestDemoTrackAlwaysInjected(t *testing.T) {
	b, ch, _, err := run(t, "")
	if err != nil {
		t.Fatalf("%v", err)
	}
	if len(ch.Errors()) != 0 {
		t.Errorf("unexpected reports: %v", ch.Errors())
	}

	sat := b.Viewer.Entities().GetByID("satellite")
	if sat == nil || sat.Track == nil {
		t.Fatalf("demo track missing")
	}
	if len(sat.Track.Samples) != 4 {
		t.Errorf("%d samples", len(sat.Track.Samples))
	}
}

func TestLookAtPrecedence(t *testing.T) {
	query := "source=" + url.QueryEscape(writeSample(t)) + "&sourceType=czml&lookAt=sat-1"
	b, ch, _, err := run(t, query)
	if err != nil {
		t.Fatalf("%v", err)
	}
	if len(ch.Errors()) != 0 {
		t.Fatalf("unexpected reports: %v", ch.Errors())
	}

	e := b.Viewer.TrackedEntity()
	if e == nil || e.ID != "sat-1" {
		t.Fatalf("not tracking sat-1: %+v", e)
	}

	// lookAt takes precedence: fly-to must not have moved the camera.
	if pose := b.Viewer.Camera().Pose(); pose.Height != 0 {
		t.Errorf("fly-to was invoked alongside lookAt: %+v", pose)
	}
}

func TestLookAtMissingEntity(t *testing.T) {
	query := "source=" + url.QueryEscape(writeSample(t)) + "&lookAt=ghost"
	b, ch, _, err := run(t, query)
	if err != nil {
		t.Fatalf("%v", err)
	}

	errs := ch.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected 1 report, got %v", errs)
	}
	if want := `No entity with id "ghost" exists in the provided data source.`; !strings.Contains(errs[0].Detail.Error(), want) {
		t.Errorf("report %q, want %q", errs[0].Detail.Error(), want)
	}
	if b.Viewer.TrackedEntity() != nil {
		t.Errorf("tracking changed despite missing entity")
	}
}

func TestFlyToAfterLoad(t *testing.T) {
	b, _, _, err := run(t, "source="+url.QueryEscape(writeSample(t)))
	if err != nil {
		t.Fatalf("%v", err)
	}
	pose := b.Viewer.Camera().Pose()
	if pose.Height == 0 {
		t.Errorf("camera did not fly to the dataset: %+v", pose)
	}
}

func TestFlyToDisabled(t *testing.T) {
	b, _, _, err := run(t, "source="+url.QueryEscape(writeSample(t))+"&flyTo=false")
	if err != nil {
		t.Fatalf("%v", err)
	}
	if pose := b.Viewer.Camera().Pose(); pose.Height != 0 {
		t.Errorf("flyTo=false still moved the camera: %+v", pose)
	}
}

func TestExplicitViewOverridesFlyTo(t *testing.T) {
	query := "source=" + url.QueryEscape(writeSample(t)) + "&view=30,10"
	b, _, _, err := run(t, query)
	if err != nil {
		t.Fatalf("%v", err)
	}

	pose := b.Viewer.Camera().Pose()
	if pose.Longitude != 30 || pose.Latitude != 10 || pose.Height != 300 {
		t.Errorf("explicit view not applied: %+v", pose)
	}
}

func TestUnknownFormatReported(t *testing.T) {
	b, ch, _, err := run(t, "source=data.bin")
	if err != nil {
		t.Fatalf("load failures must not abort startup: %v", err)
	}

	errs := ch.Errors()
	if len(errs) != 1 || !strings.Contains(errs[0].Detail.Error(), "Unknown format.") {
		t.Errorf("reports: %v", errs)
	}
	// Startup continued to the track injection.
	if b.Viewer.Entities().GetByID("satellite") == nil {
		t.Errorf("startup stopped after the load failure")
	}
}

func TestUnknownTheme(t *testing.T) {
	_, ch, _, err := run(t, "theme=foo")
	if err != nil {
		t.Fatalf("%v", err)
	}

	errs := ch.Errors()
	if len(errs) != 1 {
		t.Fatalf("expected exactly 1 report, got %v", errs)
	}
	if errs[0].Name != "foo" || !errors.Is(errs[0].Detail, chrome.ErrUnknownTheme) {
		t.Errorf("report %+v", errs[0])
	}
	if ch.Theme() != "" {
		t.Errorf("styling changed to %q", ch.Theme())
	}
}

func TestLighterTheme(t *testing.T) {
	_, ch, _, err := run(t, "theme=lighter")
	if err != nil {
		t.Fatalf("%v", err)
	}
	if len(ch.Errors()) != 0 {
		t.Errorf("reports: %v", ch.Errors())
	}
	if ch.Theme() != chrome.ThemeLighter {
		t.Errorf("theme %q", ch.Theme())
	}
}

func TestSaveCameraDisabled(t *testing.T) {
	b, _, _, err := run(t, "saveCamera=false")
	if err != nil {
		t.Fatalf("%v", err)
	}
	if b.Persister != nil {
		t.Errorf("persister installed despite saveCamera=false")
	}

	b2, _, _, err := run(t, "")
	if err != nil {
		t.Fatalf("%v", err)
	}
	if b2.Persister == nil {
		t.Errorf("persister should be installed by default")
	}
}

func TestStatsOption(t *testing.T) {
	b, _, _, err := run(t, "stats=1")
	if err != nil {
		t.Fatalf("%v", err)
	}
	if b.Stats == nil {
		t.Errorf("stats sampler not started")
	}

	b2, _, _, _ := run(t, "")
	if b2.Stats != nil {
		t.Errorf("stats sampler started without the option")
	}
}

func TestImageryURLDisablesPicker(t *testing.T) {
	b, _, _, err := run(t, "tmsImageryUrl=http%3A%2F%2Ftiles%2F")
	if err != nil {
		t.Fatalf("%v", err)
	}

	opts := b.Viewer.(*engine.Headless).ConstructedWith()
	if opts.BaseLayerURL != "http://tiles/" {
		t.Errorf("base layer %q", opts.BaseLayerURL)
	}
	if opts.BaseLayerPicker {
		t.Errorf("picker should be disabled when an imagery URL is given")
	}
}

func TestScene3DOnlyForwarded(t *testing.T) {
	b, _, _, err := run(t, "scene3DOnly=true")
	if err != nil {
		t.Fatalf("%v", err)
	}
	if !b.Viewer.(*engine.Headless).ConstructedWith().Scene3DOnly {
		t.Errorf("scene3DOnly not forwarded")
	}
}

func TestConstructionFailureIsFatal(t *testing.T) {
	boom := errors.New("no GL context")
	failing := func(engine.Options, *events.Stream, *log.Logger) (engine.Viewer, error) {
		return nil, boom
	}

	ch := chrome.NewTerminal(nil)
	history := engine.NewMemoryHistory()
	_, err := Run(context.Background(), "", failing, ch, history, events.NewStream(nil), nil)
	if !errors.Is(err, boom) {
		t.Fatalf("got %v", err)
	}

	if len(ch.Errors()) != 1 {
		t.Errorf("construction failure not reported: %v", ch.Errors())
	}
	if ch.Loading() {
		t.Errorf("loading indicator left visible after fatal error")
	}
}
