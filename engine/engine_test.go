// engine/engine_test.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package engine

import (
	"errors"
	"sync"
	"testing"

	"github.com/kkakarots/geoview/dataset"
	"github.com/kkakarots/geoview/events"
	"github.com/kkakarots/geoview/geo"
)

func newTestViewer(t *testing.T) (*Headless, *events.Stream) {
	t.Helper()
	stream := events.NewStream(nil)
	h, err := NewHeadless(Options{CanvasWidth: 1024, CanvasHeight: 768}, stream, nil)
	if err != nil {
		t.Fatalf("%v", err)
	}
	return h, stream
}

func TestNewHeadlessValidation(t *testing.T) {
	if _, err := NewHeadless(Options{}, nil, nil); !errors.Is(err, ErrNoEventStream) {
		t.Errorf("nil stream: got %v", err)
	}

	stream := events.NewStream(nil)
	if _, err := NewHeadless(Options{CanvasWidth: -1}, stream, nil); !errors.Is(err, ErrInvalidCanvas) {
		t.Errorf("negative canvas: got %v", err)
	}
	if _, err := NewHeadless(Options{Terrain: "flat"}, stream, nil); !errors.Is(err, ErrUnknownTerrain) {
		t.Errorf("bogus terrain: got %v", err)
	}
	if _, err := NewHeadless(Options{Terrain: "ellipsoid"}, stream, nil); err != nil {
		t.Errorf("ellipsoid terrain: got %v", err)
	}
}

func TestDataSetCollection(t *testing.T) {
	_, stream := newTestViewer(t)
	sub := stream.Subscribe()
	c := NewDataSetCollection(stream)

	// The error side of a load passes straight through and nothing is
	// attached.
	boom := errors.New("load failed")
	if _, err := c.Add(nil, boom); !errors.Is(err, boom) {
		t.Errorf("got %v", err)
	}
	if _, err := c.Add(nil, nil); !errors.Is(err, ErrNilDataSet) {
		t.Errorf("got %v", err)
	}
	if c.Len() != 0 {
		t.Errorf("failed loads were attached: %d", c.Len())
	}
	if len(sub.Get()) != 0 {
		t.Errorf("events posted for failed attaches")
	}

	ds := dataset.NewDataSet("routes")
	got, err := c.Add(ds, nil)
	if err != nil || got != ds {
		t.Fatalf("got %v, %v", got, err)
	}
	if c.Len() != 1 || c.Get(0) != ds {
		t.Errorf("dataset not attached")
	}

	evs := sub.Get()
	if len(evs) != 1 || evs[0].Type != events.DataSetAttachedEvent || evs[0].Source != "routes" {
		t.Errorf("events %v", evs)
	}

	if err := c.Remove(ds); err != nil {
		t.Errorf("%v", err)
	}
	if err := c.Remove(ds); !errors.Is(err, ErrDetachedDataSet) {
		t.Errorf("double remove: got %v", err)
	}
}

func TestCameraEvents(t *testing.T) {
	h, _ := newTestViewer(t)
	sub := h.Camera().Changed()

	pose := geo.CameraPose{Longitude: 30, Latitude: 10, Height: 300}
	h.Camera().SetView(pose)

	if got := h.Camera().Pose(); got != pose {
		t.Errorf("pose %+v", got)
	}

	evs := sub.Get()
	if len(evs) != 1 || evs[0].Type != events.CameraChangedEvent || evs[0].Pose != pose {
		t.Errorf("events %v", evs)
	}
}

func TestFlyTo(t *testing.T) {
	h, _ := newTestViewer(t)

	if err := h.FlyTo(nil); !errors.Is(err, ErrNilDataSet) {
		t.Errorf("got %v", err)
	}

	// An empty dataset leaves the camera alone.
	empty := dataset.NewDataSet("empty")
	if err := h.FlyTo(empty); err != nil {
		t.Errorf("%v", err)
	}
	if pose := h.Camera().Pose(); pose.Height != 0 {
		t.Errorf("camera moved for empty dataset: %+v", pose)
	}

	ds := dataset.NewDataSet("pins")
	p := geo.ToECEF(31, 11, 2000)
	ds.Add(&dataset.Entity{ID: "pin", Position: &p})
	if err := h.FlyTo(ds); err != nil {
		t.Fatalf("%v", err)
	}

	pose := h.Camera().Pose()
	if pose.Longitude < 30.9 || pose.Longitude > 31.1 || pose.Latitude < 10.9 || pose.Latitude > 11.1 {
		t.Errorf("centroid off: %+v", pose)
	}
	if pose.Height < flyToMinHeight {
		t.Errorf("height %v below floor", pose.Height)
	}
}

func TestCameraConcurrentAccess(t *testing.T) {
	// The persister samples the pose from its timer goroutine while the
	// main thread moves the camera; reads must never observe a pose torn
	// between two writes.
	h, _ := newTestViewer(t)
	camera := h.Camera()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			v := float64(i % 90)
			camera.SetView(geo.CameraPose{Longitude: v, Latitude: v, Height: v})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			pose := camera.Pose()
			if pose.Longitude != pose.Latitude || pose.Latitude != pose.Height {
				t.Errorf("torn pose: %+v", pose)
				return
			}
		}
	}()
	wg.Wait()
}

func TestTrackedEntityEvent(t *testing.T) {
	h, stream := newTestViewer(t)
	sub := stream.Subscribe()

	e := &dataset.Entity{ID: "sat-1"}
	h.SetTrackedEntity(e)
	if h.TrackedEntity() != e {
		t.Errorf("not tracking")
	}

	evs := sub.Get()
	if len(evs) != 1 || evs[0].Type != events.TrackedEntityEvent || evs[0].Source != "sat-1" {
		t.Errorf("events %v", evs)
	}

	// Clearing the tracked entity is silent.
	h.SetTrackedEntity(nil)
	if h.TrackedEntity() != nil || len(sub.Get()) != 0 {
		t.Errorf("clearing posted an event")
	}
}

func TestMemoryHistory(t *testing.T) {
	m := NewMemoryHistory()
	if m.Length() != 1 || m.Current() != "" {
		t.Fatalf("fresh history: len %d current %q", m.Length(), m.Current())
	}

	m.ReplaceState("a=1")
	m.ReplaceState("a=2")
	if m.Length() != 1 {
		t.Errorf("ReplaceState grew history to %d", m.Length())
	}
	if m.Current() != "a=2" {
		t.Errorf("current %q", m.Current())
	}

	m.PushState("b=1")
	if m.Length() != 2 || m.Current() != "b=1" {
		t.Errorf("push: len %d current %q", m.Length(), m.Current())
	}
}
