// engine/headless.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package engine

import (
	"log/slog"
	"sync"

	"github.com/kkakarots/geoview/dataset"
	"github.com/kkakarots/geoview/events"
	"github.com/kkakarots/geoview/geo"
	"github.com/kkakarots/geoview/log"
)

// flyToMinHeight keeps fly-to destinations from ending up inside
// whatever the dataset is draped over.
const flyToMinHeight = 1000.0

// Headless is the reference Viewer implementation: it maintains all of
// the engine-side state the orchestration layer observes (camera pose,
// attached datasets, tracked entity) without rendering anything. The cmd
// binary and the tests run against it.
type Headless struct {
	opts     Options
	camera   *HeadlessCamera
	datasets *DataSetCollection
	live     *dataset.DataSet
	tracked  *dataset.Entity
	stream   *events.Stream
	lg       *log.Logger
}

// HeadlessCamera holds a pose and posts camera-changed events when it is
// set. The pose is read from the persister's timer goroutine, so access
// is guarded.
type HeadlessCamera struct {
	mu     sync.Mutex
	pose   geo.CameraPose
	stream *events.Stream
}

func NewHeadless(opts Options, stream *events.Stream, lg *log.Logger) (*Headless, error) {
	if stream == nil {
		return nil, ErrNoEventStream
	}
	if opts.CanvasWidth < 0 || opts.CanvasHeight < 0 {
		return nil, ErrInvalidCanvas
	}
	if opts.Terrain != "" && opts.Terrain != "world" && opts.Terrain != "ellipsoid" {
		return nil, ErrUnknownTerrain
	}

	lg.Info("constructing headless viewer",
		slog.Bool("scene3DOnly", opts.Scene3DOnly),
		slog.Bool("baseLayerPicker", opts.BaseLayerPicker),
		slog.Bool("inspector", opts.Inspector),
		slog.Bool("debug", opts.Debug),
		slog.String("baseLayer", opts.BaseLayerURL))

	return &Headless{
		opts:     opts,
		camera:   &HeadlessCamera{stream: stream},
		datasets: NewDataSetCollection(stream),
		live:     dataset.NewDataSet("live"),
		stream:   stream,
		lg:       lg,
	}, nil
}

func (h *Headless) Camera() Camera                 { return h.camera }
func (h *Headless) DataSets() *DataSetCollection   { return h.datasets }
func (h *Headless) Entities() *dataset.DataSet     { return h.live }
func (h *Headless) TrackedEntity() *dataset.Entity { return h.tracked }
func (h *Headless) ConstructedWith() Options       { return h.opts }

func (h *Headless) SetTrackedEntity(e *dataset.Entity) {
	h.tracked = e
	if e != nil {
		h.stream.Post(events.Event{Type: events.TrackedEntityEvent, Source: e.ID})
	}
}

// FlyTo frames the dataset by pointing the camera at the centroid of its
// entity positions from well above.
func (h *Headless) FlyTo(ds *dataset.DataSet) error {
	if ds == nil {
		return ErrNilDataSet
	}

	var sum geo.ECEF
	var n int
	add := func(p geo.ECEF) {
		sum.X += p.X
		sum.Y += p.Y
		sum.Z += p.Z
		n++
	}
	for _, e := range ds.Entities() {
		if e.Position != nil {
			add(*e.Position)
		}
		for _, p := range e.Line {
			add(p)
		}
		if e.Track != nil {
			for _, s := range e.Track.Samples {
				add(s.Position)
			}
		}
	}
	if n == 0 {
		// Nothing to frame; leave the camera alone.
		h.lg.Warnf("%s: fly-to over empty dataset", ds.Name)
		return nil
	}

	lon, lat, alt := geo.FromECEF(geo.ECEF{X: sum.X / float64(n), Y: sum.Y / float64(n), Z: sum.Z / float64(n)})
	h.camera.SetView(geo.CameraPose{
		Longitude: lon,
		Latitude:  lat,
		Height:    max(2*alt, flyToMinHeight),
	})
	return nil
}

func (c *HeadlessCamera) SetView(pose geo.CameraPose) {
	c.mu.Lock()
	c.pose = pose
	c.mu.Unlock()

	c.stream.Post(events.Event{Type: events.CameraChangedEvent, Pose: pose})
}

func (c *HeadlessCamera) Pose() geo.CameraPose {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pose
}

func (c *HeadlessCamera) Changed() *events.Subscription {
	return c.stream.Subscribe()
}

// MemoryHistory is the in-memory History used when there is no browser
// location to write to.
type MemoryHistory struct {
	entries []string
}

func NewMemoryHistory() *MemoryHistory {
	return &MemoryHistory{entries: []string{""}}
}

func (m *MemoryHistory) ReplaceState(query string) {
	m.entries[len(m.entries)-1] = query
}

func (m *MemoryHistory) PushState(query string) {
	m.entries = append(m.entries, query)
}

func (m *MemoryHistory) Current() string {
	return m.entries[len(m.entries)-1]
}

func (m *MemoryHistory) Length() int {
	return len(m.entries)
}
