// engine/engine.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package engine defines the boundary to the 3D globe engine: the viewer,
// its camera, its dataset collection, and the addressable history the
// camera pose is persisted into. Rendering itself is out of scope; the
// orchestration layer only ever talks to these interfaces.
package engine

import (
	"errors"

	"github.com/kkakarots/geoview/dataset"
	"github.com/kkakarots/geoview/events"
	"github.com/kkakarots/geoview/geo"
)

var (
	ErrNoEventStream   = errors.New("Viewer requires an event stream")
	ErrInvalidCanvas   = errors.New("Invalid canvas dimensions")
	ErrNilDataSet      = errors.New("Cannot attach nil dataset")
	ErrUnknownTerrain  = errors.New("Unknown terrain provider")
	ErrDetachedDataSet = errors.New("Dataset is not attached to this viewer")
)

// Options configures viewer construction. BaseLayerURL, when set, names a
// TMS imagery provider to use as the base layer; supplying one disables
// the base layer picker, since the picker would immediately override it.
type Options struct {
	BaseLayerURL    string
	BaseLayerPicker bool
	Scene3DOnly     bool
	Inspector       bool
	// Debug enables strict engine error checking; expect reduced
	// performance.
	Debug        bool
	Terrain      string
	CanvasWidth  int
	CanvasHeight int
}

// Camera is the viewer's single camera. There is one writer at a time
// (startup view resolution or live input); observers consume the changed
// event stream rather than polling.
type Camera interface {
	SetView(geo.CameraPose)
	Pose() geo.CameraPose
	Changed() *events.Subscription
}

// Viewer is the constructed globe engine instance.
type Viewer interface {
	Camera() Camera
	DataSets() *DataSetCollection
	// Entities is the viewer's live default dataset, for entities created
	// in-memory rather than loaded from a source.
	Entities() *dataset.DataSet
	SetTrackedEntity(*dataset.Entity)
	TrackedEntity() *dataset.Entity
	// FlyTo animates the camera to frame the given attached dataset.
	FlyTo(*dataset.DataSet) error
}

// History is the addressable application state the option bag is
// serialized into. ReplaceState must not grow Length.
type History interface {
	ReplaceState(query string)
	PushState(query string)
	Current() string
	Length() int
}

// DataSetCollection owns the datasets attached to a viewer, in attach
// order.
type DataSetCollection struct {
	sets   []*dataset.DataSet
	stream *events.Stream
}

func NewDataSetCollection(stream *events.Stream) *DataSetCollection {
	return &DataSetCollection{stream: stream}
}

// Add attaches the result of a load. It takes the (dataset, error) pair
// straight from a loader so that load failures and attach failures flow
// through the same return; a nil dataset with a nil error is itself an
// attach failure.
func (c *DataSetCollection) Add(ds *dataset.DataSet, err error) (*dataset.DataSet, error) {
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, ErrNilDataSet
	}

	c.sets = append(c.sets, ds)
	c.stream.Post(events.Event{Type: events.DataSetAttachedEvent, Source: ds.Name})
	return ds, nil
}

func (c *DataSetCollection) Remove(ds *dataset.DataSet) error {
	for i, s := range c.sets {
		if s == ds {
			c.sets = append(c.sets[:i], c.sets[i+1:]...)
			return nil
		}
	}
	return ErrDetachedDataSet
}

func (c *DataSetCollection) Len() int {
	return len(c.sets)
}

func (c *DataSetCollection) Get(i int) *dataset.DataSet {
	return c.sets[i]
}
