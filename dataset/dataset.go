// dataset/dataset.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package dataset implements loading of external geospatial datasets:
// format auto-detection, per-format parsers, and the dataset/entity model
// that the viewer's collections hold once a load has been attached.
package dataset

import (
	"log/slog"
	"time"

	"github.com/kkakarots/geoview/geo"
	"github.com/kkakarots/geoview/util"
)

// DataSet is a loaded collection of geospatial entities from a single
// source. It is immutable once attached to the viewer's dataset
// collection.
type DataSet struct {
	Name     string
	entities []*Entity
	byID     map[string]*Entity
}

func NewDataSet(name string) *DataSet {
	return &DataSet{
		Name: name,
		byID: make(map[string]*Entity),
	}
}

// Add appends an entity. Entities without an id are still listed but
// cannot be looked up.
func (d *DataSet) Add(e *Entity) {
	d.entities = append(d.entities, e)
	if e.ID != "" {
		d.byID[e.ID] = e
	}
}

// GetByID returns the entity with the given id, or nil if there is none.
func (d *DataSet) GetByID(id string) *Entity {
	return d.byID[id]
}

func (d *DataSet) Entities() []*Entity {
	return d.entities
}

func (d *DataSet) Len() int {
	return len(d.entities)
}

func (d *DataSet) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("name", d.Name),
		slog.Int("entities", len(d.entities)))
}

// Entity is one addressable geospatial object within a dataset: a static
// point, a polyline, or a time-varying track.
type Entity struct {
	ID          string
	Name        string
	Description string

	// Static geometry; at most one of these is set alongside Track.
	Position *geo.ECEF
	Line     []geo.ECEF

	// Track holds time-tagged positions for moving entities.
	Track        *TrackData
	Availability *util.TimeInterval

	Point     *PointStyle
	Billboard *BillboardStyle
	Path      *PathStyle
}

// PositionSample is one (secondsSinceEpoch, position) sample of a track.
type PositionSample struct {
	Offset   float64 // seconds since the track's epoch
	Position geo.ECEF
}

// ReferenceFrame selects the frame that track positions are expressed in.
type ReferenceFrame int

const (
	// FrameFixed is the Earth-fixed (rotating) frame.
	FrameFixed ReferenceFrame = iota
	// FrameInertial is the non-rotating frame; tracks synthesized from
	// waypoints use it so that interpolation doesn't fight Earth
	// rotation.
	FrameInertial
)

func (f ReferenceFrame) String() string {
	return []string{"Fixed", "Inertial"}[f]
}

// InterpolationSpec describes how positions between samples are derived.
type InterpolationSpec struct {
	Degree    int
	Algorithm string
}

// TrackData holds a strictly time-ordered sequence of position samples
// relative to a single epoch.
type TrackData struct {
	Epoch          time.Time
	Samples        []PositionSample
	Interpolation  InterpolationSpec
	ReferenceFrame ReferenceFrame
}

// At returns the sample offsets bracketing t, for callers that want to
// interpolate; ok is false outside the sampled range.
func (t *TrackData) Bracket(at time.Time) (lo, hi PositionSample, ok bool) {
	offset := at.Sub(t.Epoch).Seconds()
	for i := 1; i < len(t.Samples); i++ {
		if t.Samples[i].Offset >= offset && t.Samples[i-1].Offset <= offset {
			return t.Samples[i-1], t.Samples[i], true
		}
	}
	return PositionSample{}, PositionSample{}, false
}

// RGBA is an 8-bit color.
type RGBA [4]uint8

type PointStyle struct {
	PixelSize float64
	Color     RGBA
}

type BillboardStyle struct {
	// Image is the raw encoded image shown for the marker.
	Image       []byte
	Scale       float64
	PixelOffset [2]float64
	EyeOffset   [3]float64
}

type PathStyle struct {
	Width        float64
	Color        RGBA
	OutlineWidth float64
	OutlineColor RGBA
	Resolution   float64 // seconds between evaluated path points
}
