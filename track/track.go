// track/track.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package track synthesizes a time-tagged moving-object track from an
// ordered list of waypoints, producing an entity ready for direct
// injection into the viewer's live dataset.
package track

import (
	_ "embed"
	"errors"

	"github.com/brunoga/deep"

	"github.com/kkakarots/geoview/dataset"
	"github.com/kkakarots/geoview/geo"
	"github.com/kkakarots/geoview/util"
)

var (
	ErrNoWaypoints    = errors.New("No waypoints provided")
	ErrTimeRegression = errors.New("Waypoint times must be non-decreasing")
)

//go:embed marker.png
var markerImage []byte

// Fixed presentation for synthesized tracks: positions interpolated with
// a 5th-degree Lagrange polynomial in the inertial frame, a billboard
// marker, and an outlined path.
var (
	interpolation = dataset.InterpolationSpec{Degree: 5, Algorithm: "LAGRANGE"}

	defaultBillboard = dataset.BillboardStyle{
		Scale:       1.5,
		PixelOffset: [2]float64{0, -16},
		EyeOffset:   [3]float64{0, 0, -16},
	}

	defaultPath = dataset.PathStyle{
		Width:        3,
		Color:        dataset.RGBA{255, 255, 0, 255},
		OutlineWidth: 1,
		OutlineColor: dataset.RGBA{0, 0, 0, 255},
		Resolution:   120,
	}
)

// Synthesize converts the ordered waypoint sequence into a track entity.
// The first waypoint's time becomes the epoch; each sample's offset is
// the exact time difference from it in seconds, not any
// calendar-approximate hour count. Positions are converted to the fixed
// Cartesian frame and the entity's availability spans first to last
// waypoint.
func Synthesize(id string, waypoints []geo.Waypoint) (*dataset.Entity, error) {
	if len(waypoints) == 0 {
		return nil, ErrNoWaypoints
	}

	epoch := waypoints[0].Time
	td := &dataset.TrackData{
		Epoch:          epoch,
		Interpolation:  interpolation,
		ReferenceFrame: dataset.FrameInertial,
	}

	for i, wp := range waypoints {
		if i > 0 && wp.Time.Before(waypoints[i-1].Time) {
			return nil, ErrTimeRegression
		}
		td.Samples = append(td.Samples, dataset.PositionSample{
			Offset:   wp.Time.Sub(epoch).Seconds(),
			Position: geo.ToECEF(wp.Longitude, wp.Latitude, wp.Height),
		})
	}

	// Styles are copied so that nothing downstream can mutate the shared
	// defaults.
	billboard := deep.MustCopy(defaultBillboard)
	billboard.Image = markerImage
	path := deep.MustCopy(defaultPath)

	return &dataset.Entity{
		ID:           id,
		Name:         id,
		Track:        td,
		Availability: &util.TimeInterval{waypoints[0].Time, waypoints[len(waypoints)-1].Time},
		Billboard:    &billboard,
		Path:         &path,
	}, nil
}
