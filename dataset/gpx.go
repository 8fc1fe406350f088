// dataset/gpx.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dataset

import (
	"fmt"

	"github.com/tkrajina/gpxgo/gpx"

	"github.com/kkakarots/geoview/geo"
	"github.com/kkakarots/geoview/util"
)

// ParseGPX parses a GPX document. Tracks with per-point timestamps
// become time-tagged tracks; untimed tracks and routes become polylines,
// and waypoints become labeled points.
func ParseGPX(name string, b []byte) (*DataSet, error) {
	g, err := gpx.ParseBytes(b)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GPX file: %w", err)
	}

	ds := NewDataSet(util.Select(g.Name != "", g.Name, name))

	for ti, t := range g.Tracks {
		e := &Entity{
			ID:   util.Select(t.Name != "", t.Name, fmt.Sprintf("track-%d", ti)),
			Name: t.Name,
		}

		var pts []gpx.GPXPoint
		for _, seg := range t.Segments {
			pts = append(pts, seg.Points...)
		}
		if len(pts) == 0 {
			continue
		}

		if timed(pts) {
			track := &TrackData{
				Epoch:         pts[0].Timestamp,
				Interpolation: InterpolationSpec{Degree: 1, Algorithm: "LINEAR"},
			}
			for _, p := range pts {
				track.Samples = append(track.Samples, PositionSample{
					Offset:   p.Timestamp.Sub(pts[0].Timestamp).Seconds(),
					Position: pointToECEF(p),
				})
			}
			e.Track = track
			e.Availability = &util.TimeInterval{pts[0].Timestamp, pts[len(pts)-1].Timestamp}
		} else {
			for _, p := range pts {
				e.Line = append(e.Line, pointToECEF(p))
			}
		}
		ds.Add(e)
	}

	for ri, r := range g.Routes {
		e := &Entity{
			ID:   util.Select(r.Name != "", r.Name, fmt.Sprintf("route-%d", ri)),
			Name: r.Name,
		}
		for _, p := range r.Points {
			e.Line = append(e.Line, pointToECEF(p))
		}
		ds.Add(e)
	}

	for wi, w := range g.Waypoints {
		pos := pointToECEF(w)
		ds.Add(&Entity{
			ID:       util.Select(w.Name != "", w.Name, fmt.Sprintf("waypoint-%d", wi)),
			Name:     w.Name,
			Position: &pos,
			Point:    &PointStyle{PixelSize: 5, Color: RGBA{255, 0, 0, 255}},
		})
	}

	return ds, nil
}

func timed(pts []gpx.GPXPoint) bool {
	for _, p := range pts {
		if p.Timestamp.IsZero() {
			return false
		}
	}
	return len(pts) > 0
}

func pointToECEF(p gpx.GPXPoint) geo.ECEF {
	var elev float64
	if p.Elevation.NotNull() {
		elev = p.Elevation.Value()
	}
	return geo.ToECEF(p.Longitude, p.Latitude, elev)
}
