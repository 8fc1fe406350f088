// dataset/geojson.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dataset

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/kkakarots/geoview/geo"
)

// ParseGeoJSON parses a GeoJSON FeatureCollection into a DataSet. Note
// that GeoJSON positions carry no height; everything lands on the
// ellipsoid.
func ParseGeoJSON(name string, b []byte) (*DataSet, error) {
	fc, err := geojson.UnmarshalFeatureCollection(b)
	if err != nil {
		return nil, err
	}

	ds := NewDataSet(name)
	for i, f := range fc.Features {
		e := &Entity{
			ID:   featureID(f, i),
			Name: f.Properties.MustString("name", f.Properties.MustString("title", "")),
		}
		if desc := f.Properties.MustString("description", ""); desc != "" {
			e.Description = desc
		}

		addGeometry(ds, e, f.Geometry)
	}

	return ds, nil
}

// featureID prefers the feature's id member, then an "id" property, and
// falls back to the feature's index so that lookAt can address anything.
func featureID(f *geojson.Feature, index int) string {
	switch id := f.ID.(type) {
	case string:
		return id
	case float64:
		return fmt.Sprintf("%v", id)
	}
	if id := f.Properties.MustString("id", ""); id != "" {
		return id
	}
	return fmt.Sprintf("feature-%d", index)
}

func addGeometry(ds *DataSet, e *Entity, g orb.Geometry) {
	switch g := g.(type) {
	case orb.Point:
		p := geo.ToECEF(g.Lon(), g.Lat(), 0)
		e.Position = &p
		e.Point = &PointStyle{PixelSize: 5, Color: RGBA{255, 255, 0, 255}}
	case orb.MultiPoint:
		for i, pt := range g {
			p := geo.ToECEF(pt.Lon(), pt.Lat(), 0)
			sub := *e
			sub.ID = fmt.Sprintf("%s-%d", e.ID, i)
			sub.Position = &p
			sub.Point = &PointStyle{PixelSize: 5, Color: RGBA{255, 255, 0, 255}}
			ds.Add(&sub)
		}
		return
	case orb.LineString:
		e.Line = lineToECEF(g)
	case orb.MultiLineString:
		for i, ls := range g {
			sub := *e
			sub.ID = fmt.Sprintf("%s-%d", e.ID, i)
			sub.Line = lineToECEF(ls)
			ds.Add(&sub)
		}
		return
	case orb.Polygon:
		if len(g) > 0 {
			// Outer ring only; holes are a rendering concern.
			e.Line = lineToECEF(orb.LineString(g[0]))
		}
	case orb.Collection:
		for _, sub := range g {
			addGeometry(ds, e, sub)
		}
		return
	}
	ds.Add(e)
}

func lineToECEF(ls orb.LineString) []geo.ECEF {
	pts := make([]geo.ECEF, 0, len(ls))
	for _, pt := range ls {
		pts = append(pts, geo.ToECEF(pt.Lon(), pt.Lat(), 0))
	}
	return pts
}
