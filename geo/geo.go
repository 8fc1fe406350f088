// geo/geo.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package geo holds the small geodetic vocabulary shared by the rest of
// the system: waypoints, camera poses, and conversion from WGS84
// geodetic coordinates to Earth-centered Cartesian positions.
package geo

import (
	"log/slog"
	"math"
	"time"

	"github.com/StefanSchroeder/Golang-Ellipsoid/ellipsoid"
)

// Waypoint is a single time-tagged position sample; longitude and
// latitude are in degrees, height in meters above the ellipsoid.
type Waypoint struct {
	Time      time.Time
	Longitude float64
	Latitude  float64
	Height    float64
}

// ECEF is an Earth-centered, Earth-fixed Cartesian position in meters.
type ECEF struct {
	X, Y, Z float64
}

// CameraPose gives a camera position in degrees/meters plus an optional
// orientation in radians. Nil orientation fields mean "use the engine's
// default", which is looking straight down.
type CameraPose struct {
	Longitude float64
	Latitude  float64
	Height    float64
	Heading   *float64
	Pitch     *float64
	Roll      *float64
}

// HasOrientation reports whether all three orientation angles are set.
func (p CameraPose) HasOrientation() bool {
	return p.Heading != nil && p.Pitch != nil && p.Roll != nil
}

func (p CameraPose) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Float64("longitude", p.Longitude),
		slog.Float64("latitude", p.Latitude),
		slog.Float64("height", p.Height),
	}
	if p.Heading != nil {
		attrs = append(attrs, slog.Float64("heading", *p.Heading))
	}
	if p.Pitch != nil {
		attrs = append(attrs, slog.Float64("pitch", *p.Pitch))
	}
	if p.Roll != nil {
		attrs = append(attrs, slog.Float64("roll", *p.Roll))
	}
	return slog.GroupValue(attrs...)
}

var wgs84 = ellipsoid.Init("WGS84", ellipsoid.Degrees, ellipsoid.Meter,
	ellipsoid.LongitudeIsSymmetric, ellipsoid.BearingIsSymmetric)

// ToECEF converts a geodetic position (degrees, meters) to Cartesian
// coordinates on the WGS84 ellipsoid.
func ToECEF(longitude, latitude, height float64) ECEF {
	x, y, z := wgs84.ToECEF(latitude, longitude, height)
	return ECEF{X: x, Y: y, Z: z}
}

// FromECEF is the inverse conversion, returning longitude/latitude in
// degrees and height in meters.
func FromECEF(p ECEF) (longitude, latitude, height float64) {
	lat, lon, alt := wgs84.ToLLA(p.X, p.Y, p.Z)
	return lon, lat, alt
}

func Radians(d float64) float64 {
	return d / 180 * math.Pi
}

func Degrees(r float64) float64 {
	return r * 180 / math.Pi
}

// Ptr is a convenience for building optional pose fields.
func Ptr(v float64) *float64 { return &v }
