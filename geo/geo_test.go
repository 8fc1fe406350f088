// geo/geo_test.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"math"
	"testing"
)

func TestToECEF(t *testing.T) {
	// The origin of the geodetic system sits on the equator at the prime
	// meridian, one semi-major axis from the center.
	p := ToECEF(0, 0, 0)
	if math.Abs(p.X-6378137) > 1e-6 || math.Abs(p.Y) > 1e-6 || math.Abs(p.Z) > 1e-6 {
		t.Errorf("origin: %+v", p)
	}

	// 90 degrees east swaps X and Y.
	p = ToECEF(90, 0, 0)
	if math.Abs(p.X) > 1e-6 || math.Abs(p.Y-6378137) > 1e-6 {
		t.Errorf("90E: %+v", p)
	}

	// At the pole only Z is nonzero, at the semi-minor axis.
	p = ToECEF(0, 90, 0)
	if math.Abs(p.X) > 1e-6 || math.Abs(p.Y) > 1e-6 || math.Abs(p.Z-6356752.314245) > 1e-3 {
		t.Errorf("north pole: %+v", p)
	}

	// Height adds along the surface normal; at the equator that is X.
	p = ToECEF(0, 0, 1000)
	if math.Abs(p.X-6379137) > 1e-6 {
		t.Errorf("equator +1000m: %+v", p)
	}
}

func TestFromECEFRoundTrip(t *testing.T) {
	for _, c := range []struct{ lon, lat, h float64 }{
		{30, 10, 1000},
		{-122.3, 47.6, 50},
		{179.9, -89, 0},
	} {
		lon, lat, h := FromECEF(ToECEF(c.lon, c.lat, c.h))
		if math.Abs(lon-c.lon) > 1e-6 || math.Abs(lat-c.lat) > 1e-6 || math.Abs(h-c.h) > 1e-3 {
			t.Errorf("%+v round-tripped to %v, %v, %v", c, lon, lat, h)
		}
	}
}

func TestAngles(t *testing.T) {
	if r := Radians(180); math.Abs(r-math.Pi) > 1e-12 {
		t.Errorf("Radians(180) = %v", r)
	}
	if d := Degrees(math.Pi / 2); math.Abs(d-90) > 1e-12 {
		t.Errorf("Degrees(pi/2) = %v", d)
	}
}

func TestHasOrientation(t *testing.T) {
	p := CameraPose{Longitude: 30, Latitude: 10, Height: 300}
	if p.HasOrientation() {
		t.Errorf("position-only pose claims orientation")
	}
	p.Heading, p.Pitch = Ptr(0), Ptr(-math.Pi/2)
	if p.HasOrientation() {
		t.Errorf("partial orientation should not count")
	}
	p.Roll = Ptr(0)
	if !p.HasOrientation() {
		t.Errorf("full orientation not detected")
	}
}
