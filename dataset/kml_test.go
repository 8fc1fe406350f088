// dataset/kml_test.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dataset

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kkakarots/geoview/geo"
)

const kmlDoc = `<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2" xmlns:gx="http://www.google.com/kml/ext/2.2">
  <Document>
    <Placemark id="pin">
      <name>A pin</name>
      <Point><coordinates>30.0,10.0,500</coordinates></Point>
    </Placemark>
    <Placemark id="route">
      <name>A route</name>
      <LineString><coordinates>
        30,10,0 31,11,0 32,10,0
      </coordinates></LineString>
    </Placemark>
    <Placemark id="flight">
      <gx:Track>
        <when>2023-01-01T00:00:00Z</when>
        <gx:coord>30 10 1000</gx:coord>
        <when>2023-01-01T01:00:00Z</when>
        <gx:coord>31 11 1000</gx:coord>
      </gx:Track>
    </Placemark>
  </Document>
</kml>`

func loadKML(t *testing.T, name string, b []byte) *DataSet {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatalf("%v", err)
	}

	ds, err := NewLoader(nil).Load(context.Background(), path, FormatKML, LoadContext{})
	if err != nil {
		t.Fatalf("%v", err)
	}
	return ds
}

func TestParseKML(t *testing.T) {
	ds := loadKML(t, "doc.kml", []byte(kmlDoc))

	if ds.Len() != 3 {
		t.Fatalf("expected 3 entities, got %d", ds.Len())
	}

	pin := ds.GetByID("pin")
	if pin == nil || pin.Position == nil {
		t.Fatalf("pin missing or positionless: %+v", pin)
	}
	want := geo.ToECEF(30, 10, 500)
	if *pin.Position != want {
		t.Errorf("pin at %+v, want %+v", *pin.Position, want)
	}

	route := ds.GetByID("route")
	if route == nil || len(route.Line) != 3 {
		t.Fatalf("route wrong: %+v", route)
	}

	flight := ds.GetByID("flight")
	if flight == nil || flight.Track == nil {
		t.Fatalf("gx:Track not parsed: %+v", flight)
	}
	if len(flight.Track.Samples) != 2 || flight.Track.Samples[1].Offset != 3600 {
		t.Errorf("track samples %+v", flight.Track.Samples)
	}
}

func TestParseKMZ(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("doc.kml")
	if err != nil {
		t.Fatalf("%v", err)
	}
	if _, err := w.Write([]byte(kmlDoc)); err != nil {
		t.Fatalf("%v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("%v", err)
	}

	ds := loadKML(t, "doc.kmz", buf.Bytes())
	if ds.Len() != 3 {
		t.Errorf("KMZ should parse like its KML, got %d entities", ds.Len())
	}
}

func TestParseKMZNoDocument(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	if _, err := zw.Create("image.png"); err != nil {
		t.Fatalf("%v", err)
	}
	zw.Close()

	dir := t.TempDir()
	path := filepath.Join(dir, "empty.kmz")
	os.WriteFile(path, buf.Bytes(), 0o644)

	if _, err := NewLoader(nil).Load(context.Background(), path, FormatKML, LoadContext{}); err == nil {
		t.Errorf("expected an error for a KMZ without a KML entry")
	}
}

func TestExpandViewParameters(t *testing.T) {
	lctx := LoadContext{
		CameraPose:   geo.CameraPose{Longitude: 30, Latitude: 10, Height: 111000},
		CanvasWidth:  800,
		CanvasHeight: 600,
	}
	href := expandViewParameters("http://x/q?bbox=[bboxWest],[bboxSouth],[bboxEast],[bboxNorth]&w=[horizPixels]", lctx)

	if strings.Contains(href, "[") {
		t.Errorf("unsubstituted placeholders in %q", href)
	}
	if !strings.Contains(href, "w=800") {
		t.Errorf("canvas width missing from %q", href)
	}
	if !strings.Contains(href, "29.000000") || !strings.Contains(href, "31.000000") {
		t.Errorf("bbox not centered on the camera: %q", href)
	}
}
