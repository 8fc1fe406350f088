// dataset/kml.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dataset

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kkakarots/geoview/geo"
	"github.com/kkakarots/geoview/util"
)

// parseKML parses KML or KMZ bytes. This is the one loader that uses the
// engine LoadContext: network links with view-dependent refresh get the
// camera's position and canvas size substituted into their href before
// the linked document is fetched.
func (l *Loader) parseKML(ctx context.Context, name string, b []byte, lctx LoadContext) (*DataSet, error) {
	if bytes.HasPrefix(b, []byte("PK\x03\x04")) {
		var err error
		if b, err = unpackKMZ(b); err != nil {
			return nil, err
		}
	}

	ds := NewDataSet(name)
	links, err := parseKMLDocument(ds, bytes.NewReader(b))
	if err != nil {
		return nil, err
	}

	// Resolve view-refreshed network links one level deep; anything a
	// linked document links to in turn is ignored.
	for _, href := range links {
		href = expandViewParameters(href, lctx)
		lb, err := l.fetcher.Fetch(ctx, href)
		if err != nil {
			l.lg.Warnf("%s: network link fetch failed: %v", href, err)
			continue
		}
		if _, err := parseKMLDocument(ds, bytes.NewReader(lb)); err != nil {
			l.lg.Warnf("%s: network link parse failed: %v", href, err)
		}
	}

	return ds, nil
}

// unpackKMZ returns the first .kml entry of a KMZ archive.
func unpackKMZ(b []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return nil, err
	}
	for _, f := range zr.File {
		if strings.EqualFold(strings.TrimPrefix(f.Name, "./"), "doc.kml") ||
			strings.HasSuffix(strings.ToLower(f.Name), ".kml") {
			r, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer r.Close()
			return io.ReadAll(r)
		}
	}
	return nil, ErrNoDocument
}

// parseKMLDocument is a SAX-style streaming parser covering the subset of
// KML the viewer displays: Placemarks with Point or LineString geometry
// and gx:Track time/position pairs. It returns the hrefs of any
// NetworkLinks it encounters.
func parseKMLDocument(ds *DataSet, r io.Reader) ([]string, error) {
	dec := xml.NewDecoder(r)

	var (
		inPlacemark   bool
		inNetworkLink bool
		name, id      string
		point         string
		line          string
		whens         []time.Time
		coords        []geo.ECEF
		links         []string
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("XML decode: %v", err)
		}

		switch el := tok.(type) {
		case xml.StartElement:
			switch el.Name.Local {
			case "Placemark":
				inPlacemark, name, point, line = true, "", "", ""
				whens, coords = nil, nil
				id = ""
				for _, a := range el.Attr {
					if a.Name.Local == "id" {
						id = a.Value
					}
				}
			case "NetworkLink":
				inNetworkLink = true
			case "href":
				if inNetworkLink {
					var href string
					_ = dec.DecodeElement(&href, &el)
					links = append(links, strings.TrimSpace(href))
				}
			case "name":
				if inPlacemark {
					_ = dec.DecodeElement(&name, &el)
				}
			case "coordinates":
				if inPlacemark {
					var c string
					_ = dec.DecodeElement(&c, &el)
					if point == "" {
						point = strings.TrimSpace(c)
					}
					line = strings.TrimSpace(c)
				}
			case "when":
				if inPlacemark {
					var w string
					_ = dec.DecodeElement(&w, &el)
					if t, err := time.Parse(time.RFC3339, strings.TrimSpace(w)); err == nil {
						whens = append(whens, t)
					}
				}
			case "coord":
				if inPlacemark {
					var c string
					_ = dec.DecodeElement(&c, &el)
					// gx:coord is space-separated lon lat alt.
					if p, ok := parseKMLTuple(strings.ReplaceAll(strings.TrimSpace(c), " ", ",")); ok {
						coords = append(coords, p)
					}
				}
			}
		case xml.EndElement:
			switch el.Name.Local {
			case "NetworkLink":
				inNetworkLink = false
			case "Placemark":
				if !inPlacemark {
					continue
				}
				inPlacemark = false
				ds.Add(placemarkEntity(id, name, point, line, whens, coords))
			}
		}
	}

	return links, nil
}

func placemarkEntity(id, name, point, line string, whens []time.Time, coords []geo.ECEF) *Entity {
	e := &Entity{ID: id, Name: name}
	if e.ID == "" {
		e.ID = name
	}

	if len(whens) > 0 && len(whens) == len(coords) {
		// gx:Track: time-tagged samples relative to the first timestamp.
		track := &TrackData{
			Epoch:         whens[0],
			Interpolation: InterpolationSpec{Degree: 1, Algorithm: "LINEAR"},
		}
		for i, w := range whens {
			track.Samples = append(track.Samples,
				PositionSample{Offset: w.Sub(whens[0]).Seconds(), Position: coords[i]})
		}
		e.Track = track
		e.Availability = &util.TimeInterval{whens[0], whens[len(whens)-1]}
		return e
	}

	tuples := strings.Fields(line)
	if len(tuples) > 1 {
		for _, t := range tuples {
			if p, ok := parseKMLTuple(t); ok {
				e.Line = append(e.Line, p)
			}
		}
		return e
	}

	if p, ok := parseKMLTuple(point); ok {
		e.Position = &p
		e.Point = &PointStyle{PixelSize: 5, Color: RGBA{255, 255, 255, 255}}
	}
	return e
}

// parseKMLTuple parses a "lon,lat[,alt]" coordinate tuple.
func parseKMLTuple(s string) (geo.ECEF, bool) {
	parts := strings.Split(s, ",")
	if len(parts) < 2 {
		return geo.ECEF{}, false
	}
	lon, err0 := strconv.ParseFloat(parts[0], 64)
	lat, err1 := strconv.ParseFloat(parts[1], 64)
	if err0 != nil || err1 != nil {
		return geo.ECEF{}, false
	}
	var alt float64
	if len(parts) > 2 {
		alt, _ = strconv.ParseFloat(parts[2], 64)
	}
	return geo.ToECEF(lon, lat, alt), true
}

// expandViewParameters substitutes the Google Earth view-format
// placeholders in a network link href with the current camera state.
func expandViewParameters(href string, lctx LoadContext) string {
	pose := lctx.CameraPose
	// A crude view bounding box centered on the camera; the engine owns
	// the real frustum, which we deliberately don't reach into here.
	halfWidth := util.Clamp(pose.Height/111000, 0.125, 45) // degrees
	repl := strings.NewReplacer(
		"[bboxWest]", formatDegrees(pose.Longitude-halfWidth),
		"[bboxSouth]", formatDegrees(pose.Latitude-halfWidth),
		"[bboxEast]", formatDegrees(pose.Longitude+halfWidth),
		"[bboxNorth]", formatDegrees(pose.Latitude+halfWidth),
		"[lookatLon]", formatDegrees(pose.Longitude),
		"[lookatLat]", formatDegrees(pose.Latitude),
		"[horizPixels]", strconv.Itoa(lctx.CanvasWidth),
		"[vertPixels]", strconv.Itoa(lctx.CanvasHeight),
	)
	return repl.Replace(href)
}

func formatDegrees(d float64) string {
	return strconv.FormatFloat(d, 'f', 6, 64)
}
