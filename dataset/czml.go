// dataset/czml.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dataset

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/kkakarots/geoview/geo"
	"github.com/kkakarots/geoview/util"
)

// czmlPacket is the subset of the CZML packet schema that the viewer
// consumes: identity, availability, position (fixed or sampled), and the
// point/billboard/path presentation blocks.
type czmlPacket struct {
	ID           string         `json:"id"`
	Name         string         `json:"name,omitempty"`
	Version      string         `json:"version,omitempty"`
	Description  string         `json:"description,omitempty"`
	Availability string         `json:"availability,omitempty"`
	Position     *czmlPosition  `json:"position,omitempty"`
	Point        *czmlPoint     `json:"point,omitempty"`
	Billboard    *czmlBillboard `json:"billboard,omitempty"`
	Path         *czmlPath      `json:"path,omitempty"`
}

type czmlPosition struct {
	Epoch                  string    `json:"epoch,omitempty"`
	CartographicDegrees    []float64 `json:"cartographicDegrees,omitempty"`
	Cartesian              []float64 `json:"cartesian,omitempty"`
	InterpolationAlgorithm string    `json:"interpolationAlgorithm,omitempty"`
	InterpolationDegree    int       `json:"interpolationDegree,omitempty"`
	ReferenceFrame         string    `json:"referenceFrame,omitempty"`
}

type czmlColor struct {
	RGBA []int `json:"rgba,omitempty"`
}

type czmlPoint struct {
	PixelSize float64    `json:"pixelSize,omitempty"`
	Color     *czmlColor `json:"color,omitempty"`
}

type czmlBillboard struct {
	Image       string `json:"image,omitempty"`
	Scale       float64
	PixelOffset *struct {
		Cartesian2 []float64 `json:"cartesian2,omitempty"`
	} `json:"pixelOffset,omitempty"`
	EyeOffset *struct {
		Cartesian []float64 `json:"cartesian,omitempty"`
	} `json:"eyeOffset,omitempty"`
}

type czmlPath struct {
	Width      float64       `json:"width,omitempty"`
	Resolution float64       `json:"resolution,omitempty"`
	Material   *czmlMaterial `json:"material,omitempty"`
}

type czmlMaterial struct {
	SolidColor *struct {
		Color *czmlColor `json:"color,omitempty"`
	} `json:"solidColor,omitempty"`
	PolylineOutline *struct {
		Color        *czmlColor `json:"color,omitempty"`
		OutlineColor *czmlColor `json:"outlineColor,omitempty"`
		OutlineWidth float64    `json:"outlineWidth,omitempty"`
	} `json:"polylineOutline,omitempty"`
}

// ParseCZML parses a CZML document (a JSON array of packets) into a
// DataSet. The leading "document" packet supplies the dataset name.
func ParseCZML(name string, b []byte) (*DataSet, error) {
	var packets []czmlPacket
	if err := json.Unmarshal(b, &packets); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCZML, err)
	}

	ds := NewDataSet(name)
	for _, p := range packets {
		if p.ID == "document" || p.Version != "" {
			if p.Name != "" {
				ds.Name = p.Name
			}
			continue
		}

		e := &Entity{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
		}

		if p.Availability != "" {
			if iv, err := parseISOInterval(p.Availability); err == nil {
				e.Availability = &iv
			}
		}

		if p.Position != nil {
			if err := p.Position.apply(e); err != nil {
				return nil, fmt.Errorf("%s: %v", p.ID, err)
			}
		}

		if p.Point != nil {
			e.Point = &PointStyle{
				PixelSize: p.Point.PixelSize,
				Color:     p.Point.Color.toRGBA(),
			}
		}
		if p.Billboard != nil {
			e.Billboard = p.Billboard.toStyle()
		}
		if p.Path != nil {
			e.Path = p.Path.toStyle()
		}

		ds.Add(e)
	}

	return ds, nil
}

func (pos *czmlPosition) apply(e *Entity) error {
	samples, cartographic := pos.Cartesian, false
	if len(pos.CartographicDegrees) > 0 {
		samples, cartographic = pos.CartographicDegrees, true
	}

	if pos.Epoch == "" {
		// Static position: a single lon/lat/height or x/y/z triple.
		if len(samples) != 3 {
			return fmt.Errorf("expected 3 values for static position, got %d", len(samples))
		}
		p := geo.ECEF{X: samples[0], Y: samples[1], Z: samples[2]}
		if cartographic {
			p = geo.ToECEF(samples[0], samples[1], samples[2])
		}
		e.Position = &p
		return nil
	}

	epoch, err := time.Parse(time.RFC3339, pos.Epoch)
	if err != nil {
		return fmt.Errorf("invalid position epoch %q: %v", pos.Epoch, err)
	}
	if len(samples)%4 != 0 || len(samples) == 0 {
		return fmt.Errorf("sampled position length %d is not a multiple of 4", len(samples))
	}

	track := &TrackData{
		Epoch: epoch,
		Interpolation: InterpolationSpec{
			Degree:    max(pos.InterpolationDegree, 1),
			Algorithm: util.Select(pos.InterpolationAlgorithm != "", pos.InterpolationAlgorithm, "LINEAR"),
		},
		ReferenceFrame: util.Select(pos.ReferenceFrame == "INERTIAL", FrameInertial, FrameFixed),
	}
	for i := 0; i < len(samples); i += 4 {
		p := geo.ECEF{X: samples[i+1], Y: samples[i+2], Z: samples[i+3]}
		if cartographic {
			p = geo.ToECEF(samples[i+1], samples[i+2], samples[i+3])
		}
		track.Samples = append(track.Samples, PositionSample{Offset: samples[i], Position: p})
	}
	e.Track = track
	return nil
}

func (c *czmlColor) toRGBA() RGBA {
	if c == nil || len(c.RGBA) != 4 {
		return RGBA{255, 255, 255, 255}
	}
	var r RGBA
	for i, v := range c.RGBA {
		r[i] = uint8(util.Clamp(v, 0, 255))
	}
	return r
}

func (b *czmlBillboard) toStyle() *BillboardStyle {
	s := &BillboardStyle{Scale: b.Scale}
	if s.Scale == 0 {
		s.Scale = 1
	}

	// Images are usually data URIs; anything else is kept verbatim as a
	// reference for the engine to resolve.
	if rest, ok := strings.CutPrefix(b.Image, "data:image/png;base64,"); ok {
		if img, err := base64.StdEncoding.DecodeString(rest); err == nil {
			s.Image = img
		}
	} else {
		s.Image = []byte(b.Image)
	}

	if b.PixelOffset != nil && len(b.PixelOffset.Cartesian2) == 2 {
		s.PixelOffset = [2]float64{b.PixelOffset.Cartesian2[0], b.PixelOffset.Cartesian2[1]}
	}
	if b.EyeOffset != nil && len(b.EyeOffset.Cartesian) == 3 {
		s.EyeOffset = [3]float64{b.EyeOffset.Cartesian[0], b.EyeOffset.Cartesian[1], b.EyeOffset.Cartesian[2]}
	}
	return s
}

func (p *czmlPath) toStyle() *PathStyle {
	s := &PathStyle{Width: p.Width, Resolution: p.Resolution}
	if m := p.Material; m != nil {
		if m.PolylineOutline != nil {
			s.Color = m.PolylineOutline.Color.toRGBA()
			s.OutlineColor = m.PolylineOutline.OutlineColor.toRGBA()
			s.OutlineWidth = m.PolylineOutline.OutlineWidth
		} else if m.SolidColor != nil {
			s.Color = m.SolidColor.Color.toRGBA()
		}
	}
	return s
}

// parseISOInterval parses a "start/end" ISO-8601 interval.
func parseISOInterval(s string) (util.TimeInterval, error) {
	start, end, ok := strings.Cut(s, "/")
	if !ok {
		return util.TimeInterval{}, fmt.Errorf("%q: not an ISO interval", s)
	}
	t0, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return util.TimeInterval{}, err
	}
	t1, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return util.TimeInterval{}, err
	}
	return util.TimeInterval{t0, t1}, nil
}
