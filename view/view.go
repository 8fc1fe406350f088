// view/view.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package view converts between the compact camera-pose string used in
// the view startup option and camera poses, and applies them to the
// active camera.
package view

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kkakarots/geoview/geo"
)

// DefaultHeight is the altitude used when the view string gives only a
// position: high enough to be looking at terrain, not inside it.
const DefaultHeight = 300.0

var viewSeparator = regexp.MustCompile(`[\s,]+`)

// ParseView parses "lon,lat[,height,heading,pitch,roll]" (degrees and
// meters; tokens separated by runs of commas or whitespace). Fewer than
// two tokens means the view is absent and nil is returned. Unparseable
// position tokens fall back to 0 and an unparseable height to
// DefaultHeight, matching the lenient option handling everywhere else;
// orientation angles are converted to radians and left unset when absent
// or malformed so the engine default (straight down) applies.
func ParseView(s string) *geo.CameraPose {
	tokens := viewSeparator.Split(strings.TrimSpace(s), -1)
	if len(tokens) > 0 && tokens[0] == "" {
		tokens = tokens[1:]
	}
	if len(tokens) < 2 {
		return nil
	}

	num := func(i int, def float64) float64 {
		if i >= len(tokens) {
			return def
		}
		if v, err := strconv.ParseFloat(tokens[i], 64); err == nil {
			return v
		}
		return def
	}
	angle := func(i int) *float64 {
		if i >= len(tokens) {
			return nil
		}
		v, err := strconv.ParseFloat(tokens[i], 64)
		if err != nil {
			return nil
		}
		return geo.Ptr(geo.Radians(v))
	}

	return &geo.CameraPose{
		Longitude: num(0, 0),
		Latitude:  num(1, 0),
		Height:    num(2, DefaultHeight),
		Heading:   angle(3),
		Pitch:     angle(4),
		Roll:      angle(5),
	}
}

// FormatView is the inverse of ParseView, used when persisting the live
// camera: degrees/meters, comma separated, orientation included only
// when defined.
func FormatView(pose geo.CameraPose) string {
	var sb strings.Builder
	f := func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}

	sb.WriteString(f(pose.Longitude))
	sb.WriteByte(',')
	sb.WriteString(f(pose.Latitude))
	sb.WriteByte(',')
	sb.WriteString(f(pose.Height))

	if pose.HasOrientation() {
		sb.WriteByte(',')
		sb.WriteString(f(geo.Degrees(*pose.Heading)))
		sb.WriteByte(',')
		sb.WriteString(f(geo.Degrees(*pose.Pitch)))
		sb.WriteByte(',')
		sb.WriteString(f(geo.Degrees(*pose.Roll)))
	}
	return sb.String()
}

// Camera is the part of the engine camera that view application needs.
type Camera interface {
	SetView(geo.CameraPose)
}

// ApplyView sets the camera from the parsed pose. This runs after
// dataset loading so that an explicit view option always overrides any
// fly-to scheduled by the load; a tracked entity set from lookAt is
// independent and not overridden here.
func ApplyView(pose *geo.CameraPose, camera Camera) {
	if pose == nil {
		return
	}
	camera.SetView(*pose)
}
