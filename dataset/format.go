// dataset/format.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dataset

import (
	"path"
	"strings"
)

type Format int

const (
	FormatUnknown Format = iota
	FormatCZML
	FormatGeoJSON
	FormatKML
	FormatGPX
)

func (f Format) String() string {
	return []string{"unknown", "czml", "geojson", "kml", "gpx"}[f]
}

// formatNames maps the values accepted for the sourceType option.
var formatNames = map[string]Format{
	"czml":    FormatCZML,
	"geojson": FormatGeoJSON,
	"kml":     FormatKML,
	"gpx":     FormatGPX,
}

// extensions maps trailing URL extensions, compared case-insensitively.
var extensions = map[string]Format{
	".czml":     FormatCZML,
	".geojson":  FormatGeoJSON,
	".json":     FormatGeoJSON,
	".topojson": FormatGeoJSON,
	".kml":      FormatKML,
	".kmz":      FormatKML,
	".gpx":      FormatGPX,
}

// ResolveFormat decides which loader a source URL should go to. An
// explicit sourceType always wins over the extension and is never
// validated against the actual content; with no explicit type the URL's
// trailing extension is looked up case-insensitively.
func ResolveFormat(sourceURL, explicit string) Format {
	if explicit != "" {
		return formatNames[explicit]
	}

	// Strip query/fragment so e.g. "track.kml?v=2" still resolves.
	if i := strings.IndexAny(sourceURL, "?#"); i >= 0 {
		sourceURL = sourceURL[:i]
	}
	return extensions[strings.ToLower(path.Ext(sourceURL))]
}
