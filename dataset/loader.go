// dataset/loader.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dataset

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/kkakarots/geoview/geo"
	"github.com/kkakarots/geoview/log"
)

var (
	// ErrUnknownFormat is reported when neither the sourceType option nor
	// the URL extension identifies a loader. The message is part of the
	// user-visible error surface; don't reword it.
	ErrUnknownFormat = errors.New("Unknown format.")

	ErrNoDocument = errors.New("No document found in KMZ archive")
	ErrBadCZML    = errors.New("CZML must be an array of packets")
)

// LoadContext carries engine-specific state that some formats need while
// loading. Only KML uses it, for view-dependent network links; the other
// loaders must work with a zero LoadContext.
type LoadContext struct {
	CameraPose   geo.CameraPose
	CanvasWidth  int
	CanvasHeight int
	// OverlayContainer names the DOM/chrome element that screen overlays
	// from the dataset should be parented to.
	OverlayContainer string
}

// Loader turns a source URL plus resolved format into a DataSet. Parsed
// datasets are kept in a small expiring LRU so that reloading the same
// source (e.g. after a camera-persistence navigation) is cheap.
type Loader struct {
	fetcher *Fetcher
	parsed  *expirable.LRU[string, *DataSet]
	lg      *log.Logger
}

func NewLoader(lg *log.Logger) *Loader {
	return &Loader{
		fetcher: NewFetcher(lg),
		parsed:  expirable.NewLRU[string, *DataSet](16, nil, 5*time.Minute),
		lg:      lg,
	}
}

// Load fetches and parses the given source. An unknown format fails
// immediately, before any network access. Errors are returned to the
// caller, which is responsible for routing them through the uniform
// error-report surface; Load itself never reports.
func (l *Loader) Load(ctx context.Context, sourceURL string, format Format, lctx LoadContext) (*DataSet, error) {
	if format == FormatUnknown {
		return nil, ErrUnknownFormat
	}

	if ds, ok := l.parsed.Get(sourceURL); ok {
		l.lg.Debugf("%s: returning cached dataset", sourceURL)
		return ds, nil
	}

	b, err := l.fetcher.Fetch(ctx, sourceURL)
	if err != nil {
		return nil, err
	}

	var ds *DataSet
	switch format {
	case FormatCZML:
		ds, err = ParseCZML(sourceURL, b)
	case FormatGeoJSON:
		ds, err = ParseGeoJSON(sourceURL, b)
	case FormatKML:
		ds, err = l.parseKML(ctx, sourceURL, b, lctx)
	case FormatGPX:
		ds, err = ParseGPX(sourceURL, b)
	}
	if err != nil {
		return nil, err
	}

	l.lg.Infof("%s: loaded %d entities (%s)", sourceURL, ds.Len(), format)
	l.parsed.Add(sourceURL, ds)
	return ds, nil
}
