// dataset/fetch.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package dataset

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kkakarots/geoview/log"
	"github.com/kkakarots/geoview/util"
)

const fetchTimeout = 30 * time.Second

// cachedFetchExpiry bounds how stale a cached remote dataset may be
// before we go back to the network.
const cachedFetchExpiry = 15 * time.Minute

// cacheMaxBytes is the total on-disk cache budget; least recently
// stored sources are culled past it.
const cacheMaxBytes = 64 * 1024 * 1024

// Fetcher retrieves raw dataset bytes from http(s) URLs or local paths.
// Remote fetches are deduplicated so that concurrent requests for the
// same URL share one transfer, and responses are cached on disk in the
// user's cache directory.
type Fetcher struct {
	client *http.Client
	group  singleflight.Group
	lg     *log.Logger
}

func NewFetcher(lg *log.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: fetchTimeout},
		lg:     lg,
	}
}

func isRemote(sourceURL string) bool {
	u, err := url.Parse(sourceURL)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// Fetch returns the contents of the given source. Local paths are read
// directly; remote URLs go through the on-disk cache.
func (f *Fetcher) Fetch(ctx context.Context, sourceURL string) ([]byte, error) {
	if !isRemote(sourceURL) {
		return os.ReadFile(sourceURL)
	}

	b, err, shared := f.group.Do(sourceURL, func() (any, error) {
		return f.fetchRemote(ctx, sourceURL)
	})
	if shared {
		f.lg.Debugf("%s: shared in-flight fetch", sourceURL)
	}
	if err != nil {
		return nil, err
	}
	return b.([]byte), nil
}

func cacheKey(sourceURL string) string {
	h := sha256.Sum256([]byte(sourceURL))
	return "sources/" + hex.EncodeToString(h[:16])
}

func (f *Fetcher) fetchRemote(ctx context.Context, sourceURL string) ([]byte, error) {
	var cached []byte
	if mod, err := util.CacheRetrieveObject(cacheKey(sourceURL), &cached); err == nil {
		if time.Since(mod) < cachedFetchExpiry {
			f.lg.Debugf("%s: returning %d cached bytes", sourceURL, len(cached))
			return cached, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %s", sourceURL, resp.Status)
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if err := util.CacheStoreObject(cacheKey(sourceURL), b); err != nil {
		// Cache misses are harmless; don't fail the load over one.
		f.lg.Warnf("%s: unable to cache: %v", sourceURL, err)
	} else if err := util.CacheCullObjects(cacheMaxBytes); err != nil {
		f.lg.Warnf("cache cull: %v", err)
	}

	return b, nil
}
