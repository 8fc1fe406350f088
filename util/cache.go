// util/cache.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

func fullCachePath(path string) (string, error) {
	cd, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cd, "geoview", path), nil
}

// CacheStoreObject saves the given object in the user's cache directory,
// msgpack-encoded and zstd-compressed.
func CacheStoreObject(path string, obj any) error {
	path, err := fullCachePath(path)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return err
	}

	if err := msgpack.NewEncoder(zw).Encode(obj); err != nil {
		return err
	}
	return zw.Close()
}

// CacheRetrieveObject decodes a previously-stored object into obj and
// returns the time it was stored so that callers can decide whether it has
// expired.
func CacheRetrieveObject(path string, obj any) (time.Time, error) {
	path, err := fullCachePath(path)
	if err != nil {
		return time.Time{}, err
	}

	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return time.Time{}, err
	}

	zr, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(0))
	if err != nil {
		return time.Time{}, err
	}
	defer zr.Close()

	return fi.ModTime(), msgpack.NewDecoder(zr).Decode(obj)
}

// CacheCullObjects deletes the least recently modified cached files so
// that the total cache size is (approximately) under maxBytes.
func CacheCullObjects(maxBytes int64) error {
	dir, err := fullCachePath("")
	if err != nil {
		return err
	}

	type cachedFile struct {
		path string
		size int64
		mod  time.Time
	}
	var files []cachedFile
	var totalBytes int64

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		files = append(files, cachedFile{path: path, size: info.Size(), mod: info.ModTime()})
		totalBytes += info.Size()
		return nil
	})
	if err != nil {
		return err
	}

	if totalBytes <= maxBytes {
		return nil
	}

	slices.SortFunc(files, func(a, b cachedFile) int { return a.mod.Compare(b.mod) })

	for _, f := range files {
		if totalBytes <= maxBytes {
			break
		}
		if err := os.Remove(f.path); err != nil {
			return err
		}
		totalBytes -= f.size
	}
	return nil
}
