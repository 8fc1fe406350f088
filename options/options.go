// options/options.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package options parses the viewer's startup query string into a typed
// option bag and serializes it back for persistence into the addressable
// application state.
package options

import (
	"net/url"
	"strings"

	"github.com/iancoleman/orderedmap"
)

// The option names recognized by the startup pipeline. Unrecognized keys
// are preserved across a parse/serialize round trip but otherwise ignored.
const (
	KeySource        = "source"
	KeySourceType    = "sourceType"
	KeyFlyTo         = "flyTo"
	KeyTMSImageryURL = "tmsImageryUrl"
	KeyLookAt        = "lookAt"
	KeyStats         = "stats"
	KeyInspector     = "inspector"
	KeyDebug         = "debug"
	KeyTheme         = "theme"
	KeyScene3DOnly   = "scene3DOnly"
	KeyView          = "view"
	KeySaveCamera    = "saveCamera"
)

// Bag is a mapping from option name to string value, in query-string
// order. Values are never coerced: "true" and "false" stay strings, and
// consumers must go through Enabled/Disabled rather than parsing
// booleans. An option is disabled only by the literal string "false";
// this matches the truthiness convention of the URLs we need to stay
// compatible with.
type Bag struct {
	m *orderedmap.OrderedMap
}

func NewBag() *Bag {
	return &Bag{m: orderedmap.New()}
}

// Parse splits the given query string on '&' and URL-decodes each
// key=value pair. No validation happens here; consuming components are
// expected to tolerate missing or malformed values by falling back to
// their defaults.
func Parse(query string) *Bag {
	b := NewBag()

	query = strings.TrimPrefix(query, "?")
	if query == "" {
		return b
	}

	for _, pair := range strings.Split(query, "&") {
		if pair == "" {
			continue
		}
		key, value, _ := strings.Cut(pair, "=")

		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if v, err := url.QueryUnescape(value); err == nil {
			value = v
		}
		b.m.Set(key, value)
	}
	return b
}

// Serialize is the exact inverse of Parse: for any bag,
// Parse(bag.Serialize()) returns an equal bag.
func (b *Bag) Serialize() string {
	var sb strings.Builder
	for i, key := range b.m.Keys() {
		if i > 0 {
			sb.WriteByte('&')
		}
		value, _ := b.Get(key)
		sb.WriteString(url.QueryEscape(key))
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(value))
	}
	return sb.String()
}

func (b *Bag) Get(key string) (string, bool) {
	v, ok := b.m.Get(key)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Value returns the option's value, or "" if it is not present.
func (b *Bag) Value(key string) string {
	v, _ := b.Get(key)
	return v
}

// Set adds or replaces an option, preserving its position if already
// present.
func (b *Bag) Set(key, value string) {
	b.m.Set(key, value)
}

func (b *Bag) Keys() []string {
	return b.m.Keys()
}

func (b *Bag) Len() int {
	return len(b.m.Keys())
}

// Enabled reports whether the option is present with a non-empty value.
// Note that this is not boolean truthiness: the string "false" is still
// "enabled" in this sense; use Disabled for the opt-out convention.
func (b *Bag) Enabled(key string) bool {
	return b.Value(key) != ""
}

// Disabled reports whether the option is the literal string "false",
// which is the only way an option can be switched off.
func (b *Bag) Disabled(key string) bool {
	return b.Value(key) == "false"
}

// Clone returns an independent copy of the bag.
func (b *Bag) Clone() *Bag {
	c := NewBag()
	for _, key := range b.m.Keys() {
		v, _ := b.Get(key)
		c.m.Set(key, v)
	}
	return c
}

// Equal reports whether two bags hold the same keys in the same order
// with the same values.
func (b *Bag) Equal(o *Bag) bool {
	bk, ok := b.Keys(), o.Keys()
	if len(bk) != len(ok) {
		return false
	}
	for i := range bk {
		if bk[i] != ok[i] || b.Value(bk[i]) != o.Value(ok[i]) {
			return false
		}
	}
	return true
}

// Convenience accessors for the recognized options.

func (b *Bag) Source() string        { return b.Value(KeySource) }
func (b *Bag) SourceType() string    { return b.Value(KeySourceType) }
func (b *Bag) TMSImageryURL() string { return b.Value(KeyTMSImageryURL) }
func (b *Bag) LookAt() string        { return b.Value(KeyLookAt) }
func (b *Bag) Theme() string         { return b.Value(KeyTheme) }
func (b *Bag) View() string          { return b.Value(KeyView) }

func (b *Bag) FlyToDisabled() bool      { return b.Disabled(KeyFlyTo) }
func (b *Bag) SaveCameraDisabled() bool { return b.Disabled(KeySaveCamera) }
func (b *Bag) Stats() bool              { return b.Enabled(KeyStats) }
func (b *Bag) Inspector() bool          { return b.Enabled(KeyInspector) }
func (b *Bag) Debug() bool              { return b.Enabled(KeyDebug) }
func (b *Bag) Scene3DOnly() bool        { return b.Enabled(KeyScene3DOnly) }
