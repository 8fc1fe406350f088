// chrome/chrome.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package chrome is the viewer's surrounding surface: the load-error
// panel, the startup loading indicator, and theming. Every user-visible
// error in the system funnels through ShowLoadError so presentation is
// uniform.
package chrome

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/kkakarots/geoview/log"
)

// ErrUnknownTheme is reported for any theme option value other than
// "lighter". The message is user-visible.
var ErrUnknownTheme = errors.New("Unknown theme.")

// Themes recognized by ApplyTheme. The default (dark) theme needs no
// option at all.
const ThemeLighter = "lighter"

// Chrome is what the startup pipeline needs from the surrounding UI.
type Chrome interface {
	// ShowLoadError presents an error panel titled with the source name.
	// It must never panic; startup continues after any number of
	// reports.
	ShowLoadError(name string, detail error)
	SetLoadingIndicator(visible bool)
	// ApplyTheme switches the document theme; "" is a no-op and only
	// "lighter" is recognized. On an unrecognized value the styling is
	// left untouched and ErrUnknownTheme returned.
	ApplyTheme(theme string) error
}

// LoadError is one reported failure, retained for inspection.
type LoadError struct {
	Name   string
	Detail error
}

func (e LoadError) Error() string {
	return fmt.Sprintf("An error occurred while loading the file: %s\n%v", e.Name, e.Detail)
}

// Terminal is the Chrome implementation for headless runs: panels become
// stderr output and the indicator/theme are plain state.
type Terminal struct {
	mu      sync.Mutex
	lg      *log.Logger
	errors  []LoadError
	loading bool
	theme   string
}

func NewTerminal(lg *log.Logger) *Terminal {
	return &Terminal{lg: lg, loading: true}
}

func (t *Terminal) ShowLoadError(name string, detail error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := LoadError{Name: name, Detail: detail}
	t.errors = append(t.errors, e)

	fmt.Fprintln(os.Stderr, e.Error())
	t.lg.Errorf("%s: load error: %v", name, detail)
}

func (t *Terminal) SetLoadingIndicator(visible bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.loading = visible
}

func (t *Terminal) ApplyTheme(theme string) error {
	if theme == "" {
		return nil
	}
	if theme != ThemeLighter {
		return ErrUnknownTheme
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.theme = theme
	return nil
}

func (t *Terminal) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

func (t *Terminal) Theme() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.theme
}

// Errors returns the reported load errors in order.
func (t *Terminal) Errors() []LoadError {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]LoadError(nil), t.errors...)
}
