// persist/persist.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package persist keeps the camera pose written back into the option bag
// and the addressable application state as the user navigates.
package persist

import (
	"log/slog"
	"sync"
	"time"

	"github.com/kkakarots/geoview/engine"
	"github.com/kkakarots/geoview/events"
	"github.com/kkakarots/geoview/log"
	"github.com/kkakarots/geoview/options"
	"github.com/kkakarots/geoview/view"
)

// DefaultDelay is the quiet window after the last camera change before
// the pose is persisted.
const DefaultDelay = time.Second

// CameraPersister watches the camera's change events and, debounced,
// serializes the current pose into the option bag's view entry and
// replaces the current history entry with the bag's full serialization.
// History length never grows: persistence must not pollute the user's
// back button.
//
// The debounce is a single cancellable timer: each change event restarts
// it, so a burst of events separated by less than the delay produces
// exactly one write, one delay after the burst ends.
type CameraPersister struct {
	mu      sync.Mutex
	camera  engine.Camera
	bag     *options.Bag
	history engine.History
	sub     *events.Subscription
	timer   *time.Timer
	delay   time.Duration
	writes  int
	stopped bool
	done    chan struct{}
	wg      sync.WaitGroup
	lg      *log.Logger
}

func New(camera engine.Camera, bag *options.Bag, history engine.History, lg *log.Logger) *CameraPersister {
	return &CameraPersister{
		camera:  camera,
		bag:     bag,
		history: history,
		delay:   DefaultDelay,
		lg:      lg,
	}
}

// SetDelay overrides the debounce delay; it must be called before Start.
func (p *CameraPersister) SetDelay(d time.Duration) {
	p.delay = d
}

// Start subscribes to the camera's change stream and begins watching for
// changes.
func (p *CameraPersister) Start() {
	p.sub = p.camera.Changed()
	p.done = make(chan struct{})

	poll := p.delay / 10
	if poll > 50*time.Millisecond {
		poll = 50 * time.Millisecond
	}

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ticker := time.NewTicker(poll)
		defer ticker.Stop()
		for {
			select {
			case <-p.done:
				return
			case <-ticker.C:
				for _, ev := range p.sub.Get() {
					if ev.Type == events.CameraChangedEvent {
						p.bump()
					}
				}
			}
		}
	}()
}

// Stop cancels any pending write and stops watching the camera. The
// poller goroutine must have exited before the subscription is torn
// down; it may be inside Get when done is closed.
func (p *CameraPersister) Stop() {
	close(p.done)
	p.wg.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopped = true
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.sub.Unsubscribe()
}

// bump restarts the debounce timer; only the most recent change within a
// quiet window is ever persisted.
func (p *CameraPersister) bump() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(p.delay, p.persist)
}

func (p *CameraPersister) persist() {
	pose := p.camera.Pose()
	v := view.FormatView(pose)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		// The timer won the race with Stop; the write is cancelled.
		return
	}

	p.bag.Set(options.KeyView, v)
	p.history.ReplaceState(p.bag.Serialize())
	p.writes++
	p.timer = nil

	p.lg.Debug("persisted camera", slog.Any("pose", pose))
}

// Writes returns how many times the camera pose has been persisted.
func (p *CameraPersister) Writes() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.writes
}
