// events/events.go
// Copyright(c) 2023-2026 geoview contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package events

import (
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/kkakarots/geoview/geo"
	"github.com/kkakarots/geoview/log"
	"github.com/kkakarots/geoview/util"
)

// Stream provides a basic pub/sub event interface that allows any part of
// the system to post an event to the stream and other parts to subscribe
// and receive messages from it. It is the backbone for communicating
// camera changes, dataset attachments, and status messages between the
// engine and the orchestration layer.
type Stream struct {
	mu            sync.Mutex
	events        []Event
	lastCompact   time.Time
	subscriptions map[*Subscription]interface{}
	lg            *log.Logger
}

type Subscription struct {
	stream *Stream
	// offset is offset in the Stream events array up to which the
	// subscriber has consumed events so far.
	offset int
	source string
}

func (s *Subscription) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("offset", s.offset),
		slog.String("source", s.source))
}

func NewStream(lg *log.Logger) *Stream {
	return &Stream{
		subscriptions: make(map[*Subscription]interface{}),
		lg:            lg,
	}
}

// Subscribe registers a new subscriber to the stream and returns a
// Subscription that can be used to consume events from it.
func (s *Stream) Subscribe() *Subscription {
	// Record the subscriber's callsite, so that we can more easily debug
	// subscribers that aren't consuming events.
	_, fn, line, _ := runtime.Caller(1)
	source := fmt.Sprintf("%s:%d", fn, line)

	sub := &Subscription{
		stream: s,
		offset: len(s.events),
		source: source,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.subscriptions[sub] = nil
	return sub
}

// Unsubscribe removes a subscriber from the subscriber list. It is a
// no-op on an already-detached subscription.
func (s *Subscription) Unsubscribe() {
	stream := s.stream
	if stream == nil {
		return
	}

	stream.mu.Lock()
	defer stream.mu.Unlock()

	if _, ok := stream.subscriptions[s]; !ok {
		stream.lg.Errorf("Attempted to unsubscribe invalid subscription: %+v", s)
	}
	delete(stream.subscriptions, s)
	s.stream = nil
}

// Post adds an event to the event stream.
func (s *Stream) Post(event Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lg.Debug("posted event", slog.Any("event", event))

	// Ignore the event if no one's paying attention.
	if len(s.subscriptions) > 0 {
		s.events = append(s.events, event)
	}
}

// Get returns all of the events from the stream since the last time Get
// was called for the subscription. Note that events posted before
// Subscribe was called are never reported for that subscription. The
// returned slice is a copy: subscribers consume from their own
// goroutines, so it must not alias storage that Post and compact are
// rewriting.
func (s *Subscription) Get() []Event {
	stream := s.stream
	if stream == nil {
		// Unsubscribed.
		return nil
	}

	stream.mu.Lock()
	defer stream.mu.Unlock()

	if _, ok := stream.subscriptions[s]; !ok {
		stream.lg.Errorf("Attempted to get with unregistered subscription: %+v", s)
		return nil
	}

	events := util.DuplicateSlice(stream.events[s.offset:])
	s.offset = len(stream.events)

	if time.Since(stream.lastCompact) > 1*time.Second {
		stream.compact()
		stream.lastCompact = time.Now()
	}

	return events
}

// compact reclaims storage for events that all subscribers have seen; it
// is called periodically so that Stream memory usage doesn't grow without
// bound.
func (s *Stream) compact() {
	minOffset := len(s.events)
	for sub := range s.subscriptions {
		if sub.offset < minOffset {
			minOffset = sub.offset
		}
	}

	if len(s.events) > 1000 {
		s.lg.Warnf("Stream length %d", len(s.events))
	}

	if minOffset > cap(s.events)/2 {
		n := len(s.events) - minOffset

		copy(s.events, s.events[minOffset:])
		s.events = s.events[:n]

		for sub := range s.subscriptions {
			sub.offset -= minOffset
		}
	}
}

// implements slog.LogValuer
func (s *Stream) LogValue() slog.Value {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := []slog.Attr{slog.Int("len", len(s.events)), slog.Int("cap", cap(s.events))}
	if len(s.events) > 0 {
		items = append(items, slog.Any("last_element", s.events[len(s.events)-1]))
	}
	for sub := range s.subscriptions {
		items = append(items, slog.Any(fmt.Sprintf("subscriber_%p", sub), sub))
	}
	return slog.GroupValue(items...)
}

///////////////////////////////////////////////////////////////////////////

type EventType int

const (
	CameraChangedEvent EventType = iota
	DataSetAttachedEvent
	TrackedEntityEvent
	StatusMessageEvent
	NumEventTypes
)

func (t EventType) String() string {
	return []string{"CameraChanged", "DataSetAttached", "TrackedEntity",
		"StatusMessage"}[t]
}

type Event struct {
	Type    EventType
	Source  string // dataset name or entity id, depending on Type
	Message string
	Pose    geo.CameraPose // for camera changes, the pose after the change
}

func (e *Event) String() string {
	return fmt.Sprintf("%s: source %s message %s", e.Type, e.Source, e.Message)
}

func (e Event) LogValue() slog.Value {
	attrs := []slog.Attr{slog.String("type", e.Type.String())}
	if e.Source != "" {
		attrs = append(attrs, slog.String("source", e.Source))
	}
	if e.Message != "" {
		attrs = append(attrs, slog.String("message", e.Message))
	}
	if e.Type == CameraChangedEvent {
		attrs = append(attrs, slog.Any("pose", e.Pose))
	}
	return slog.GroupValue(attrs...)
}
