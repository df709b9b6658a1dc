// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package preview

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/mockup"
)

// DefaultDebounce is the quiet period after the last change notification
// before a capture runs.
const DefaultDebounce = 200 * time.Millisecond

// ErrStarted is returned by Start on a running or stopped Synchronizer.
var ErrStarted = errors.New("preview: synchronizer already started")

// Source notifies subscribers that the design changed.
type Source interface {
	// Subscribe registers fn and returns a function that unregisters it.
	// fn may be called from any goroutine and must not block.
	Subscribe(fn func()) (cancel func())
}

// Capturer rasterizes the current design.
type Capturer interface {
	Capture(ctx context.Context) (*mockup.TemplateSnapshot, error)
}

// CaptureFunc adapts a function to Capturer.
type CaptureFunc func(ctx context.Context) (*mockup.TemplateSnapshot, error)

// Capture calls f(ctx).
func (f CaptureFunc) Capture(ctx context.Context) (*mockup.TemplateSnapshot, error) {
	return f(ctx)
}

// RenderFunc receives every fresh snapshot.
type RenderFunc func(ctx context.Context, snap *mockup.TemplateSnapshot)

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithDebounce sets the debounce window. Non-positive values are ignored.
func WithDebounce(d time.Duration) Option {
	return func(s *Synchronizer) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithInitialCapture schedules a capture when the synchronizer starts, so a
// preview appears without waiting for the first edit.
func WithInitialCapture() Option {
	return func(s *Synchronizer) { s.initial = true }
}

// Synchronizer debounces change notifications into captures and renders.
// All captures run on a single goroutine, so Capturer and RenderFunc never
// overlap.
type Synchronizer struct {
	src      Source
	capturer Capturer
	render   RenderFunc
	debounce time.Duration
	initial  bool

	notify chan struct{}

	mu      sync.Mutex
	last    *mockup.TemplateSnapshot
	started bool
	cancel  context.CancelFunc
	unsub   func()
	done    chan struct{}
}

// New creates a stopped Synchronizer. render may be nil when callers only
// poll Last.
func New(src Source, capturer Capturer, render RenderFunc, opts ...Option) *Synchronizer {
	s := &Synchronizer{
		src:      src,
		capturer: capturer,
		render:   render,
		debounce: DefaultDebounce,
		notify:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start subscribes to the source and runs the debounce loop until ctx is
// done or Stop is called. A Synchronizer can be started once.
func (s *Synchronizer) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrStarted
	}
	s.started = true

	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	if s.src != nil {
		s.unsub = s.src.Subscribe(s.Notify)
	}
	if s.initial {
		s.Notify()
	}
	go s.loop(ctx)
	return nil
}

// Stop ends the loop and unsubscribes. A capture in progress is cancelled
// through its context. Stop is idempotent and safe before Start.
func (s *Synchronizer) Stop() {
	s.mu.Lock()
	cancel, unsub, done := s.cancel, s.unsub, s.done
	s.cancel, s.unsub = nil, nil
	s.started = true
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if cancel != nil {
		cancel()
		<-done
	}
}

// Notify reports a change. It never blocks; notifications arriving while one
// is pending are coalesced.
func (s *Synchronizer) Notify() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Last returns the most recent successful snapshot, or nil.
func (s *Synchronizer) Last() *mockup.TemplateSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func (s *Synchronizer) loop(ctx context.Context) {
	defer close(s.done)

	timer := time.NewTimer(s.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.notify:
			timer.Reset(s.debounce)
		case <-timer.C:
			s.refresh(ctx)
		}
	}
}

// refresh captures and renders one frame.
func (s *Synchronizer) refresh(ctx context.Context) {
	log := mockup.Logger()
	start := time.Now()

	snap, err := s.capture(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Warn("preview: capture failed", "err", err)
		}
		return
	}

	s.mu.Lock()
	s.last = snap
	s.mu.Unlock()
	log.Debug("preview: captured",
		"template", snap.TemplateID,
		"size", fmt.Sprintf("%dx%d", snap.Width, snap.Height),
		"elapsed", time.Since(start))

	if s.render == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("preview: render panicked", "panic", r)
		}
	}()
	s.render(ctx, snap)
}

func (s *Synchronizer) capture(ctx context.Context) (snap *mockup.TemplateSnapshot, err error) {
	defer func() {
		if r := recover(); r != nil {
			snap, err = nil, fmt.Errorf("preview: capture panicked: %v", r)
		}
	}()
	snap, err = s.capturer.Capture(ctx)
	if err == nil && snap == nil {
		err = errors.New("preview: capture returned no snapshot")
	}
	return snap, err
}
