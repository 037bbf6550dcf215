// Copyright (c) 2025 Garagedoor
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package device resolves the garage door device on the Particle cloud and sends
// open/close commands to it.
//
// A Controller belongs to one authenticated session. Commands are not single-flight:
// a press (open) can be followed by a release (close) before the first call returns.
// Completions are applied in the order the cloud answers them, so the last answer to
// arrive decides LastError.
package device

import (
	"context"
	"fmt"
	"net/http/httptrace"
	"sync"
	"sync/atomic"
	"time"

	"garagedoor/cli/internal/errors"
	"garagedoor/cli/internal/events"
	"garagedoor/cli/internal/history"
	"garagedoor/cli/internal/logging"
	"garagedoor/cli/internal/particle"

	"github.com/pterm/pterm"
)

// Controller is the discovery and command state machine for one device.
type Controller struct {
	cloud    particle.API
	log      *pterm.Logger
	timeout  time.Duration
	recorder history.Recorder
	now      func() time.Time

	mu      sync.Mutex
	cur     State
	device  particle.Device
	pending int
	lastDir Direction
	lastErr error
	// sent is closed once the most recently accepted command has been handed to
	// the cloud.
	sent chan struct{}
	snap    atomic.Pointer[State]
	hub     events.Hub[State]
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the diagnostics logger.
func WithLogger(l *pterm.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithTimeout bounds each cloud call. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// WithRecorder records every completed command.
func WithRecorder(r history.Recorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// NewController creates a Controller in StatusUninitialized.
func NewController(cloud particle.API, opts ...Option) *Controller {
	c := &Controller{
		cloud: cloud,
		log:   logging.Nop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	st := State{Status: StatusUninitialized}
	c.cur = st
	c.snap.Store(&st)
	return c
}

// Subscribe registers fn for every state transition. fn runs synchronously on the
// goroutine performing the transition; it may read accessors but must not call
// Discover or Send.
func (c *Controller) Subscribe(fn func(State)) (unsubscribe func()) {
	return c.hub.Subscribe(fn)
}

func (c *Controller) transitionLocked(st State) {
	c.cur = st
	c.snap.Store(&st)
	c.log.Debug("device state", c.log.Args("state", st.String()))
	c.hub.Publish(st)
}

// State returns the current state.
func (c *Controller) State() State { return *c.snap.Load() }

// Initializing reports whether discovery has not finished yet.
func (c *Controller) Initializing() bool {
	switch c.State().Status {
	case StatusUninitialized, StatusDiscovering:
		return true
	}
	return false
}

// Ready reports whether commands are accepted.
func (c *Controller) Ready() bool {
	switch c.State().Status {
	case StatusReady, StatusCommandPending:
		return true
	}
	return false
}

// Device returns the resolved device, if any.
func (c *Controller) Device() (particle.Device, bool) {
	st := c.State()
	if st.Status == StatusReady || st.Status == StatusCommandPending {
		return st.Device, true
	}
	return particle.Device{}, false
}

// LastError returns the error to display: the discovery failure, or the outcome of
// the most recently completed command.
func (c *Controller) LastError() error { return c.State().Err }

// Discover lists the account's devices and selects the first one whose name equals
// name exactly. It ends in StatusReady, StatusNotFound (DeviceNotFound error) or
// StatusError (TransportError). Discover may be retried after it completes; it is
// rejected with SessionBusy while discovery or a command is in flight.
func (c *Controller) Discover(ctx context.Context, name string) error {
	c.mu.Lock()
	switch c.cur.Status {
	case StatusDiscovering, StatusCommandPending:
		c.mu.Unlock()
		return errors.New(errors.SessionBusy, "device discovery or a command is already in progress")
	}
	c.transitionLocked(State{Status: StatusDiscovering})
	c.mu.Unlock()

	callCtx, cancel := c.callContext(ctx)
	devices, err := c.cloud.ListDevices(callCtx)
	timedOut := callCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		te := errors.Wrap(errors.TransportError, err)
		if timedOut {
			te = &errors.E{Kind: errors.TransportError, Message: fmt.Sprintf("device list timed out after %s", c.timeout), Err: err}
		}
		c.device = particle.Device{}
		c.lastErr = te
		c.transitionLocked(State{Status: StatusError, Err: te})
		c.log.Debug("device list failed", c.log.Args("error", logging.Mask(err.Error())))
		return te
	}

	for _, d := range devices {
		if d.Name == name {
			c.device = d
			c.lastErr = nil
			c.transitionLocked(State{Status: StatusReady, Device: d})
			return nil
		}
	}

	nf := errors.Newf(errors.DeviceNotFound, "no device named %q on this account", name)
	c.device = particle.Device{}
	c.lastErr = nf
	c.transitionLocked(State{Status: StatusNotFound, Err: nf})
	c.log.Debug("device not found", c.log.Args("name", name, "listed", len(devices)))
	return nf
}

// OpenDoor sends the open command.
func (c *Controller) OpenDoor(ctx context.Context) error { return c.Send(ctx, Open) }

// CloseDoor sends the close command.
func (c *Controller) CloseDoor(ctx context.Context) error { return c.Send(ctx, Close) }

// Send invokes the firmware function for dir on the resolved device. It is accepted
// from StatusReady and, re-entrantly, from StatusCommandPending; anywhere else it
// returns ServiceNotInitialized without contacting the cloud. The controller returns
// to StatusReady once every outstanding command has completed, whatever their
// outcome. A failed call returns CommandFailed with the cloud's message.
func (c *Controller) Send(ctx context.Context, dir Direction) error {
	run, err := c.Start(ctx, dir)
	if err != nil {
		return err
	}
	return run()
}

// Start accepts a command for dir and moves to StatusCommandPending before it
// returns. The returned function performs the cloud call and must be called exactly
// once. Commands reach the cloud in the order Start accepted them: each one waits
// until the previous request has been written out, or answered, before sending its
// own.
func (c *Controller) Start(ctx context.Context, dir Direction) (func() error, error) {
	c.mu.Lock()
	if c.cur.Status != StatusReady && c.cur.Status != StatusCommandPending {
		c.mu.Unlock()
		return nil, errors.New(errors.ServiceNotInitialized, "")
	}
	dev := c.device
	c.pending++
	c.lastDir = dir
	prev := c.sent
	sent := make(chan struct{})
	c.sent = sent
	c.transitionLocked(State{Status: StatusCommandPending, Device: dev, Direction: dir, Err: c.lastErr})
	c.mu.Unlock()

	return func() error { return c.dispatch(ctx, dev, dir, prev, sent) }, nil
}

func (c *Controller) dispatch(ctx context.Context, dev particle.Device, dir Direction, prev <-chan struct{}, sent chan struct{}) error {
	var once sync.Once
	markSent := func() { once.Do(func() { close(sent) }) }
	defer markSent()

	fn := FunctionName(dir)
	callCtx, cancel := c.callContext(ctx)
	if prev != nil {
		select {
		case <-prev:
		case <-callCtx.Done():
		}
	}
	callCtx = httptrace.WithClientTrace(callCtx, &httptrace.ClientTrace{
		WroteRequest: func(httptrace.WroteRequestInfo) { markSent() },
	})

	started := c.now()
	c.log.Debug("invoking", c.log.Args("device", dev.ID, "function", fn))
	code, err := c.cloud.Invoke(callCtx, dev.ID, fn, "")
	markSent()
	timedOut := callCtx.Err() == context.DeadlineExceeded && ctx.Err() == nil
	cancel()
	elapsed := c.now().Sub(started)

	var cmdErr error
	if err != nil {
		cmdErr = errors.Wrap(errors.CommandFailed, err)
		if timedOut {
			cmdErr = &errors.E{Kind: errors.CommandFailed, Message: fmt.Sprintf("%s timed out after %s", fn, c.timeout), Err: err}
		}
	}

	c.mu.Lock()
	c.pending--
	c.lastErr = cmdErr
	if c.pending == 0 {
		c.transitionLocked(State{Status: StatusReady, Device: dev, Err: cmdErr})
	} else {
		c.transitionLocked(State{Status: StatusCommandPending, Device: dev, Direction: c.lastDir, Err: cmdErr})
	}
	c.mu.Unlock()

	c.record(ctx, history.Entry{
		ID:         history.NewID(),
		DeviceID:   dev.ID,
		DeviceName: dev.Name,
		Direction:  dir.String(),
		Function:   fn,
		ResultCode: code,
		Error:      errorText(cmdErr),
		StartedAt:  started,
		Duration:   elapsed,
	})
	return cmdErr
}

func (c *Controller) record(ctx context.Context, e history.Entry) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Record(context.WithoutCancel(ctx), e); err != nil {
		c.log.Warn("could not record command history", c.log.Args("error", logging.Mask(err.Error())))
	}
}

func (c *Controller) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
