package core

import (
	"context"
	"time"

	"github.com/llehouerou/waved/internal/config"
	"github.com/llehouerou/waved/internal/events"
	"github.com/llehouerou/waved/internal/player"
)

// Run is the main loop. It returns once a quit was requested and every
// queued event, QUIT included, reached the frontends. Cancelling ctx
// requests a quit.
func (c *Core) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, c.RequestQuit)
	defer stop()

	tick := time.Duration(c.cfg.Int(config.KeyTickMS)) * time.Millisecond
	if tick <= 0 {
		tick = defaultTick
	}

	c.log.Debug().Dur("tick", tick).Int("frontends", c.frontends.Len()).Msg("main loop started")
	for c.Running() || c.events.IsWaiting() {
		c.step(tick)
	}
	c.log.Debug().Msg("main loop stopped")
	return nil
}

// step runs one iteration of the main loop. Once a quit was requested only
// the queued events are delivered.
func (c *Core) step(tick time.Duration) {
	if c.Running() {
		if !c.ctl.HasPendingCommand() {
			c.events.Wait(tick)
		}
		if c.ctl.DrainCommand() {
			c.resumePosition()
		}
		c.ctl.PollEngine()
		c.frontends.Tick()
		c.ctl.PollTime()
	}
	c.dispatch()
}

// dispatch delivers every queued event to all frontends, one event at a
// time.
func (c *Core) dispatch() {
	for {
		ev, ok := c.events.Pop()
		if !ok {
			break
		}
		c.log.Trace().Stringer("kind", ev.Kind).Int("param", ev.Param).Msg("event")
		c.frontends.Dispatch(ev)

		switch ev.Kind {
		case events.PlaylistChange, events.QueueChange, events.TrackChange,
			events.PlaymodeChange, events.VolumeChange:
			c.sessionDirty = true
		default:
		}
	}
	if c.sessionDirty {
		c.sessionDirty = false
		c.saveSessionDebounced()
	}
}

// RequestQuit clears the running flag and queues QUIT. Only the first call
// has an effect. Safe from any goroutine.
func (c *Core) RequestQuit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.running {
		return
	}
	// QUIT is queued before the flag drops so the loop cannot observe a
	// stopped core with an empty queue in between.
	if err := c.events.Push(events.Quit, 0); err != nil {
		c.log.Error().Err(err).Msg("cannot queue quit event")
	}
	c.running = false
	c.log.Info().Msg("quit requested")
}

// Running reports whether no quit was requested yet.
func (c *Core) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

// resumePosition seeks to the restored position once the restored entry
// plays.
func (c *Core) resumePosition() {
	if c.resumeAt <= 0 {
		return
	}
	at := c.resumeAt
	c.resumeAt = 0
	if c.ctl.Status() != player.Playing {
		return
	}
	if err := c.ctl.Seek(int(at / time.Second)); err != nil {
		c.log.Debug().Err(err).Msg("cannot resume position")
	}
}
