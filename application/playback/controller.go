package playback

import (
	"context"
	"fmt"
	"sync"
	"time"

	"livephoto-audio/application/observe"
	"livephoto-audio/domain/audio"
	"livephoto-audio/domain/playback"

	"github.com/sirupsen/logrus"
)

// DefaultPollInterval is how often the position poller samples a playing resource
const DefaultPollInterval = 250 * time.Millisecond

// Controller owns at most one playback resource for one media context.
// Loading a new artifact releases the previous resource before the new one is
// opened. A position poller runs exactly while the status is playing.
type Controller struct {
	provider playback.ResourceProvider
	name     string
	logger   logrus.FieldLogger
	interval time.Duration

	mu     sync.Mutex
	state  playback.State
	handle playback.Handle
	poller *poller
	// gen changes on every load, unload and dispose; playToken on every
	// play, pause, stop and seek so stale completions are ignored.
	gen       uint64
	playToken uint64

	states   *observe.Hub[playback.State]
	progress *observe.Hub[playback.Progress]
}

// ControllerOption is a functional option for configuring Controller
type ControllerOption func(*Controller)

// WithPollInterval sets the position poller interval
func WithPollInterval(d time.Duration) ControllerOption {
	return func(c *Controller) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithName sets the context name used in log entries
func WithName(name string) ControllerOption {
	return func(c *Controller) {
		c.name = name
	}
}

// NewController creates an unloaded controller
func NewController(provider playback.ResourceProvider, opts ...ControllerOption) *Controller {
	c := &Controller{
		provider: provider,
		name:     "media",
		logger:   logrus.StandardLogger(),
		interval: DefaultPollInterval,
		state:    playback.State{Status: playback.StatusUnloaded},
		states:   observe.NewHub[playback.State](),
		progress: observe.NewHub[playback.Progress](),
	}

	for _, opt := range opts {
		opt(c)
	}

	c.logger = c.logger.WithFields(logrus.Fields{
		"component": "playback",
		"context":   c.name,
	})
	return c
}

// State returns a snapshot. While playing the position is read from the resource.
func (c *Controller) State() playback.State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	if s.Status == playback.StatusPlaying && c.handle != nil {
		s.Position = playback.Clamp(c.handle.Position(), s.Duration())
	}
	return s
}

// Subscribe returns a channel of status changes and a cancel function
func (c *Controller) Subscribe(buffer int) (<-chan playback.State, func()) {
	return c.states.Subscribe(buffer)
}

// SubscribeProgress returns a channel of position samples taken while playing
func (c *Controller) SubscribeProgress(buffer int) (<-chan playback.Progress, func()) {
	return c.progress.Subscribe(buffer)
}

// Load opens artifact for playback, replacing whatever was loaded before.
func (c *Controller) Load(ctx context.Context, artifact audio.Artifact) error {
	c.mu.Lock()
	if c.state.Status == playback.StatusDisposed {
		c.mu.Unlock()
		return playback.ErrDisposed
	}

	c.releaseLocked()
	c.gen++
	gen := c.gen
	loading := artifact
	c.setStateLocked(playback.State{Status: playback.StatusLoading, Artifact: &loading})
	c.mu.Unlock()

	c.logger.WithField("path", artifact.Path).Debug("opening audio")
	h, err := c.provider.Open(ctx, artifact.Path)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		// Superseded by a newer load, an unload or a dispose
		if err == nil {
			c.releaseHandle(h)
		}
		if c.state.Status == playback.StatusDisposed {
			return playback.ErrDisposed
		}
		return fmt.Errorf("%w: superseded", playback.ErrLoadFailed)
	}

	if err != nil {
		c.logger.WithError(err).WithField("path", artifact.Path).Warn("failed to open audio")
		c.setStateLocked(playback.State{Status: playback.StatusUnloaded})
		return fmt.Errorf("%w: %w", playback.ErrLoadFailed, err)
	}

	c.handle = h
	c.setStateLocked(playback.State{Status: playback.StatusReady, Artifact: &loading})
	return nil
}

// PlayPause toggles between playing and paused. Pausing keeps the position.
func (c *Controller) PlayPause() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLoadedLocked(); err != nil {
		return err
	}

	if c.state.Status == playback.StatusPlaying {
		err := c.handle.Pause()
		c.haltLocked(playback.Clamp(c.handle.Position(), c.state.Duration()))
		if err != nil {
			return fmt.Errorf("failed to pause: %w", err)
		}
		return nil
	}

	c.playToken++
	token := c.playToken
	if err := c.handle.Play(func() { go c.complete(token) }); err != nil {
		return fmt.Errorf("failed to play: %w", err)
	}

	s := c.state
	s.Status = playback.StatusPlaying
	c.setStateLocked(s)
	c.startPollerLocked()
	return nil
}

// Seek moves the position, clamped to [0, duration]. Playback continues if
// it was running.
func (c *Controller) Seek(seconds float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLoadedLocked(); err != nil {
		return err
	}

	target := playback.Clamp(seconds, c.state.Duration())
	if err := c.handle.Seek(target); err != nil {
		// The resource may have stopped mid-seek, so playback does not resume
		if c.state.Status == playback.StatusPlaying {
			c.haltLocked(playback.Clamp(c.handle.Position(), c.state.Duration()))
		}
		return fmt.Errorf("failed to seek to %.2fs: %w", target, err)
	}

	s := c.state
	s.Position = target
	c.setStateLocked(s)
	return nil
}

// Stop halts playback and rewinds to the start. The resource stays loaded.
func (c *Controller) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLoadedLocked(); err != nil {
		return err
	}

	if err := c.handle.Stop(); err != nil {
		c.haltLocked(playback.Clamp(c.handle.Position(), c.state.Duration()))
		return fmt.Errorf("failed to stop: %w", err)
	}
	c.haltLocked(0)
	return nil
}

// Unload releases the resource and returns to unloaded. It is a no-op when
// nothing is loaded.
func (c *Controller) Unload() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state.Status {
	case playback.StatusDisposed:
		return playback.ErrDisposed
	case playback.StatusUnloaded:
		return nil
	}

	c.releaseLocked()
	c.gen++
	c.setStateLocked(playback.State{Status: playback.StatusUnloaded})
	return nil
}

// Dispose stops the poller, releases the resource and closes observers.
// It is idempotent; every other command fails with ErrDisposed afterwards.
func (c *Controller) Dispose() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state.Status == playback.StatusDisposed {
		return
	}

	c.releaseLocked()
	c.gen++
	c.setStateLocked(playback.State{Status: playback.StatusDisposed})
	c.states.Close()
	c.progress.Close()
	c.logger.Debug("player disposed")
}

// complete handles natural end of playback
func (c *Controller) complete(token uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.playToken || c.state.Status != playback.StatusPlaying || c.handle == nil {
		return
	}

	if err := c.handle.Seek(0); err != nil {
		c.logger.WithError(err).Debug("failed to rewind after completion")
	}
	c.haltLocked(0)
	c.progress.Publish(playback.Progress{Position: 0, Duration: c.state.Duration()})
}

// haltLocked leaves playing (if it was) for ready at position. A handle
// command that failed still ends here, since the resource no longer plays.
func (c *Controller) haltLocked(position float64) {
	c.playToken++
	c.stopPollerLocked()

	s := c.state
	s.Status = playback.StatusReady
	s.Position = position
	c.setStateLocked(s)
}

func (c *Controller) checkLoadedLocked() error {
	switch {
	case c.state.Status == playback.StatusDisposed:
		return playback.ErrDisposed
	case !c.state.Status.Loaded() || c.handle == nil:
		return playback.ErrNotLoaded
	}
	return nil
}

// releaseLocked stops the poller and releases the current handle exactly once
func (c *Controller) releaseLocked() {
	c.playToken++
	c.stopPollerLocked()
	if c.handle == nil {
		return
	}
	h := c.handle
	c.handle = nil
	c.releaseHandle(h)
}

func (c *Controller) releaseHandle(h playback.Handle) {
	if err := h.Release(); err != nil {
		c.logger.WithError(err).Warn("failed to release audio resource")
	}
}

func (c *Controller) startPollerLocked() {
	c.stopPollerLocked()
	c.poller = startPoller(c.handle, c.interval, c.state.Duration(), c.progress)
}

func (c *Controller) stopPollerLocked() {
	if c.poller == nil {
		return
	}
	c.poller.stop()
	c.poller = nil
}

func (c *Controller) setStateLocked(s playback.State) {
	c.state = s
	c.states.Publish(s)
}
