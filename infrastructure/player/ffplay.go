package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"livephoto-audio/domain/playback"
	"livephoto-audio/infrastructure/filesystem"

	"github.com/sirupsen/logrus"
)

// ErrReleased is returned by every command on a released handle
var ErrReleased = errors.New("playback handle released")

// Provider opens ffplay-backed playback handles. It implements
// playback.ResourceProvider.
type Provider struct {
	ffplayPath string
	starter    ProcessStarter
	now        func() time.Time
	logger     logrus.FieldLogger
}

// ProviderOption is a functional option for configuring Provider
type ProviderOption func(*Provider)

// WithFFplayPath sets a custom ffplay executable path
func WithFFplayPath(path string) ProviderOption {
	return func(p *Provider) {
		if path != "" {
			p.ffplayPath = path
		}
	}
}

// WithProcessStarter sets a custom process starter (for testing)
func WithProcessStarter(starter ProcessStarter) ProviderOption {
	return func(p *Provider) {
		p.starter = starter
	}
}

// WithClock sets the clock used to track the position (for testing)
func WithClock(now func() time.Time) ProviderOption {
	return func(p *Provider) {
		p.now = now
	}
}

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) ProviderOption {
	return func(p *Provider) {
		p.logger = logger
	}
}

// NewProvider creates a new ffplay provider
func NewProvider(opts ...ProviderOption) *Provider {
	p := &Provider{
		ffplayPath: "ffplay",
		starter:    &ExecProcessStarter{},
		now:        time.Now,
		logger:     logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.logger = p.logger.WithField("component", "ffplay")
	return p
}

// Open implements playback.ResourceProvider. Nothing is started until Play.
func (p *Provider) Open(ctx context.Context, path string) (playback.Handle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	local := filesystem.LocalPath(path)
	info, err := os.Stat(local)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("cannot open %s: is a directory", path)
	}

	return &Handle{
		path:     local,
		provider: p,
		logger:   p.logger.WithField("path", local),
	}, nil
}

// Handle plays one file with ffplay. ffplay cannot pause or seek a running
// process from outside, so pausing kills the process and resuming or seeking
// starts a new one at the tracked offset.
type Handle struct {
	path     string
	provider *Provider
	logger   logrus.FieldLogger

	mu         sync.Mutex
	proc       Process
	run        uint64 // changes whenever a process is started or killed
	offset     float64
	startedAt  time.Time
	onComplete func()
	released   bool
}

// Play implements playback.Handle
func (h *Handle) Play(onComplete func()) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return ErrReleased
	}
	h.onComplete = onComplete
	if h.proc != nil {
		return nil
	}
	return h.startLocked()
}

// Pause implements playback.Handle
func (h *Handle) Pause() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return ErrReleased
	}
	h.onComplete = nil
	return h.killLocked()
}

// Stop implements playback.Handle
func (h *Handle) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return ErrReleased
	}
	h.onComplete = nil
	err := h.killLocked()
	h.offset = 0
	return err
}

// Position implements playback.Handle
func (h *Handle) Position() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.positionLocked()
}

// Seek implements playback.Handle. A running process is restarted at the
// new offset with the completion callback kept.
func (h *Handle) Seek(seconds float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return ErrReleased
	}
	if seconds < 0 {
		seconds = 0
	}
	if h.proc == nil {
		h.offset = seconds
		return nil
	}
	err := h.killLocked()
	h.offset = seconds
	if err != nil {
		return err
	}
	return h.startLocked()
}

// Release implements playback.Handle. It is idempotent.
func (h *Handle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.released {
		return nil
	}
	h.released = true
	h.onComplete = nil
	return h.killLocked()
}

func (h *Handle) positionLocked() float64 {
	if h.proc == nil {
		return h.offset
	}
	return h.offset + h.provider.now().Sub(h.startedAt).Seconds()
}

func (h *Handle) startLocked() error {
	args := []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}
	if h.offset > 0 {
		args = append(args, "-ss", strconv.FormatFloat(h.offset, 'f', 3, 64))
	}
	args = append(args, h.path)

	proc, err := h.provider.starter.Start(h.provider.ffplayPath, args...)
	if err != nil {
		return fmt.Errorf("failed to start ffplay: %w", err)
	}

	h.run++
	h.proc = proc
	h.startedAt = h.provider.now()
	go h.wait(proc, h.run)
	return nil
}

// killLocked stops the running process. Its wait goroutine sees the run
// change and does not report completion.
func (h *Handle) killLocked() error {
	if h.proc == nil {
		return nil
	}
	proc := h.proc
	h.offset = h.positionLocked()
	h.proc = nil
	h.run++
	if err := proc.Kill(); err != nil {
		return fmt.Errorf("failed to stop ffplay: %w", err)
	}
	return nil
}

func (h *Handle) wait(proc Process, run uint64) {
	err := proc.Wait()

	h.mu.Lock()
	if run != h.run {
		h.mu.Unlock()
		return
	}
	h.proc = nil
	h.offset = 0
	cb := h.onComplete
	h.onComplete = nil
	h.mu.Unlock()

	if err != nil {
		h.logger.WithError(err).Warn("ffplay exited with an error")
	}
	if cb != nil {
		cb()
	}
}

// Ensure Provider implements playback.ResourceProvider
var _ playback.ResourceProvider = (*Provider)(nil)

// Ensure Handle implements playback.Handle
var _ playback.Handle = (*Handle)(nil)
