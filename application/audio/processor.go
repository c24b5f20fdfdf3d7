package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"livephoto-audio/application/observe"
	"livephoto-audio/domain/audio"
	"livephoto-audio/domain/media"

	"github.com/sirupsen/logrus"
)

// Processor is the audio processing state machine of one media context.
// It serializes extraction and cleaning: while one is in flight every other
// request is rejected with audio.ErrOperationInProgress. Engine calls run
// without holding the lock, so State stays readable during long operations.
type Processor struct {
	engine audio.Engine
	name   string
	logger logrus.FieldLogger
	now    func() time.Time

	mu        sync.Mutex
	entity    media.Entity
	state     audio.State
	lastStamp int64

	hub *observe.Hub[audio.State]
}

// ProcessorOption is a functional option for configuring Processor
type ProcessorOption func(*Processor)

// WithName sets the context name used in log entries
func WithName(name string) ProcessorOption {
	return func(p *Processor) {
		p.name = name
	}
}

// WithLogger sets the logger
func WithLogger(logger logrus.FieldLogger) ProcessorOption {
	return func(p *Processor) {
		p.logger = logger
	}
}

// WithClock sets the clock used to stamp cleaning passes (for testing)
func WithClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) {
		p.now = now
	}
}

// NewProcessor creates a processor in the idle state
func NewProcessor(engine audio.Engine, opts ...ProcessorOption) *Processor {
	p := &Processor{
		engine: engine,
		name:   "media",
		logger: logrus.StandardLogger(),
		now:    time.Now,
		state:  audio.Idle(),
		hub:    observe.NewHub[audio.State](),
	}

	for _, opt := range opts {
		opt(p)
	}

	p.logger = p.logger.WithFields(logrus.Fields{
		"component": "audio",
		"context":   p.name,
	})
	return p
}

// Name returns the context name
func (p *Processor) Name() string {
	return p.name
}

// Bind attaches a freshly acquired entity and resets the state machine.
// Any previous artifact is forgotten. Passing nil detaches the entity.
func (p *Processor) Bind(e media.Entity) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state.InFlight() {
		return fmt.Errorf("%w: cannot switch media while %s", audio.ErrOperationInProgress, p.state.Phase)
	}

	p.entity = e
	p.setStateLocked(audio.Idle())
	return nil
}

// Entity returns the bound entity, or nil
func (p *Processor) Entity() media.Entity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.entity
}

// State returns a snapshot of the current state
func (p *Processor) State() audio.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Current returns the most recent good artifact, if any
func (p *Processor) Current() (audio.Artifact, bool) {
	return p.State().Current()
}

// Subscribe returns a channel of state changes and a cancel function
func (p *Processor) Subscribe(buffer int) (<-chan audio.State, func()) {
	return p.hub.Subscribe(buffer)
}

// RequestExtract extracts audio from the bound entity's video component.
// Re-extraction is allowed from any idle or failed phase and discards the
// current artifact.
func (p *Processor) RequestExtract(ctx context.Context) (audio.Artifact, error) {
	p.mu.Lock()
	if p.state.InFlight() {
		phase := p.state.Phase
		p.mu.Unlock()
		return audio.Artifact{}, fmt.Errorf("%w: %s", audio.ErrOperationInProgress, phase)
	}

	videoPath, ok := media.VideoSource(p.entity)
	if !ok {
		p.mu.Unlock()
		return audio.Artifact{}, fmt.Errorf("%w: media has no video to extract audio from", media.ErrInvalidMedia)
	}

	p.setStateLocked(audio.State{Phase: audio.PhaseExtracting})
	p.mu.Unlock()

	p.logger.WithField("source", videoPath).Info("extracting audio")
	res, err := p.engine.Extract(ctx, videoPath)

	var artifact audio.Artifact
	if err == nil {
		artifact = res.Artifact()
		err = artifact.Validate()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		failure := fmt.Errorf("%w: %w", audio.ErrExtractionFailed, err)
		p.logger.WithError(err).Warn("audio extraction failed")
		p.setStateLocked(audio.State{Phase: audio.PhaseFailed, Err: failure})
		return audio.Artifact{}, failure
	}

	p.logger.WithFields(logrus.Fields{
		"output":   artifact.Path,
		"duration": artifact.DurationSeconds,
		"size":     artifact.SizeBytes,
	}).Info("audio extracted")
	p.setStateLocked(audio.State{Phase: audio.PhaseExtracted, Artifact: &artifact})
	return artifact, nil
}

// RequestClean runs a cleaning pass over the most recent good artifact.
// Each pass writes a new file named after the input with a fresh timestamp.
// On failure the input artifact stays available.
func (p *Processor) RequestClean(ctx context.Context) (audio.Artifact, error) {
	p.mu.Lock()
	if p.state.InFlight() {
		phase := p.state.Phase
		p.mu.Unlock()
		return audio.Artifact{}, fmt.Errorf("%w: %s", audio.ErrOperationInProgress, phase)
	}

	base, ok := p.state.Current()
	if !ok {
		p.mu.Unlock()
		return audio.Artifact{}, audio.ErrNoArtifact
	}

	outputPath := audio.CleanedPath(base.Path, p.nextStampLocked())
	p.setStateLocked(audio.State{Phase: audio.PhaseCleaning, Artifact: &base})
	p.mu.Unlock()

	p.logger.WithFields(logrus.Fields{
		"input":  base.Path,
		"output": outputPath,
	}).Info("cleaning audio")
	res, err := p.engine.Clean(ctx, base.Path, outputPath)

	var cleaned audio.Artifact
	if err == nil {
		if res.Path == "" {
			res.Path = outputPath
		}
		cleaned = base.Cleaned(res)
		err = cleaned.Validate()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err != nil {
		failure := fmt.Errorf("%w: %w", audio.ErrCleaningFailed, err)
		p.logger.WithError(err).Warn("audio cleaning failed")
		p.setStateLocked(audio.State{Phase: audio.PhaseFailed, Artifact: &base, Err: failure})
		return audio.Artifact{}, failure
	}

	p.logger.WithField("output", cleaned.Path).Info("audio cleaned")
	p.setStateLocked(audio.State{Phase: audio.PhaseCleaned, Artifact: &cleaned})
	return cleaned, nil
}

// Transcribe returns the spoken text of the current artifact.
// ok is false when the engine has no transcription to offer.
func (p *Processor) Transcribe(ctx context.Context) (string, bool, error) {
	artifact, ok := p.Current()
	if !ok {
		return "", false, audio.ErrNoArtifact
	}

	text, ok, err := p.engine.Transcribe(ctx, artifact.Path)
	if err != nil {
		return "", false, fmt.Errorf("transcription failed: %w", err)
	}
	return text, ok, nil
}

// Close releases observers
func (p *Processor) Close() {
	p.hub.Close()
}

// nextStampLocked returns a millisecond timestamp strictly greater than the
// previous one, so two passes within the same millisecond never collide.
func (p *Processor) nextStampLocked() int64 {
	stamp := p.now().UnixMilli()
	if stamp <= p.lastStamp {
		stamp = p.lastStamp + 1
	}
	p.lastStamp = stamp
	return stamp
}

func (p *Processor) setStateLocked(s audio.State) {
	p.state = s
	p.hub.Publish(s)
}
