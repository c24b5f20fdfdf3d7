// Package session wires acquisition, audio processing, playback and export
// into the two independent media contexts of a user session.
package session

import (
	"context"
	"time"

	appaudio "livephoto-audio/application/audio"
	appplayback "livephoto-audio/application/playback"
	"livephoto-audio/domain/audio"
	"livephoto-audio/domain/distribution"
	"livephoto-audio/domain/media"
	"livephoto-audio/domain/playback"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Context names
const (
	ContextMedia     = "media"
	ContextLivePhoto = "live_photo"
)

// Acquirer turns a source into a media entity. A nil entity with a nil error
// means the user cancelled.
type Acquirer interface {
	Acquire(ctx context.Context, source media.Source) (media.Entity, error)
}

// Exporter hands an artifact to a share target or the downloads directory
type Exporter interface {
	Export(ctx context.Context, artifact audio.Artifact) (distribution.Destination, error)
}

// Dependencies are the ports shared by both contexts. They are stateless
// adapters; all state lives in the per-context processor and controller.
type Dependencies struct {
	Acquirer     Acquirer
	Engine       audio.Engine
	Player       playback.ResourceProvider
	Exporter     Exporter
	PollInterval time.Duration
	Logger       logrus.FieldLogger
	Clock        func() time.Time
}

// Session holds the regular media context and the Live Photo context
type Session struct {
	id        string
	media     *Context
	livePhoto *Context
}

// New creates a session with two fresh contexts
func New(deps Dependencies) *Session {
	if deps.Logger == nil {
		deps.Logger = logrus.StandardLogger()
	}
	id := uuid.NewString()
	deps.Logger = deps.Logger.WithField("session", id)

	return &Session{
		id:        id,
		media:     newContext(ContextMedia, deps),
		livePhoto: newContext(ContextLivePhoto, deps),
	}
}

// ID identifies the session in log entries
func (s *Session) ID() string {
	return s.id
}

// Media returns the regular media context
func (s *Session) Media() *Context {
	return s.media
}

// LivePhoto returns the Live Photo context
func (s *Session) LivePhoto() *Context {
	return s.livePhoto
}

// ContextFor returns the context that owns media acquired from source
func (s *Session) ContextFor(source media.Source) *Context {
	if source == media.SourceLivePhoto {
		return s.livePhoto
	}
	return s.media
}

// Close tears down both contexts
func (s *Session) Close() {
	s.media.Close()
	s.livePhoto.Close()
}

// Context is one media context: an acquired entity, its audio processor and
// its player. Playback never outlives the artifact it was loaded with.
type Context struct {
	name      string
	acquirer  Acquirer
	exporter  Exporter
	processor *appaudio.Processor
	player    *appplayback.Controller
	logger    logrus.FieldLogger
}

func newContext(name string, deps Dependencies) *Context {
	logger := deps.Logger.WithField("context", name)

	procOpts := []appaudio.ProcessorOption{appaudio.WithName(name), appaudio.WithLogger(deps.Logger)}
	if deps.Clock != nil {
		procOpts = append(procOpts, appaudio.WithClock(deps.Clock))
	}

	return &Context{
		name:      name,
		acquirer:  deps.Acquirer,
		exporter:  deps.Exporter,
		processor: appaudio.NewProcessor(deps.Engine, procOpts...),
		player: appplayback.NewController(deps.Player,
			appplayback.WithName(name),
			appplayback.WithLogger(deps.Logger),
			appplayback.WithPollInterval(deps.PollInterval),
		),
		logger: logger,
	}
}

// Name returns the context name
func (c *Context) Name() string {
	return c.name
}

// Processor exposes the audio state machine for observation
func (c *Context) Processor() *appaudio.Processor {
	return c.processor
}

// Player exposes the playback controller
func (c *Context) Player() *appplayback.Controller {
	return c.player
}

// Entity returns the bound entity, or nil
func (c *Context) Entity() media.Entity {
	return c.processor.Entity()
}

// Acquire picks new media and binds it. On cancel nothing changes and the
// entity is nil. A new entity unloads playback of the old artifact.
func (c *Context) Acquire(ctx context.Context, source media.Source) (media.Entity, error) {
	entity, err := c.acquirer.Acquire(ctx, source)
	if err != nil || entity == nil {
		return nil, err
	}

	if err := c.processor.Bind(entity); err != nil {
		return nil, err
	}
	c.syncPlayer()

	c.logger.WithFields(logrus.Fields{
		"source": source,
		"kind":   entity.Kind(),
	}).Info("media acquired")
	return entity, nil
}

// Extract extracts audio from the bound entity
func (c *Context) Extract(ctx context.Context) (audio.Artifact, error) {
	artifact, err := c.processor.RequestExtract(ctx)
	c.syncPlayer()
	return artifact, err
}

// Clean runs a cleaning pass over the current artifact
func (c *Context) Clean(ctx context.Context) (audio.Artifact, error) {
	artifact, err := c.processor.RequestClean(ctx)
	c.syncPlayer()
	return artifact, err
}

// Transcribe returns the transcription of the current artifact, if any
func (c *Context) Transcribe(ctx context.Context) (string, bool, error) {
	return c.processor.Transcribe(ctx)
}

// PlayPause loads the current artifact when needed and toggles playback
func (c *Context) PlayPause(ctx context.Context) error {
	artifact, ok := c.processor.Current()
	if !ok {
		return audio.ErrNoArtifact
	}

	state := c.player.State()
	if !state.Status.Loaded() || state.Artifact == nil || state.Artifact.Path != artifact.Path {
		if err := c.player.Load(ctx, artifact); err != nil {
			return err
		}
	}
	return c.player.PlayPause()
}

// Export exports the current artifact
func (c *Context) Export(ctx context.Context) (distribution.Destination, error) {
	artifact, ok := c.processor.Current()
	if !ok {
		return distribution.Destination{}, audio.ErrNoArtifact
	}
	return c.exporter.Export(ctx, artifact)
}

// Close releases the player and the processor's observers
func (c *Context) Close() {
	c.player.Dispose()
	c.processor.Close()
}

// syncPlayer unloads the player when the artifact it holds is no longer the
// current one
func (c *Context) syncPlayer() {
	state := c.player.State()
	if state.Artifact == nil {
		return
	}
	if current, ok := c.processor.Current(); ok && current.Path == state.Artifact.Path {
		return
	}
	if err := c.player.Unload(); err != nil {
		c.logger.WithError(err).Debug("failed to unload stale audio")
	}
}
