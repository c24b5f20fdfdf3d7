//go:build integration

package steps

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"livephoto-audio/domain/audio"
	"livephoto-audio/domain/distribution"
	"livephoto-audio/domain/media"
	"livephoto-audio/domain/playback"
)

// fakeEngine derives "<stem>.m4a" from the video path and fails on demand
type fakeEngine struct {
	mu         sync.Mutex
	extractErr error
	cleanErr   error
	duration   float64
	extracted  []string
	cleaned    []string
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{duration: 30}
}

func (e *fakeEngine) Extract(ctx context.Context, videoPath string) (audio.ExtractResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.extractErr != nil {
		return audio.ExtractResult{}, e.extractErr
	}
	e.extracted = append(e.extracted, videoPath)
	path := strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + ".m4a"
	return audio.ExtractResult{Path: path, SizeBytes: 1024, Duration: e.duration, SampleRateHz: 44100, Format: "m4a"}, nil
}

func (e *fakeEngine) Clean(ctx context.Context, inputPath, outputPath string) (audio.CleanResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cleanErr != nil {
		return audio.CleanResult{}, e.cleanErr
	}
	e.cleaned = append(e.cleaned, outputPath)
	return audio.CleanResult{Path: outputPath}, nil
}

func (e *fakeEngine) Transcribe(ctx context.Context, audioPath string) (string, bool, error) {
	return "", false, nil
}

// fakeHandle tracks the position set by Seek and how often it was released
type fakeHandle struct {
	mu       sync.Mutex
	path     string
	playing  bool
	position float64
	released int
	done     func()
}

func (h *fakeHandle) Play(onComplete func()) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playing = true
	h.done = onComplete
	return nil
}

func (h *fakeHandle) Pause() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playing = false
	h.done = nil
	return nil
}

func (h *fakeHandle) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.playing = false
	h.position = 0
	h.done = nil
	return nil
}

func (h *fakeHandle) Position() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.position
}

func (h *fakeHandle) Seek(seconds float64) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.position = seconds
	return nil
}

func (h *fakeHandle) Release() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.released++
	h.playing = false
	h.done = nil
	return nil
}

// finish simulates playback reaching the end of the file
func (h *fakeHandle) finish() {
	h.mu.Lock()
	done := h.done
	h.done = nil
	h.mu.Unlock()
	if done != nil {
		done()
	}
}

func (h *fakeHandle) releaseCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.released
}

type fakeProvider struct {
	mu      sync.Mutex
	openErr error
	handles []*fakeHandle
}

func (p *fakeProvider) Open(ctx context.Context, path string) (playback.Handle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.openErr != nil {
		return nil, p.openErr
	}
	h := &fakeHandle{path: path}
	p.handles = append(p.handles, h)
	return h, nil
}

func (p *fakeProvider) last() (*fakeHandle, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.handles) == 0 {
		return nil, errors.New("no playback resource was opened")
	}
	return p.handles[len(p.handles)-1], nil
}

// fakeAcquirer hands out a fixed entity per source
type fakeAcquirer struct {
	entities map[media.Source]media.Entity
	err      error
}

func (a *fakeAcquirer) Acquire(ctx context.Context, source media.Source) (media.Entity, error) {
	if a.err != nil {
		return nil, a.err
	}
	return a.entities[source], nil
}

type fakeExporter struct {
	exported []audio.Artifact
}

func (e *fakeExporter) Export(ctx context.Context, artifact audio.Artifact) (distribution.Destination, error) {
	e.exported = append(e.exported, artifact)
	return distribution.Destination{Method: distribution.MethodCopied, Path: "/downloads/" + artifact.Filename()}, nil
}

// entityFor builds the entity a picker would return for kind
func entityFor(kind, path string) (media.Entity, error) {
	switch kind {
	case "video":
		return &media.Video{Attributes: media.Attributes{Path: path}}, nil
	case "image":
		return &media.Image{Attributes: media.Attributes{Path: path}}, nil
	case "live photo":
		stem := strings.TrimSuffix(path, filepath.Ext(path))
		return &media.LivePhoto{
			Photo: media.PhotoComponent{Path: stem + ".HEIC"},
			Video: media.VideoComponent{Path: path},
		}, nil
	}
	return nil, fmt.Errorf("unknown media kind %q", kind)
}
