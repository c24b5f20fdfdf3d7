package player

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations for testing ---

type mockProcess struct {
	exit   chan error
	mu     sync.Mutex
	killed bool
}

func newMockProcess() *mockProcess {
	return &mockProcess{exit: make(chan error, 1)}
}

func (p *mockProcess) Wait() error {
	return <-p.exit
}

func (p *mockProcess) Kill() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.killed {
		p.killed = true
		p.exit <- errors.New("signal: killed")
	}
	return nil
}

func (p *mockProcess) isKilled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

// finish simulates ffplay reaching the end of the file
func (p *mockProcess) finish() {
	p.exit <- nil
}

type mockStarter struct {
	mu    sync.Mutex
	procs []*mockProcess
	args  [][]string
	err   error
}

func (s *mockStarter) Start(name string, args ...string) (Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	p := newMockProcess()
	s.procs = append(s.procs, p)
	s.args = append(s.args, args)
	return p, nil
}

func (s *mockStarter) last() (*mockProcess, []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.procs[len(s.procs)-1], s.args[len(s.args)-1]
}

func (s *mockStarter) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.procs)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func openTestHandle(t *testing.T) (*Handle, *mockStarter, *fakeClock, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "a.m4a")
	require.NoError(t, os.WriteFile(path, []byte("audio"), 0644))

	starter := &mockStarter{}
	clock := &fakeClock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	provider := NewProvider(WithProcessStarter(starter), WithClock(clock.Now), WithLogger(quietLogger()))

	h, err := provider.Open(context.Background(), path)
	require.NoError(t, err)
	return h.(*Handle), starter, clock, path
}

// --- Tests ---

func TestProvider_OpenMissingFile(t *testing.T) {
	provider := NewProvider(WithProcessStarter(&mockStarter{}), WithLogger(quietLogger()))
	_, err := provider.Open(context.Background(), "/does/not/exist.m4a")
	assert.Error(t, err)
}

func TestHandle_PlayPauseResume(t *testing.T) {
	h, starter, clock, path := openTestHandle(t)

	require.NoError(t, h.Play(func() {}))
	_, args := starter.last()
	assert.Equal(t, []string{"-nodisp", "-autoexit", "-loglevel", "quiet", path}, args)

	clock.Advance(1500 * time.Millisecond)
	assert.InDelta(t, 1.5, h.Position(), 0.001)

	require.NoError(t, h.Pause())
	first := starter.procs[0]
	assert.True(t, first.isKilled())

	clock.Advance(10 * time.Second)
	assert.InDelta(t, 1.5, h.Position(), 0.001, "position is frozen while paused")

	require.NoError(t, h.Play(func() {}))
	_, args = starter.last()
	assert.Contains(t, strings.Join(args, " "), "-ss 1.500")
}

func TestHandle_NaturalEndCallsOnComplete(t *testing.T) {
	h, starter, _, _ := openTestHandle(t)

	done := make(chan struct{}, 2)
	require.NoError(t, h.Play(func() { done <- struct{}{} }))

	proc, _ := starter.last()
	proc.finish()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("onComplete not called")
	}
	assert.Equal(t, 0.0, h.Position())

	select {
	case <-done:
		t.Fatal("onComplete called twice")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHandle_PauseDoesNotComplete(t *testing.T) {
	h, _, _, _ := openTestHandle(t)

	called := make(chan struct{}, 1)
	require.NoError(t, h.Play(func() { called <- struct{}{} }))
	require.NoError(t, h.Pause())

	select {
	case <-called:
		t.Fatal("onComplete called after pause")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestHandle_SeekWhilePlayingRestartsAndKeepsCallback(t *testing.T) {
	h, starter, _, _ := openTestHandle(t)

	done := make(chan struct{}, 1)
	require.NoError(t, h.Play(func() { done <- struct{}{} }))
	first, _ := starter.last()

	require.NoError(t, h.Seek(3))
	assert.True(t, first.isKilled())
	assert.Equal(t, 2, starter.count())

	second, args := starter.last()
	assert.Contains(t, strings.Join(args, " "), "-ss 3.000")
	assert.InDelta(t, 3.0, h.Position(), 0.001)

	second.finish()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("onComplete lost after seek")
	}
}

func TestHandle_SeekWhileStopped(t *testing.T) {
	h, starter, _, _ := openTestHandle(t)

	require.NoError(t, h.Seek(2))
	assert.Equal(t, 0, starter.count())
	assert.Equal(t, 2.0, h.Position())
}

func TestHandle_Stop(t *testing.T) {
	h, starter, clock, _ := openTestHandle(t)

	require.NoError(t, h.Play(nil))
	clock.Advance(2 * time.Second)
	require.NoError(t, h.Stop())

	proc, _ := starter.last()
	assert.True(t, proc.isKilled())
	assert.Equal(t, 0.0, h.Position())
}

func TestHandle_Release(t *testing.T) {
	h, starter, _, _ := openTestHandle(t)

	require.NoError(t, h.Play(nil))
	require.NoError(t, h.Release())
	require.NoError(t, h.Release())

	proc, _ := starter.last()
	assert.True(t, proc.isKilled())
	assert.ErrorIs(t, h.Play(nil), ErrReleased)
	assert.ErrorIs(t, h.Seek(1), ErrReleased)
}

func TestHandle_StartFailure(t *testing.T) {
	h, starter, _, _ := openTestHandle(t)
	starter.err = errors.New("executable file not found")

	assert.Error(t, h.Play(nil))
	assert.Equal(t, 0.0, h.Position())
}
