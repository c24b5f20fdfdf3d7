package player

import (
	"os/exec"
)

// Process is a started playback process
type Process interface {
	// Wait blocks until the process exits
	Wait() error
	// Kill stops the process immediately
	Kill() error
}

// ProcessStarter starts playback processes
// This allows mocking exec.Command in tests
type ProcessStarter interface {
	Start(name string, args ...string) (Process, error)
}

// ExecProcessStarter is the production implementation using os/exec
type ExecProcessStarter struct{}

// Start launches the command without waiting for it
func (s *ExecProcessStarter) Start(name string, args ...string) (Process, error) {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return &execProcess{cmd: cmd}, nil
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Wait() error {
	return p.cmd.Wait()
}

func (p *execProcess) Kill() error {
	return p.cmd.Process.Kill()
}
