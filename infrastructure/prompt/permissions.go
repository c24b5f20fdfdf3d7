package prompt

import (
	"context"
	"fmt"
	"sync"

	"livephoto-audio/domain/media"
)

var capabilityNames = map[media.Capability]string{
	media.CapabilityCamera:       "the camera",
	media.CapabilityPhotoLibrary: "your photo library",
}

// PermissionProvider asks once per capability and remembers the answer for
// the rest of the process. It implements media.PermissionProvider.
type PermissionProvider struct {
	prompter Prompter
	preset   map[media.Capability]bool

	mu      sync.Mutex
	answers map[media.Capability]bool
}

// NewPermissionProvider creates a provider. Capabilities in granted are
// allowed without asking.
func NewPermissionProvider(prompter Prompter, granted ...media.Capability) *PermissionProvider {
	preset := make(map[media.Capability]bool, len(granted))
	for _, c := range granted {
		preset[c] = true
	}
	return &PermissionProvider{
		prompter: prompter,
		preset:   preset,
		answers:  make(map[media.Capability]bool),
	}
}

// CheckOrRequest implements media.PermissionProvider
func (p *PermissionProvider) CheckOrRequest(ctx context.Context, capability media.Capability) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if p.preset[capability] {
		return true, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if granted, ok := p.answers[capability]; ok {
		return granted, nil
	}

	name, ok := capabilityNames[capability]
	if !ok {
		name = string(capability)
	}
	granted, err := p.prompter.Confirm(fmt.Sprintf("Allow access to %s?", name), true)
	if err != nil {
		return false, err
	}
	p.answers[capability] = granted
	return granted, nil
}

// Ensure PermissionProvider implements media.PermissionProvider
var _ media.PermissionProvider = (*PermissionProvider)(nil)
