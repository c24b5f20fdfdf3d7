package prompt

import (
	"context"
	"fmt"

	"livephoto-audio/domain/distribution"
	"livephoto-audio/domain/media"
)

// ConfirmingSharer plays the part of a share sheet: it asks before handing
// the artifact to the real share target. Declining is a cancellation.
type ConfirmingSharer struct {
	prompter Prompter
	target   distribution.Sharer
	label    string
}

// NewConfirmingSharer wraps target. label names the target in the prompt.
func NewConfirmingSharer(prompter Prompter, target distribution.Sharer, label string) *ConfirmingSharer {
	if label == "" {
		label = "the share target"
	}
	return &ConfirmingSharer{prompter: prompter, target: target, label: label}
}

// Share implements distribution.Sharer
func (s *ConfirmingSharer) Share(ctx context.Context, req distribution.ShareRequest) (distribution.ShareResult, error) {
	ok, err := s.prompter.Confirm(fmt.Sprintf("Share %s to %s?", req.SuggestedName, s.label), true)
	if err != nil {
		return distribution.ShareResult{}, err
	}
	if !ok {
		return distribution.ShareResult{}, media.ErrUserCancelled
	}
	return s.target.Share(ctx, req)
}

// Ensure ConfirmingSharer implements distribution.Sharer
var _ distribution.Sharer = (*ConfirmingSharer)(nil)
