package audio

// Phase is the phase of a processing state machine
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseExtracting Phase = "extracting"
	PhaseExtracted  Phase = "extracted_idle"
	PhaseCleaning   Phase = "cleaning"
	PhaseCleaned    Phase = "cleaned_idle"
	PhaseFailed     Phase = "failed"
)

// State is a snapshot of a processing state machine.
//
// Artifact depends on the phase: the current artifact in PhaseExtracted and
// PhaseCleaned, the artifact being cleaned in PhaseCleaning, and the last good
// artifact (possibly nil) in PhaseFailed. Err is only set in PhaseFailed.
type State struct {
	Phase    Phase
	Artifact *Artifact
	Err      error
}

// Idle returns the initial state
func Idle() State {
	return State{Phase: PhaseIdle}
}

// InFlight reports whether an extraction or cleaning is outstanding
func (s State) InFlight() bool {
	return s.Phase == PhaseExtracting || s.Phase == PhaseCleaning
}

// Current returns the most recent good artifact, if any
func (s State) Current() (Artifact, bool) {
	if s.Artifact == nil || s.Phase == PhaseIdle || s.Phase == PhaseExtracting {
		return Artifact{}, false
	}
	return *s.Artifact, true
}

// Failed reports whether the last operation failed
func (s State) Failed() bool {
	return s.Phase == PhaseFailed
}
