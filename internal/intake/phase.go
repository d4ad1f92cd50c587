package intake

// Phase is the workflow state of a session.
type Phase string

const (
	PhaseIdle              Phase = "idle"
	PhaseUploading         Phase = "uploading"
	PhaseAwaitingSignature Phase = "awaiting_signature"
	PhasePersisting        Phase = "persisting"
	PhaseRegenerating      Phase = "regenerating"
	PhaseSucceeded         Phase = "succeeded"
	PhaseFailed            Phase = "failed"
	PhaseBlocked           Phase = "blocked"
	PhaseClosed            Phase = "closed"
)

// Stage names the step that left a session in PhaseFailed.
type Stage string

const (
	StageUpload    Stage = "upload"
	StageSignature Stage = "signature"
)

// Busy reports whether a backend call is in flight.
func (p Phase) Busy() bool {
	return p == PhaseUploading || p == PhasePersisting || p == PhaseRegenerating
}

// Terminal reports whether the session accepts no further workflow actions.
func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseBlocked || p == PhaseClosed
}
