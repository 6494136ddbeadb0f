package verdict

// #region verdict

// Verdict is a single peer's assertion plus confidence score for a decision
// context. Confidence is clamped to [0,1] at construction; a Verdict is never
// built from a payload missing either field. Immutable once created.
type Verdict struct {
	CoreName   string         `json:"core_name"`
	Assertion  string         `json:"verdict"`
	Confidence float64        `json:"confidence"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// #endregion verdict

// #region peer-outcome

// PeerStatus classifies how a single endpoint attempt ended. Silence
// (responded but nothing usable) and unavailability (no response at all)
// stay distinct so downstream telemetry can tell them apart.
type PeerStatus string

const (
	PeerAvailable   PeerStatus = "available"
	PeerSilent      PeerStatus = "silent"
	PeerUnavailable PeerStatus = "unavailable"
)

// PeerOutcome records the result of one endpoint attempt within a collect
// cycle, whether or not it yielded a verdict.
type PeerOutcome struct {
	CoreName string
	Status   PeerStatus
	Detail   string
}

// #endregion peer-outcome
