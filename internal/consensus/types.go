package consensus

// #region recommendation

// Recommendation is the advisory's non-authoritative suggested action.
type Recommendation string

const (
	Proceed              Recommendation = "proceed"
	ProceedCautiously    Recommendation = "proceed_cautiously"
	PauseAndVerify       Recommendation = "pause_verify"
	EscalateToReview     Recommendation = "escalate"
	OutlierInvestigation Recommendation = "investigate_outlier"
)

// #endregion recommendation

// #region clustering

// Clustering describes the cohesion of the confidence distribution.
type Clustering string

const (
	ClusteringUnanimous  Clustering = "unanimous"
	ClusteringStrong     Clustering = "strong"
	ClusteringModerate   Clustering = "moderate"
	ClusteringFragmented Clustering = "fragmented"
	ClusteringConflicted Clustering = "conflicted"
)

// #endregion clustering

// #region advisory-signal

// CoreProbability pairs a core with its softmax weight. Order matches the
// input verdict list, not arrival time.
type CoreProbability struct {
	CoreName    string  `json:"core_name"`
	Probability float64 `json:"probability"`
}

// AdvisorySignal is the computed consensus advisory. It carries no identity
// and no timestamp: two calls with identical ordered verdict lists produce
// identical signals.
type AdvisorySignal struct {
	DominantVerdict      string            `json:"dominant_verdict"`
	SoftmaxProbabilities []CoreProbability `json:"softmax_probabilities"`
	OutlierDetected      string            `json:"outlier_detected,omitempty"`
	ConfidenceClustering Clustering        `json:"confidence_clustering"`
	ConsensusLevel       float64           `json:"consensus_level"`
	Recommendation       Recommendation    `json:"recommendation"`
	Distribution         map[string]int    `json:"verdict_distribution"`
	Explanation          string            `json:"advisory_explanation"`
}

// #endregion advisory-signal
