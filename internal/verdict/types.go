package verdict

// Unidentified is the sentinel label produced by the rejection gate. The
// Model never emits it.
const Unidentified = "Unidentified"

type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

type Reliability string

const (
	Reliable   Reliability = "reliable"
	Moderate   Reliability = "moderate"
	Uncertain  Reliability = "uncertain"
	Unreliable Reliability = "unreliable"
)

// Alternative is one ranked (label, confidence) pair.
type Alternative struct {
	Class      string  `json:"class"`
	Confidence float64 `json:"confidence"`
}

type DiseaseInfo struct {
	Treatment  string `json:"treatment"`
	Prevention string `json:"prevention"`
}

type Guidance struct {
	Disclaimer          string       `json:"disclaimer"`
	ConfidenceThreshold float64      `json:"confidence_threshold"`
	NextSteps           []string     `json:"next_steps"`
	DiseaseInfo         *DiseaseInfo `json:"disease_info,omitempty"`
}

// Verdict is the result of one Classify call. ConfidenceLevel is empty for
// unidentified verdicts.
type Verdict struct {
	PredictedClass  string        `json:"predicted_class"`
	Confidence      float64       `json:"confidence"`
	ConfidenceLevel Tier          `json:"confidence_level,omitempty"`
	Reliability     Reliability   `json:"reliability"`
	AllPredictions  []Alternative `json:"all_predictions"`
	Guidance        Guidance      `json:"guidance"`
	IsUnidentified  bool          `json:"is_unidentified"`
}
