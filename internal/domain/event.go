package domain

import (
	"strings"
	"time"
)

// FloodEvent is one historical closure record that survived filtering.
// Immutable once created by the loader.
type FloodEvent struct {
	Street     string
	Start      time.Time
	IncidentID string
}

// Incident groups the streets reported flooded as part of one historical
// occurrence. Streets are unique and sorted.
type Incident struct {
	ID      string
	Date    time.Time // UTC midnight of the clustering day
	Streets []string
}

// Contains reports whether the incident includes the given street.
func (in Incident) Contains(street string) bool {
	for _, s := range in.Streets {
		if s == street {
			return true
		}
	}
	return false
}

// TrainingSet is the loader's output: incidents in chronological order plus
// per-street occurrence counts (number of incidents mentioning the street).
type TrainingSet struct {
	Incidents   []Incident
	Events      []FloodEvent
	Occurrences map[string]int

	TotalRecords  int    // filtered FLOOD rows that parsed cleanly
	UniqueStreets int
	SkippedRows   int    // malformed rows dropped during parsing
	Source        string // provenance, e.g. the CSV path
}

// Observation is one confirmed flood sighting from the live stream.
type Observation struct {
	Street string    `json:"street"`
	Time   time.Time `json:"start_time"`
	Split  string    `json:"split,omitempty"` // upstream tag, unused by the core
}

// TimeWindow is one fixed-duration evidence bucket. Evidence slices are
// cumulative through this window and sorted.
type TimeWindow struct {
	Index int       // 1-based
	Start time.Time // inclusive
	End   time.Time // exclusive
	Label string    // wall-clock label, "15:04-15:14"

	CumulativeEvidence []string // every street observed in windows 1..Index
	NetworkEvidence    []string // the subset that belongs to the network node set
}

// PredictionRecord is one road's probability estimate for a window.
type PredictionRecord struct {
	Road        string  `json:"road"`
	Probability float64 `json:"probability"`
	IsEvidence  bool    `json:"is_evidence"`
}

// WindowReport is the finalized inference result for one window.
// Never mutated after the engine emits it.
type WindowReport struct {
	Window      TimeWindow
	Predictions []PredictionRecord // probability descending, ties by road name

	AverageProbability float64 // mean over non-evidence roads
	HighRiskCount      int     // non-evidence roads with probability ≥ threshold
	NonEvidenceCount   int
}

// NormalizeStreet converts a raw street name to its canonical identifier:
// trimmed, upper-cased, interior spaces replaced with underscores. The
// downstream map renderer joins on this form.
func NormalizeStreet(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	return strings.ReplaceAll(name, " ", "_")
}
