// Package report assembles the per-window documents consumed downstream:
// the map renderer reads current_window.predictions, the orchestration
// layer polls documents in window order and treats the last one as the
// completion signal. Field names and order are an external contract and
// must not drift.
package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/domain"
	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/network"
)

// Document is the externally visible per-window report.
type Document struct {
	ExperimentMetadata ExperimentMetadata `json:"experiment_metadata"`
	TrainingDataInfo   TrainingDataInfo   `json:"training_data_info"`
	BayesianNetwork    BayesianNetwork    `json:"bayesian_network"`
	CurrentWindow      CurrentWindow      `json:"current_window"`
}

// ExperimentMetadata identifies the run. The seed is provenance only and
// never affects numeric content.
type ExperimentMetadata struct {
	ExperimentName string `json:"experiment_name"`
	Timestamp      string `json:"timestamp"`
	Description    string `json:"description"`
	RandomSeed     int64  `json:"random_seed"`
}

type TrainingDataInfo struct {
	TotalRecords  int    `json:"total_records"`
	UniqueStreets int    `json:"unique_streets"`
	DataSource    string `json:"data_source"`
}

type BayesianNetwork struct {
	Parameters NetworkParameters `json:"parameters"`
	Statistics NetworkStatistics `json:"statistics"`
	AllNodes   []string          `json:"all_nodes"`
}

type NetworkParameters struct {
	OccThr    int     `json:"occ_thr"`
	EdgeThr   int     `json:"edge_thr"`
	WeightThr float64 `json:"weight_thr"`
}

type NetworkStatistics struct {
	TotalNodes int `json:"total_nodes"`
	TotalEdges int `json:"total_edges"`
}

type CurrentWindow struct {
	WindowID     int                       `json:"window_id"`
	WindowLabel  string                    `json:"window_label"`
	Evidence     Evidence                  `json:"evidence"`
	Predictions  []domain.PredictionRecord `json:"predictions"`
	SummaryStats SummaryStats              `json:"summary_stats"`
}

type Evidence struct {
	CumulativeEvidenceRoads []string `json:"cumulative_evidence_roads"`
	NetworkEvidenceRoads    []string `json:"network_evidence_roads"`
	EvidenceCount           int      `json:"evidence_count"`
	NetworkEvidenceCount    int      `json:"network_evidence_count"`
}

type SummaryStats struct {
	AveragePredictionProbability float64 `json:"average_prediction_probability"`
	HighRiskRoadsCount           int     `json:"high_risk_roads_count"`
	TotalNonEvidenceRoads        int     `json:"total_non_evidence_roads"`
}

// RunInfo is the static experiment metadata shared by every window
// document of a run.
type RunInfo struct {
	ExperimentName string
	Description    string
	RandomSeed     int64
}

// Serializer is a pure function from (run metadata, network, window
// report) to a Document. The network and training set are fixed for the
// whole run, so their sections are assembled once.
type Serializer struct {
	run      RunInfo
	training TrainingDataInfo
	network  BayesianNetwork
}

// NewSerializer captures the static sections of the document.
func NewSerializer(run RunInfo, training *domain.TrainingSet, net *network.Network, thr network.Thresholds) *Serializer {
	return &Serializer{
		run: run,
		training: TrainingDataInfo{
			TotalRecords:  training.TotalRecords,
			UniqueStreets: training.UniqueStreets,
			DataSource:    training.Source,
		},
		network: BayesianNetwork{
			Parameters: NetworkParameters{
				OccThr:    thr.Occurrence,
				EdgeThr:   thr.Edge,
				WeightThr: thr.Weight,
			},
			Statistics: NetworkStatistics{
				TotalNodes: net.NodeCount(),
				TotalEdges: net.EdgeCount(),
			},
			AllNodes: net.Names(),
		},
	}
}

// Document assembles the external document for one finalized window
// report. An internally inconsistent report is an assertion failure, not
// a recoverable condition: it means the engine violated its own
// invariants and nothing downstream can be trusted.
func (s *Serializer) Document(rep domain.WindowReport) (Document, error) {
	if err := checkConsistency(rep); err != nil {
		return Document{}, err
	}

	return Document{
		ExperimentMetadata: ExperimentMetadata{
			ExperimentName: s.run.ExperimentName,
			Timestamp:      domain.Now().UTC().Format(time.RFC3339),
			Description:    s.run.Description,
			RandomSeed:     s.run.RandomSeed,
		},
		TrainingDataInfo: s.training,
		BayesianNetwork:  s.network,
		CurrentWindow: CurrentWindow{
			WindowID:    rep.Window.Index,
			WindowLabel: rep.Window.Label,
			Evidence: Evidence{
				CumulativeEvidenceRoads: rep.Window.CumulativeEvidence,
				NetworkEvidenceRoads:    rep.Window.NetworkEvidence,
				EvidenceCount:           len(rep.Window.CumulativeEvidence),
				NetworkEvidenceCount:    len(rep.Window.NetworkEvidence),
			},
			Predictions: rep.Predictions,
			SummaryStats: SummaryStats{
				AveragePredictionProbability: rep.AverageProbability,
				HighRiskRoadsCount:           rep.HighRiskCount,
				TotalNonEvidenceRoads:        rep.NonEvidenceCount,
			},
		},
	}, nil
}

func checkConsistency(rep domain.WindowReport) error {
	if rep.Window.Index < 1 {
		return fmt.Errorf("inconsistent window report: window index %d", rep.Window.Index)
	}
	if got, want := len(rep.Predictions), rep.NonEvidenceCount+len(rep.Window.NetworkEvidence); got != want {
		return fmt.Errorf("inconsistent window report %d: %d predictions, expected %d (non-evidence %d + evidence %d)",
			rep.Window.Index, got, want, rep.NonEvidenceCount, len(rep.Window.NetworkEvidence))
	}
	for _, p := range rep.Predictions {
		if p.Probability < 0 || p.Probability > 1 {
			return fmt.Errorf("inconsistent window report %d: probability %v for %s out of range",
				rep.Window.Index, p.Probability, p.Road)
		}
		if p.IsEvidence && p.Probability != 1.0 {
			return fmt.Errorf("inconsistent window report %d: evidence road %s not pinned to 1.0",
				rep.Window.Index, p.Road)
		}
	}
	return nil
}

// Parse decodes a serialized window document. Round-tripping through
// Parse reproduces an identical structure.
func Parse(data []byte) (Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parse window document: %w", err)
	}
	return doc, nil
}
