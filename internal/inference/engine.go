// Package inference computes per-window flood probabilities with a one-hop
// noisy-OR combination over the propagation network.
package inference

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/domain"
	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/network"
)

// Params are the tunable inference knobs. Both are explicit configuration,
// never hard-coded: the prior fills in for roads with no evidenced parent,
// the threshold defines the high-risk count in window summaries.
type Params struct {
	BaselinePrior     float64
	HighRiskThreshold float64
}

// Engine folds evidence windows into per-road probability estimates.
// Windows must be fed strictly in index order: window k's evidence is the
// accumulated prefix through k, so processing out of order would report
// probabilities against the wrong evidence state. Not safe for concurrent
// use; the run loop is single-threaded by design.
type Engine struct {
	net        *network.Network
	params     Params
	nextWindow int // 1-based index the engine expects next
}

// New creates an Engine over an immutable network.
func New(net *network.Network, params Params) *Engine {
	return &Engine{net: net, params: params, nextWindow: 1}
}

// Next computes the finalized report for the next window in sequence.
// Feeding a window out of order is a programming error, not a data
// condition, and fails loudly.
func (e *Engine) Next(w domain.TimeWindow) (domain.WindowReport, error) {
	if w.Index != e.nextWindow {
		return domain.WindowReport{}, fmt.Errorf("window %d processed out of order, expected %d", w.Index, e.nextWindow)
	}
	e.nextWindow++

	evidence := make(map[int]struct{}, len(w.NetworkEvidence))
	for _, s := range w.NetworkEvidence {
		if id, ok := e.net.Lookup(s); ok {
			evidence[id] = struct{}{}
		}
	}

	predictions := make([]domain.PredictionRecord, 0, e.net.NodeCount())
	var nonEvidenceProbs []float64
	highRisk := 0

	for _, node := range e.net.Nodes() {
		if _, ok := evidence[node.ID]; ok {
			predictions = append(predictions, domain.PredictionRecord{
				Road:        node.Name,
				Probability: 1.0,
				IsEvidence:  true,
			})
			continue
		}

		p := e.probability(node.ID, evidence)
		predictions = append(predictions, domain.PredictionRecord{
			Road:        node.Name,
			Probability: p,
		})
		nonEvidenceProbs = append(nonEvidenceProbs, p)
		if p >= e.params.HighRiskThreshold {
			highRisk++
		}
	}

	sort.SliceStable(predictions, func(i, j int) bool {
		if predictions[i].Probability != predictions[j].Probability {
			return predictions[i].Probability > predictions[j].Probability
		}
		return predictions[i].Road < predictions[j].Road
	})

	avg := 0.0
	if len(nonEvidenceProbs) > 0 {
		avg = stat.Mean(nonEvidenceProbs, nil)
	}

	return domain.WindowReport{
		Window:             w,
		Predictions:        predictions,
		AverageProbability: avg,
		HighRiskCount:      highRisk,
		NonEvidenceCount:   len(nonEvidenceProbs),
	}, nil
}

// probability is the noisy-OR combination over evidenced parents:
//
//	p(v) = 1 − Π (1 − w(p→v))
//
// Each evidenced parent contributes its edge weight; its own assigned
// probability of 1.0 never chains through. With no evidenced parent the
// baseline prior applies. Additional evidence only adds (1−w) factors ≤ 1,
// so widening the evidence set can never lower the result.
func (e *Engine) probability(v int, evidence map[int]struct{}) float64 {
	product := 1.0
	evidenced := false
	for _, edge := range e.net.Parents(v) {
		if _, ok := evidence[edge.Parent]; !ok {
			continue
		}
		evidenced = true
		product *= 1.0 - edge.Weight
	}
	if !evidenced {
		return e.params.BaselinePrior
	}
	return clamp01(1.0 - product)
}

func clamp01(p float64) float64 {
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	default:
		return p
	}
}
