// Package pipeline wires the run: load history, build the network,
// partition observations, fold windows through inference, emit documents.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/config"
	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/domain"
	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/inference"
	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/network"
	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/observability"
	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/report"
	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/window"
)

// ObservationSource provides the complete observation stream before the
// run starts. The engine does no I/O mid-computation, so sources must
// return everything up front.
type ObservationSource interface {
	Observations(ctx context.Context) ([]domain.Observation, error)
}

// ReportSink receives each window document after its file has been
// written. Publishing is a side channel; the emitted files remain the
// source of truth.
type ReportSink interface {
	Publish(ctx context.Context, doc report.Document) error
}

// Pipeline executes one complete inference run. A run either finishes in
// full or aborts without emitting a partial window; rerunning with
// identical inputs is idempotent.
type Pipeline struct {
	exp     config.Experiment
	source  ObservationSource
	sink    ReportSink // nil disables publishing
	writer  *report.Writer
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool
}

// New assembles a Pipeline. Pass a nil sink to disable report publishing.
func New(exp config.Experiment, source ObservationSource, sink ReportSink, writer *report.Writer, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		exp:     exp,
		source:  source,
		sink:    sink,
		writer:  writer,
		logger:  logger,
		metrics: metrics,
	}
}

// CheckReadiness returns nil once at least one window document has been
// emitted.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no window document emitted yet")
	}
	return nil
}

// Run executes the full pipeline. Window processing is strictly
// sequential: window k's probabilities are only valid against the fully
// determined evidence prefix through k.
func (p *Pipeline) Run(ctx context.Context) error {
	p.metrics.RunActive.Set(1)
	defer p.metrics.RunActive.Set(0)

	training, err := LoadTraining(p.exp.TrainingCSV, p.logger)
	if err != nil {
		return err
	}
	p.metrics.IncidentsLoaded.Set(float64(len(training.Incidents)))
	p.metrics.RowsSkipped.Add(float64(training.SkippedRows))
	p.logger.Info("training data loaded",
		"source", training.Source,
		"records", training.TotalRecords,
		"streets", training.UniqueStreets,
		"incidents", len(training.Incidents),
	)

	thr := network.Thresholds{
		Occurrence: p.exp.OccurrenceThreshold,
		Edge:       p.exp.EdgeThreshold,
		Weight:     p.exp.WeightThreshold,
	}
	net := network.Build(training.Incidents, thr)
	if net.NodeCount() == 0 {
		return domain.Dataf("no street meets occurrence threshold %d", thr.Occurrence)
	}
	p.metrics.NetworkNodes.Set(float64(net.NodeCount()))
	p.metrics.NetworkEdges.Set(float64(net.EdgeCount()))
	p.logger.Info("network built", "nodes", net.NodeCount(), "edges", net.EdgeCount())

	observations, err := p.source.Observations(ctx)
	if err != nil {
		return err
	}

	windows, err := window.Partition(observations, p.exp.WindowMinutes, net)
	if err != nil {
		return err
	}
	p.metrics.WindowsTotal.Set(float64(len(windows)))
	p.logger.Info("observation stream partitioned",
		"observations", len(observations), "windows", len(windows), "window_minutes", p.exp.WindowMinutes)

	engine := inference.New(net, inference.Params{
		BaselinePrior:     p.exp.BaselinePrior,
		HighRiskThreshold: p.exp.HighRiskThreshold,
	})
	serializer := report.NewSerializer(report.RunInfo{
		ExperimentName: p.exp.Name,
		Description:    p.exp.Description,
		RandomSeed:     p.exp.RandomSeed,
	}, training, net, thr)

	for _, w := range windows {
		// Abort cleanly between windows; never emit a half-computed one.
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.processWindow(ctx, engine, serializer, w); err != nil {
			return err
		}
	}

	p.logger.Info("run complete", "windows", len(windows))
	return nil
}

func (p *Pipeline) processWindow(ctx context.Context, engine *inference.Engine, serializer *report.Serializer, w domain.TimeWindow) error {
	start := time.Now()

	rep, err := engine.Next(w)
	if err != nil {
		return err
	}
	doc, err := serializer.Document(rep)
	if err != nil {
		return err
	}
	path, err := p.writer.Write(doc)
	if err != nil {
		return err
	}

	if p.sink != nil {
		// File emission already succeeded, so a publish failure degrades
		// the side channel without failing the run.
		if err := p.sink.Publish(ctx, doc); err != nil {
			p.logger.Warn("report publish failed", "window", w.Index, "error", err)
		} else {
			p.metrics.ReportsPublished.Inc()
		}
	}

	p.metrics.WindowsProcessed.Inc()
	p.metrics.WindowDuration.Observe(time.Since(start).Seconds())
	p.metrics.HighRiskRoads.Set(float64(rep.HighRiskCount))
	p.ready.Store(true)

	p.logger.Info("window emitted",
		"window", w.Index,
		"label", w.Label,
		"evidence", len(w.CumulativeEvidence),
		"network_evidence", len(w.NetworkEvidence),
		"high_risk", rep.HighRiskCount,
		"avg_probability", rep.AverageProbability,
		"file", path,
	)
	return nil
}
