// Command floodtwin runs one complete flood-propagation inference pass:
// it builds the road network from historical closures, folds the live
// observation stream through windowed noisy-OR inference, and emits one
// document per time window. An HTTP surface serves health, metrics, and
// window-document polling while the run is in progress.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/adapter/httpadapter"
	kafkaadapter "github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/adapter/kafka"
	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/config"
	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/observability"
	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/pipeline"
	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/report"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)

	exp, err := config.LoadExperiment(cfg.ExperimentFile)
	if err != nil {
		logger.Error("failed to load experiment config", "error", err)
		os.Exit(1)
	}

	metrics := observability.NewMetrics()

	writer, err := report.NewWriter(exp.OutputDir)
	if err != nil {
		logger.Error("failed to prepare output directory", "error", err)
		os.Exit(1)
	}

	// Observation source and report sink (feature-flagged via KAFKA_ENABLED).
	var source pipeline.ObservationSource
	var sink pipeline.ReportSink
	var reader *kafkaadapter.Reader
	var publisher *kafkaadapter.Publisher
	if cfg.KafkaEnabled {
		reader = kafkaadapter.NewReader(cfg, logger)
		publisher = kafkaadapter.NewPublisher(cfg, logger)
		source = reader
		sink = publisher
		logger.Info("kafka telemetry enabled",
			"observation_topic", cfg.KafkaObservationTopic, "report_topic", cfg.KafkaReportTopic)
	} else {
		source = &pipeline.FileSource{Path: exp.ObservationCSV, Logger: logger}
		logger.Info("kafka telemetry disabled, reading observations from file",
			"path", exp.ObservationCSV)
	}

	p := pipeline.New(exp, source, sink, writer, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, writer, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	exitCode := 0
	select {
	case err := <-done:
		if err != nil {
			logger.Error("run failed", "error", err)
			exitCode = 1
		}
	case <-ctx.Done():
		logger.Info("shutdown requested, aborting run")
		<-done
		exitCode = 1
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if reader != nil {
		if err := reader.Close(); err != nil {
			logger.Error("kafka reader close error", "error", err)
		}
	}
	if publisher != nil {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka publisher close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
	os.Exit(exitCode)
}
