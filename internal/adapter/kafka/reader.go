// Package kafka adapts the engine's observation source and report sink to
// Kafka topics. Both are optional; file input and output remain the
// defaults.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/config"
	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/domain"
)

// Reader drains the observation topic into an in-memory stream before the
// run starts. It implements pipeline.ObservationSource.
type Reader struct {
	reader       *kafkago.Reader
	topic        string
	drainTimeout time.Duration
	logger       *slog.Logger
}

// NewReader creates a consumer over the configured observation topic,
// starting at the earliest offset.
func NewReader(cfg *config.Config, logger *slog.Logger) *Reader {
	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     cfg.KafkaBrokers,
		Topic:       cfg.KafkaObservationTopic,
		GroupID:     cfg.KafkaGroupID,
		StartOffset: kafkago.FirstOffset,
	})
	return &Reader{
		reader:       r,
		topic:        cfg.KafkaObservationTopic,
		drainTimeout: cfg.KafkaDrainTimeout,
		logger:       logger,
	}
}

// Observations reads until the topic yields nothing for the drain timeout,
// then returns the sorted stream. All input is collected up front; the
// engine performs no Kafka I/O mid-computation. Malformed messages are
// skipped with a warning; a fully empty drain is a DataError.
func (r *Reader) Observations(ctx context.Context) ([]domain.Observation, error) {
	var observations []domain.Observation
	for {
		readCtx, cancel := context.WithTimeout(ctx, r.drainTimeout)
		msg, err := r.reader.ReadMessage(readCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				break // drained
			}
			return nil, fmt.Errorf("read observation topic %s: %w", r.topic, err)
		}

		obs, err := mapMessageToObservation(msg)
		if err != nil {
			r.logger.Warn("skipping malformed observation message",
				"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "error", err)
			continue
		}
		observations = append(observations, obs)
	}

	if len(observations) == 0 {
		return nil, domain.Dataf("observation topic %s yielded no messages", r.topic)
	}

	domain.SortObservations(observations)
	return observations, nil
}

func (r *Reader) Close() error {
	return r.reader.Close()
}

// mapMessageToObservation deserializes one telemetry message. The message
// timestamp backfills a missing start_time.
func mapMessageToObservation(msg kafkago.Message) (domain.Observation, error) {
	var obs domain.Observation
	if err := json.Unmarshal(msg.Value, &obs); err != nil {
		return domain.Observation{}, fmt.Errorf("parse observation message: %w", err)
	}
	obs.Street = domain.NormalizeStreet(obs.Street)
	if obs.Street == "" {
		return domain.Observation{}, errors.New("observation message has empty street")
	}
	if obs.Time.IsZero() {
		obs.Time = msg.Time
	}
	return obs, nil
}
