package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/config"
	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/domain"
	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/report"
)

// Publisher writes each completed window document to the report topic.
// It implements pipeline.ReportSink. Messages arrive in strict window
// order because the run loop publishes them sequentially.
type Publisher struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewPublisher creates a producer for the configured report topic.
func NewPublisher(cfg *config.Config, logger *slog.Logger) *Publisher {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaReportTopic,
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Publisher{writer: w, logger: logger}
}

// Publish serializes and sends one window document.
func (p *Publisher) Publish(ctx context.Context, doc report.Document) error {
	msg, err := serializeReportMessage(doc)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// serializeReportMessage marshals a window document into a Kafka message
// keyed by window ID, so consumers can spot gaps in the sequence.
func serializeReportMessage(doc report.Document) (kafkago.Message, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize window document: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(strconv.Itoa(doc.CurrentWindow.WindowID)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "experiment", Value: []byte(doc.ExperimentMetadata.ExperimentName)},
			{Key: "window_id", Value: []byte(strconv.Itoa(doc.CurrentWindow.WindowID))},
			{Key: "emitted_at", Value: []byte(domain.Now().UTC().Format(time.RFC3339))},
		},
	}, nil
}
