package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"github.com/dukex/flowlint/pkg/events"
	"github.com/dukex/flowlint/pkg/models"
)

// DeployGatePublisher publishes compact pass/fail verdicts to a dedicated
// Kafka topic so CI/CD pipelines can gate deploys without consuming the
// full event stream.
type DeployGatePublisher struct {
	producer sarama.SyncProducer
	logger   *slog.Logger
	topic    string
}

// NewDeployGatePublisher creates a synchronous Kafka producer for the
// deploy-gate topic.
func NewDeployGatePublisher(logger *slog.Logger, brokers []string) (*DeployGatePublisher, error) {
	config := sarama.NewConfig()
	config.Producer.Return.Successes = true
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create deploy-gate producer: %w", err)
	}

	return &DeployGatePublisher{
		producer: producer,
		logger:   logger,
		topic:    events.DeployGateTopic,
	}, nil
}

// PublishVerdict sends the verdict for a finished validation run, keyed by
// workflow ID so consumers only need the latest message per workflow.
func (p *DeployGatePublisher) PublishVerdict(ctx context.Context, report *models.Report) error {
	verdict := events.DeployGateVerdict{
		WorkflowID: report.WorkflowID,
		Valid:      report.Valid(),
		Errors:     report.Errors,
		Warnings:   report.Warnings,
		Timestamp:  time.Now().UTC(),
	}

	if report.Errors > 0 {
		verdict.Severity = models.SeverityError
	} else if report.Warnings > 0 {
		verdict.Severity = models.SeverityWarning
	}

	payload, err := json.Marshal(verdict)
	if err != nil {
		return fmt.Errorf("failed to marshal deploy-gate verdict: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(report.WorkflowID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to publish deploy-gate verdict: %w", err)
	}

	p.logger.InfoContext(ctx, "Published deploy-gate verdict",
		"workflow_id", report.WorkflowID,
		"valid", verdict.Valid,
		"partition", partition,
		"offset", offset,
	)

	return nil
}

// Close shuts down the underlying producer.
func (p *DeployGatePublisher) Close() error {
	return p.producer.Close()
}
