// Package events defines event types and structures for validation lifecycle notifications.
package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/dukex/flowlint/pkg/models"
)

type EventType string

// Kafka topics.
const Topic = "flowlint.events"                // Topic for validation lifecycle events
const DeployGateTopic = "flowlint.deploy-gate" // Compact pass/fail verdicts for deploy gating

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	// Validation lifecycle events.
	ValidationStartedEvent  EventType = "workflow.validation.started"
	ValidationFinishedEvent EventType = "workflow.validation.finished"
	ValidationFailedEvent   EventType = "workflow.validation.failed"

	// Workflow registry events.
	WorkflowSavedEvent   EventType = "workflow.saved"
	WorkflowDeletedEvent EventType = "workflow.deleted"
)

type BaseEvent struct {
	ID         string         `json:"id"`
	Type       EventType      `json:"type"`
	Timestamp  time.Time      `json:"timestamp"`
	WorkflowID string         `json:"workflow_id"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

type ValidationStarted struct {
	BaseEvent

	WorkflowName string   `json:"workflow_name"`
	WorkflowHash string   `json:"workflow_hash"`
	Overrides    []string `json:"overrides,omitempty"`
	Initiator    string   `json:"initiator"`
}

func (v ValidationStarted) GetType() EventType {
	return ValidationStartedEvent
}

type ValidationFinished struct {
	BaseEvent

	WorkflowName string `json:"workflow_name"`
	WorkflowHash string `json:"workflow_hash"`
	Valid        bool   `json:"valid"`
	Errors       int    `json:"errors"`
	Warnings     int    `json:"warnings"`
	Cached       bool   `json:"cached"`
	DurationMs   int64  `json:"duration_ms"`
}

func (v ValidationFinished) GetType() EventType {
	return ValidationFinishedEvent
}

// ValidationFailed signals that the validator itself could not run, as
// opposed to a workflow failing validation.
type ValidationFailed struct {
	BaseEvent

	WorkflowName string `json:"workflow_name"`
	Error        string `json:"error"`
}

func (v ValidationFailed) GetType() EventType {
	return ValidationFailedEvent
}

type WorkflowSaved struct {
	BaseEvent

	WorkflowName string `json:"workflow_name"`
	NodeCount    int    `json:"node_count"`
}

func (w WorkflowSaved) GetType() EventType {
	return WorkflowSavedEvent
}

type WorkflowDeleted struct {
	BaseEvent
}

func (w WorkflowDeleted) GetType() EventType {
	return WorkflowDeletedEvent
}

// DeployGateVerdict is the compact message published to the deploy-gate
// topic after every validation run.
type DeployGateVerdict struct {
	WorkflowID string          `json:"workflow_id"`
	Valid      bool            `json:"valid"`
	Errors     int             `json:"errors"`
	Warnings   int             `json:"warnings"`
	Severity   models.Severity `json:"worst_severity,omitempty"`
	Timestamp  time.Time       `json:"timestamp"`
}

func NewBaseEvent(eventType EventType, workflowID string) BaseEvent {
	return BaseEvent{
		ID:         uuid.New().String(),
		Type:       eventType,
		Timestamp:  time.Now().UTC(),
		WorkflowID: workflowID,
		Metadata:   make(map[string]any),
	}
}
