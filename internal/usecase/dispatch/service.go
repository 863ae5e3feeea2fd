// Package dispatch implements the alert pipeline state machine: gate check,
// durable record, message rendering, channel delivery, terminal status.
// A record, once created, always ends in SUCCESS or ERROR; the deferred
// reconciliation in Send guarantees no record is left PENDING even when a
// later step panics.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shopalert/internal/domain/entity"
	"shopalert/internal/infra/publisher"
	"shopalert/internal/repository"
	"shopalert/internal/usecase/gate"
	"shopalert/internal/usecase/template"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("shopalert/dispatch")

// Skip reasons reported in Outcome.Reason and the skip metric.
const (
	SkipDisabled     = "disabled"
	SkipUnconfigured = "unconfigured"
	SkipUnknownTopic = "unknown_topic"
)

// InterruptedDetail is written when a dispatch ends without reaching a
// terminal status update of its own: by the in-process reconciliation path
// here, and by the sweep worker for records a crashed process left behind.
const InterruptedDetail = "dispatch interrupted"

// ConfigGate answers whether an event may alert and with which credentials.
// Satisfied by *gate.Gate.
type ConfigGate interface {
	Check(ctx context.Context, shopID string, eventType entity.EventType) (gate.Decision, error)
}

// SendInput describes one dispatch request.
type SendInput struct {
	ShopID    string
	EventType entity.EventType

	// Message is pre-rendered text. When empty, the template engine renders
	// from Context.
	Message string

	// Context feeds the template engine when Message is empty.
	Context template.Context

	// ExistingAlertID re-enters an existing record (resend path) instead of
	// creating a new one.
	ExistingAlertID string
}

// Service is the dispatch orchestrator.
type Service struct {
	gate      ConfigGate
	alerts    repository.AlertRepository
	engine    *template.Engine
	publisher publisher.Publisher

	now   func() time.Time
	newID func() string
}

// NewService wires the orchestrator from its collaborators.
func NewService(g ConfigGate, alerts repository.AlertRepository, engine *template.Engine, pub publisher.Publisher) *Service {
	return &Service{
		gate:      g,
		alerts:    alerts,
		engine:    engine,
		publisher: pub,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Send runs one pass of the dispatch state machine.
//
// Silent paths (no record, nil error): event disabled for the shop, or no
// channel configured. Loud paths (record marked ERROR, error returned):
// unsupported channel on an enabled event, publish failure. The returned
// Outcome always tells which path was taken.
func (s *Service) Send(ctx context.Context, input SendInput) (Outcome, error) {
	ctx, span := tracer.Start(ctx, "dispatch.send")
	defer span.End()
	span.SetAttributes(
		attribute.String("shop.id", input.ShopID),
		attribute.String("event.type", string(input.EventType)),
		attribute.Bool("resend", input.ExistingAlertID != ""),
	)

	start := s.now()

	decision, err := s.gate.Check(ctx, input.ShopID, input.EventType)
	if err != nil {
		if errors.Is(err, gate.ErrUnsupportedChannel) {
			return s.failWithRecord(ctx, input, err, start)
		}
		span.SetStatus(codes.Error, err.Error())
		return Outcome{}, fmt.Errorf("Send: %w", err)
	}

	if !decision.Enabled {
		recordSkip(SkipDisabled)
		recordOutcome(OutcomeSkipped, s.now().Sub(start))
		return skipped(SkipDisabled), nil
	}
	if decision.Credentials == nil {
		slog.Info("no channel configured, skipping dispatch",
			slog.String("shop_id", input.ShopID),
			slog.String("event_type", string(input.EventType)))
		recordSkip(SkipUnconfigured)
		recordOutcome(OutcomeSkipped, s.now().Sub(start))
		return skipped(SkipUnconfigured), nil
	}

	message := input.Message
	if message == "" {
		message = s.engine.Render(input.EventType, input.Context)
	}

	record, err := s.ensureRecord(ctx, input, message)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return Outcome{}, err
	}

	// A created record must never stay PENDING. If anything below exits
	// without reaching a terminal update, including a panic, reconcile to
	// ERROR first and let the failure propagate.
	finalized := false
	defer func() {
		if finalized {
			return
		}
		reconcileCtx := context.WithoutCancel(ctx)
		if r := recover(); r != nil {
			s.markError(reconcileCtx, record, fmt.Sprintf("panic: %v", r))
			panic(r)
		}
		s.markError(reconcileCtx, record, InterruptedDetail)
	}()

	if err := s.publisher.Publish(ctx, message, decision.Credentials); err != nil {
		s.markError(context.WithoutCancel(ctx), record, err.Error())
		finalized = true

		slog.Error("alert delivery failed",
			slog.String("alert_id", record.ID),
			slog.String("shop_id", input.ShopID),
			slog.String("event_type", string(input.EventType)),
			slog.Any("error", err))
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		recordOutcome(OutcomeFailed, s.now().Sub(start))
		return failed(record, err), fmt.Errorf("Send: %w", err)
	}

	if err := s.alerts.UpdateStatus(context.WithoutCancel(ctx), record.ID, entity.AlertStatusSuccess, ""); err != nil {
		// Delivery happened but the log is wrong; surface it instead of
		// reporting a clean send.
		finalized = true
		s.markError(context.WithoutCancel(ctx), record, fmt.Sprintf("delivered but status update failed: %v", err))
		span.SetStatus(codes.Error, err.Error())
		recordOutcome(OutcomeFailed, s.now().Sub(start))
		return failed(record, err), fmt.Errorf("Send: update status: %w", err)
	}
	finalized = true
	record.Status = entity.AlertStatusSuccess
	record.ErrorDetail = ""

	slog.Info("alert delivered",
		slog.String("alert_id", record.ID),
		slog.String("shop_id", input.ShopID),
		slog.String("event_type", string(input.EventType)))
	recordOutcome(OutcomeSent, s.now().Sub(start))
	return sent(record), nil
}

// Resend replays a past alert through the same pipeline, transitioning the
// existing record in place. Unknown ids are rejected before any dispatch
// work begins.
func (s *Service) Resend(ctx context.Context, alertID string) (Outcome, error) {
	record, err := s.alerts.Get(ctx, alertID)
	if err != nil {
		return Outcome{}, fmt.Errorf("Resend: %w", err)
	}
	if record == nil {
		return Outcome{}, fmt.Errorf("Resend: alert %q: %w", alertID, entity.ErrNotFound)
	}

	resendTotal.Inc()
	slog.Info("resending alert",
		slog.String("alert_id", record.ID),
		slog.String("shop_id", record.ShopID),
		slog.String("event_type", string(record.EventType)))

	return s.Send(ctx, SendInput{
		ShopID:          record.ShopID,
		EventType:       record.EventType,
		Message:         record.Message,
		ExistingAlertID: record.ID,
	})
}

// HandleEvent is the webhook entry point. It maps the raw topic to an event
// type, extracts template context from the payload, and runs Send. Topics
// outside the known set are logged and dropped without dispatch.
func (s *Service) HandleEvent(ctx context.Context, shopID, topic string, payload map[string]any) (Outcome, error) {
	eventType := entity.EventTypeFromTopic(topic)
	if !eventType.Known() {
		slog.Warn("dropping event with unmapped topic",
			slog.String("shop_id", shopID),
			slog.String("topic", topic))
		webhookEventsTotal.WithLabelValues("unknown_topic").Inc()
		recordSkip(SkipUnknownTopic)
		return skipped(SkipUnknownTopic), nil
	}

	webhookEventsTotal.WithLabelValues("dispatched").Inc()
	return s.Send(ctx, SendInput{
		ShopID:    shopID,
		EventType: eventType,
		Context:   extractContext(eventType, shopID, payload),
	})
}

// ensureRecord persists the PENDING record for this dispatch: the resend path
// transitions the existing row back to PENDING, the send path inserts a new
// row.
func (s *Service) ensureRecord(ctx context.Context, input SendInput, message string) (*entity.AlertRecord, error) {
	if input.ExistingAlertID != "" {
		if err := s.alerts.UpdateStatus(ctx, input.ExistingAlertID, entity.AlertStatusPending, ""); err != nil {
			return nil, fmt.Errorf("Send: reopen record: %w", err)
		}
		record, err := s.alerts.Get(ctx, input.ExistingAlertID)
		if err != nil {
			return nil, fmt.Errorf("Send: reload record: %w", err)
		}
		if record == nil {
			return nil, fmt.Errorf("Send: alert %q: %w", input.ExistingAlertID, entity.ErrNotFound)
		}
		return record, nil
	}

	record := &entity.AlertRecord{
		ID:        s.newID(),
		ShopID:    input.ShopID,
		EventType: input.EventType,
		Message:   message,
		Status:    entity.AlertStatusPending,
		CreatedAt: s.now().UTC(),
	}
	if err := record.Validate(); err != nil {
		return nil, fmt.Errorf("Send: %w", err)
	}
	if err := s.alerts.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("Send: create record: %w", err)
	}
	return record, nil
}

// failWithRecord handles the unsupported-channel path: the configuration is
// present but corrupt, so the failure must be visible in the alert log, not
// silently skipped.
func (s *Service) failWithRecord(ctx context.Context, input SendInput, cause error, start time.Time) (Outcome, error) {
	message := input.Message
	if message == "" {
		message = s.engine.Render(input.EventType, input.Context)
	}

	record, err := s.ensureRecord(ctx, input, message)
	if err != nil {
		return Outcome{}, err
	}
	s.markError(context.WithoutCancel(ctx), record, cause.Error())

	slog.Error("dispatch failed on channel resolution",
		slog.String("alert_id", record.ID),
		slog.String("shop_id", input.ShopID),
		slog.Any("error", cause))
	recordOutcome(OutcomeFailed, s.now().Sub(start))
	return failed(record, cause), fmt.Errorf("Send: %w", cause)
}

// markError moves the record to ERROR. Last write wins; a failure here is
// logged but not propagated, the original cause matters more.
func (s *Service) markError(ctx context.Context, record *entity.AlertRecord, detail string) {
	if err := s.alerts.UpdateStatus(ctx, record.ID, entity.AlertStatusError, detail); err != nil {
		slog.Error("failed to mark alert record as ERROR",
			slog.String("alert_id", record.ID),
			slog.Any("error", err))
		return
	}
	record.Status = entity.AlertStatusError
	record.ErrorDetail = detail
}
