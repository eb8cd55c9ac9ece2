package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/university-api/internal/dto"
)

const (
	// EventStudentCreated is emitted after a student row is inserted.
	EventStudentCreated = "student.created"
	// EventStudentDeleted is emitted after a student row is removed.
	EventStudentDeleted = "student.deleted"
)

// Publisher sends raw payloads to a subject. *nats.Conn satisfies it.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// StudentEvent is the payload published for student lifecycle changes.
type StudentEvent struct {
	Type       string               `json:"type"`
	StudentID  int64                `json:"student_id"`
	Student    *dto.StudentResponse `json:"student,omitempty"`
	OccurredAt time.Time            `json:"occurred_at"`
}

// EventPublisher fans student lifecycle events out to the message bus.
// A nil *EventPublisher is valid and publishes nothing.
type EventPublisher struct {
	publisher Publisher
	subject   string
	logger    zerolog.Logger
	now       func() time.Time
}

// NewEventPublisher builds a publisher writing to "<subject>.created" and "<subject>.deleted".
func NewEventPublisher(publisher Publisher, subject string, logger zerolog.Logger) *EventPublisher {
	if publisher == nil || subject == "" {
		return nil
	}

	return &EventPublisher{
		publisher: publisher,
		subject:   subject,
		logger:    logger.With().Str("component", "student_events").Logger(),
		now:       time.Now,
	}
}

// StudentCreated publishes a created event.
func (p *EventPublisher) StudentCreated(ctx context.Context, student dto.StudentResponse) {
	if p == nil {
		return
	}
	p.publish(ctx, "created", StudentEvent{
		Type:      EventStudentCreated,
		StudentID: student.ID,
		Student:   &student,
	})
}

// StudentDeleted publishes a deleted event.
func (p *EventPublisher) StudentDeleted(ctx context.Context, id int64) {
	if p == nil {
		return
	}
	p.publish(ctx, "deleted", StudentEvent{
		Type:      EventStudentDeleted,
		StudentID: id,
	})
}

// Publish failures are logged only; they never fail the originating request.
func (p *EventPublisher) publish(ctx context.Context, suffix string, event StudentEvent) {
	event.OccurredAt = p.now().UTC()
	logger := p.logger.With().Str("event", event.Type).Int64("student_id", event.StudentID).Logger()

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error().Err(err).Msg("failed to encode student event")
		return
	}

	span := trace.SpanFromContext(ctx)
	if err := p.publisher.Publish(p.subject+"."+suffix, payload); err != nil {
		span.RecordError(err)
		logger.Warn().Err(err).Msg("failed to publish student event")
		return
	}
	span.AddEvent(event.Type)
}
