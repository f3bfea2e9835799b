// Package events publishes availability decisions to Kafka.
package events

import (
	"context"
	"time"

	"hostavail/internal/availability/domain"
	"hostavail/pkg/kafka"
	"hostavail/pkg/logger"
)

const (
	EventTypeDecided = "availability.decided"
	SchemaVersion    = "1"
)

type Rejection struct {
	UserID string                 `json:"user_id"`
	Reason domain.RejectionReason `json:"reason"`
}

// DecisionEvent is the payload of availability.decided.
type DecisionEvent struct {
	DecisionID       string      `json:"decision_id"`
	EventTypeID      string      `json:"event_type_id"`
	Start            time.Time   `json:"start"`
	End              time.Time   `json:"end"`
	TimeZone         string      `json:"time_zone"`
	Accepted         bool        `json:"accepted"`
	AvailableUserIDs []string    `json:"available_user_ids"`
	Rejections       []Rejection `json:"rejections,omitempty"`
	DecidedAt        time.Time   `json:"decided_at"`
}

func NewDecisionEvent(d *domain.Decision) DecisionEvent {
	ev := DecisionEvent{
		DecisionID:       d.ID,
		EventTypeID:      d.EventTypeID,
		Start:            d.Window.Start(),
		End:              d.Window.End(),
		TimeZone:         d.Window.TimeZone(),
		Accepted:         d.Accepted(),
		AvailableUserIDs: make([]string, 0, len(d.Available)),
		DecidedAt:        d.DecidedAt,
	}
	for _, u := range d.Available {
		ev.AvailableUserIDs = append(ev.AvailableUserIDs, u.ID)
	}
	for _, v := range d.Verdicts {
		if !v.IsAvailable {
			ev.Rejections = append(ev.Rejections, Rejection{UserID: v.User.ID, Reason: v.Reason})
		}
	}
	return ev
}

type DecisionPublisher interface {
	PublishDecision(ctx context.Context, decision *domain.Decision, correlationID string) error
}

type MessagePublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type kafkaDecisionPublisher struct {
	producer MessagePublisher
	source   string
	log      *logger.Logger
}

// NewKafkaDecisionPublisher keys every message by event type so decisions for
// the same event type stay ordered.
func NewKafkaDecisionPublisher(producer MessagePublisher, source string, log *logger.Logger) DecisionPublisher {
	return &kafkaDecisionPublisher{producer: producer, source: source, log: log}
}

func (p *kafkaDecisionPublisher) PublishDecision(ctx context.Context, decision *domain.Decision, correlationID string) error {
	msg, err := kafka.NewMessage().
		WithKey(decision.EventTypeID).
		WithValue(NewDecisionEvent(decision)).
		WithEventID("").
		WithEventType(EventTypeDecided).
		WithCorrelationID(correlationID).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithTimestamp(decision.DecidedAt).
		Build()
	if err != nil {
		return err
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return err
	}

	p.log.Debug("Decision published",
		"decision_id", decision.ID,
		"event_type_id", decision.EventTypeID,
		"event_id", msg.GetEventID(),
	)
	return nil
}

type nopPublisher struct{}

// NewNopPublisher is used when Kafka is disabled.
func NewNopPublisher() DecisionPublisher {
	return nopPublisher{}
}

func (nopPublisher) PublishDecision(context.Context, *domain.Decision, string) error {
	return nil
}
