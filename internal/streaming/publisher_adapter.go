package streaming

import (
	"context"

	"scamtrap-lab/internal/domain/models"
)

// EventBusPublisher bridges the honeypot service to the event bus and
// the WebSocket monitors. Either side may be nil.
type EventBusPublisher struct {
	eventBus *EventBus
	wsHub    *WebSocketHub
}

// NewEventBusPublisher creates a new publisher adapter
func NewEventBusPublisher(eventBus *EventBus, wsHub *WebSocketHub) *EventBusPublisher {
	return &EventBusPublisher{
		eventBus: eventBus,
		wsHub:    wsHub,
	}
}

// SessionStarted publishes the first-turn event for a session
func (p *EventBusPublisher) SessionStarted(ctx context.Context, sess *models.Session) {
	p.publish(ctx, NewSessionEvent(EventTypeSessionStarted, sess, 1))
}

// IntelExtracted publishes an extraction event for one turn
func (p *EventBusPublisher) IntelExtracted(ctx context.Context, sess *models.Session, turn, newEntities int) {
	event := NewSessionEvent(EventTypeIntelExtracted, sess, turn)
	event.NewEntities = newEntities
	p.publish(ctx, event)
}

// ScamDetected publishes the detection event for a session
func (p *EventBusPublisher) ScamDetected(ctx context.Context, sess *models.Session, turn int) {
	p.publish(ctx, NewSessionEvent(EventTypeScamDetected, sess, turn))
}

// SessionClosed publishes the final event for a session
func (p *EventBusPublisher) SessionClosed(ctx context.Context, sess *models.Session, turn int) {
	p.publish(ctx, NewSessionEvent(EventTypeSessionClosed, sess, turn))
}

func (p *EventBusPublisher) publish(ctx context.Context, event *SessionEvent) {
	if p.eventBus != nil {
		_ = p.eventBus.Publish(ctx, event)
	}
	if p.wsHub != nil {
		p.wsHub.BroadcastEvent(event)
	}
}
