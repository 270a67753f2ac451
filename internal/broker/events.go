package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"petshop-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing sale lifecycle events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishSaleCommitted publishes SaleCommitted event
func (ep *EventPublisher) PublishSaleCommitted(ctx context.Context, event *models.SaleCommittedEvent) error {
	key := fmt.Sprintf("sale-%d", event.SaleID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishSaleAmended publishes SaleAmended event
func (ep *EventPublisher) PublishSaleAmended(ctx context.Context, event *models.SaleAmendedEvent) error {
	key := fmt.Sprintf("sale-%d", event.SaleID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishSaleDeleted publishes SaleDeleted event
func (ep *EventPublisher) PublishSaleDeleted(ctx context.Context, event *models.SaleDeletedEvent) error {
	key := fmt.Sprintf("sale-%d", event.SaleID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming sale events to registered handlers
type EventHandler struct {
	onSaleCommitted func(context.Context, *models.SaleCommittedEvent) error
	onSaleAmended   func(context.Context, *models.SaleAmendedEvent) error
	onSaleDeleted   func(context.Context, *models.SaleDeletedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnSaleCommitted registers a handler for SaleCommitted events
func (eh *EventHandler) OnSaleCommitted(handler func(context.Context, *models.SaleCommittedEvent) error) {
	eh.onSaleCommitted = handler
}

// OnSaleAmended registers a handler for SaleAmended events
func (eh *EventHandler) OnSaleAmended(handler func(context.Context, *models.SaleAmendedEvent) error) {
	eh.onSaleAmended = handler
}

// OnSaleDeleted registers a handler for SaleDeleted events
func (eh *EventHandler) OnSaleDeleted(handler func(context.Context, *models.SaleDeletedEvent) error) {
	eh.onSaleDeleted = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypeSaleCommitted:
		if eh.onSaleCommitted != nil {
			var event models.SaleCommittedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal SaleCommitted event: %w", err)
			}
			return eh.onSaleCommitted(ctx, &event)
		}

	case models.EventTypeSaleAmended:
		if eh.onSaleAmended != nil {
			var event models.SaleAmendedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal SaleAmended event: %w", err)
			}
			return eh.onSaleAmended(ctx, &event)
		}

	case models.EventTypeSaleDeleted:
		if eh.onSaleDeleted != nil {
			var event models.SaleDeletedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal SaleDeleted event: %w", err)
			}
			return eh.onSaleDeleted(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}
