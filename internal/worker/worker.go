package worker

import (
	"context"
	"log"

	"petshop-service/internal/broker"
	"petshop-service/internal/service"
)

// AuditWorker consumes sale lifecycle events and feeds them to the
// stock-movement audit recorder
type AuditWorker struct {
	consumer      *broker.Consumer
	eventHandler  *broker.EventHandler
	auditRecorder *service.AuditRecorder
}

// NewAuditWorker creates a new audit worker
func NewAuditWorker(
	consumer *broker.Consumer,
	auditRecorder *service.AuditRecorder,
) *AuditWorker {
	eventHandler := broker.NewEventHandler()

	eventHandler.OnSaleCommitted(auditRecorder.HandleSaleCommitted)
	eventHandler.OnSaleAmended(auditRecorder.HandleSaleAmended)
	eventHandler.OnSaleDeleted(auditRecorder.HandleSaleDeleted)

	return &AuditWorker{
		consumer:      consumer,
		eventHandler:  eventHandler,
		auditRecorder: auditRecorder,
	}
}

// Start starts the worker
func (w *AuditWorker) Start(ctx context.Context) error {
	log.Println("Starting audit worker...")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *AuditWorker) Stop() error {
	log.Println("Stopping audit worker...")
	return w.consumer.Close()
}
