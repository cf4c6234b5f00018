package services

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Activity event types pushed to admins.
const (
	EventTaskCreated        = "task_created"
	EventTaskUpdated        = "task_updated"
	EventDocumentUploaded   = "document_uploaded"
	EventDocumentDownloaded = "document_downloaded"
	EventInvoiceUpdated     = "invoice_updated"
	EventInvoiceOverdue     = "invoice_overdue"
	EventClientRegistered   = "client_registered"
)

// Notifier pushes an activity event to an admin's open connections.
type Notifier interface {
	Notify(adminID primitive.ObjectID, eventType, message string, data interface{})
}

// NopNotifier drops every event.
type NopNotifier struct{}

func (NopNotifier) Notify(primitive.ObjectID, string, string, interface{}) {}
