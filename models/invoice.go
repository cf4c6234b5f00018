package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	InvoiceStatusDraft     = "Draft"
	InvoiceStatusSent      = "Sent"
	InvoiceStatusPaid      = "Paid"
	InvoiceStatusOverdue   = "Overdue"
	InvoiceStatusCancelled = "Cancelled"
)

var invoiceStatuses = []string{
	InvoiceStatusDraft,
	InvoiceStatusSent,
	InvoiceStatusPaid,
	InvoiceStatusOverdue,
	InvoiceStatusCancelled,
}

type Invoice struct {
	ID            primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	InvoiceNumber string              `json:"invoiceNumber" bson:"invoiceNumber"`
	ClientID      primitive.ObjectID  `json:"clientId" bson:"clientId"`
	AdminID       primitive.ObjectID  `json:"adminId" bson:"adminId"`
	ProjectID     *primitive.ObjectID `json:"projectId,omitempty" bson:"projectId,omitempty"`
	Status        string              `json:"status" bson:"status"`
	Amount        float64             `json:"amount" bson:"amount"`
	Description   string              `json:"description,omitempty" bson:"description,omitempty"`
	IssueDate     time.Time           `json:"issueDate" bson:"issueDate"`
	DueDate       time.Time           `json:"dueDate" bson:"dueDate"`
	PaidDate      *time.Time          `json:"paidDate,omitempty" bson:"paidDate,omitempty"`
	IsActive      bool                `json:"isActive" bson:"isActive"`
	CreatedAt     time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt" bson:"updatedAt"`
}

func ValidInvoiceStatus(s string) bool {
	return contains(invoiceStatuses, s)
}

// SetStatus changes the status and stamps PaidDate on the move to Paid.
func (i *Invoice) SetStatus(status string, now time.Time) {
	if status == InvoiceStatusPaid && i.PaidDate == nil {
		paid := now
		i.PaidDate = &paid
	}
	i.Status = status
}

// IsOverdue reports whether a sent invoice is past its due date.
func (i *Invoice) IsOverdue(now time.Time) bool {
	return i.Status == InvoiceStatusSent && now.After(i.DueDate)
}

type InvoiceCreateRequest struct {
	InvoiceNumber string     `json:"invoiceNumber,omitempty"`
	ClientID      string     `json:"clientId" validate:"required"`
	ProjectID     string     `json:"projectId,omitempty"`
	Status        string     `json:"status,omitempty"`
	Amount        float64    `json:"amount" validate:"required,gt=0"`
	Description   string     `json:"description,omitempty"`
	IssueDate     *time.Time `json:"issueDate,omitempty"`
	DueDate       time.Time  `json:"dueDate" validate:"required"`
}

type InvoiceUpdateRequest struct {
	Status      *string    `json:"status,omitempty"`
	Amount      *float64   `json:"amount,omitempty"`
	Description *string    `json:"description,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
}
