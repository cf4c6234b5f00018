package models

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	TaskStatusPending       = "Pending"
	TaskStatusInProgress    = "In Progress"
	TaskStatusCompleted     = "Completed"
	TaskStatusDoNotContinue = "Do not continue"
)

var taskStatuses = []string{
	TaskStatusPending,
	TaskStatusInProgress,
	TaskStatusCompleted,
	TaskStatusDoNotContinue,
}

// Task is a billable unit of work under a client.
type Task struct {
	ID               primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Title            string              `json:"title" bson:"title"`
	Description      string              `json:"description,omitempty" bson:"description,omitempty"`
	ClientID         primitive.ObjectID  `json:"clientId" bson:"clientId"`
	AdminID          primitive.ObjectID  `json:"adminId" bson:"adminId"`
	ProjectID        *primitive.ObjectID `json:"projectId,omitempty" bson:"projectId,omitempty"`
	CategoryID       *primitive.ObjectID `json:"categoryId,omitempty" bson:"categoryId,omitempty"`
	Status           string              `json:"status" bson:"status"`
	Priority         string              `json:"priority" bson:"priority"`
	DueDate          *time.Time          `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	PriceQuoted      float64             `json:"priceQuoted" bson:"priceQuoted"`
	AmountPaid       float64             `json:"amountPaid" bson:"amountPaid"`
	RemainingBalance float64             `json:"remainingBalance" bson:"remainingBalance"`
	CompletedDate    *time.Time          `json:"completedDate,omitempty" bson:"completedDate,omitempty"`
	IsActive         bool                `json:"isActive" bson:"isActive"`
	CreatedAt        time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt" bson:"updatedAt"`
}

var ErrNegativeAmount = errors.New("amounts cannot be negative")

func ValidTaskStatus(s string) bool {
	return contains(taskStatuses, s)
}

// SetAmounts replaces the monetary fields and recomputes the balance.
func (t *Task) SetAmounts(priceQuoted, amountPaid float64) error {
	if priceQuoted < 0 || amountPaid < 0 {
		return ErrNegativeAmount
	}
	t.PriceQuoted = priceQuoted
	t.AmountPaid = amountPaid
	t.RemainingBalance = priceQuoted - amountPaid
	return nil
}

// SetStatus moves the task to status. CompletedDate is stamped on the first
// transition into Completed and kept afterwards.
func (t *Task) SetStatus(status string, now time.Time) {
	if status == TaskStatusCompleted && t.Status != TaskStatusCompleted && t.CompletedDate == nil {
		completed := now
		t.CompletedDate = &completed
	}
	t.Status = status
}

type TaskCreateRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description string     `json:"description,omitempty"`
	ClientID    string     `json:"clientId" validate:"required"`
	ProjectID   string     `json:"projectId,omitempty"`
	CategoryID  string     `json:"categoryId,omitempty"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	PriceQuoted float64    `json:"priceQuoted"`
	AmountPaid  float64    `json:"amountPaid"`
}

type TaskUpdateRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	ProjectID   *string    `json:"projectId,omitempty"`
	CategoryID  *string    `json:"categoryId,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	PriceQuoted *float64   `json:"priceQuoted,omitempty"`
	AmountPaid  *float64   `json:"amountPaid,omitempty"`
}
