package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	ProjectStatusInfoReceived = "Info Received"
	ProjectStatusInProgress   = "In Progress"
	ProjectStatusWaiting      = "Waiting"
	ProjectStatusCompleted    = "Completed"
)

const (
	PriorityLow    = "Low"
	PriorityMedium = "Medium"
	PriorityHigh   = "High"
	PriorityUrgent = "Urgent"
)

var projectStatuses = []string{
	ProjectStatusInfoReceived,
	ProjectStatusInProgress,
	ProjectStatusWaiting,
	ProjectStatusCompleted,
}

var priorities = []string{PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent}

// Project is a unit of work carried out for one client.
type Project struct {
	ID             primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	Title          string               `json:"title" bson:"title"`
	Description    string               `json:"description,omitempty" bson:"description,omitempty"`
	ClientID       primitive.ObjectID   `json:"clientId" bson:"clientId"`
	AdminID        primitive.ObjectID   `json:"adminId" bson:"adminId"`
	Status         string               `json:"status" bson:"status"`
	Priority       string               `json:"priority" bson:"priority"`
	StartDate      *time.Time           `json:"startDate,omitempty" bson:"startDate,omitempty"`
	EndDate        *time.Time           `json:"endDate,omitempty" bson:"endDate,omitempty"`
	ServiceTypeIDs []primitive.ObjectID `json:"serviceTypeIds" bson:"serviceTypeIds"`
	IsActive       bool                 `json:"isActive" bson:"isActive"`
	CreatedAt      time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt" bson:"updatedAt"`
}

func ValidProjectStatus(s string) bool {
	return contains(projectStatuses, s)
}

func ValidPriority(s string) bool {
	return contains(priorities, s)
}

type ProjectCreateRequest struct {
	Title          string     `json:"title" validate:"required"`
	Description    string     `json:"description,omitempty"`
	ClientID       string     `json:"clientId" validate:"required"`
	Status         string     `json:"status,omitempty"`
	Priority       string     `json:"priority,omitempty"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	ServiceTypeIDs []string   `json:"serviceTypeIds,omitempty"`
}

type ProjectUpdateRequest struct {
	Title          *string    `json:"title,omitempty"`
	Description    *string    `json:"description,omitempty"`
	Status         *string    `json:"status,omitempty"`
	Priority       *string    `json:"priority,omitempty"`
	StartDate      *time.Time `json:"startDate,omitempty"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	ServiceTypeIDs []string   `json:"serviceTypeIds,omitempty"`
}

type StatusUpdateRequest struct {
	Status string `json:"status" validate:"required"`
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}
