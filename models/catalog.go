// models/catalog.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ServiceType is an offering a project can reference (e.g. "1040 filing").
type ServiceType struct {
	ID           primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Name         string             `json:"name" bson:"name"`
	Description  string             `json:"description,omitempty" bson:"description,omitempty"`
	DefaultPrice float64            `json:"defaultPrice" bson:"defaultPrice"`
	IsActive     bool               `json:"isActive" bson:"isActive"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// TaskCategory is either a system default (IsSystem, no AdminID) or a custom
// category authored by one admin.
type TaskCategory struct {
	ID          primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	Name        string              `json:"name" bson:"name"`
	Description string              `json:"description,omitempty" bson:"description,omitempty"`
	Color       string              `json:"color,omitempty" bson:"color,omitempty"`
	IsSystem    bool                `json:"isSystem" bson:"isSystem"`
	AdminID     *primitive.ObjectID `json:"adminId,omitempty" bson:"adminId,omitempty"`
	IsActive    bool                `json:"isActive" bson:"isActive"`
	CreatedAt   time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// DefaultTaskCategories are seeded at startup.
var DefaultTaskCategories = []string{
	"Tax Return",
	"Bookkeeping",
	"Payroll",
	"Consultation",
	"Audit Support",
}

type ServiceTypeRequest struct {
	Name         string   `json:"name" validate:"required"`
	Description  string   `json:"description,omitempty"`
	DefaultPrice *float64 `json:"defaultPrice,omitempty"`
}

type TaskCategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty" validate:"omitempty,hexcolor"`
}
