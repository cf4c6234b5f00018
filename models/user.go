// models/user.go
package models

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles carried in session tokens.
const (
	RoleAdmin  = "admin"
	RoleClient = "client"
)

// Identity is implemented by both account collections so that lookups by
// token role can return either one.
type Identity interface {
	GetID() primitive.ObjectID
	GetRole() string
	GetEmail() string
	GetFirstName() string
	GetLastName() string
	GetPasswordHash() string
}

// NormalizeEmail lowercases and trims an email before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Response is the envelope every JSON endpoint answers with.
type Response struct {
	Success bool        `json:"success"`
	Status  int         `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PaginatedData wraps list results of paginated endpoints.
type PaginatedData struct {
	Items      interface{} `json:"items"`
	Page       int         `json:"page"`
	Limit      int         `json:"limit"`
	Total      int64       `json:"total"`
	TotalPages int         `json:"totalPages"`
}
