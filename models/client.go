package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Client lifecycle values. Inactive is the soft-deleted state.
const (
	ClientStatusActive   = "Active"
	ClientStatusInactive = "Inactive"
)

// Client is a customer account scoped under exactly one admin.
type Client struct {
	ID              primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	FirstName       string             `json:"firstName" bson:"firstName"`
	LastName        string             `json:"lastName" bson:"lastName"`
	Email           string             `json:"email" bson:"email"`
	Password        string             `json:"-" bson:"password,omitempty"`
	Phone           string             `json:"phone,omitempty" bson:"phone,omitempty"`
	CompanyName     string             `json:"companyName,omitempty" bson:"companyName,omitempty"`
	Address         string             `json:"address,omitempty" bson:"address,omitempty"`
	TaxID           string             `json:"taxId,omitempty" bson:"taxId,omitempty"`
	AssignedAdminID primitive.ObjectID `json:"assignedAdminId" bson:"assignedAdminId"`
	IsEmailVerified bool               `json:"isEmailVerified" bson:"isEmailVerified"`
	IsPhoneVerified bool               `json:"isPhoneVerified" bson:"isPhoneVerified"`
	Status          string             `json:"status" bson:"status"`
	LastLoginAt     *time.Time         `json:"lastLoginAt,omitempty" bson:"lastLoginAt,omitempty"`
	CreatedAt       time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (c *Client) GetID() primitive.ObjectID { return c.ID }
func (c *Client) GetRole() string           { return RoleClient }
func (c *Client) GetEmail() string          { return c.Email }
func (c *Client) GetFirstName() string      { return c.FirstName }
func (c *Client) GetLastName() string       { return c.LastName }
func (c *Client) GetPasswordHash() string   { return c.Password }

func (c *Client) IsActive() bool {
	return c.Status == ClientStatusActive
}

// ValidClientStatus reports whether s is a known client status.
func ValidClientStatus(s string) bool {
	return s == ClientStatusActive || s == ClientStatusInactive
}

// ClientCreateRequest is used by admins creating clients and by
// self-registration (which also supplies AdminID and Password).
type ClientCreateRequest struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password,omitempty" validate:"omitempty,min=8"`
	Phone       string `json:"phone,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	Address     string `json:"address,omitempty"`
	TaxID       string `json:"taxId,omitempty"`
}

type ClientRegisterRequest struct {
	FirstName   string `json:"firstName" validate:"required"`
	LastName    string `json:"lastName" validate:"required"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Phone       string `json:"phone,omitempty"`
	CompanyName string `json:"companyName,omitempty"`
	AdminID     string `json:"adminId" validate:"required"`
}

type ClientUpdateRequest struct {
	FirstName   *string `json:"firstName,omitempty"`
	LastName    *string `json:"lastName,omitempty"`
	Email       *string `json:"email,omitempty"`
	Phone       *string `json:"phone,omitempty"`
	CompanyName *string `json:"companyName,omitempty"`
	Address     *string `json:"address,omitempty"`
	TaxID       *string `json:"taxId,omitempty"`
	Status      *string `json:"status,omitempty"`
}
