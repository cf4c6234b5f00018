package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Admin is a tax professional account that owns a set of clients.
type Admin struct {
	ID             primitive.ObjectID   `json:"id,omitempty" bson:"_id,omitempty"`
	FirstName      string               `json:"firstName" bson:"firstName"`
	LastName       string               `json:"lastName" bson:"lastName"`
	Email          string               `json:"email" bson:"email"`
	Password       string               `json:"-" bson:"password"`
	Phone          string               `json:"phone,omitempty" bson:"phone,omitempty"`
	FirmName       string               `json:"firmName,omitempty" bson:"firmName,omitempty"`
	ProfilePicture string               `json:"profilePicture,omitempty" bson:"profilePicture,omitempty"`
	ClientIDs      []primitive.ObjectID `json:"clientIds" bson:"clientIds"`
	IsVerified     bool                 `json:"isVerified" bson:"isVerified"`
	LastLoginAt    *time.Time           `json:"lastLoginAt,omitempty" bson:"lastLoginAt,omitempty"`
	CreatedAt      time.Time            `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt" bson:"updatedAt"`
}

func (a *Admin) GetID() primitive.ObjectID { return a.ID }
func (a *Admin) GetRole() string           { return RoleAdmin }
func (a *Admin) GetEmail() string          { return a.Email }
func (a *Admin) GetFirstName() string      { return a.FirstName }
func (a *Admin) GetLastName() string       { return a.LastName }
func (a *Admin) GetPasswordHash() string   { return a.Password }

// OwnsClient reports whether clientID is in the admin's client list.
func (a *Admin) OwnsClient(clientID primitive.ObjectID) bool {
	for _, id := range a.ClientIDs {
		if id == clientID {
			return true
		}
	}
	return false
}

type AdminRegisterRequest struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	Phone     string `json:"phone,omitempty"`
	FirmName  string `json:"firmName,omitempty"`
}

type AdminProfileUpdateRequest struct {
	FirstName      *string `json:"firstName,omitempty"`
	LastName       *string `json:"lastName,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	FirmName       *string `json:"firmName,omitempty"`
	ProfilePicture *string `json:"profilePicture,omitempty"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}
