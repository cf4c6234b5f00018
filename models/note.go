package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Note is a free-text annotation on a project. IsInternal is always the
// negation of IsVisibleToClient.
type Note struct {
	ID                primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	ProjectID         primitive.ObjectID `json:"projectId" bson:"projectId"`
	ClientID          primitive.ObjectID `json:"clientId" bson:"clientId"`
	AdminID           primitive.ObjectID `json:"adminId" bson:"adminId"`
	Content           string             `json:"content" bson:"content"`
	IsVisibleToClient bool               `json:"isVisibleToClient" bson:"isVisibleToClient"`
	IsInternal        bool               `json:"isInternal" bson:"isInternal"`
	IsActive          bool               `json:"isActive" bson:"isActive"`
	CreatedAt         time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt" bson:"updatedAt"`
}

// SetVisibility keeps the two visibility flags mutually exclusive.
func (n *Note) SetVisibility(visibleToClient bool) {
	n.IsVisibleToClient = visibleToClient
	n.IsInternal = !visibleToClient
}

type NoteCreateRequest struct {
	ProjectID         string `json:"projectId" validate:"required"`
	Content           string `json:"content" validate:"required"`
	IsVisibleToClient *bool  `json:"isVisibleToClient,omitempty"`
	IsInternal        *bool  `json:"isInternal,omitempty"`
}

type NoteUpdateRequest struct {
	Content           *string `json:"content,omitempty"`
	IsVisibleToClient *bool   `json:"isVisibleToClient,omitempty"`
	IsInternal        *bool   `json:"isInternal,omitempty"`
}

// ResolveNoteVisibility folds the two optional flags into one value.
// ok is false when both flags are set to the same value.
func ResolveNoteVisibility(visible, internal *bool, current bool) (bool, bool) {
	switch {
	case visible != nil && internal != nil:
		if *visible == *internal {
			return current, false
		}
		return *visible, true
	case visible != nil:
		return *visible, true
	case internal != nil:
		return !*internal, true
	default:
		return current, true
	}
}
