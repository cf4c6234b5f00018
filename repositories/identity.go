package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/taxdesk_backend/apperrors"
	"github.com/HSouheill/taxdesk_backend/models"
)

// IdentityLookup resolves a token subject in the collection its role
// points to.
type IdentityLookup struct {
	Admins  AdminRepository
	Clients ClientRepository
}

func (l *IdentityLookup) Find(ctx context.Context, role string, id primitive.ObjectID) (models.Identity, error) {
	switch role {
	case models.RoleAdmin:
		return unwrap(l.Admins.FindByID(ctx, id))
	case models.RoleClient:
		return unwrap(l.Clients.FindByID(ctx, id))
	default:
		return nil, apperrors.Unauthenticated("Unknown role")
	}
}

// FindByEmail looks an email up in the collection of role. Used by the
// login and password reset flows.
func (l *IdentityLookup) FindByEmail(ctx context.Context, role, email string) (models.Identity, error) {
	switch role {
	case models.RoleAdmin:
		return unwrap(l.Admins.FindByEmail(ctx, email))
	case models.RoleClient:
		return unwrap(l.Clients.FindByEmail(ctx, email))
	default:
		return nil, apperrors.Validation("Unknown role")
	}
}

// unwrap keeps a nil record from turning into a non-nil interface.
func unwrap[T models.Identity](identity T, err error) (models.Identity, error) {
	if err != nil {
		return nil, err
	}
	return identity, nil
}
