package repositories

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/HSouheill/taxdesk_backend/apperrors"
)

func dupKey(index string) error {
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{
		Code:    11000,
		Message: "E11000 duplicate key error collection: taxdesk.x index: " + index + " dup key: { }",
	}}}
}

func TestScopeMatches(t *testing.T) {
	admin, client := primitive.NewObjectID(), primitive.NewObjectID()
	other := primitive.NewObjectID()

	assert.True(t, Scope{}.Matches(admin, client))
	assert.True(t, Scope{AdminID: admin}.Matches(admin, client))
	assert.False(t, Scope{AdminID: other}.Matches(admin, client))
	assert.True(t, Scope{ClientID: client}.Matches(admin, client))
	assert.False(t, Scope{ClientID: other}.Matches(admin, client))
	assert.False(t, Scope{AdminID: admin, ClientID: other}.Matches(admin, client))
}

func TestScopeFilterOverridesFields(t *testing.T) {
	owner := primitive.NewObjectID()
	requested := primitive.NewObjectID()

	filter := scopeFilter(bson.M{"clientId": requested, "isActive": true}, Scope{ClientID: owner})
	assert.Equal(t, owner, filter["clientId"])
	assert.NotContains(t, filter, "adminId")

	filter = scopeFilter(bson.M{}, Scope{})
	assert.Empty(t, filter)
}

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil, "Client"))

	err := mapErr(mongo.ErrNoDocuments, "Client")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
	assert.Equal(t, "Client not found", err.Error())

	err = mapErr(dupKey("email_1"), "Admin")
	appErr, ok := apperrors.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperrors.KindConflict, appErr.Kind)
	assert.Equal(t, "Email already registered", appErr.Message)

	appErr, _ = apperrors.As(mapErr(dupKey("invoiceNumber_1"), "Invoice"))
	assert.Equal(t, "Invoice number already exists", appErr.Message)

	appErr, _ = apperrors.As(mapErr(dupKey("clientId_1_parentId_1_name_1"), "Folder"))
	assert.Equal(t, "Folder with this name already exists", appErr.Message)

	err = mapErr(errors.New("connection reset"), "Client")
	assert.Equal(t, apperrors.KindInternal, apperrors.KindOf(err))
}

func TestOptionalID(t *testing.T) {
	assert.Nil(t, optionalID(nil))
	id := primitive.NewObjectID()
	assert.Equal(t, id, optionalID(&id))
}
