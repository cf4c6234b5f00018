package repositories

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HSouheill/taxdesk_backend/apperrors"
)

// NewMongoStore builds every repository on top of db.
func NewMongoStore(db *mongo.Database) *Store {
	return &Store{
		Admins:         NewAdminRepository(db),
		Clients:        NewClientRepository(db),
		Projects:       NewProjectRepository(db),
		Tasks:          NewTaskRepository(db),
		Notes:          NewNoteRepository(db),
		Folders:        NewFolderRepository(db),
		Documents:      NewDocumentRepository(db),
		Invoices:       NewInvoiceRepository(db),
		ServiceTypes:   NewServiceTypeRepository(db),
		TaskCategories: NewTaskCategoryRepository(db),
	}
}

// mapErr turns driver errors into application errors.
func mapErr(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return apperrors.NotFound(resource)
	case mongo.IsDuplicateKeyError(err):
		return apperrors.New(apperrors.KindConflict, duplicateMessage(err, resource), err)
	default:
		return apperrors.Internal(err)
	}
}

func duplicateMessage(err error, resource string) string {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "index: email"):
		return "Email already registered"
	case strings.Contains(msg, "index: phone"):
		return "Phone number already registered"
	case strings.Contains(msg, "index: invoiceNumber"):
		return "Invoice number already exists"
	case strings.Contains(msg, "name_1"):
		return resource + " with this name already exists"
	default:
		return resource + " already exists"
	}
}

// scopeFilter adds the ownership fields of scope to filter.
func scopeFilter(filter bson.M, scope Scope) bson.M {
	if !scope.AdminID.IsZero() {
		filter["adminId"] = scope.AdminID
	}
	if !scope.ClientID.IsZero() {
		filter["clientId"] = scope.ClientID
	}
	return filter
}

// activeByID matches one live record inside scope.
func activeByID(id primitive.ObjectID, scope Scope) bson.M {
	return scopeFilter(bson.M{"_id": id, "isActive": true}, scope)
}

// collection wraps one mongo collection with the decode helpers shared by
// all repositories.
type collection[T any] struct {
	coll     *mongo.Collection
	resource string
}

func newCollection[T any](db *mongo.Database, name, resource string) collection[T] {
	return collection[T]{coll: db.Collection(name), resource: resource}
}

func (c collection[T]) insert(ctx context.Context, doc *T) (primitive.ObjectID, error) {
	res, err := c.coll.InsertOne(ctx, doc)
	if err != nil {
		return primitive.NilObjectID, mapErr(err, c.resource)
	}
	id, _ := res.InsertedID.(primitive.ObjectID)
	return id, nil
}

func (c collection[T]) findOne(ctx context.Context, filter bson.M) (*T, error) {
	var out T
	if err := c.coll.FindOne(ctx, filter).Decode(&out); err != nil {
		return nil, mapErr(err, c.resource)
	}
	return &out, nil
}

func (c collection[T]) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]T, error) {
	cursor, err := c.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, mapErr(err, c.resource)
	}
	defer cursor.Close(ctx)

	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, mapErr(err, c.resource)
	}
	return out, nil
}

// page runs a counted, windowed, newest-first query.
func (c collection[T]) page(ctx context.Context, filter bson.M, page Page) ([]T, int64, error) {
	total, err := c.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, mapErr(err, c.resource)
	}

	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if page.Limit > 0 {
		opts.SetSkip(page.Skip).SetLimit(page.Limit)
	}
	items, err := c.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (c collection[T]) replace(ctx context.Context, id primitive.ObjectID, doc *T) error {
	res, err := c.coll.ReplaceOne(ctx, bson.M{"_id": id}, doc)
	if err != nil {
		return mapErr(err, c.resource)
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound(c.resource)
	}
	return nil
}

func newestFirst() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
}

func nameOrder() *options.FindOptions {
	return options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
}

// optionalID matches a nullable reference, treating nil as "not set".
func optionalID(id *primitive.ObjectID) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

