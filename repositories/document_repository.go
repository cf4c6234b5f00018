package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HSouheill/taxdesk_backend/config"
	"github.com/HSouheill/taxdesk_backend/models"
)

type MongoFolderRepository struct {
	c collection[models.Folder]
}

func NewFolderRepository(db *mongo.Database) *MongoFolderRepository {
	return &MongoFolderRepository{c: newCollection[models.Folder](db, config.FoldersCollection, "Folder")}
}

// Create relies on the partial unique index over (clientId, parentId, name)
// to reject a duplicate active name.
func (r *MongoFolderRepository) Create(ctx context.Context, f *models.Folder) error {
	id, err := r.c.insert(ctx, f)
	if err != nil {
		return err
	}
	f.ID = id
	return nil
}

func (r *MongoFolderRepository) FindByID(ctx context.Context, id primitive.ObjectID, scope Scope) (*models.Folder, error) {
	return r.c.findOne(ctx, activeByID(id, scope))
}

func (r *MongoFolderRepository) List(ctx context.Context, filter FolderFilter) ([]models.Folder, error) {
	return r.c.find(ctx, folderListFilter(filter), nameOrder())
}

func folderListFilter(filter FolderFilter) bson.M {
	q := bson.M{"isActive": true}
	if !filter.ClientID.IsZero() {
		q["clientId"] = filter.ClientID
	}
	return scopeFilter(q, filter.Scope)
}

func (r *MongoFolderRepository) Update(ctx context.Context, f *models.Folder) error {
	return r.c.replace(ctx, f.ID, f)
}

// FindByName is used to report a readable conflict before the insert.
func (r *MongoFolderRepository) FindByName(ctx context.Context, clientID primitive.ObjectID, parentID *primitive.ObjectID, name string) (*models.Folder, error) {
	return r.c.findOne(ctx, folderNameFilter(clientID, parentID, name))
}

// folderNameFilter matches a top-level folder by a null parentId, which also
// matches documents where the field is absent.
func folderNameFilter(clientID primitive.ObjectID, parentID *primitive.ObjectID, name string) bson.M {
	return bson.M{
		"clientId": clientID,
		"parentId": optionalID(parentID),
		"name":     name,
		"isActive": true,
	}
}

type MongoDocumentRepository struct {
	c collection[models.Document]
}

func NewDocumentRepository(db *mongo.Database) *MongoDocumentRepository {
	return &MongoDocumentRepository{c: newCollection[models.Document](db, config.DocumentsCollection, "Document")}
}

func (r *MongoDocumentRepository) Create(ctx context.Context, d *models.Document) error {
	id, err := r.c.insert(ctx, d)
	if err != nil {
		return err
	}
	d.ID = id
	return nil
}

func (r *MongoDocumentRepository) FindByID(ctx context.Context, id primitive.ObjectID, scope Scope) (*models.Document, error) {
	return r.c.findOne(ctx, activeByID(id, scope))
}

func (r *MongoDocumentRepository) List(ctx context.Context, filter DocumentFilter, page Page) ([]models.Document, int64, error) {
	return r.c.page(ctx, documentListFilter(filter), page)
}

func documentListFilter(filter DocumentFilter) bson.M {
	q := bson.M{"isActive": true}
	if !filter.ClientID.IsZero() {
		q["clientId"] = filter.ClientID
	}
	if !filter.FolderID.IsZero() {
		q["folderId"] = filter.FolderID
	}
	return scopeFilter(q, filter.Scope)
}

func (r *MongoDocumentRepository) Update(ctx context.Context, d *models.Document) error {
	return r.c.replace(ctx, d.ID, d)
}

func (r *MongoDocumentRepository) IncrementDownloadCount(ctx context.Context, id primitive.ObjectID, at time.Time) (*models.Document, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc models.Document
	err := r.c.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "isActive": true},
		downloadCountUpdate(at),
		opts,
	).Decode(&doc)
	if err != nil {
		return nil, mapErr(err, "Document")
	}
	return &doc, nil
}

func downloadCountUpdate(at time.Time) bson.M {
	return bson.M{
		"$inc": bson.M{"downloadCount": 1},
		"$set": bson.M{"lastDownloadedAt": at},
	}
}
