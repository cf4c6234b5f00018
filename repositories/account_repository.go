package repositories

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/HSouheill/taxdesk_backend/apperrors"
	"github.com/HSouheill/taxdesk_backend/config"
	"github.com/HSouheill/taxdesk_backend/models"
)

type MongoAdminRepository struct {
	c collection[models.Admin]
}

func NewAdminRepository(db *mongo.Database) *MongoAdminRepository {
	return &MongoAdminRepository{c: newCollection[models.Admin](db, config.AdminsCollection, "Admin")}
}

func (r *MongoAdminRepository) Create(ctx context.Context, admin *models.Admin) error {
	if admin.ClientIDs == nil {
		admin.ClientIDs = []primitive.ObjectID{}
	}
	id, err := r.c.insert(ctx, admin)
	if err != nil {
		return err
	}
	admin.ID = id
	return nil
}

func (r *MongoAdminRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error) {
	return r.c.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoAdminRepository) FindByEmail(ctx context.Context, email string) (*models.Admin, error) {
	return r.c.findOne(ctx, bson.M{"email": models.NormalizeEmail(email)})
}

func (r *MongoAdminRepository) Update(ctx context.Context, admin *models.Admin) error {
	return r.c.replace(ctx, admin.ID, admin)
}

func (r *MongoAdminRepository) AddClient(ctx context.Context, adminID, clientID primitive.ObjectID) error {
	res, err := r.c.coll.UpdateOne(ctx,
		bson.M{"_id": adminID},
		bson.M{
			"$addToSet": bson.M{"clientIds": clientID},
			"$set":      bson.M{"updatedAt": time.Now()},
		},
	)
	if err != nil {
		return mapErr(err, "Admin")
	}
	if res.MatchedCount == 0 {
		return apperrors.NotFound("Admin")
	}
	return nil
}

func (r *MongoAdminRepository) SetLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.c.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"lastLoginAt": at}})
	return mapErr(err, "Admin")
}

type MongoClientRepository struct {
	c collection[models.Client]
}

func NewClientRepository(db *mongo.Database) *MongoClientRepository {
	return &MongoClientRepository{c: newCollection[models.Client](db, config.ClientsCollection, "Client")}
}

func (r *MongoClientRepository) Create(ctx context.Context, client *models.Client) error {
	id, err := r.c.insert(ctx, client)
	if err != nil {
		return err
	}
	client.ID = id
	return nil
}

func (r *MongoClientRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Client, error) {
	return r.c.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoClientRepository) FindByEmail(ctx context.Context, email string) (*models.Client, error) {
	return r.c.findOne(ctx, bson.M{"email": models.NormalizeEmail(email)})
}

func (r *MongoClientRepository) List(ctx context.Context, filter ClientFilter) ([]models.Client, error) {
	return r.c.find(ctx, clientListFilter(filter), newestFirst())
}

func clientListFilter(filter ClientFilter) bson.M {
	q := bson.M{"assignedAdminId": filter.AdminID}
	if len(filter.Statuses) > 0 {
		q["status"] = bson.M{"$in": filter.Statuses}
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		q["$or"] = bson.A{
			bson.M{"firstName": pattern},
			bson.M{"lastName": pattern},
			bson.M{"email": pattern},
			bson.M{"companyName": pattern},
		}
	}
	return q
}

func (r *MongoClientRepository) Update(ctx context.Context, client *models.Client) error {
	return r.c.replace(ctx, client.ID, client)
}

func (r *MongoClientRepository) SetLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	_, err := r.c.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"lastLoginAt": at}})
	return mapErr(err, "Client")
}
