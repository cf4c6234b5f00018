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

type MongoServiceTypeRepository struct {
	c collection[models.ServiceType]
}

func NewServiceTypeRepository(db *mongo.Database) *MongoServiceTypeRepository {
	return &MongoServiceTypeRepository{c: newCollection[models.ServiceType](db, config.ServiceTypesCollection, "Service type")}
}

func (r *MongoServiceTypeRepository) Create(ctx context.Context, st *models.ServiceType) error {
	id, err := r.c.insert(ctx, st)
	if err != nil {
		return err
	}
	st.ID = id
	return nil
}

func (r *MongoServiceTypeRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.ServiceType, error) {
	return r.c.findOne(ctx, bson.M{"_id": id, "isActive": true})
}

func (r *MongoServiceTypeRepository) List(ctx context.Context) ([]models.ServiceType, error) {
	return r.c.find(ctx, bson.M{"isActive": true}, nameOrder())
}

func (r *MongoServiceTypeRepository) Update(ctx context.Context, st *models.ServiceType) error {
	return r.c.replace(ctx, st.ID, st)
}

type MongoTaskCategoryRepository struct {
	c collection[models.TaskCategory]
}

func NewTaskCategoryRepository(db *mongo.Database) *MongoTaskCategoryRepository {
	return &MongoTaskCategoryRepository{c: newCollection[models.TaskCategory](db, config.TaskCategoriesCollection, "Task category")}
}

func (r *MongoTaskCategoryRepository) Create(ctx context.Context, cat *models.TaskCategory) error {
	id, err := r.c.insert(ctx, cat)
	if err != nil {
		return err
	}
	cat.ID = id
	return nil
}

func (r *MongoTaskCategoryRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.TaskCategory, error) {
	return r.c.findOne(ctx, bson.M{"_id": id, "isActive": true})
}

func (r *MongoTaskCategoryRepository) ListVisible(ctx context.Context, adminID primitive.ObjectID) ([]models.TaskCategory, error) {
	opts := options.Find().SetSort(bson.D{{Key: "isSystem", Value: -1}, {Key: "name", Value: 1}})
	return r.c.find(ctx, visibleCategoriesFilter(adminID), opts)
}

func visibleCategoriesFilter(adminID primitive.ObjectID) bson.M {
	return bson.M{
		"isActive": true,
		"$or": bson.A{
			bson.M{"isSystem": true},
			bson.M{"adminId": adminID},
		},
	}
}

func (r *MongoTaskCategoryRepository) Update(ctx context.Context, cat *models.TaskCategory) error {
	return r.c.replace(ctx, cat.ID, cat)
}

// EnsureDefaults upserts the system categories. Existing ones are left as
// they are.
func (r *MongoTaskCategoryRepository) EnsureDefaults(ctx context.Context, names []string, now time.Time) error {
	for _, name := range names {
		_, err := r.c.coll.UpdateOne(ctx,
			bson.M{"name": name, "isSystem": true},
			bson.M{"$setOnInsert": bson.M{
				"name":      name,
				"isSystem":  true,
				"isActive":  true,
				"createdAt": now,
				"updatedAt": now,
			}},
			options.Update().SetUpsert(true),
		)
		if err != nil {
			return mapErr(err, "Task category")
		}
	}
	return nil
}
