package repositories

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/HSouheill/taxdesk_backend/config"
	"github.com/HSouheill/taxdesk_backend/models"
)

// Projects, tasks and notes. List filters are applied before the caller
// scope so a client can never widen its view with ?clientId=.

type MongoProjectRepository struct {
	c collection[models.Project]
}

func NewProjectRepository(db *mongo.Database) *MongoProjectRepository {
	return &MongoProjectRepository{c: newCollection[models.Project](db, config.ProjectsCollection, "Project")}
}

func (r *MongoProjectRepository) Create(ctx context.Context, p *models.Project) error {
	if p.ServiceTypeIDs == nil {
		p.ServiceTypeIDs = []primitive.ObjectID{}
	}
	id, err := r.c.insert(ctx, p)
	if err != nil {
		return err
	}
	p.ID = id
	return nil
}

func (r *MongoProjectRepository) FindByID(ctx context.Context, id primitive.ObjectID, scope Scope) (*models.Project, error) {
	return r.c.findOne(ctx, activeByID(id, scope))
}

func (r *MongoProjectRepository) List(ctx context.Context, filter ProjectFilter) ([]models.Project, error) {
	return r.c.find(ctx, projectListFilter(filter), newestFirst())
}

func projectListFilter(filter ProjectFilter) bson.M {
	q := bson.M{"isActive": true}
	if !filter.ClientID.IsZero() {
		q["clientId"] = filter.ClientID
	}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	return scopeFilter(q, filter.Scope)
}

func (r *MongoProjectRepository) Update(ctx context.Context, p *models.Project) error {
	return r.c.replace(ctx, p.ID, p)
}

type MongoTaskRepository struct {
	c collection[models.Task]
}

func NewTaskRepository(db *mongo.Database) *MongoTaskRepository {
	return &MongoTaskRepository{c: newCollection[models.Task](db, config.TasksCollection, "Task")}
}

func (r *MongoTaskRepository) Create(ctx context.Context, t *models.Task) error {
	id, err := r.c.insert(ctx, t)
	if err != nil {
		return err
	}
	t.ID = id
	return nil
}

func (r *MongoTaskRepository) FindByID(ctx context.Context, id primitive.ObjectID, scope Scope) (*models.Task, error) {
	return r.c.findOne(ctx, activeByID(id, scope))
}

func (r *MongoTaskRepository) List(ctx context.Context, filter TaskFilter, page Page) ([]models.Task, int64, error) {
	return r.c.page(ctx, taskListFilter(filter), page)
}

func taskListFilter(filter TaskFilter) bson.M {
	q := bson.M{"isActive": true}
	if !filter.ClientID.IsZero() {
		q["clientId"] = filter.ClientID
	}
	if !filter.ProjectID.IsZero() {
		q["projectId"] = filter.ProjectID
	}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	return scopeFilter(q, filter.Scope)
}

func (r *MongoTaskRepository) Update(ctx context.Context, t *models.Task) error {
	return r.c.replace(ctx, t.ID, t)
}

type MongoNoteRepository struct {
	c collection[models.Note]
}

func NewNoteRepository(db *mongo.Database) *MongoNoteRepository {
	return &MongoNoteRepository{c: newCollection[models.Note](db, config.NotesCollection, "Note")}
}

func (r *MongoNoteRepository) Create(ctx context.Context, n *models.Note) error {
	id, err := r.c.insert(ctx, n)
	if err != nil {
		return err
	}
	n.ID = id
	return nil
}

func (r *MongoNoteRepository) FindByID(ctx context.Context, id primitive.ObjectID, scope Scope) (*models.Note, error) {
	return r.c.findOne(ctx, activeByID(id, scope))
}

func (r *MongoNoteRepository) List(ctx context.Context, filter NoteFilter) ([]models.Note, error) {
	return r.c.find(ctx, noteListFilter(filter), newestFirst())
}

func noteListFilter(filter NoteFilter) bson.M {
	q := bson.M{"isActive": true}
	if !filter.ProjectID.IsZero() {
		q["projectId"] = filter.ProjectID
	}
	if filter.VisibleOnly {
		q["isVisibleToClient"] = true
	}
	return scopeFilter(q, filter.Scope)
}

func (r *MongoNoteRepository) Update(ctx context.Context, n *models.Note) error {
	return r.c.replace(ctx, n.ID, n)
}
