package repositories

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/HSouheill/taxdesk_backend/config"
	"github.com/HSouheill/taxdesk_backend/models"
)

type MongoInvoiceRepository struct {
	c collection[models.Invoice]
}

func NewInvoiceRepository(db *mongo.Database) *MongoInvoiceRepository {
	return &MongoInvoiceRepository{c: newCollection[models.Invoice](db, config.InvoicesCollection, "Invoice")}
}

func (r *MongoInvoiceRepository) Create(ctx context.Context, inv *models.Invoice) error {
	id, err := r.c.insert(ctx, inv)
	if err != nil {
		return err
	}
	inv.ID = id
	return nil
}

func (r *MongoInvoiceRepository) FindByID(ctx context.Context, id primitive.ObjectID, scope Scope) (*models.Invoice, error) {
	return r.c.findOne(ctx, activeByID(id, scope))
}

func (r *MongoInvoiceRepository) List(ctx context.Context, filter InvoiceFilter) ([]models.Invoice, error) {
	return r.c.find(ctx, invoiceListFilter(filter), newestFirst())
}

func invoiceListFilter(filter InvoiceFilter) bson.M {
	q := bson.M{"isActive": true}
	if !filter.ClientID.IsZero() {
		q["clientId"] = filter.ClientID
	}
	if filter.Status != "" {
		q["status"] = filter.Status
	}
	return scopeFilter(q, filter.Scope)
}

func (r *MongoInvoiceRepository) Update(ctx context.Context, inv *models.Invoice) error {
	return r.c.replace(ctx, inv.ID, inv)
}

// MarkOverdue moves past-due Sent invoices to Overdue and returns the ones
// it changed. Each candidate is switched on its own with the status
// re-checked, so an invoice paid in between is neither touched nor returned.
func (r *MongoInvoiceRepository) MarkOverdue(ctx context.Context, now time.Time) ([]models.Invoice, error) {
	candidates, err := r.c.find(ctx, overdueFilter(now), nil)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	marked := make([]models.Invoice, 0, len(candidates))
	for _, inv := range candidates {
		filter := overdueFilter(now)
		filter["_id"] = inv.ID
		var updated models.Invoice
		err := r.c.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": bson.M{
			"status":    models.InvoiceStatusOverdue,
			"updatedAt": now,
		}}, opts).Decode(&updated)
		if errors.Is(err, mongo.ErrNoDocuments) {
			continue
		}
		if err != nil {
			return marked, mapErr(err, "Invoice")
		}
		marked = append(marked, updated)
	}
	return marked, nil
}

func overdueFilter(now time.Time) bson.M {
	return bson.M{
		"status":   models.InvoiceStatusSent,
		"isActive": true,
		"dueDate":  bson.M{"$lt": now},
	}
}
