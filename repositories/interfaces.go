package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/taxdesk_backend/models"
)

// Scope restricts queries to the records a caller may see. A zero field
// means no restriction on it.
type Scope struct {
	AdminID  primitive.ObjectID
	ClientID primitive.ObjectID
}

// Matches reports whether a record owned by adminID/clientID is in scope.
func (s Scope) Matches(adminID, clientID primitive.ObjectID) bool {
	if !s.AdminID.IsZero() && s.AdminID != adminID {
		return false
	}
	if !s.ClientID.IsZero() && s.ClientID != clientID {
		return false
	}
	return true
}

// Page selects a window of a list. Limit 0 returns everything.
type Page struct {
	Skip  int64
	Limit int64
}

type ClientFilter struct {
	AdminID primitive.ObjectID
	// Statuses to include. Empty means any status.
	Statuses []string
	Search   string
}

type ProjectFilter struct {
	Scope
	ClientID primitive.ObjectID
	Status   string
}

type TaskFilter struct {
	Scope
	ClientID  primitive.ObjectID
	ProjectID primitive.ObjectID
	Status    string
}

type NoteFilter struct {
	Scope
	ProjectID   primitive.ObjectID
	VisibleOnly bool
}

type FolderFilter struct {
	Scope
	ClientID primitive.ObjectID
}

type DocumentFilter struct {
	Scope
	ClientID primitive.ObjectID
	FolderID primitive.ObjectID
}

type InvoiceFilter struct {
	Scope
	ClientID primitive.ObjectID
	Status   string
}

// All repository interfaces in one file
type (
	AdminRepository interface {
		Create(ctx context.Context, admin *models.Admin) error
		FindByID(ctx context.Context, id primitive.ObjectID) (*models.Admin, error)
		FindByEmail(ctx context.Context, email string) (*models.Admin, error)
		Update(ctx context.Context, admin *models.Admin) error
		AddClient(ctx context.Context, adminID, clientID primitive.ObjectID) error
		SetLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	}

	ClientRepository interface {
		Create(ctx context.Context, client *models.Client) error
		FindByID(ctx context.Context, id primitive.ObjectID) (*models.Client, error)
		FindByEmail(ctx context.Context, email string) (*models.Client, error)
		List(ctx context.Context, filter ClientFilter) ([]models.Client, error)
		Update(ctx context.Context, client *models.Client) error
		SetLastLogin(ctx context.Context, id primitive.ObjectID, at time.Time) error
	}

	ProjectRepository interface {
		Create(ctx context.Context, project *models.Project) error
		FindByID(ctx context.Context, id primitive.ObjectID, scope Scope) (*models.Project, error)
		List(ctx context.Context, filter ProjectFilter) ([]models.Project, error)
		Update(ctx context.Context, project *models.Project) error
	}

	TaskRepository interface {
		Create(ctx context.Context, task *models.Task) error
		FindByID(ctx context.Context, id primitive.ObjectID, scope Scope) (*models.Task, error)
		List(ctx context.Context, filter TaskFilter, page Page) ([]models.Task, int64, error)
		Update(ctx context.Context, task *models.Task) error
	}

	NoteRepository interface {
		Create(ctx context.Context, note *models.Note) error
		FindByID(ctx context.Context, id primitive.ObjectID, scope Scope) (*models.Note, error)
		List(ctx context.Context, filter NoteFilter) ([]models.Note, error)
		Update(ctx context.Context, note *models.Note) error
	}

	FolderRepository interface {
		Create(ctx context.Context, folder *models.Folder) error
		FindByID(ctx context.Context, id primitive.ObjectID, scope Scope) (*models.Folder, error)
		List(ctx context.Context, filter FolderFilter) ([]models.Folder, error)
		Update(ctx context.Context, folder *models.Folder) error
		FindByName(ctx context.Context, clientID primitive.ObjectID, parentID *primitive.ObjectID, name string) (*models.Folder, error)
	}

	DocumentRepository interface {
		Create(ctx context.Context, doc *models.Document) error
		FindByID(ctx context.Context, id primitive.ObjectID, scope Scope) (*models.Document, error)
		List(ctx context.Context, filter DocumentFilter, page Page) ([]models.Document, int64, error)
		Update(ctx context.Context, doc *models.Document) error
		// IncrementDownloadCount atomically bumps the counter and returns
		// the updated document.
		IncrementDownloadCount(ctx context.Context, id primitive.ObjectID, at time.Time) (*models.Document, error)
	}

	InvoiceRepository interface {
		Create(ctx context.Context, invoice *models.Invoice) error
		FindByID(ctx context.Context, id primitive.ObjectID, scope Scope) (*models.Invoice, error)
		List(ctx context.Context, filter InvoiceFilter) ([]models.Invoice, error)
		Update(ctx context.Context, invoice *models.Invoice) error
		// MarkOverdue moves every active Sent invoice due before now to
		// Overdue and returns the affected invoices.
		MarkOverdue(ctx context.Context, now time.Time) ([]models.Invoice, error)
	}

	ServiceTypeRepository interface {
		Create(ctx context.Context, st *models.ServiceType) error
		FindByID(ctx context.Context, id primitive.ObjectID) (*models.ServiceType, error)
		List(ctx context.Context) ([]models.ServiceType, error)
		Update(ctx context.Context, st *models.ServiceType) error
	}

	TaskCategoryRepository interface {
		Create(ctx context.Context, cat *models.TaskCategory) error
		FindByID(ctx context.Context, id primitive.ObjectID) (*models.TaskCategory, error)
		// ListVisible returns system categories plus the admin's own.
		ListVisible(ctx context.Context, adminID primitive.ObjectID) ([]models.TaskCategory, error)
		Update(ctx context.Context, cat *models.TaskCategory) error
		EnsureDefaults(ctx context.Context, names []string, now time.Time) error
	}
)

// Store bundles every repository the controllers depend on.
type Store struct {
	Admins         AdminRepository
	Clients        ClientRepository
	Projects       ProjectRepository
	Tasks          TaskRepository
	Notes          NoteRepository
	Folders        FolderRepository
	Documents      DocumentRepository
	Invoices       InvoiceRepository
	ServiceTypes   ServiceTypeRepository
	TaskCategories TaskCategoryRepository
}
