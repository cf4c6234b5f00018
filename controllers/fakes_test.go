package controllers_test

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/taxdesk_backend/apperrors"
	"github.com/HSouheill/taxdesk_backend/models"
	"github.com/HSouheill/taxdesk_backend/repositories"
	"github.com/HSouheill/taxdesk_backend/services"
)

// table is an insertion-ordered in-memory collection. Rows are copied on the
// way in and out so handlers cannot mutate stored state by accident.
type table[T any] struct {
	mu   sync.Mutex
	rows []*T
	id   func(*T) *primitive.ObjectID
}

func newTable[T any](id func(*T) *primitive.ObjectID) *table[T] {
	return &table[T]{id: id}
}

func (t *table[T]) insert(v *T) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.id(v).IsZero() {
		*t.id(v) = primitive.NewObjectID()
	}
	cp := *v
	t.rows = append(t.rows, &cp)
}

func (t *table[T]) find(match func(*T) bool) (*T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, row := range t.rows {
		if match(row) {
			cp := *row
			return &cp, true
		}
	}
	return nil, false
}

func (t *table[T]) byID(id primitive.ObjectID, match func(*T) bool) (*T, bool) {
	return t.find(func(row *T) bool {
		return *t.id(row) == id && (match == nil || match(row))
	})
}

// filter returns matching rows newest first.
func (t *table[T]) filter(match func(*T) bool) []T {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]T, 0)
	for i := len(t.rows) - 1; i >= 0; i-- {
		if match(t.rows[i]) {
			out = append(out, *t.rows[i])
		}
	}
	return out
}

func (t *table[T]) replace(v *T) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, row := range t.rows {
		if *t.id(row) == *t.id(v) {
			cp := *v
			t.rows[i] = &cp
			return true
		}
	}
	return false
}

// update applies fn to the stored row and returns a copy of the result.
func (t *table[T]) update(id primitive.ObjectID, fn func(*T)) (*T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, row := range t.rows {
		if *t.id(row) == id {
			fn(row)
			cp := *row
			return &cp, true
		}
	}
	return nil, false
}

func paged[T any](items []T, page repositories.Page) ([]T, int64) {
	total := int64(len(items))
	if page.Limit <= 0 {
		return items, total
	}
	start := page.Skip
	if start > total {
		start = total
	}
	end := start + page.Limit
	if end > total {
		end = total
	}
	return items[start:end], total
}

func newMemoryStore() *repositories.Store {
	return &repositories.Store{
		Admins:         &fakeAdmins{t: newTable(func(a *models.Admin) *primitive.ObjectID { return &a.ID })},
		Clients:        &fakeClients{t: newTable(func(c *models.Client) *primitive.ObjectID { return &c.ID })},
		Projects:       &fakeProjects{t: newTable(func(p *models.Project) *primitive.ObjectID { return &p.ID })},
		Tasks:          &fakeTasks{t: newTable(func(t *models.Task) *primitive.ObjectID { return &t.ID })},
		Notes:          &fakeNotes{t: newTable(func(n *models.Note) *primitive.ObjectID { return &n.ID })},
		Folders:        &fakeFolders{t: newTable(func(f *models.Folder) *primitive.ObjectID { return &f.ID })},
		Documents:      &fakeDocuments{t: newTable(func(d *models.Document) *primitive.ObjectID { return &d.ID })},
		Invoices:       &fakeInvoices{t: newTable(func(i *models.Invoice) *primitive.ObjectID { return &i.ID })},
		ServiceTypes:   &fakeServiceTypes{t: newTable(func(s *models.ServiceType) *primitive.ObjectID { return &s.ID })},
		TaskCategories: &fakeCategories{t: newTable(func(c *models.TaskCategory) *primitive.ObjectID { return &c.ID })},
	}
}

type fakeAdmins struct{ t *table[models.Admin] }

func (r *fakeAdmins) Create(_ context.Context, admin *models.Admin) error {
	if _, ok := r.t.find(func(a *models.Admin) bool { return a.Email == admin.Email }); ok {
		return apperrors.Conflict("Email already registered")
	}
	r.t.insert(admin)
	return nil
}

func (r *fakeAdmins) FindByID(_ context.Context, id primitive.ObjectID) (*models.Admin, error) {
	if a, ok := r.t.byID(id, nil); ok {
		return a, nil
	}
	return nil, apperrors.NotFound("Admin")
}

func (r *fakeAdmins) FindByEmail(_ context.Context, email string) (*models.Admin, error) {
	email = models.NormalizeEmail(email)
	if a, ok := r.t.find(func(a *models.Admin) bool { return a.Email == email }); ok {
		return a, nil
	}
	return nil, apperrors.NotFound("Admin")
}

func (r *fakeAdmins) Update(_ context.Context, admin *models.Admin) error {
	if !r.t.replace(admin) {
		return apperrors.NotFound("Admin")
	}
	return nil
}

func (r *fakeAdmins) AddClient(_ context.Context, adminID, clientID primitive.ObjectID) error {
	_, ok := r.t.update(adminID, func(a *models.Admin) {
		if !a.OwnsClient(clientID) {
			a.ClientIDs = append(a.ClientIDs, clientID)
		}
	})
	if !ok {
		return apperrors.NotFound("Admin")
	}
	return nil
}

func (r *fakeAdmins) SetLastLogin(_ context.Context, id primitive.ObjectID, at time.Time) error {
	r.t.update(id, func(a *models.Admin) { a.LastLoginAt = &at })
	return nil
}

type fakeClients struct{ t *table[models.Client] }

func (r *fakeClients) Create(_ context.Context, client *models.Client) error {
	if _, ok := r.t.find(func(c *models.Client) bool { return c.Email == client.Email }); ok {
		return apperrors.Conflict("Email already registered")
	}
	r.t.insert(client)
	return nil
}

func (r *fakeClients) FindByID(_ context.Context, id primitive.ObjectID) (*models.Client, error) {
	if c, ok := r.t.byID(id, nil); ok {
		return c, nil
	}
	return nil, apperrors.NotFound("Client")
}

func (r *fakeClients) FindByEmail(_ context.Context, email string) (*models.Client, error) {
	email = models.NormalizeEmail(email)
	if c, ok := r.t.find(func(c *models.Client) bool { return c.Email == email }); ok {
		return c, nil
	}
	return nil, apperrors.NotFound("Client")
}

func (r *fakeClients) List(_ context.Context, filter repositories.ClientFilter) ([]models.Client, error) {
	search := strings.ToLower(filter.Search)
	return r.t.filter(func(c *models.Client) bool {
		if c.AssignedAdminID != filter.AdminID {
			return false
		}
		if len(filter.Statuses) > 0 && !containsString(filter.Statuses, c.Status) {
			return false
		}
		if search != "" {
			hay := strings.ToLower(c.FirstName + " " + c.LastName + " " + c.Email + " " + c.CompanyName)
			return strings.Contains(hay, search)
		}
		return true
	}), nil
}

func (r *fakeClients) Update(_ context.Context, client *models.Client) error {
	if !r.t.replace(client) {
		return apperrors.NotFound("Client")
	}
	return nil
}

func (r *fakeClients) SetLastLogin(_ context.Context, id primitive.ObjectID, at time.Time) error {
	r.t.update(id, func(c *models.Client) { c.LastLoginAt = &at })
	return nil
}

type fakeProjects struct{ t *table[models.Project] }

func (r *fakeProjects) Create(_ context.Context, p *models.Project) error {
	r.t.insert(p)
	return nil
}

func (r *fakeProjects) FindByID(_ context.Context, id primitive.ObjectID, scope repositories.Scope) (*models.Project, error) {
	if p, ok := r.t.byID(id, func(p *models.Project) bool { return p.IsActive && scope.Matches(p.AdminID, p.ClientID) }); ok {
		return p, nil
	}
	return nil, apperrors.NotFound("Project")
}

func (r *fakeProjects) List(_ context.Context, f repositories.ProjectFilter) ([]models.Project, error) {
	return r.t.filter(func(p *models.Project) bool {
		return p.IsActive && f.Scope.Matches(p.AdminID, p.ClientID) &&
			(f.ClientID.IsZero() || p.ClientID == f.ClientID) &&
			(f.Status == "" || p.Status == f.Status)
	}), nil
}

func (r *fakeProjects) Update(_ context.Context, p *models.Project) error {
	if !r.t.replace(p) {
		return apperrors.NotFound("Project")
	}
	return nil
}

type fakeTasks struct{ t *table[models.Task] }

func (r *fakeTasks) Create(_ context.Context, task *models.Task) error {
	r.t.insert(task)
	return nil
}

func (r *fakeTasks) FindByID(_ context.Context, id primitive.ObjectID, scope repositories.Scope) (*models.Task, error) {
	if t, ok := r.t.byID(id, func(t *models.Task) bool { return t.IsActive && scope.Matches(t.AdminID, t.ClientID) }); ok {
		return t, nil
	}
	return nil, apperrors.NotFound("Task")
}

func (r *fakeTasks) List(_ context.Context, f repositories.TaskFilter, page repositories.Page) ([]models.Task, int64, error) {
	items := r.t.filter(func(t *models.Task) bool {
		return t.IsActive && f.Scope.Matches(t.AdminID, t.ClientID) &&
			(f.ClientID.IsZero() || t.ClientID == f.ClientID) &&
			(f.ProjectID.IsZero() || (t.ProjectID != nil && *t.ProjectID == f.ProjectID)) &&
			(f.Status == "" || t.Status == f.Status)
	})
	items, total := paged(items, page)
	return items, total, nil
}

func (r *fakeTasks) Update(_ context.Context, task *models.Task) error {
	if !r.t.replace(task) {
		return apperrors.NotFound("Task")
	}
	return nil
}

type fakeNotes struct{ t *table[models.Note] }

func (r *fakeNotes) Create(_ context.Context, n *models.Note) error {
	r.t.insert(n)
	return nil
}

func (r *fakeNotes) FindByID(_ context.Context, id primitive.ObjectID, scope repositories.Scope) (*models.Note, error) {
	if n, ok := r.t.byID(id, func(n *models.Note) bool { return n.IsActive && scope.Matches(n.AdminID, n.ClientID) }); ok {
		return n, nil
	}
	return nil, apperrors.NotFound("Note")
}

func (r *fakeNotes) List(_ context.Context, f repositories.NoteFilter) ([]models.Note, error) {
	return r.t.filter(func(n *models.Note) bool {
		return n.IsActive && f.Scope.Matches(n.AdminID, n.ClientID) &&
			(f.ProjectID.IsZero() || n.ProjectID == f.ProjectID) &&
			(!f.VisibleOnly || n.IsVisibleToClient)
	}), nil
}

func (r *fakeNotes) Update(_ context.Context, n *models.Note) error {
	if !r.t.replace(n) {
		return apperrors.NotFound("Note")
	}
	return nil
}

type fakeFolders struct{ t *table[models.Folder] }

func (r *fakeFolders) Create(_ context.Context, f *models.Folder) error {
	r.t.insert(f)
	return nil
}

func (r *fakeFolders) FindByID(_ context.Context, id primitive.ObjectID, scope repositories.Scope) (*models.Folder, error) {
	if f, ok := r.t.byID(id, func(f *models.Folder) bool { return f.IsActive && scope.Matches(f.AdminID, f.ClientID) }); ok {
		return f, nil
	}
	return nil, apperrors.NotFound("Folder")
}

func (r *fakeFolders) List(_ context.Context, filter repositories.FolderFilter) ([]models.Folder, error) {
	return r.t.filter(func(f *models.Folder) bool {
		return f.IsActive && filter.Scope.Matches(f.AdminID, f.ClientID) &&
			(filter.ClientID.IsZero() || f.ClientID == filter.ClientID)
	}), nil
}

func (r *fakeFolders) Update(_ context.Context, f *models.Folder) error {
	if !r.t.replace(f) {
		return apperrors.NotFound("Folder")
	}
	return nil
}

func (r *fakeFolders) FindByName(_ context.Context, clientID primitive.ObjectID, parentID *primitive.ObjectID, name string) (*models.Folder, error) {
	f, ok := r.t.find(func(f *models.Folder) bool {
		sameParent := (f.ParentID == nil && parentID == nil) ||
			(f.ParentID != nil && parentID != nil && *f.ParentID == *parentID)
		return f.IsActive && f.ClientID == clientID && f.Name == name && sameParent
	})
	if !ok {
		return nil, apperrors.NotFound("Folder")
	}
	return f, nil
}

type fakeDocuments struct{ t *table[models.Document] }

func (r *fakeDocuments) Create(_ context.Context, d *models.Document) error {
	r.t.insert(d)
	return nil
}

func (r *fakeDocuments) FindByID(_ context.Context, id primitive.ObjectID, scope repositories.Scope) (*models.Document, error) {
	if d, ok := r.t.byID(id, func(d *models.Document) bool { return d.IsActive && scope.Matches(d.AdminID, d.ClientID) }); ok {
		return d, nil
	}
	return nil, apperrors.NotFound("Document")
}

func (r *fakeDocuments) List(_ context.Context, f repositories.DocumentFilter, page repositories.Page) ([]models.Document, int64, error) {
	items := r.t.filter(func(d *models.Document) bool {
		return d.IsActive && f.Scope.Matches(d.AdminID, d.ClientID) &&
			(f.ClientID.IsZero() || d.ClientID == f.ClientID) &&
			(f.FolderID.IsZero() || d.FolderID == f.FolderID)
	})
	items, total := paged(items, page)
	return items, total, nil
}

func (r *fakeDocuments) Update(_ context.Context, d *models.Document) error {
	if !r.t.replace(d) {
		return apperrors.NotFound("Document")
	}
	return nil
}

func (r *fakeDocuments) IncrementDownloadCount(_ context.Context, id primitive.ObjectID, at time.Time) (*models.Document, error) {
	d, ok := r.t.update(id, func(d *models.Document) {
		d.DownloadCount++
		d.LastDownloadedAt = &at
	})
	if !ok {
		return nil, apperrors.NotFound("Document")
	}
	return d, nil
}

type fakeInvoices struct{ t *table[models.Invoice] }

func (r *fakeInvoices) Create(_ context.Context, inv *models.Invoice) error {
	if _, ok := r.t.find(func(i *models.Invoice) bool { return i.InvoiceNumber == inv.InvoiceNumber }); ok {
		return apperrors.Conflict("Invoice number already exists")
	}
	r.t.insert(inv)
	return nil
}

func (r *fakeInvoices) FindByID(_ context.Context, id primitive.ObjectID, scope repositories.Scope) (*models.Invoice, error) {
	if i, ok := r.t.byID(id, func(i *models.Invoice) bool { return i.IsActive && scope.Matches(i.AdminID, i.ClientID) }); ok {
		return i, nil
	}
	return nil, apperrors.NotFound("Invoice")
}

func (r *fakeInvoices) List(_ context.Context, f repositories.InvoiceFilter) ([]models.Invoice, error) {
	return r.t.filter(func(i *models.Invoice) bool {
		return i.IsActive && f.Scope.Matches(i.AdminID, i.ClientID) &&
			(f.ClientID.IsZero() || i.ClientID == f.ClientID) &&
			(f.Status == "" || i.Status == f.Status)
	}), nil
}

func (r *fakeInvoices) Update(_ context.Context, inv *models.Invoice) error {
	if !r.t.replace(inv) {
		return apperrors.NotFound("Invoice")
	}
	return nil
}

func (r *fakeInvoices) MarkOverdue(_ context.Context, now time.Time) ([]models.Invoice, error) {
	due := r.t.filter(func(i *models.Invoice) bool { return i.IsActive && i.IsOverdue(now) })
	for idx := range due {
		r.t.update(due[idx].ID, func(i *models.Invoice) { i.Status = models.InvoiceStatusOverdue })
		due[idx].Status = models.InvoiceStatusOverdue
	}
	return due, nil
}

type fakeServiceTypes struct{ t *table[models.ServiceType] }

func (r *fakeServiceTypes) Create(_ context.Context, st *models.ServiceType) error {
	if _, ok := r.t.find(func(s *models.ServiceType) bool { return s.IsActive && s.Name == st.Name }); ok {
		return apperrors.Conflict("Service type with this name already exists")
	}
	r.t.insert(st)
	return nil
}

func (r *fakeServiceTypes) FindByID(_ context.Context, id primitive.ObjectID) (*models.ServiceType, error) {
	if s, ok := r.t.byID(id, func(s *models.ServiceType) bool { return s.IsActive }); ok {
		return s, nil
	}
	return nil, apperrors.NotFound("Service type")
}

func (r *fakeServiceTypes) List(context.Context) ([]models.ServiceType, error) {
	return r.t.filter(func(s *models.ServiceType) bool { return s.IsActive }), nil
}

func (r *fakeServiceTypes) Update(_ context.Context, st *models.ServiceType) error {
	if !r.t.replace(st) {
		return apperrors.NotFound("Service type")
	}
	return nil
}

type fakeCategories struct{ t *table[models.TaskCategory] }

func (r *fakeCategories) Create(_ context.Context, cat *models.TaskCategory) error {
	r.t.insert(cat)
	return nil
}

func (r *fakeCategories) FindByID(_ context.Context, id primitive.ObjectID) (*models.TaskCategory, error) {
	if c, ok := r.t.byID(id, func(c *models.TaskCategory) bool { return c.IsActive }); ok {
		return c, nil
	}
	return nil, apperrors.NotFound("Task category")
}

func (r *fakeCategories) ListVisible(_ context.Context, adminID primitive.ObjectID) ([]models.TaskCategory, error) {
	return r.t.filter(func(c *models.TaskCategory) bool {
		return c.IsActive && (c.IsSystem || (c.AdminID != nil && *c.AdminID == adminID))
	}), nil
}

func (r *fakeCategories) Update(_ context.Context, cat *models.TaskCategory) error {
	if !r.t.replace(cat) {
		return apperrors.NotFound("Task category")
	}
	return nil
}

func (r *fakeCategories) EnsureDefaults(_ context.Context, names []string, now time.Time) error {
	for _, name := range names {
		name := name
		if _, ok := r.t.find(func(c *models.TaskCategory) bool { return c.IsSystem && c.Name == name }); ok {
			continue
		}
		r.t.insert(&models.TaskCategory{Name: name, IsSystem: true, IsActive: true, CreatedAt: now, UpdatedAt: now})
	}
	return nil
}

func containsString(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

// memoryObjects is an ObjectStore that keeps blobs in a map.
type memoryObjects struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{objects: make(map[string][]byte)}
}

func (m *memoryObjects) Upload(_ context.Context, key string, data []byte, _ string) (*services.StoredObject, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = append([]byte(nil), data...)
	return &services.StoredObject{
		Key:    key,
		URL:    "https://files.test/" + key,
		Bucket: "test-bucket",
		ETag:   fmt.Sprintf("%x", len(data)),
	}, nil
}

func (m *memoryObjects) SignedURL(_ context.Context, key string, expiry time.Duration) (string, error) {
	return fmt.Sprintf("https://files.test/%s?expires=%d", key, int(expiry.Seconds())), nil
}

func (m *memoryObjects) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memoryObjects) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.objects[key]
	return ok
}

// recordingMailer keeps the last code sent per address and purpose.
type recordingMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func newRecordingMailer() *recordingMailer {
	return &recordingMailer{codes: make(map[string]string)}
}

func (m *recordingMailer) SendOTP(_ context.Context, to, _, code, purpose string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[models.NormalizeEmail(to)+"|"+purpose] = code
	return nil
}

func (m *recordingMailer) code(email, purpose string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[models.NormalizeEmail(email)+"|"+purpose]
}

type event struct {
	AdminID primitive.ObjectID
	Type    string
}

// recordingNotifier collects activity events.
type recordingNotifier struct {
	mu     sync.Mutex
	events []event
}

func (n *recordingNotifier) Notify(adminID primitive.ObjectID, eventType, _ string, _ interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event{AdminID: adminID, Type: eventType})
}

func (n *recordingNotifier) types() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]string, 0, len(n.events))
	for _, e := range n.events {
		out = append(out, e.Type)
	}
	return out
}
