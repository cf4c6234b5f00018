package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/taxdesk_backend/apperrors"
	"github.com/HSouheill/taxdesk_backend/middleware"
	"github.com/HSouheill/taxdesk_backend/models"
	"github.com/HSouheill/taxdesk_backend/utils"
)

// CatalogController serves service types and task categories.
type CatalogController struct {
	*Deps
}

func NewCatalogController(d *Deps) *CatalogController {
	return &CatalogController{Deps: d}
}

func (cc *CatalogController) ListServiceTypes(c echo.Context) error {
	if _, err := middleware.RequireAuth(c); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	types, err := cc.Store.ServiceTypes.List(ctx)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", types)
}

func (cc *CatalogController) CreateServiceType(c echo.Context) error {
	if _, err := middleware.RequireAdmin(c); err != nil {
		return err
	}
	var req models.ServiceTypeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	name := strings.TrimSpace(utils.SanitizeInput(req.Name))
	if name == "" {
		return apperrors.Validation("Name is required")
	}

	now := cc.now()
	st := &models.ServiceType{
		Name:        name,
		Description: utils.SanitizeInput(req.Description),
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.DefaultPrice != nil {
		if *req.DefaultPrice < 0 {
			return apperrors.Validation("defaultPrice cannot be negative")
		}
		st.DefaultPrice = *req.DefaultPrice
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := cc.Store.ServiceTypes.Create(ctx, st); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Service type created successfully", st)
}

func (cc *CatalogController) UpdateServiceType(c echo.Context) error {
	if _, err := middleware.RequireAdmin(c); err != nil {
		return err
	}
	id, err := parseID(c, "id", "service type")
	if err != nil {
		return err
	}
	var req models.ServiceTypeRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	st, err := cc.Store.ServiceTypes.FindByID(ctx, id)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(utils.SanitizeInput(req.Name))
	if name == "" {
		return apperrors.Validation("Name is required")
	}
	st.Name = name
	st.Description = utils.SanitizeInput(req.Description)
	if req.DefaultPrice != nil {
		if *req.DefaultPrice < 0 {
			return apperrors.Validation("defaultPrice cannot be negative")
		}
		st.DefaultPrice = *req.DefaultPrice
	}
	st.UpdatedAt = cc.now()

	if err := cc.Store.ServiceTypes.Update(ctx, st); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Service type updated successfully", st)
}

func (cc *CatalogController) DeleteServiceType(c echo.Context) error {
	if _, err := middleware.RequireAdmin(c); err != nil {
		return err
	}
	id, err := parseID(c, "id", "service type")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	st, err := cc.Store.ServiceTypes.FindByID(ctx, id)
	if err != nil {
		return err
	}
	st.IsActive = false
	st.UpdatedAt = cc.now()
	if err := cc.Store.ServiceTypes.Update(ctx, st); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Service type deleted successfully", nil)
}

// ListTaskCategories returns the system categories plus the custom ones of
// the caller's admin.
func (cc *CatalogController) ListTaskCategories(c echo.Context) error {
	user, err := middleware.RequireAuth(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	adminID, err := cc.categoryOwner(ctx, user)
	if err != nil {
		return err
	}
	cats, err := cc.Store.TaskCategories.ListVisible(ctx, adminID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", cats)
}

func (cc *CatalogController) CreateTaskCategory(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}
	var req models.TaskCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	name := strings.TrimSpace(utils.SanitizeInput(req.Name))
	if name == "" {
		return apperrors.Validation("Name is required")
	}

	now := cc.now()
	adminID := user.ID
	cat := &models.TaskCategory{
		Name:        name,
		Description: utils.SanitizeInput(req.Description),
		Color:       req.Color,
		AdminID:     &adminID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := cc.Store.TaskCategories.Create(ctx, cat); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Task category created successfully", cat)
}

func (cc *CatalogController) UpdateTaskCategory(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "task category")
	if err != nil {
		return err
	}
	var req models.TaskCategoryRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	cat, err := cc.ownCategory(ctx, user.ID, id)
	if err != nil {
		return err
	}
	name := strings.TrimSpace(utils.SanitizeInput(req.Name))
	if name == "" {
		return apperrors.Validation("Name is required")
	}
	cat.Name = name
	cat.Description = utils.SanitizeInput(req.Description)
	cat.Color = req.Color
	cat.UpdatedAt = cc.now()

	if err := cc.Store.TaskCategories.Update(ctx, cat); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Task category updated successfully", cat)
}

func (cc *CatalogController) DeleteTaskCategory(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "task category")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	cat, err := cc.ownCategory(ctx, user.ID, id)
	if err != nil {
		return err
	}
	cat.IsActive = false
	cat.UpdatedAt = cc.now()
	if err := cc.Store.TaskCategories.Update(ctx, cat); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Task category deleted successfully", nil)
}

// ownCategory loads a custom category of adminID. System categories are
// read-only.
func (cc *CatalogController) ownCategory(ctx context.Context, adminID, id primitive.ObjectID) (*models.TaskCategory, error) {
	cat, err := cc.Store.TaskCategories.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if cat.IsSystem {
		return nil, apperrors.Forbidden("System categories cannot be modified")
	}
	if cat.AdminID == nil || *cat.AdminID != adminID {
		return nil, apperrors.NotFound("Task category")
	}
	return cat, nil
}

func (cc *CatalogController) categoryOwner(ctx context.Context, user *middleware.AuthUser) (primitive.ObjectID, error) {
	if user.IsAdmin() {
		return user.ID, nil
	}
	client, err := cc.Store.Clients.FindByID(ctx, user.ID)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return client.AssignedAdminID, nil
}
