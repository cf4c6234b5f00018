package controllers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/taxdesk_backend/apperrors"
	"github.com/HSouheill/taxdesk_backend/middleware"
	"github.com/HSouheill/taxdesk_backend/models"
	"github.com/HSouheill/taxdesk_backend/repositories"
	"github.com/HSouheill/taxdesk_backend/utils"
)

type ProjectController struct {
	*Deps
}

func NewProjectController(d *Deps) *ProjectController {
	return &ProjectController{Deps: d}
}

// ListProjects returns the caller's projects, optionally filtered by
// ?clientId= and ?status=.
func (pc *ProjectController) ListProjects(c echo.Context) error {
	user, err := middleware.RequireAuth(c)
	if err != nil {
		return err
	}
	clientID, err := queryID(c, "clientId")
	if err != nil {
		return err
	}
	status := c.QueryParam("status")
	if status != "" && !models.ValidProjectStatus(status) {
		return apperrors.Validation("Invalid status filter")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	projects, err := pc.Store.Projects.List(ctx, repositories.ProjectFilter{
		Scope:    scopeOf(user),
		ClientID: clientID,
		Status:   status,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", projects)
}

func (pc *ProjectController) CreateProject(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}
	var req models.ProjectCreateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	status := req.Status
	if status == "" {
		status = models.ProjectStatusInfoReceived
	}
	if !models.ValidProjectStatus(status) {
		return apperrors.Validation("Invalid project status")
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		return apperrors.Validation("Invalid priority")
	}
	if err := checkDateRange(req.StartDate, req.EndDate); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	client, err := pc.activeClient(ctx, user.ID, req.ClientID)
	if err != nil {
		return err
	}
	serviceTypeIDs, err := pc.serviceTypeIDs(ctx, req.ServiceTypeIDs)
	if err != nil {
		return err
	}

	now := pc.now()
	project := &models.Project{
		Title:          utils.SanitizeInput(req.Title),
		Description:    utils.SanitizeInput(req.Description),
		ClientID:       client.ID,
		AdminID:        user.ID,
		Status:         status,
		Priority:       priority,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		ServiceTypeIDs: serviceTypeIDs,
		IsActive:       true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := pc.Store.Projects.Create(ctx, project); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Project created successfully", project)
}

func (pc *ProjectController) GetProject(c echo.Context) error {
	user, err := middleware.RequireAuth(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "project")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	project, err := pc.Store.Projects.FindByID(ctx, id, scopeOf(user))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", project)
}

func (pc *ProjectController) UpdateProject(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "project")
	if err != nil {
		return err
	}
	var req models.ProjectUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	project, err := pc.Store.Projects.FindByID(ctx, id, scopeOf(user))
	if err != nil {
		return err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return apperrors.Validation("Title cannot be empty")
		}
		project.Title = utils.SanitizeInput(*req.Title)
	}
	if req.Description != nil {
		project.Description = utils.SanitizeInput(*req.Description)
	}
	if req.Status != nil {
		if !models.ValidProjectStatus(*req.Status) {
			return apperrors.Validation("Invalid project status")
		}
		project.Status = *req.Status
	}
	if req.Priority != nil {
		if !models.ValidPriority(*req.Priority) {
			return apperrors.Validation("Invalid priority")
		}
		project.Priority = *req.Priority
	}
	if req.StartDate != nil {
		project.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		project.EndDate = req.EndDate
	}
	if err := checkDateRange(project.StartDate, project.EndDate); err != nil {
		return err
	}
	if req.ServiceTypeIDs != nil {
		ids, err := pc.serviceTypeIDs(ctx, req.ServiceTypeIDs)
		if err != nil {
			return err
		}
		project.ServiceTypeIDs = ids
	}

	project.UpdatedAt = pc.now()
	if err := pc.Store.Projects.Update(ctx, project); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Project updated successfully", project)
}

// UpdateProjectStatus is the PATCH shortcut used by status boards.
func (pc *ProjectController) UpdateProjectStatus(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "project")
	if err != nil {
		return err
	}
	var req models.StatusUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if !models.ValidProjectStatus(req.Status) {
		return apperrors.Validation("Invalid project status")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	project, err := pc.Store.Projects.FindByID(ctx, id, scopeOf(user))
	if err != nil {
		return err
	}
	project.Status = req.Status
	project.UpdatedAt = pc.now()
	if err := pc.Store.Projects.Update(ctx, project); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Project status updated", project)
}

func (pc *ProjectController) DeleteProject(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "project")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	project, err := pc.Store.Projects.FindByID(ctx, id, scopeOf(user))
	if err != nil {
		return err
	}
	project.IsActive = false
	project.UpdatedAt = pc.now()
	if err := pc.Store.Projects.Update(ctx, project); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Project deleted successfully", nil)
}

// serviceTypeIDs parses and checks references to active service types.
func (pc *ProjectController) serviceTypeIDs(ctx context.Context, hexIDs []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexIDs))
	seen := make(map[primitive.ObjectID]bool, len(hexIDs))
	for _, h := range hexIDs {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, apperrors.Validation("Invalid serviceTypeIds")
		}
		if seen[id] {
			continue
		}
		st, err := pc.Store.ServiceTypes.FindByID(ctx, id)
		if apperrors.Is(err, apperrors.KindNotFound) || (err == nil && !st.IsActive) {
			return nil, apperrors.Validation("Unknown service type " + h)
		}
		if err != nil {
			return nil, err
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}
