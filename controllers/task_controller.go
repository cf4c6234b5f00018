package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/taxdesk_backend/apperrors"
	"github.com/HSouheill/taxdesk_backend/middleware"
	"github.com/HSouheill/taxdesk_backend/models"
	"github.com/HSouheill/taxdesk_backend/repositories"
	"github.com/HSouheill/taxdesk_backend/services"
	"github.com/HSouheill/taxdesk_backend/utils"
)

type TaskController struct {
	*Deps
}

func NewTaskController(d *Deps) *TaskController {
	return &TaskController{Deps: d}
}

// ListTasks returns one page of the caller's tasks. Filters: clientId,
// projectId, status.
func (tc *TaskController) ListTasks(c echo.Context) error {
	user, err := middleware.RequireAuth(c)
	if err != nil {
		return err
	}
	clientID, err := queryID(c, "clientId")
	if err != nil {
		return err
	}
	projectID, err := queryID(c, "projectId")
	if err != nil {
		return err
	}
	status := c.QueryParam("status")
	if status != "" && !models.ValidTaskStatus(status) {
		return apperrors.Validation("Invalid status filter")
	}
	p := utils.ParsePagination(c)

	ctx, cancel := requestContext(c)
	defer cancel()

	tasks, total, err := tc.Store.Tasks.List(ctx, repositories.TaskFilter{
		Scope:     scopeOf(user),
		ClientID:  clientID,
		ProjectID: projectID,
		Status:    status,
	}, repositories.Page{Skip: p.Skip(), Limit: int64(p.Limit)})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", models.PaginatedData{
		Items:      tasks,
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: p.TotalPages(total),
	})
}

func (tc *TaskController) CreateTask(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}
	var req models.TaskCreateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	status := req.Status
	if status == "" {
		status = models.TaskStatusPending
	}
	if !models.ValidTaskStatus(status) {
		return apperrors.Validation("Invalid task status")
	}
	priority := req.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	if !models.ValidPriority(priority) {
		return apperrors.Validation("Invalid priority")
	}
	projectID, err := parseOptionalID(req.ProjectID, "projectId")
	if err != nil {
		return err
	}
	categoryID, err := parseOptionalID(req.CategoryID, "categoryId")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	client, err := tc.activeClient(ctx, user.ID, req.ClientID)
	if err != nil {
		return err
	}
	if err := tc.checkProject(ctx, user.ID, client.ID, projectID); err != nil {
		return err
	}
	if err := tc.checkCategory(ctx, user.ID, categoryID); err != nil {
		return err
	}

	now := tc.now()
	task := &models.Task{
		Title:       utils.SanitizeInput(req.Title),
		Description: utils.SanitizeInput(req.Description),
		ClientID:    client.ID,
		AdminID:     user.ID,
		ProjectID:   projectID,
		CategoryID:  categoryID,
		Priority:    priority,
		DueDate:     req.DueDate,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := setTaskAmounts(task, req.PriceQuoted, req.AmountPaid); err != nil {
		return err
	}
	task.SetStatus(status, now)

	if err := tc.Store.Tasks.Create(ctx, task); err != nil {
		return err
	}

	tc.notify(user.ID, services.EventTaskCreated, fmt.Sprintf("Task %q created", task.Title), task)
	return respond(c, http.StatusCreated, "Task created successfully", task)
}

func (tc *TaskController) GetTask(c echo.Context) error {
	user, err := middleware.RequireAuth(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "task")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	task, err := tc.Store.Tasks.FindByID(ctx, id, scopeOf(user))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", task)
}

func (tc *TaskController) UpdateTask(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "task")
	if err != nil {
		return err
	}
	var req models.TaskUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	task, err := tc.Store.Tasks.FindByID(ctx, id, scopeOf(user))
	if err != nil {
		return err
	}

	if req.Title != nil {
		if *req.Title == "" {
			return apperrors.Validation("Title cannot be empty")
		}
		task.Title = utils.SanitizeInput(*req.Title)
	}
	if req.Description != nil {
		task.Description = utils.SanitizeInput(*req.Description)
	}
	if req.Priority != nil {
		if !models.ValidPriority(*req.Priority) {
			return apperrors.Validation("Invalid priority")
		}
		task.Priority = *req.Priority
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}
	if req.ProjectID != nil {
		projectID, err := parseOptionalID(*req.ProjectID, "projectId")
		if err != nil {
			return err
		}
		if err := tc.checkProject(ctx, user.ID, task.ClientID, projectID); err != nil {
			return err
		}
		task.ProjectID = projectID
	}
	if req.CategoryID != nil {
		categoryID, err := parseOptionalID(*req.CategoryID, "categoryId")
		if err != nil {
			return err
		}
		if err := tc.checkCategory(ctx, user.ID, categoryID); err != nil {
			return err
		}
		task.CategoryID = categoryID
	}

	price, paid := task.PriceQuoted, task.AmountPaid
	if req.PriceQuoted != nil {
		price = *req.PriceQuoted
	}
	if req.AmountPaid != nil {
		paid = *req.AmountPaid
	}
	if err := setTaskAmounts(task, price, paid); err != nil {
		return err
	}

	now := tc.now()
	if req.Status != nil {
		if !models.ValidTaskStatus(*req.Status) {
			return apperrors.Validation("Invalid task status")
		}
		task.SetStatus(*req.Status, now)
	}

	task.UpdatedAt = now
	if err := tc.Store.Tasks.Update(ctx, task); err != nil {
		return err
	}

	tc.notify(user.ID, services.EventTaskUpdated, fmt.Sprintf("Task %q updated", task.Title), task)
	return respond(c, http.StatusOK, "Task updated successfully", task)
}

func (tc *TaskController) DeleteTask(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "task")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	task, err := tc.Store.Tasks.FindByID(ctx, id, scopeOf(user))
	if err != nil {
		return err
	}
	task.IsActive = false
	task.UpdatedAt = tc.now()
	if err := tc.Store.Tasks.Update(ctx, task); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Task deleted successfully", nil)
}

func setTaskAmounts(task *models.Task, price, paid float64) error {
	if err := task.SetAmounts(price, paid); err != nil {
		if errors.Is(err, models.ErrNegativeAmount) {
			return apperrors.Validation("priceQuoted and amountPaid cannot be negative")
		}
		return err
	}
	return nil
}

// checkProject verifies an optional project reference belongs to the
// same client.
func (tc *TaskController) checkProject(ctx context.Context, adminID, clientID primitive.ObjectID, projectID *primitive.ObjectID) error {
	if projectID == nil {
		return nil
	}
	project, err := tc.Store.Projects.FindByID(ctx, *projectID, repositories.Scope{AdminID: adminID})
	if apperrors.Is(err, apperrors.KindNotFound) {
		return apperrors.Validation("Unknown projectId")
	}
	if err != nil {
		return err
	}
	if project.ClientID != clientID {
		return apperrors.Validation("Project belongs to a different client")
	}
	return nil
}

// checkCategory verifies an optional category is a system category or one
// of the admin's own.
func (tc *TaskController) checkCategory(ctx context.Context, adminID primitive.ObjectID, categoryID *primitive.ObjectID) error {
	if categoryID == nil {
		return nil
	}
	cat, err := tc.Store.TaskCategories.FindByID(ctx, *categoryID)
	if apperrors.Is(err, apperrors.KindNotFound) {
		return apperrors.Validation("Unknown categoryId")
	}
	if err != nil {
		return err
	}
	if !cat.IsSystem && (cat.AdminID == nil || *cat.AdminID != adminID) {
		return apperrors.Validation("Unknown categoryId")
	}
	return nil
}
