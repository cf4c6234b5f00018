package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/taxdesk_backend/apperrors"
	"github.com/HSouheill/taxdesk_backend/middleware"
	"github.com/HSouheill/taxdesk_backend/models"
	"github.com/HSouheill/taxdesk_backend/repositories"
	"github.com/HSouheill/taxdesk_backend/utils"
)

type NoteController struct {
	*Deps
}

func NewNoteController(d *Deps) *NoteController {
	return &NoteController{Deps: d}
}

// ListNotes returns project notes. Clients only see notes marked visible on
// their own projects.
func (nc *NoteController) ListNotes(c echo.Context) error {
	user, err := middleware.RequireAuth(c)
	if err != nil {
		return err
	}
	projectID, err := queryID(c, "projectId")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	scope := scopeOf(user)
	if !projectID.IsZero() {
		if _, err := nc.Store.Projects.FindByID(ctx, projectID, scope); err != nil {
			return err
		}
	}

	notes, err := nc.Store.Notes.List(ctx, repositories.NoteFilter{
		Scope:       scope,
		ProjectID:   projectID,
		VisibleOnly: user.IsClient(),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", notes)
}

func (nc *NoteController) CreateNote(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}
	var req models.NoteCreateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	projectID, err := parseOptionalID(req.ProjectID, "projectId")
	if err != nil {
		return err
	}
	if projectID == nil {
		return apperrors.Validation("projectId is required")
	}
	visible, ok := models.ResolveNoteVisibility(req.IsVisibleToClient, req.IsInternal, false)
	if !ok {
		return apperrors.Validation("isVisibleToClient and isInternal cannot have the same value")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	project, err := nc.Store.Projects.FindByID(ctx, *projectID, scopeOf(user))
	if err != nil {
		return err
	}

	now := nc.now()
	note := &models.Note{
		ProjectID: project.ID,
		ClientID:  project.ClientID,
		AdminID:   user.ID,
		Content:   utils.SanitizeInput(req.Content),
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	note.SetVisibility(visible)

	if err := nc.Store.Notes.Create(ctx, note); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Note created successfully", note)
}

func (nc *NoteController) UpdateNote(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "note")
	if err != nil {
		return err
	}
	var req models.NoteUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	note, err := nc.Store.Notes.FindByID(ctx, id, scopeOf(user))
	if err != nil {
		return err
	}

	if req.Content != nil {
		if *req.Content == "" {
			return apperrors.Validation("Content cannot be empty")
		}
		note.Content = utils.SanitizeInput(*req.Content)
	}
	visible, ok := models.ResolveNoteVisibility(req.IsVisibleToClient, req.IsInternal, note.IsVisibleToClient)
	if !ok {
		return apperrors.Validation("isVisibleToClient and isInternal cannot have the same value")
	}
	note.SetVisibility(visible)

	note.UpdatedAt = nc.now()
	if err := nc.Store.Notes.Update(ctx, note); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Note updated successfully", note)
}

func (nc *NoteController) DeleteNote(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "note")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	note, err := nc.Store.Notes.FindByID(ctx, id, scopeOf(user))
	if err != nil {
		return err
	}
	note.IsActive = false
	note.UpdatedAt = nc.now()
	if err := nc.Store.Notes.Update(ctx, note); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Note deleted successfully", nil)
}
