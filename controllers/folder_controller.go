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
	"github.com/HSouheill/taxdesk_backend/repositories"
	"github.com/HSouheill/taxdesk_backend/utils"
)

type FolderController struct {
	*Deps
}

func NewFolderController(d *Deps) *FolderController {
	return &FolderController{Deps: d}
}

func (fc *FolderController) ListFolders(c echo.Context) error {
	user, err := middleware.RequireAuth(c)
	if err != nil {
		return err
	}
	clientID, err := queryID(c, "clientId")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	folders, err := fc.Store.Folders.List(ctx, repositories.FolderFilter{
		Scope:    scopeOf(user),
		ClientID: clientID,
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", folders)
}

// CreateFolder creates a folder for a client. Admins name the client in the
// body; clients always create folders for themselves.
func (fc *FolderController) CreateFolder(c echo.Context) error {
	user, err := middleware.RequireAuth(c)
	if err != nil {
		return err
	}
	var req models.FolderCreateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	name := strings.TrimSpace(utils.SanitizeInput(req.Name))
	if name == "" {
		return apperrors.Validation("Folder name is required")
	}
	parentID, err := parseOptionalID(req.ParentID, "parentId")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	client, err := fc.folderOwner(ctx, user, req.ClientID)
	if err != nil {
		return err
	}
	if parentID != nil {
		parent, err := fc.Store.Folders.FindByID(ctx, *parentID, scopeOf(user))
		if apperrors.Is(err, apperrors.KindNotFound) {
			return apperrors.Validation("Unknown parentId")
		}
		if err != nil {
			return err
		}
		if parent.ClientID != client.ID {
			return apperrors.Validation("Parent folder belongs to a different client")
		}
	}
	if err := fc.checkNameFree(ctx, client.ID, parentID, name, primitive.NilObjectID); err != nil {
		return err
	}

	now := fc.now()
	folder := &models.Folder{
		Name:        name,
		Description: utils.SanitizeInput(req.Description),
		ClientID:    client.ID,
		AdminID:     client.AssignedAdminID,
		ParentID:    parentID,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := fc.Store.Folders.Create(ctx, folder); err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Folder created successfully", folder)
}

func (fc *FolderController) UpdateFolder(c echo.Context) error {
	user, err := middleware.RequireAuth(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "folder")
	if err != nil {
		return err
	}
	var req models.FolderUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	folder, err := fc.Store.Folders.FindByID(ctx, id, scopeOf(user))
	if err != nil {
		return err
	}

	if req.Name != nil {
		name := strings.TrimSpace(utils.SanitizeInput(*req.Name))
		if name == "" {
			return apperrors.Validation("Folder name is required")
		}
		if name != folder.Name {
			if err := fc.checkNameFree(ctx, folder.ClientID, folder.ParentID, name, folder.ID); err != nil {
				return err
			}
			folder.Name = name
		}
	}
	if req.Description != nil {
		folder.Description = utils.SanitizeInput(*req.Description)
	}

	folder.UpdatedAt = fc.now()
	if err := fc.Store.Folders.Update(ctx, folder); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Folder updated successfully", folder)
}

func (fc *FolderController) DeleteFolder(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "folder")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	folder, err := fc.Store.Folders.FindByID(ctx, id, scopeOf(user))
	if err != nil {
		return err
	}
	folder.IsActive = false
	folder.UpdatedAt = fc.now()
	if err := fc.Store.Folders.Update(ctx, folder); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Folder deleted successfully", nil)
}

// folderOwner resolves the client a new folder belongs to.
func (fc *FolderController) folderOwner(ctx context.Context, user *middleware.AuthUser, clientIDHex string) (*models.Client, error) {
	if user.IsAdmin() {
		if clientIDHex == "" {
			return nil, apperrors.Validation("clientId is required")
		}
		return fc.activeClient(ctx, user.ID, clientIDHex)
	}

	if clientIDHex != "" && clientIDHex != user.ID.Hex() {
		return nil, apperrors.Forbidden("Clients can only create their own folders")
	}
	client, err := fc.Store.Clients.FindByID(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	if !client.IsActive() {
		return nil, apperrors.Forbidden("Account is inactive")
	}
	return client, nil
}

func (fc *FolderController) checkNameFree(ctx context.Context, clientID primitive.ObjectID, parentID *primitive.ObjectID, name string, self primitive.ObjectID) error {
	existing, err := fc.Store.Folders.FindByName(ctx, clientID, parentID, name)
	switch {
	case apperrors.Is(err, apperrors.KindNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID == self:
		return nil
	default:
		return apperrors.Conflict("Folder with this name already exists")
	}
}
