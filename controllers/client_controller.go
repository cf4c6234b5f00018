package controllers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/taxdesk_backend/apperrors"
	"github.com/HSouheill/taxdesk_backend/middleware"
	"github.com/HSouheill/taxdesk_backend/models"
	"github.com/HSouheill/taxdesk_backend/repositories"
	"github.com/HSouheill/taxdesk_backend/utils"
)

// ClientController is the admin-side management of clients.
type ClientController struct {
	*Deps
}

func NewClientController(d *Deps) *ClientController {
	return &ClientController{Deps: d}
}

// ListClients returns the caller's clients. Inactive clients are left out
// unless ?status=Inactive or ?status=all.
func (cc *ClientController) ListClients(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}

	filter := repositories.ClientFilter{
		AdminID: user.ID,
		Search:  strings.TrimSpace(c.QueryParam("search")),
	}
	switch status := c.QueryParam("status"); {
	case status == "":
		filter.Statuses = []string{models.ClientStatusActive}
	case strings.EqualFold(status, "all"):
	case models.ValidClientStatus(status):
		filter.Statuses = []string{status}
	default:
		return apperrors.Validation("Invalid status filter")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	clients, err := cc.Store.Clients.List(ctx, filter)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", clients)
}

func (cc *ClientController) CreateClient(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}
	var req models.ClientCreateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return apperrors.Validation("Invalid email format")
	}
	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return apperrors.Validation("Invalid phone number")
	}

	now := cc.now()
	client := &models.Client{
		FirstName:       utils.SanitizeInput(req.FirstName),
		LastName:        utils.SanitizeInput(req.LastName),
		Email:           email,
		Phone:           phone,
		CompanyName:     utils.SanitizeInput(req.CompanyName),
		Address:         utils.SanitizeInput(req.Address),
		TaxID:           strings.TrimSpace(req.TaxID),
		AssignedAdminID: user.ID,
		Status:          models.ClientStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.Password != "" {
		hashed, err := utils.HashPassword(req.Password)
		if err != nil {
			return apperrors.Internal(err)
		}
		client.Password = hashed
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := cc.Store.Clients.Create(ctx, client); err != nil {
		return err
	}
	if err := cc.Store.Admins.AddClient(ctx, user.ID, client.ID); err != nil {
		return err
	}

	cc.Log.Info("Client created", "adminId", user.ID.Hex(), "clientId", client.ID.Hex())
	return respond(c, http.StatusCreated, "Client created successfully", client)
}

// GetClient returns one client in any status.
func (cc *ClientController) GetClient(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "client")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	client, err := cc.ownedClient(ctx, user.ID, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", client)
}

func (cc *ClientController) UpdateClient(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "client")
	if err != nil {
		return err
	}
	var req models.ClientUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	client, err := cc.ownedClient(ctx, user.ID, id)
	if err != nil {
		return err
	}

	if req.FirstName != nil {
		client.FirstName = utils.SanitizeInput(*req.FirstName)
	}
	if req.LastName != nil {
		client.LastName = utils.SanitizeInput(*req.LastName)
	}
	if req.Email != nil {
		email, err := utils.SanitizeEmail(*req.Email)
		if err != nil {
			return apperrors.Validation("Invalid email format")
		}
		if email != client.Email {
			client.Email = email
			client.IsEmailVerified = false
		}
	}
	if req.Phone != nil {
		phone, err := utils.SanitizePhone(*req.Phone)
		if err != nil {
			return apperrors.Validation("Invalid phone number")
		}
		if phone != client.Phone {
			client.Phone = phone
			client.IsPhoneVerified = false
		}
	}
	if req.CompanyName != nil {
		client.CompanyName = utils.SanitizeInput(*req.CompanyName)
	}
	if req.Address != nil {
		client.Address = utils.SanitizeInput(*req.Address)
	}
	if req.TaxID != nil {
		client.TaxID = strings.TrimSpace(*req.TaxID)
	}
	if req.Status != nil {
		if !models.ValidClientStatus(*req.Status) {
			return apperrors.Validation("Invalid status, must be Active or Inactive")
		}
		client.Status = *req.Status
	}
	if client.FirstName == "" || client.LastName == "" {
		return apperrors.Validation("First and last name cannot be empty")
	}

	client.UpdatedAt = cc.now()
	if err := cc.Store.Clients.Update(ctx, client); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Client updated successfully", client)
}

// DeleteClient deactivates the client. The record and its history stay.
func (cc *ClientController) DeleteClient(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}
	id, err := parseID(c, "id", "client")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	client, err := cc.ownedClient(ctx, user.ID, id)
	if err != nil {
		return err
	}
	if !client.IsActive() {
		return respond(c, http.StatusOK, "Client already inactive", client)
	}

	client.Status = models.ClientStatusInactive
	client.UpdatedAt = cc.now()
	if err := cc.Store.Clients.Update(ctx, client); err != nil {
		return err
	}

	cc.Log.Info("Client deactivated", "adminId", user.ID.Hex(), "clientId", client.ID.Hex())
	return respond(c, http.StatusOK, "Client deactivated successfully", client)
}
