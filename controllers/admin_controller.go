package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HSouheill/taxdesk_backend/apperrors"
	"github.com/HSouheill/taxdesk_backend/middleware"
	"github.com/HSouheill/taxdesk_backend/models"
	"github.com/HSouheill/taxdesk_backend/utils"
)

// AdminController serves the signed-in admin's own account.
type AdminController struct {
	*Deps
}

func NewAdminController(d *Deps) *AdminController {
	return &AdminController{Deps: d}
}

func (ac *AdminController) GetProfile(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	admin, err := ac.Store.Admins.FindByID(ctx, user.ID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", admin)
}

func (ac *AdminController) UpdateProfile(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}
	var req models.AdminProfileUpdateRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	admin, err := ac.Store.Admins.FindByID(ctx, user.ID)
	if err != nil {
		return err
	}

	if req.FirstName != nil {
		admin.FirstName = utils.SanitizeInput(*req.FirstName)
	}
	if req.LastName != nil {
		admin.LastName = utils.SanitizeInput(*req.LastName)
	}
	if req.FirmName != nil {
		admin.FirmName = utils.SanitizeInput(*req.FirmName)
	}
	if req.ProfilePicture != nil {
		admin.ProfilePicture = *req.ProfilePicture
	}
	if req.Phone != nil {
		phone, err := utils.SanitizePhone(*req.Phone)
		if err != nil {
			return apperrors.Validation("Invalid phone number")
		}
		admin.Phone = phone
	}
	if admin.FirstName == "" || admin.LastName == "" {
		return apperrors.Validation("First and last name cannot be empty")
	}

	admin.UpdatedAt = ac.now()
	if err := ac.Store.Admins.Update(ctx, admin); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Profile updated successfully", admin)
}

func (ac *AdminController) ChangePassword(c echo.Context) error {
	user, err := middleware.RequireAdmin(c)
	if err != nil {
		return err
	}
	var req models.ChangePasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	admin, err := ac.Store.Admins.FindByID(ctx, user.ID)
	if err != nil {
		return err
	}
	if !utils.CheckPassword(req.CurrentPassword, admin.Password) {
		return apperrors.Validation("Current password is incorrect")
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.Internal(err)
	}
	admin.Password = hashed
	admin.UpdatedAt = ac.now()
	if err := ac.Store.Admins.Update(ctx, admin); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Password changed successfully", nil)
}
