package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/HSouheill/taxdesk_backend/apperrors"
	"github.com/HSouheill/taxdesk_backend/middleware"
	"github.com/HSouheill/taxdesk_backend/models"
	"github.com/HSouheill/taxdesk_backend/repositories"
	"github.com/HSouheill/taxdesk_backend/services"
	"github.com/HSouheill/taxdesk_backend/utils"
)

// AuthController handles registration, the password + OTP login flows and
// password resets for both admins and clients.
type AuthController struct {
	*Deps
	identities *repositories.IdentityLookup
}

func NewAuthController(d *Deps) *AuthController {
	return &AuthController{
		Deps:       d,
		identities: &repositories.IdentityLookup{Admins: d.Store.Admins, Clients: d.Store.Clients},
	}
}

func errBadCredentials() error {
	return apperrors.Unauthenticated("Invalid email or password")
}

// RegisterAdmin creates an admin account. The admin logs in afterwards.
func (ac *AuthController) RegisterAdmin(c echo.Context) error {
	var req models.AdminRegisterRequest
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
	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return apperrors.Internal(err)
	}

	now := ac.now()
	admin := &models.Admin{
		FirstName: utils.SanitizeInput(req.FirstName),
		LastName:  utils.SanitizeInput(req.LastName),
		Email:     email,
		Password:  hashed,
		Phone:     phone,
		FirmName:  utils.SanitizeInput(req.FirmName),
		ClientIDs: []primitive.ObjectID{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	ctx, cancel := requestContext(c)
	defer cancel()
	if err := ac.Store.Admins.Create(ctx, admin); err != nil {
		return err
	}

	ac.Log.Info("Admin registered", "adminId", admin.ID.Hex(), "email", services.MaskEmail(email))
	return respond(c, http.StatusCreated, "Admin registered successfully", admin)
}

// AdminLogin checks the password and sends a login code.
func (ac *AuthController) AdminLogin(c echo.Context) error {
	return ac.login(c, models.RoleAdmin, models.OTPPurposeAdminLogin)
}

// ClientLogin checks the password and sends a login code. Inactive clients
// are refused.
func (ac *AuthController) ClientLogin(c echo.Context) error {
	return ac.login(c, models.RoleClient, models.OTPPurposeClientLogin)
}

func (ac *AuthController) login(c echo.Context, role, purpose string) error {
	var req models.LoginRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	email := models.NormalizeEmail(req.Email)

	ctx, cancel := requestContext(c)
	defer cancel()

	identity, err := ac.identities.FindByEmail(ctx, role, email)
	if apperrors.Is(err, apperrors.KindNotFound) {
		return errBadCredentials()
	}
	if err != nil {
		return err
	}
	if !utils.CheckPassword(req.Password, identity.GetPasswordHash()) {
		return errBadCredentials()
	}
	if err := checkActive(identity); err != nil {
		return err
	}

	if err := ac.sendCode(ctx, identity, purpose); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Verification code sent to your email", map[string]interface{}{
		"requiresOtp": true,
		"email":       email,
	})
}

// AdminVerifyOTP finishes the admin login and issues the session token.
func (ac *AuthController) AdminVerifyOTP(c echo.Context) error {
	return ac.verifyLogin(c, models.RoleAdmin, models.OTPPurposeAdminLogin)
}

// ClientVerifyOTP finishes the client login and issues the session token.
func (ac *AuthController) ClientVerifyOTP(c echo.Context) error {
	return ac.verifyLogin(c, models.RoleClient, models.OTPPurposeClientLogin)
}

func (ac *AuthController) verifyLogin(c echo.Context, role, purpose string) error {
	var req models.VerifyOTPRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	email := models.NormalizeEmail(req.Email)

	ctx, cancel := requestContext(c)
	defer cancel()

	identity, err := ac.identities.FindByEmail(ctx, role, email)
	if apperrors.Is(err, apperrors.KindNotFound) {
		return apperrors.Validation("Invalid or expired code")
	}
	if err != nil {
		return err
	}
	if err := ac.OTP.Verify(ctx, email, purpose, req.OTP); err != nil {
		return err
	}
	if err := checkActive(identity); err != nil {
		return err
	}

	now := ac.now()
	switch role {
	case models.RoleAdmin:
		err = ac.Store.Admins.SetLastLogin(ctx, identity.GetID(), now)
	default:
		err = ac.Store.Clients.SetLastLogin(ctx, identity.GetID(), now)
	}
	if err != nil {
		ac.Log.Warn("Failed to record last login", "id", identity.GetID().Hex(), "error", err.Error())
	}

	token, expires, err := ac.JWT.Generate(identity)
	if err != nil {
		return apperrors.Internal(err)
	}
	ac.setAuthCookie(c, token, expires)

	ac.Log.Info("Login completed", "role", role, "id", identity.GetID().Hex())
	return respond(c, http.StatusOK, "Login successful", models.AuthPayload{
		Token: token,
		Role:  role,
		User:  identity,
	})
}

// RegisterClient is the client self-registration under an existing admin.
// An email verification code is sent on success.
func (ac *AuthController) RegisterClient(c echo.Context) error {
	var req models.ClientRegisterRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	adminID, err := primitive.ObjectIDFromHex(req.AdminID)
	if err != nil {
		return apperrors.Validation("Invalid adminId")
	}
	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return apperrors.Validation("Invalid email format")
	}
	phone, err := utils.SanitizePhone(req.Phone)
	if err != nil {
		return apperrors.Validation("Invalid phone number")
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	admin, err := ac.Store.Admins.FindByID(ctx, adminID)
	if apperrors.Is(err, apperrors.KindNotFound) {
		return apperrors.Validation("Unknown adminId")
	}
	if err != nil {
		return err
	}

	hashed, err := utils.HashPassword(req.Password)
	if err != nil {
		return apperrors.Internal(err)
	}

	now := ac.now()
	client := &models.Client{
		FirstName:       utils.SanitizeInput(req.FirstName),
		LastName:        utils.SanitizeInput(req.LastName),
		Email:           email,
		Password:        hashed,
		Phone:           phone,
		CompanyName:     utils.SanitizeInput(req.CompanyName),
		AssignedAdminID: admin.ID,
		Status:          models.ClientStatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := ac.Store.Clients.Create(ctx, client); err != nil {
		return err
	}
	if err := ac.Store.Admins.AddClient(ctx, admin.ID, client.ID); err != nil {
		return err
	}

	ac.notify(admin.ID, services.EventClientRegistered,
		fmt.Sprintf("%s %s registered", client.FirstName, client.LastName),
		map[string]string{"clientId": client.ID.Hex()})

	if err := ac.sendCode(ctx, client, models.OTPPurposeEmailVerification); err != nil {
		ac.Log.Warn("Verification code not sent", "clientId", client.ID.Hex(), "error", err.Error())
		return respond(c, http.StatusCreated, "Registration successful, request a new verification code to verify your email", client)
	}
	return respond(c, http.StatusCreated, "Registration successful, check your email for a verification code", client)
}

// VerifyClientEmail consumes an email verification code.
func (ac *AuthController) VerifyClientEmail(c echo.Context) error {
	var req models.VerifyOTPRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	email := models.NormalizeEmail(req.Email)

	ctx, cancel := requestContext(c)
	defer cancel()

	client, err := ac.Store.Clients.FindByEmail(ctx, email)
	if apperrors.Is(err, apperrors.KindNotFound) {
		return apperrors.Validation("Invalid or expired code")
	}
	if err != nil {
		return err
	}
	if client.IsEmailVerified {
		return apperrors.Validation("Email already verified")
	}
	if err := ac.OTP.Verify(ctx, email, models.OTPPurposeEmailVerification, req.OTP); err != nil {
		return err
	}

	client.IsEmailVerified = true
	client.UpdatedAt = ac.now()
	if err := ac.Store.Clients.Update(ctx, client); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Email verified successfully", client)
}

// ResendVerification sends a fresh email verification code. Unknown and
// already verified emails get the same answer as a sent code.
func (ac *AuthController) ResendVerification(c echo.Context) error {
	var req models.ForgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	const msg = "If an unverified account exists for this email, a verification code has been sent"
	client, err := ac.Store.Clients.FindByEmail(ctx, models.NormalizeEmail(req.Email))
	if apperrors.Is(err, apperrors.KindNotFound) {
		return respond(c, http.StatusOK, msg, nil)
	}
	if err != nil {
		return err
	}
	if client.IsEmailVerified {
		return respond(c, http.StatusOK, msg, nil)
	}
	if err := ac.sendCode(ctx, client, models.OTPPurposeEmailVerification); err != nil {
		return err
	}
	return respond(c, http.StatusOK, msg, nil)
}

func (ac *AuthController) AdminForgotPassword(c echo.Context) error {
	return ac.forgotPassword(c, models.RoleAdmin)
}

func (ac *AuthController) ClientForgotPassword(c echo.Context) error {
	return ac.forgotPassword(c, models.RoleClient)
}

// forgotPassword sends a reset code. Unknown emails get the same answer so
// the endpoint does not reveal which accounts exist.
func (ac *AuthController) forgotPassword(c echo.Context, role string) error {
	var req models.ForgotPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	email := models.NormalizeEmail(req.Email)

	ctx, cancel := requestContext(c)
	defer cancel()

	const msg = "If an account exists for this email, a reset code has been sent"
	identity, err := ac.identities.FindByEmail(ctx, role, email)
	if apperrors.Is(err, apperrors.KindNotFound) {
		return respond(c, http.StatusOK, msg, nil)
	}
	if err != nil {
		return err
	}
	if err := ac.sendCode(ctx, identity, models.OTPPurposePasswordReset); err != nil {
		return err
	}
	return respond(c, http.StatusOK, msg, nil)
}

func (ac *AuthController) AdminResetPassword(c echo.Context) error {
	return ac.resetPassword(c, models.RoleAdmin)
}

func (ac *AuthController) ClientResetPassword(c echo.Context) error {
	return ac.resetPassword(c, models.RoleClient)
}

func (ac *AuthController) resetPassword(c echo.Context, role string) error {
	var req models.ResetPasswordRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	email := models.NormalizeEmail(req.Email)

	ctx, cancel := requestContext(c)
	defer cancel()

	identity, err := ac.identities.FindByEmail(ctx, role, email)
	if apperrors.Is(err, apperrors.KindNotFound) {
		return apperrors.Validation("Invalid or expired code")
	}
	if err != nil {
		return err
	}
	if err := ac.OTP.Verify(ctx, email, models.OTPPurposePasswordReset, req.OTP); err != nil {
		return err
	}

	hashed, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		return apperrors.Internal(err)
	}
	now := ac.now()
	switch v := identity.(type) {
	case *models.Admin:
		v.Password, v.UpdatedAt = hashed, now
		err = ac.Store.Admins.Update(ctx, v)
	case *models.Client:
		v.Password, v.UpdatedAt = hashed, now
		err = ac.Store.Clients.Update(ctx, v)
	}
	if err != nil {
		return err
	}

	ac.Log.Info("Password reset", "role", role, "id", identity.GetID().Hex())
	return respond(c, http.StatusOK, "Password reset successfully", nil)
}

// Logout clears the session cookie. Bearer tokens simply expire.
func (ac *AuthController) Logout(c echo.Context) error {
	ac.clearAuthCookie(c)
	return respond(c, http.StatusOK, "Logged out successfully", nil)
}

// Me returns the account behind the session token.
func (ac *AuthController) Me(c echo.Context) error {
	user, err := middleware.RequireAuth(c)
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	identity, err := ac.identities.Find(ctx, user.Role, user.ID)
	if apperrors.Is(err, apperrors.KindNotFound) {
		return apperrors.Unauthenticated("Account no longer exists")
	}
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", map[string]interface{}{
		"role": user.Role,
		"user": identity,
	})
}

// sendCode issues a code for purpose and mails it. A code that is still
// active is reported with the minutes left.
func (ac *AuthController) sendCode(ctx context.Context, identity models.Identity, purpose string) error {
	email := identity.GetEmail()
	code, err := ac.OTP.Issue(ctx, email, purpose)
	if err != nil {
		return err
	}

	mailCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := ac.Mailer.SendOTP(mailCtx, email, identity.GetFirstName(), code, purpose, ac.OTP.TTL()); err != nil {
		ac.Log.Error(err, "Failed to send code", "to", services.MaskEmail(email), "purpose", purpose)
		return apperrors.New(apperrors.KindInternal, "Failed to send verification code", err)
	}
	return nil
}

func checkActive(identity models.Identity) error {
	if client, ok := identity.(*models.Client); ok && !client.IsActive() {
		return apperrors.Forbidden("Account is inactive")
	}
	return nil
}
