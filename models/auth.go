// models/auth.go

package models

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type VerifyOTPRequest struct {
	Email string `json:"email" validate:"required"`
	OTP   string `json:"otp" validate:"required,len=6,numeric"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" validate:"required"`
	OTP         string `json:"otp" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=8"`
}

// AuthPayload is returned after a successful OTP verification.
type AuthPayload struct {
	Token string      `json:"token"`
	Role  string      `json:"role"`
	User  interface{} `json:"user"`
}
