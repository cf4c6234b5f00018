package models

import (
	"time"
)

// OTP purposes. A code is bound to one identifier and one purpose.
const (
	OTPPurposeAdminLogin        = "admin_login"
	OTPPurposeClientLogin       = "client_login"
	OTPPurposePasswordReset     = "password_reset"
	OTPPurposeEmailVerification = "email_verification"
)

// OTPRecord is the stored state of a one-time code.
type OTPRecord struct {
	Identifier string    `json:"identifier" bson:"identifier"`
	Purpose    string    `json:"purpose" bson:"purpose"`
	Code       string    `json:"-" bson:"code"`
	ExpiresAt  time.Time `json:"expiresAt" bson:"expiresAt"`
	IsUsed     bool      `json:"isUsed" bson:"isUsed"`
	Attempts   int       `json:"attempts" bson:"attempts"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
}

// IsActive reports whether the code can still be consumed at now.
func (o *OTPRecord) IsActive(now time.Time) bool {
	return !o.IsUsed && now.Before(o.ExpiresAt)
}
