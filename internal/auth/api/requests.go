// Package api provides HTTP handlers for authentication.
package api

// SendOTPRequest asks for a verification code.
type SendOTPRequest struct {
	Email string `json:"email" binding:"required"`
}

// VerifyOTPRequest redeems a verification code for a session.
type VerifyOTPRequest struct {
	Email            string `json:"email" binding:"required"`
	VerificationCode string `json:"verificationCode" binding:"required"`
	Fullname         string `json:"fullname"`
}
