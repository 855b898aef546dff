package inbound

import "time"

type RegisterRequest struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterResponse struct{}

func (RegisterResponse) Message() string {
	return "Registration successful."
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	SecondFactorRequired bool   `json:"second_factor_required,omitempty"`
	Token                string `json:"token,omitempty"`
}

type TwoFactorValidateRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type TwoFactorValidateResponse struct {
	Token string `json:"token"`
}

type TwoFactorRecoverRequest struct {
	Email        string `json:"email"`
	RecoveryCode string `json:"recovery_code"`
}

type TwoFactorRecoverResponse struct {
	Success bool `json:"success"`
}

func (TwoFactorRecoverResponse) Message() string {
	return "Two-factor authentication has been disabled."
}

type TOTPEnrollResponse struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
}

type TOTPConfirmRequest struct {
	Code string `json:"code"`
}

type TOTPConfirmResponse struct {
	RecoveryCodes []string `json:"recovery_codes"`
}

func (TOTPConfirmResponse) Message() string {
	return "Two-factor authentication is now enabled. Store the recovery codes safely, they are shown only once."
}

type ProfileResponse struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FullName         string    `json:"full_name"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	TwoFactorState   string    `json:"two_factor_state"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
