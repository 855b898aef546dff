package inbound

import (
	"github.com/yogaprasetya/otpguard/internal/account/usecase"
	"github.com/yogaprasetya/otpguard/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the credential lifecycle.
type HTTPEndpoint struct {
	uc uc
}

// Register creates a new account with a password as the primary factor.
// @Summary Register account
// @Description Creates an account with the given email and password.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration payload"
// @Success 200 {object} router.successResponse "Registration result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 409 {object} router.errorResponse "Email already registered"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/register [post]
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.Register(r.Context(), usecase.RegisterInput{
		FullName: req.FullName,
		Email:    req.Email,
		Password: req.Password,
	}); err != nil {
		return nil, err
	}

	return RegisterResponse{}, nil
}

// Login verifies the primary password factor.
// @Summary Authenticate with password
// @Description Validates credentials and returns a session token, or flags that a second factor is required.
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login payload"
// @Success 200 {object} router.successResponse{data=LoginResponse} "Authentication result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid credentials"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/login [post]
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		SecondFactorRequired: resp.SecondFactorRequired,
		Token:                resp.Token,
	}, nil
}

// TwoFactorValidate completes a login with a TOTP code.
// @Summary Validate TOTP code
// @Description Checks the 6-digit code for a 2FA-enabled account and returns a session token.
// @Tags Auth, TwoFactor
// @Accept json
// @Produce json
// @Param request body TwoFactorValidateRequest true "Validation payload"
// @Success 200 {object} router.successResponse{data=TwoFactorValidateResponse} "Authentication result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid code"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/2fa/validate [post]
func (h *HTTPEndpoint) TwoFactorValidate(r *router.Request) (any, error) {
	var req TwoFactorValidateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.TwoFactorValidate(r.Context(), usecase.TwoFactorValidateInput{
		Email: req.Email,
		Code:  req.Code,
	})
	if err != nil {
		return nil, err
	}

	return TwoFactorValidateResponse{Token: resp.Token}, nil
}

// TwoFactorRecover consumes a recovery code and disables 2FA.
// @Summary Recover account access
// @Description Consumes a single-use recovery code, disables 2FA and clears the secret.
// @Tags Auth, TwoFactor
// @Accept json
// @Produce json
// @Param request body TwoFactorRecoverRequest true "Recovery payload"
// @Success 200 {object} router.successResponse{data=TwoFactorRecoverResponse} "Recovery result"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid recovery code"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/2fa/recover [post]
func (h *HTTPEndpoint) TwoFactorRecover(r *router.Request) (any, error) {
	var req TwoFactorRecoverRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.TwoFactorRecover(r.Context(), usecase.TwoFactorRecoverInput{
		Email:        req.Email,
		RecoveryCode: req.RecoveryCode,
	}); err != nil {
		return nil, err
	}

	return TwoFactorRecoverResponse{Success: true}, nil
}

// TOTPEnroll provisions a TOTP secret for the authenticated account.
// @Summary Start TOTP enrollment
// @Description Generates a new TOTP secret and provisioning URI. The secret stays pending until confirmed.
// @Tags Auth, TwoFactor
// @Produce json
// @Security BearerAuth
// @Success 200 {object} router.successResponse{data=TOTPEnrollResponse} "Enrollment material"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 409 {object} router.errorResponse "Two-factor authentication already enabled"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/2fa/enroll [post]
func (h *HTTPEndpoint) TOTPEnroll(r *router.Request) (any, error) {
	resp, err := h.uc.TOTPEnroll(r.Context())
	if err != nil {
		return nil, err
	}

	return TOTPEnrollResponse{
		Secret:          resp.Secret,
		ProvisioningURI: resp.ProvisioningURI,
	}, nil
}

// TOTPConfirm activates 2FA by proving possession of the pending secret.
// @Summary Confirm TOTP enrollment
// @Description Verifies the first code from the authenticator and enables 2FA. Returns the recovery codes once.
// @Tags Auth, TwoFactor
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TOTPConfirmRequest true "Confirmation payload"
// @Success 200 {object} router.successResponse{data=TOTPConfirmResponse} "Recovery codes"
// @Failure 400 {object} router.errorResponse "Invalid request body"
// @Failure 401 {object} router.errorResponse "Invalid code"
// @Failure 409 {object} router.errorResponse "Two-factor authentication already enabled"
// @Failure 422 {object} router.errorResponse "Validation error"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/2fa/confirm [post]
func (h *HTTPEndpoint) TOTPConfirm(r *router.Request) (any, error) {
	var req TOTPConfirmRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.TOTPConfirm(r.Context(), usecase.TOTPConfirmInput{Code: req.Code})
	if err != nil {
		return nil, err
	}

	return TOTPConfirmResponse{RecoveryCodes: resp.RecoveryCodes}, nil
}

// Profile returns the authenticated identity and 2FA status.
// @Summary Get profile
// @Description Returns the account identity asserted by the bearer token together with the 2FA state.
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} router.successResponse{data=ProfileResponse} "Account profile"
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /api/v1/auth/profile [get]
func (h *HTTPEndpoint) Profile(r *router.Request) (any, error) {
	resp, err := h.uc.Profile(r.Context())
	if err != nil {
		return nil, err
	}

	return ProfileResponse{
		ID:               resp.ID,
		Email:            resp.Email,
		FullName:         resp.FullName,
		TwoFactorEnabled: resp.TwoFactorEnabled,
		TwoFactorState:   resp.TwoFactorState,
		CreatedAt:        resp.CreatedAt,
		UpdatedAt:        resp.UpdatedAt,
	}, nil
}
