package inbound

import (
	"context"

	"github.com/yogaprasetya/otpguard/internal/account/usecase"
	"github.com/yogaprasetya/otpguard/internal/pkg/router"
)

type uc interface {
	Register(ctx context.Context, in usecase.RegisterInput) error
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)

	TOTPEnroll(ctx context.Context) (*usecase.TOTPEnrollOutput, error)
	TOTPConfirm(ctx context.Context, in usecase.TOTPConfirmInput) (*usecase.TOTPConfirmOutput, error)
	TwoFactorValidate(ctx context.Context, in usecase.TwoFactorValidateInput) (*usecase.TwoFactorValidateOutput, error)
	TwoFactorRecover(ctx context.Context, in usecase.TwoFactorRecoverInput) error

	Profile(ctx context.Context) (*usecase.ProfileOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Primary factor
	r.POST("/api/v1/auth/register", end.Register)
	r.POST("/api/v1/auth/login", end.Login)

	// Second factor
	r.POST("/api/v1/auth/2fa/validate", end.TwoFactorValidate)
	r.POST("/api/v1/auth/2fa/recover", end.TwoFactorRecover)
	r.POST("/api/v1/auth/2fa/enroll", end.TOTPEnroll)   // need authenticated
	r.POST("/api/v1/auth/2fa/confirm", end.TOTPConfirm) // need authenticated

	// Identity
	r.GET("/api/v1/auth/profile", end.Profile) // need authenticated
}
