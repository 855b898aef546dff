package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/yogaprasetya/otpguard/internal/pkg/goerror"
	"github.com/yogaprasetya/otpguard/internal/pkg/mfa"
)

// totpLoginSkew allows one step either side of now to absorb clock drift
// between the server and the authenticator device.
const totpLoginSkew uint = 1

type TwoFactorValidateInput struct {
	Email string `validate:"required,email"`
	Code  string `validate:"required,totpcode"`
}

type TwoFactorValidateOutput struct {
	Token string
}

// TwoFactorValidate completes a login by checking the submitted TOTP code.
// It never mutates the account record. All failure modes surface the same
// generic unauthorized message.
func (s *Usecase) TwoFactorValidate(ctx context.Context, in TwoFactorValidateInput) (*TwoFactorValidateOutput, error) {
	ctx, span := s.startSpan(ctx, "TwoFactorValidate")
	defer span.End()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	acc, err := s.repoStore.FindByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "account not found", "email", in.Email)
		return nil, goerror.NewBusiness("invalid code", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by email", "email", in.Email, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !acc.TwoFactorEnabled {
		slog.WarnContext(ctx, "two-factor validate on account without 2fa", "account_id", acc.ID)
		return nil, goerror.NewBusiness("invalid code", goerror.CodeUnauthorized)
	}

	secret, err := s.mfaEncryptor.Decrypt(acc.TwoFactorSecret, mfa.Scope{
		AccountID: acc.ID,
		Purpose:   mfa.PurposeTOTPSeed,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to decrypt totp secret", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.totp.Validate(in.Code, string(secret), s.clock.Now(), totpLoginSkew) {
		slog.WarnContext(ctx, "invalid totp code on validate", "account_id", acc.ID)
		return nil, goerror.NewBusiness("invalid code", goerror.CodeUnauthorized)
	}

	token, err := s.jwt.Generate(acc.ID, acc.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate jwt token", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &TwoFactorValidateOutput{Token: token}, nil
}
