package usecase

import (
	"bytes"
	"context"
	"log/slog"

	"github.com/yogaprasetya/otpguard/internal/account/entity"
	"github.com/yogaprasetya/otpguard/internal/pkg/goerror"
	"github.com/yogaprasetya/otpguard/internal/pkg/mfa"
)

// totpConfirmSkew is zero so confirmation only accepts the current 30s step.
const totpConfirmSkew uint = 0

type TOTPConfirmInput struct {
	Code string `validate:"required,totpcode"`
}

type TOTPConfirmOutput struct {
	RecoveryCodes []string
}

// TOTPConfirm proves possession of the pending secret and activates 2FA.
// On success a fresh batch of recovery codes is generated, stored hashed, and
// returned in plaintext exactly once.
func (s *Usecase) TOTPConfirm(ctx context.Context, in TOTPConfirmInput) (*TOTPConfirmOutput, error) {
	ctx, span := s.startSpan(ctx, "TOTPConfirm")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	acc, err := s.authenticatedAccount(ctx)
	if err != nil {
		return nil, err
	}

	if acc.TwoFactorEnabled {
		return nil, goerror.NewBusiness("two-factor authentication is already enabled", goerror.CodeConflict)
	}
	if len(acc.TwoFactorSecret) == 0 {
		return nil, goerror.NewBusiness("no enrollment in progress", goerror.CodeConflict)
	}

	secret, err := s.mfaEncryptor.Decrypt(acc.TwoFactorSecret, mfa.Scope{
		AccountID: acc.ID,
		Purpose:   mfa.PurposeTOTPSeed,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to decrypt totp secret", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !s.totp.Validate(in.Code, string(secret), s.clock.Now(), totpConfirmSkew) {
		slog.WarnContext(ctx, "invalid totp code on confirm", "account_id", acc.ID)
		return nil, goerror.NewBusiness("invalid code", goerror.CodeUnauthorized)
	}

	recoveryCodes, err := s.mfaRecoveryCode.Generate()
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate recovery codes", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	hashes := make([]string, 0, len(recoveryCodes))
	for _, code := range recoveryCodes {
		hashed, err := s.argon2id.Hash(code)
		if err != nil {
			slog.ErrorContext(ctx, "failed to hash recovery code", "account_id", acc.ID, "error", err)
			return nil, goerror.NewServer(err)
		}
		hashes = append(hashes, string(hashed))
	}

	confirmedSecret := acc.TwoFactorSecret
	saved, err := s.mutateAccount(ctx, acc.ID, func(acc *entity.Account) error {
		if acc.TwoFactorEnabled {
			return goerror.NewBusiness("two-factor authentication is already enabled", goerror.CodeConflict)
		}
		// The proof is only valid for the secret it was checked against.
		if !bytes.Equal(acc.TwoFactorSecret, confirmedSecret) {
			return goerror.NewBusiness("invalid code", goerror.CodeUnauthorized)
		}

		acc.TwoFactorEnabled = true
		acc.RecoveryCodes = hashes
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		return s.repoMessaging.PublishTwoFactorEnabled(ctx, TwoFactorEnabledEvent{
			AccountID: saved.ID,
			Email:     saved.Email,
			EnabledAt: saved.UpdatedAt,
		})
	})

	return &TOTPConfirmOutput{RecoveryCodes: recoveryCodes}, nil
}
