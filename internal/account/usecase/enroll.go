package usecase

import (
	"context"
	"log/slog"

	"github.com/yogaprasetya/otpguard/internal/account/entity"
	"github.com/yogaprasetya/otpguard/internal/pkg/goerror"
	"github.com/yogaprasetya/otpguard/internal/pkg/mfa"
)

type TOTPEnrollOutput struct {
	Secret          string
	ProvisioningURI string
}

// TOTPEnroll provisions a fresh TOTP secret for the authenticated account.
// The secret stays pending until confirmed; re-enrolling before confirmation
// replaces the pending secret. The provisioning URI is derived on demand and
// never persisted.
func (s *Usecase) TOTPEnroll(ctx context.Context) (*TOTPEnrollOutput, error) {
	ctx, span := s.startSpan(ctx, "TOTPEnroll")
	defer span.End()

	acc, err := s.authenticatedAccount(ctx)
	if err != nil {
		return nil, err
	}

	if acc.TwoFactorEnabled {
		return nil, goerror.NewBusiness("two-factor authentication is already enabled", goerror.CodeConflict)
	}

	secret, uri, err := s.totp.Generate(acc.Email)
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate totp secret", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	encryptedSecret, err := s.mfaEncryptor.Encrypt([]byte(secret), mfa.Scope{
		AccountID: acc.ID,
		Purpose:   mfa.PurposeTOTPSeed,
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to encrypt totp secret", "account_id", acc.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	if _, err := s.mutateAccount(ctx, acc.ID, func(acc *entity.Account) error {
		if acc.TwoFactorEnabled {
			return goerror.NewBusiness("two-factor authentication is already enabled", goerror.CodeConflict)
		}

		acc.TwoFactorSecret = encryptedSecret
		return nil
	}); err != nil {
		return nil, err
	}

	return &TOTPEnrollOutput{
		Secret:          secret,
		ProvisioningURI: uri,
	}, nil
}
