package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/samber/lo"
	"github.com/yogaprasetya/otpguard/internal/account/entity"
	"github.com/yogaprasetya/otpguard/internal/pkg/goerror"
)

type TwoFactorRecoverInput struct {
	Email        string `validate:"required,email"`
	RecoveryCode string `validate:"required,recoverycode"`
}

// TwoFactorRecover signs an account out of 2FA using a single-use recovery
// code. A matched code is consumed, the secret is cleared and 2FA is disabled
// in one persisted mutation; on any failure the record is untouched. A code
// that was already consumed fails like any other wrong code.
func (s *Usecase) TwoFactorRecover(ctx context.Context, in TwoFactorRecoverInput) error {
	ctx, span := s.startSpan(ctx, "TwoFactorRecover")
	defer span.End()

	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	acc, err := s.repoStore.FindByEmail(ctx, in.Email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "account not found", "email", in.Email)
		return goerror.NewBusiness("invalid recovery code", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by email", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}

	if !acc.TwoFactorEnabled {
		slog.WarnContext(ctx, "two-factor recover on account without 2fa", "account_id", acc.ID)
		return goerror.NewBusiness("invalid recovery code", goerror.CodeUnauthorized)
	}

	saved, err := s.mutateAccount(ctx, acc.ID, func(acc *entity.Account) error {
		if !acc.TwoFactorEnabled {
			return goerror.NewBusiness("invalid recovery code", goerror.CodeUnauthorized)
		}

		matched, found := lo.Find(acc.RecoveryCodes, func(hashed string) bool {
			return s.argon2id.Verify(hashed, in.RecoveryCode)
		})
		if !found {
			slog.WarnContext(ctx, "no recovery code matched", "account_id", acc.ID)
			return goerror.NewBusiness("invalid recovery code", goerror.CodeUnauthorized)
		}

		acc.RecoveryCodes = lo.Filter(acc.RecoveryCodes, func(hashed string, _ int) bool {
			return hashed != matched
		})
		acc.TwoFactorEnabled = false
		acc.TwoFactorSecret = nil
		return nil
	})
	if err != nil {
		return err
	}

	s.goroutine.Go(context.WithoutCancel(ctx), func(ctx context.Context) error {
		return s.repoMessaging.PublishTwoFactorDisabled(ctx, TwoFactorDisabledEvent{
			AccountID:  saved.ID,
			Email:      saved.Email,
			Reason:     "recovery_code_used",
			DisabledAt: saved.UpdatedAt,
		})
	})

	return nil
}
