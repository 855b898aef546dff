package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/yogaprasetya/otpguard/internal/account/entity"
	"github.com/yogaprasetya/otpguard/internal/pkg/clock"
	"github.com/yogaprasetya/otpguard/internal/pkg/goerror"
	"github.com/yogaprasetya/otpguard/internal/pkg/goroutine"
	"github.com/yogaprasetya/otpguard/internal/pkg/hash"
	"github.com/yogaprasetya/otpguard/internal/pkg/instrument"
	"github.com/yogaprasetya/otpguard/internal/pkg/jwt"
	"github.com/yogaprasetya/otpguard/internal/pkg/mfa"
	"github.com/yogaprasetya/otpguard/internal/pkg/otp"
	"github.com/yogaprasetya/otpguard/internal/pkg/uid"
	"github.com/yogaprasetya/otpguard/internal/pkg/validator"
	"go.opentelemetry.io/otel/trace"
)

// TwoFactorEnabledEvent is emitted after an enrollment is confirmed.
type TwoFactorEnabledEvent struct {
	AccountID string
	Email     string
	EnabledAt time.Time
}

// TwoFactorDisabledEvent is emitted after 2FA is torn down.
type TwoFactorDisabledEvent struct {
	AccountID  string
	Email      string
	Reason     string
	DisabledAt time.Time
}

type repoMessaging interface {
	PublishTwoFactorEnabled(ctx context.Context, msg TwoFactorEnabledEvent) error
	PublishTwoFactorDisabled(ctx context.Context, msg TwoFactorDisabledEvent) error
}

type repoStore interface {
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)
	FindByID(ctx context.Context, id string) (*entity.Account, error)
	Create(ctx context.Context, acc entity.Account) error
	Save(ctx context.Context, acc entity.Account) error
}

type Usecase struct {
	repoStore       repoStore
	repoMessaging   repoMessaging
	validator       validator.Validator
	bcrypt          hash.Hash
	argon2id        hash.Hash
	mfaEncryptor    mfa.Encryptor
	mfaRecoveryCode mfa.RecoveryCodeGenerator
	uuid            uid.StringID
	totp            otp.OTP
	clock           clock.Clocker
	jwt             jwt.JWT
	ins             instrument.Instrumentation
	goroutine       *goroutine.Manager
}

type Dependency struct {
	RepoStore       repoStore
	RepoMessaging   repoMessaging
	Validator       validator.Validator
	Bcrypt          hash.Hash
	Argon2ID        hash.Hash
	MFAEncryptor    mfa.Encryptor
	MFARecoveryCode mfa.RecoveryCodeGenerator
	UUID            uid.StringID
	Totp            otp.OTP
	Clock           clock.Clocker
	JWT             jwt.JWT
	Instrument      instrument.Instrumentation
	Goroutine       *goroutine.Manager
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoStore:       dep.RepoStore,
		repoMessaging:   dep.RepoMessaging,
		validator:       dep.Validator,
		bcrypt:          dep.Bcrypt,
		argon2id:        dep.Argon2ID,
		mfaEncryptor:    dep.MFAEncryptor,
		mfaRecoveryCode: dep.MFARecoveryCode,
		uuid:            dep.UUID,
		totp:            dep.Totp,
		clock:           dep.Clock,
		jwt:             dep.JWT,
		ins:             dep.Instrument,
		goroutine:       dep.Goroutine,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("account.usecase").Start(ctx, name)
}

// authenticatedAccount loads the account asserted by the bearer token.
// A token for a record that no longer exists gets the same generic 401
// as a missing token.
func (s *Usecase) authenticatedAccount(ctx context.Context) (*entity.Account, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}

	acc, err := s.repoStore.FindByID(ctx, clm.AccountID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "account not found for valid token", "account_id", clm.AccountID)
		return nil, goerror.NewBusiness("authentication required", goerror.CodeUnauthorized)
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get account by id", "account_id", clm.AccountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return acc, nil
}

// mutateAccount runs a load-mutate-save cycle against the store. A lost
// optimistic race surfaces as ErrConflict from Save and is retried exactly
// once with a fresh read; the mutation either lands whole or not at all.
func (s *Usecase) mutateAccount(ctx context.Context, accountID string, mutate func(acc *entity.Account) error) (*entity.Account, error) {
	var saved *entity.Account

	backoff := retry.WithMaxRetries(1, retry.NewConstant(10*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		acc, err := s.repoStore.FindByID(ctx, accountID)
		if err != nil {
			return err
		}

		if err := mutate(acc); err != nil {
			return err
		}

		acc.UpdatedAt = s.clock.Now()
		if err := s.repoStore.Save(ctx, *acc); err != nil {
			if errors.Is(err, goerror.ErrConflict) {
				return retry.RetryableError(err)
			}
			return err
		}

		saved = acc
		return nil
	})
	if err != nil {
		var gerr *goerror.Error
		if errors.As(err, &gerr) {
			return nil, err
		}

		if errors.Is(err, goerror.ErrConflict) {
			slog.WarnContext(ctx, "account mutation lost optimistic race twice", "account_id", accountID)
			return nil, goerror.NewBusiness("please retry the request", goerror.CodeConflict)
		}

		slog.ErrorContext(ctx, "failed to repo save account", "account_id", accountID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return saved, nil
}
