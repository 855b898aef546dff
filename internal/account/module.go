package account

import (
	"github.com/yogaprasetya/otpguard/internal/account/inbound"
	"github.com/yogaprasetya/otpguard/internal/account/outbound/mq"
	"github.com/yogaprasetya/otpguard/internal/account/outbound/store"
	"github.com/yogaprasetya/otpguard/internal/account/usecase"
	"github.com/yogaprasetya/otpguard/internal/pkg/clock"
	"github.com/yogaprasetya/otpguard/internal/pkg/goroutine"
	"github.com/yogaprasetya/otpguard/internal/pkg/hash"
	"github.com/yogaprasetya/otpguard/internal/pkg/instrument"
	"github.com/yogaprasetya/otpguard/internal/pkg/jwt"
	"github.com/yogaprasetya/otpguard/internal/pkg/messaging"
	"github.com/yogaprasetya/otpguard/internal/pkg/mfa"
	"github.com/yogaprasetya/otpguard/internal/pkg/otp"
	"github.com/yogaprasetya/otpguard/internal/pkg/router"
	"github.com/yogaprasetya/otpguard/internal/pkg/uid"
	"github.com/yogaprasetya/otpguard/internal/pkg/validator"
)

type Dependency struct {
	Store           store.Store                `validate:"required"`
	Goroutine       *goroutine.Manager         `validate:"required"`
	Router          *router.Router             `validate:"required"`
	Messaging       messaging.Messaging        `validate:"required"`
	Instrument      instrument.Instrumentation `validate:"required"`
	UUID            uid.StringID               `validate:"required"`
	Bcrypt          hash.Hash                  `validate:"required"`
	Argon2ID        hash.Hash                  `validate:"required"`
	MFAEncryptor    mfa.Encryptor              `validate:"required"`
	MFARecoveryCode mfa.RecoveryCodeGenerator  `validate:"required"`
	Clock           clock.Clocker              `validate:"required"`
	Totp            otp.OTP                    `validate:"required"`
	Validator       validator.Validator        `validate:"required"`
	JWT             jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument)

	uc := usecase.New(usecase.Dependency{
		RepoStore:       dep.Store,
		RepoMessaging:   repoMsg,
		Validator:       dep.Validator,
		Bcrypt:          dep.Bcrypt,
		Argon2ID:        dep.Argon2ID,
		MFAEncryptor:    dep.MFAEncryptor,
		MFARecoveryCode: dep.MFARecoveryCode,
		UUID:            dep.UUID,
		Totp:            dep.Totp,
		Clock:           dep.Clock,
		JWT:             dep.JWT,
		Instrument:      dep.Instrument,
		Goroutine:       dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return nil
}
