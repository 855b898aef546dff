package app

import (
	"log/slog"
	"os"

	"github.com/yogaprasetya/otpguard/internal/account"
)

func (a *App) initModules() {
	if err := account.New(account.Dependency{
		Store:           a.store,
		Goroutine:       a.goroutine,
		Router:          a.router,
		Messaging:       a.messaging,
		Instrument:      a.ins,
		UUID:            a.uuid,
		Bcrypt:          a.bcrypt,
		Argon2ID:        a.argon2id,
		MFAEncryptor:    a.mfaEncryptor,
		MFARecoveryCode: a.mfaRecoveryCode,
		Clock:           a.clock,
		Totp:            a.totp,
		Validator:       a.validator,
		JWT:             a.jwt,
	}); err != nil {
		slog.Error("failed to init module account", "error", err)
		os.Exit(1)
	}
}
