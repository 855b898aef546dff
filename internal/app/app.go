package app

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/yogaprasetya/otpguard/internal/account/outbound/store"
	"github.com/yogaprasetya/otpguard/internal/pkg/clock"
	"github.com/yogaprasetya/otpguard/internal/pkg/config"
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

// App wires dependencies and manages service lifecycle.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc

	// configuration
	config config.Config
	ins    instrument.Instrumentation

	// libraries
	goroutine       *goroutine.Manager
	validator       validator.Validator
	clock           clock.Clocker
	argon2id        hash.Hash
	bcrypt          hash.Hash
	uuid            uid.StringID
	totp            otp.OTP
	jwt             jwt.JWT
	mfaEncryptor    mfa.Encryptor
	mfaRecoveryCode mfa.RecoveryCodeGenerator

	// resources
	dbConn    *pgxpool.Pool
	cacheConn *redis.Client
	store     store.Store
	messaging messaging.Messaging

	// server
	router     *router.Router
	httpServer *http.Server

	//
	closers []struct {
		name string
		fn   func(context.Context) error
	}
}

// New initializes the application with default wiring and returns an App instance.
func New() *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{
		ctx:    ctx,
		cancel: cancel,
	}

	app.initConfig()
	app.initInstrument()
	app.initLibraries()
	app.initJWT()
	app.initDatabase()
	app.initCache()
	app.initStore()
	app.initMessaging()
	app.initHTTPServer()
	app.initModules()
	app.initClosers()

	return app
}
