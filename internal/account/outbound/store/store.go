// Package store persists account documents. Two drivers are provided: Redis
// (JSON values plus an email index) and Postgres (JSONB document table).
// Both enforce email uniqueness and optimistic concurrency through the
// document version; lost races surface as goerror.ErrConflict and
// connectivity failures as goerror.ErrUnavailable.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/yogaprasetya/otpguard/internal/account/entity"
	"github.com/yogaprasetya/otpguard/internal/pkg/goerror"
	"github.com/yogaprasetya/otpguard/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// DriverRedis selects the Redis backend.
	DriverRedis = "redis"
	// DriverPostgres selects the Postgres backend.
	DriverPostgres = "postgres"
)

// ErrUnknownDriver indicates an unsupported store driver.
var ErrUnknownDriver = errors.New("store: unknown driver")

// Store is the credential store adapter used by the usecase layer.
type Store interface {
	FindByEmail(ctx context.Context, email string) (*entity.Account, error)
	FindByID(ctx context.Context, id string) (*entity.Account, error)
	// Create inserts a new account; a taken email returns goerror.ErrConflict.
	Create(ctx context.Context, acc entity.Account) error
	// Save persists a mutated account. The write only lands when the stored
	// version still equals acc.Version; otherwise goerror.ErrConflict.
	Save(ctx context.Context, acc entity.Account) error
}

// FactoryOptions groups connections for the supported store backends.
type FactoryOptions struct {
	// Redis is the client used by the Redis driver.
	Redis *redis.Client
	// Postgres is the pool used by the Postgres driver.
	Postgres *pgxpool.Pool
	// Instrument provides tracing for store calls.
	Instrument instrument.Instrumentation
}

// NewFromDriver constructs a Store implementation by driver name.
func NewFromDriver(driver string, opts FactoryOptions) (Store, error) {
	switch strings.TrimSpace(driver) {
	case DriverRedis:
		return NewRedis(opts.Redis, opts.Instrument), nil
	case DriverPostgres:
		return NewPostgres(opts.Postgres, opts.Instrument), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, driver)
	}
}

func startSpan(ctx context.Context, ins instrument.Instrumentation, name string) (context.Context, trace.Span) {
	return ins.Tracer("account.outbound.store").Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
