package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/yogaprasetya/otpguard/internal/account/entity"
	"github.com/yogaprasetya/otpguard/internal/pkg/goerror"
	"github.com/yogaprasetya/otpguard/internal/pkg/instrument"
)

// Postgres stores each account as a JSONB document in a narrow table:
//
//	CREATE TABLE accounts (
//	    id      TEXT PRIMARY KEY,
//	    email   TEXT NOT NULL UNIQUE,
//	    version BIGINT NOT NULL,
//	    doc     JSONB NOT NULL
//	);
type Postgres struct {
	conn *pgxpool.Pool
	ins  instrument.Instrumentation
}

// NewPostgres constructs the Postgres-backed store.
func NewPostgres(conn *pgxpool.Pool, ins instrument.Instrumentation) *Postgres {
	return &Postgres{conn: conn, ins: ins}
}

// - 23505 unique violation → goerror.ErrConflict
func (s *Postgres) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return goerror.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return goerror.ErrConflict
		}
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return fmt.Errorf("%w: %v", goerror.ErrUnavailable, err)
}

func (s *Postgres) FindByEmail(ctx context.Context, email string) (_ *entity.Account, err error) {
	ctx, span := startSpan(ctx, s.ins, "FindByEmail")
	defer func() { endSpan(span, err) }()

	return s.scanAccount(s.conn.QueryRow(ctx, `SELECT doc FROM accounts WHERE email = $1`, email))
}

func (s *Postgres) FindByID(ctx context.Context, id string) (_ *entity.Account, err error) {
	ctx, span := startSpan(ctx, s.ins, "FindByID")
	defer func() { endSpan(span, err) }()

	return s.scanAccount(s.conn.QueryRow(ctx, `SELECT doc FROM accounts WHERE id = $1`, id))
}

func (s *Postgres) scanAccount(row pgx.Row) (*entity.Account, error) {
	var raw []byte
	if err := row.Scan(&raw); err != nil {
		return nil, s.mapError(err)
	}

	var acc entity.Account
	if err := json.Unmarshal(raw, &acc); err != nil {
		return nil, err
	}

	return &acc, nil
}

func (s *Postgres) Create(ctx context.Context, acc entity.Account) (err error) {
	ctx, span := startSpan(ctx, s.ins, "Create")
	defer func() { endSpan(span, err) }()

	raw, err := json.Marshal(acc)
	if err != nil {
		return err
	}

	_, err = s.conn.Exec(ctx,
		`INSERT INTO accounts (id, email, version, doc) VALUES ($1, $2, $3, $4)`,
		acc.ID, acc.Email, acc.Version, raw,
	)
	return s.mapError(err)
}

func (s *Postgres) Save(ctx context.Context, acc entity.Account) (err error) {
	ctx, span := startSpan(ctx, s.ins, "Save")
	defer func() { endSpan(span, err) }()

	next := acc
	next.Version++
	raw, err := json.Marshal(next)
	if err != nil {
		return err
	}

	tag, err := s.conn.Exec(ctx,
		`UPDATE accounts SET version = $1, doc = $2 WHERE id = $3 AND version = $4`,
		next.Version, raw, acc.ID, acc.Version,
	)
	if err != nil {
		return s.mapError(err)
	}

	return s.saveResult(tag)
}

// saveResult inspects the guarded UPDATE's outcome. Zero rows means the
// version moved underneath us or the row is gone; both lose the
// optimistic race.
func (s *Postgres) saveResult(tag pgconn.CommandTag) error {
	if tag.RowsAffected() == 0 {
		return goerror.ErrConflict
	}
	return nil
}
