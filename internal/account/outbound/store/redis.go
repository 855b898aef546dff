package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/yogaprasetya/otpguard/internal/account/entity"
	"github.com/yogaprasetya/otpguard/internal/pkg/goerror"
	"github.com/yogaprasetya/otpguard/internal/pkg/instrument"
)

const (
	redisAccountKeyPrefix = "account:doc:"
	redisEmailKeyPrefix   = "account:email:"
)

// Redis stores each account as a JSON value keyed by ID, with a separate
// email-to-ID index enforcing uniqueness via SETNX.
type Redis struct {
	rdb *redis.Client
	ins instrument.Instrumentation
}

// NewRedis constructs the Redis-backed store.
func NewRedis(rdb *redis.Client, ins instrument.Instrumentation) *Redis {
	return &Redis{rdb: rdb, ins: ins}
}

func (s *Redis) mapError(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, redis.Nil) {
		return goerror.ErrNotFound
	}
	if errors.Is(err, goerror.ErrNotFound) || errors.Is(err, goerror.ErrConflict) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	return fmt.Errorf("%w: %v", goerror.ErrUnavailable, err)
}

func (s *Redis) FindByEmail(ctx context.Context, email string) (_ *entity.Account, err error) {
	ctx, span := startSpan(ctx, s.ins, "FindByEmail")
	defer func() { endSpan(span, err) }()

	id, err := s.rdb.Get(ctx, redisEmailKeyPrefix+email).Result()
	if err != nil {
		return nil, s.mapError(err)
	}

	return s.findByID(ctx, id)
}

func (s *Redis) FindByID(ctx context.Context, id string) (_ *entity.Account, err error) {
	ctx, span := startSpan(ctx, s.ins, "FindByID")
	defer func() { endSpan(span, err) }()

	return s.findByID(ctx, id)
}

func (s *Redis) findByID(ctx context.Context, id string) (*entity.Account, error) {
	raw, err := s.rdb.Get(ctx, redisAccountKeyPrefix+id).Bytes()
	if err != nil {
		return nil, s.mapError(err)
	}

	var acc entity.Account
	if err := json.Unmarshal(raw, &acc); err != nil {
		return nil, err
	}

	return &acc, nil
}

func (s *Redis) Create(ctx context.Context, acc entity.Account) (err error) {
	ctx, span := startSpan(ctx, s.ins, "Create")
	defer func() { endSpan(span, err) }()

	raw, err := json.Marshal(acc)
	if err != nil {
		return err
	}

	ok, err := s.rdb.SetNX(ctx, redisEmailKeyPrefix+acc.Email, acc.ID, 0).Result()
	if err != nil {
		return s.mapError(err)
	}
	if !ok {
		return goerror.ErrConflict
	}

	if err := s.rdb.Set(ctx, redisAccountKeyPrefix+acc.ID, raw, 0).Err(); err != nil {
		// Roll the index back so a retry is not locked out by a half-write.
		s.rdb.Del(context.WithoutCancel(ctx), redisEmailKeyPrefix+acc.Email)
		return s.mapError(err)
	}

	return nil
}

func (s *Redis) Save(ctx context.Context, acc entity.Account) (err error) {
	ctx, span := startSpan(ctx, s.ins, "Save")
	defer func() { endSpan(span, err) }()

	key := redisAccountKeyPrefix + acc.ID

	err = s.rdb.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return goerror.ErrNotFound
		}
		if err != nil {
			return err
		}

		var current entity.Account
		if err := json.Unmarshal(raw, &current); err != nil {
			return err
		}
		if current.Version != acc.Version {
			return goerror.ErrConflict
		}

		next := acc
		next.Version++
		buf, err := json.Marshal(next)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, buf, 0)
			return nil
		})
		return err
	}, key)

	return s.saveError(err)
}

// saveError adds the Watch-specific mapping: the transaction aborting
// because the watched key changed is a lost optimistic race.
func (s *Redis) saveError(err error) error {
	if errors.Is(err, redis.TxFailedErr) {
		return goerror.ErrConflict
	}
	return s.mapError(err)
}
