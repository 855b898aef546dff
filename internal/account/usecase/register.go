package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/yogaprasetya/otpguard/internal/account/entity"
	"github.com/yogaprasetya/otpguard/internal/pkg/goerror"
)

type RegisterInput struct {
	FullName string `validate:"required,min=2,max=100"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,password"`
}

func (s *Usecase) Register(ctx context.Context, in RegisterInput) error {
	ctx, span := s.startSpan(ctx, "Register")
	defer span.End()

	in.FullName = strings.TrimSpace(in.FullName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	passwordHash, err := s.bcrypt.Hash(in.Password)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash password", "error", err)
		return goerror.NewServer(err)
	}

	now := s.clock.Now()
	acc := entity.Account{
		ID:           s.uuid.Generate(),
		Email:        in.Email,
		FullName:     in.FullName,
		PasswordHash: string(passwordHash),
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repoStore.Create(ctx, acc); err != nil {
		if errors.Is(err, goerror.ErrConflict) {
			slog.WarnContext(ctx, "email already registered", "email", in.Email)
			return goerror.NewBusiness("email already registered", goerror.CodeConflict)
		}

		slog.ErrorContext(ctx, "failed to repo create account", "email", in.Email, "error", err)
		return goerror.NewServer(err)
	}

	return nil
}
