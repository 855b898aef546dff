package usecase

import (
	"context"
	"time"
)

type ProfileOutput struct {
	ID               string
	Email            string
	FullName         string
	TwoFactorEnabled bool
	TwoFactorState   string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Profile returns the identity asserted by the bearer token together with the
// current 2FA status.
func (s *Usecase) Profile(ctx context.Context) (*ProfileOutput, error) {
	ctx, span := s.startSpan(ctx, "Profile")
	defer span.End()

	acc, err := s.authenticatedAccount(ctx)
	if err != nil {
		return nil, err
	}

	return &ProfileOutput{
		ID:               acc.ID,
		Email:            acc.Email,
		FullName:         acc.FullName,
		TwoFactorEnabled: acc.TwoFactorEnabled,
		TwoFactorState:   acc.TwoFactorState().String(),
		CreatedAt:        acc.CreatedAt,
		UpdatedAt:        acc.UpdatedAt,
	}, nil
}
