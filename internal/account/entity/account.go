package entity

import "time"

// Account is the single credential record kept per user. It is stored as one
// JSON document and mutated under optimistic concurrency via Version.
type Account struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	FullName         string    `json:"full_name"`
	PasswordHash     string    `json:"password_hash"`
	TwoFactorEnabled bool      `json:"two_factor_enabled"`
	TwoFactorSecret  []byte    `json:"two_factor_secret,omitempty"`
	RecoveryCodes    []string  `json:"recovery_codes,omitempty"`
	Version          int64     `json:"version"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// TwoFactorState reports where the account sits in the enrollment lifecycle.
func (a *Account) TwoFactorState() TwoFactorState {
	switch {
	case a.TwoFactorEnabled:
		return TwoFactorActive
	case len(a.TwoFactorSecret) > 0:
		return TwoFactorPending
	default:
		return TwoFactorNone
	}
}
