package entity

// TwoFactorState is the enrollment lifecycle position of an account.
type TwoFactorState int16

const (
	// TwoFactorNone mean no secret has been provisioned.
	TwoFactorNone TwoFactorState = 0

	// TwoFactorPending mean a secret exists but has not been confirmed.
	TwoFactorPending TwoFactorState = 1

	// TwoFactorActive mean the secret is confirmed and codes are required at login.
	TwoFactorActive TwoFactorState = 2
)

func (ts TwoFactorState) String() string {
	switch ts {
	case TwoFactorPending:
		return "Pending"
	case TwoFactorActive:
		return "Active"
	default:
		return "None"
	}
}
