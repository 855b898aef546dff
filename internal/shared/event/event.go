// Package event defines the message payloads and destinations shared between
// publishers and external consumers.
package event

const (
	// TwoFactorEnabledDestination is the topic/subject for 2FA activation events.
	TwoFactorEnabledDestination = "otpguard.2fa.enabled"
	// TwoFactorDisabledDestination is the topic/subject for 2FA deactivation events.
	TwoFactorDisabledDestination = "otpguard.2fa.disabled"
)

// TwoFactorEnabledMessage is published when an account finishes confirming
// its authenticator enrollment.
type TwoFactorEnabledMessage struct {
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	EnabledAt int64  `json:"enabled_at"`
}

// TwoFactorDisabledMessage is published when 2FA is torn down, currently only
// through recovery-code sign-in.
type TwoFactorDisabledMessage struct {
	AccountID  string `json:"account_id"`
	Email      string `json:"email"`
	Reason     string `json:"reason"`
	DisabledAt int64  `json:"disabled_at"`
}
