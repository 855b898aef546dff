package otp

import (
	"encoding/base32"
	"errors"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// ErrEmptyAccountName indicates a provisioning request without an account label.
var ErrEmptyAccountName = errors.New("otp: account name is required")

// OTP defines the contract for TOTP operations.
type OTP interface {
	// Generate creates a fresh secret and its provisioning URI for an account name.
	Generate(accountName string) (secret string, uri string, err error)
	// ProvisioningURI rebuilds the provisioning URI for an existing secret.
	ProvisioningURI(secret, accountName string) (string, error)
	// Validate checks a code against the secret at the given time, accepting
	// codes up to skew time steps away from the current one.
	Validate(code, secret string, at time.Time, skew uint) bool
	// GenerateCode computes the code for the given secret and time.
	GenerateCode(secret string, at time.Time) (string, error)
}

// TOTP implements OTP using the Time-based One-Time Password algorithm.
//
// The skew window is a per-call argument rather than fixed at construction:
// enrollment confirmation uses skew 0, login validation tolerates one step of
// clock drift.
type TOTP struct {
	issuer string
	period uint
	digits otp.Digits
}

// NewTOTP constructs a TOTP instance with sensible defaults.
//
// If digits is not 6 or 8, it falls back to 6 digits. If period is 0, it uses
// the common 30-second period.
func NewTOTP(issuer string, period uint, digits otp.Digits) *TOTP {
	if digits != otp.DigitsSix && digits != otp.DigitsEight {
		digits = otp.DigitsSix
	}

	if period == 0 {
		period = 30
	}

	return &TOTP{
		issuer: issuer,
		period: period,
		digits: digits,
	}
}

// Generate creates a secret and provisioning URI for an account name.
//
// The secret is 20 random bytes (RFC 4226/6238 recommendation), returned in
// its base-32 text encoding.
func (o *TOTP) Generate(accountName string) (secret string, uri string, err error) {
	if accountName == "" {
		return "", "", ErrEmptyAccountName
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      o.issuer,
		AccountName: accountName,
		Period:      o.period,
		SecretSize:  20,
		Digits:      o.digits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", "", err
	}

	return key.Secret(), key.URL(), nil
}

// ProvisioningURI rebuilds the otpauth:// URI for an already-issued secret.
//
// The URI is derived on demand and never stored, so a changed issuer label
// takes effect immediately. secret is the base-32 encoding returned by
// Generate.
func (o *TOTP) ProvisioningURI(secret, accountName string) (string, error) {
	if accountName == "" {
		return "", ErrEmptyAccountName
	}

	raw, err := base32.StdEncoding.WithPadding(base32.NoPadding).DecodeString(strings.ToUpper(secret))
	if err != nil {
		return "", err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      o.issuer,
		AccountName: accountName,
		Period:      o.period,
		Secret:      raw,
		Digits:      o.digits,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", err
	}

	return key.URL(), nil
}

// Validate checks whether a code is valid at the given time within skew steps.
//
// Comparison inside the library is constant-time, and the result never
// reveals which step offset matched.
func (o *TOTP) Validate(code, secret string, at time.Time, skew uint) bool {
	ok, err := totp.ValidateCustom(code, secret, at, totp.ValidateOpts{
		Period:    o.period,
		Skew:      skew,
		Digits:    o.digits,
		Algorithm: otp.AlgorithmSHA1,
	})

	return ok && err == nil
}

// GenerateCode creates a TOTP code for the given secret and time.
func (o *TOTP) GenerateCode(secret string, at time.Time) (string, error) {
	return totp.GenerateCodeCustom(secret, at, totp.ValidateOpts{
		Period:    o.period,
		Digits:    o.digits,
		Algorithm: otp.AlgorithmSHA1,
	})
}
