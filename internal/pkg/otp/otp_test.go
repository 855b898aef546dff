package otp

import (
	"testing"
	"time"

	libotp "github.com/pquerna/otp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTOTPGenerate(t *testing.T) {
	o := NewTOTP("OTPGuard", 30, libotp.DigitsSix)

	secret, uri, err := o.Generate("user@example.com")
	require.NoError(t, err)
	assert.NotEmpty(t, secret)
	assert.Contains(t, uri, "otpauth://totp/")
	assert.Contains(t, uri, "issuer=OTPGuard")
	assert.Contains(t, uri, "user%40example.com")

	secret2, _, err := o.Generate("user@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, secret, secret2)
}

func TestTOTPGenerateEmptyAccountName(t *testing.T) {
	o := NewTOTP("OTPGuard", 30, libotp.DigitsSix)

	_, _, err := o.Generate("")
	assert.ErrorIs(t, err, ErrEmptyAccountName)
}

func TestTOTPProvisioningURI(t *testing.T) {
	o := NewTOTP("OTPGuard", 30, libotp.DigitsSix)

	secret, uri, err := o.Generate("user@example.com")
	require.NoError(t, err)

	rebuilt, err := o.ProvisioningURI(secret, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, uri, rebuilt)

	_, err = o.ProvisioningURI(secret, "")
	assert.ErrorIs(t, err, ErrEmptyAccountName)
}

func TestTOTPValidate(t *testing.T) {
	o := NewTOTP("OTPGuard", 30, libotp.DigitsSix)
	at := time.Date(2025, 6, 1, 12, 0, 15, 0, time.UTC)

	secret, _, err := o.Generate("user@example.com")
	require.NoError(t, err)

	code, err := o.GenerateCode(secret, at)
	require.NoError(t, err)
	require.Len(t, code, 6)

	assert.True(t, o.Validate(code, secret, at, 0))
	assert.False(t, o.Validate("000000", secret, at, 0))
	assert.False(t, o.Validate(code, secret, at.Add(5*time.Minute), 1))
}

func TestTOTPValidateSkewWindow(t *testing.T) {
	o := NewTOTP("OTPGuard", 30, libotp.DigitsSix)
	at := time.Date(2025, 6, 1, 12, 0, 15, 0, time.UTC)

	secret, _, err := o.Generate("user@example.com")
	require.NoError(t, err)

	previous, err := o.GenerateCode(secret, at.Add(-30*time.Second))
	require.NoError(t, err)

	// A code from the previous step passes only when one step of drift is allowed.
	assert.False(t, o.Validate(previous, secret, at, 0))
	assert.True(t, o.Validate(previous, secret, at, 1))
}

func TestNewTOTPDefaults(t *testing.T) {
	o := NewTOTP("OTPGuard", 0, libotp.Digits(4))

	assert.Equal(t, uint(30), o.period)
	assert.Equal(t, libotp.DigitsSix, o.digits)
}
