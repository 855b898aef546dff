// Package otp generates and validates time-based one-time passwords.
//
// It wraps the TOTP algorithm for the two-factor flow: generate a secret and
// provisioning URI for an authenticator app, then validate user-provided
// codes with a caller-chosen clock-skew window.
package otp
