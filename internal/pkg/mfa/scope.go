package mfa

// Purpose identifies what a ciphertext protects.
type Purpose string

const (
	// PurposeTOTPSeed scopes encryption to TOTP shared secrets.
	PurposeTOTPSeed Purpose = "totp_seed"
)

// Scope binds a ciphertext to the account it belongs to.
// It is fed into AES-GCM as AAD, so a ciphertext copied onto another
// account's record will not decrypt.
type Scope struct {
	// AccountID is the owning account identifier.
	AccountID string
	// Purpose is the encryption purpose.
	Purpose Purpose
}
