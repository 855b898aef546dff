package mfa

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Ciphertext format (binary):
// [0..1]   uint16 version (currently 1)
// [2..13]  12-byte nonce
// [14..]   gcm.Seal output (ciphertext + tag)
const ciphertextVersion uint16 = 1

const (
	gcmNonceSize = 12
	aesKeyLen    = 32
)

var (
	// ErrInvalidKeyLength indicates the key is not 32 bytes (AES-256).
	ErrInvalidKeyLength = errors.New("mfa: key must be 32 bytes for AES-256")
	// ErrPlaintextEmpty indicates an empty plaintext input.
	ErrPlaintextEmpty = errors.New("mfa: plaintext is empty")
	// ErrCiphertextTooShort indicates a truncated ciphertext.
	ErrCiphertextTooShort = errors.New("mfa: ciphertext too short")
	// ErrUnsupportedVersion indicates an unknown ciphertext version.
	ErrUnsupportedVersion = errors.New("mfa: unsupported ciphertext version")
	// ErrDecryptFailed indicates decryption failure.
	ErrDecryptFailed = errors.New("mfa: decrypt failed")
)

// AESGCMEncryptor implements Encryptor using AES-256-GCM with the scope as
// additional authenticated data.
type AESGCMEncryptor struct {
	key []byte
}

// NewAESGCMEncryptor constructs an AES-GCM encryptor from a 32-byte key.
func NewAESGCMEncryptor(key []byte) (*AESGCMEncryptor, error) {
	if len(key) != aesKeyLen {
		return nil, ErrInvalidKeyLength
	}

	// Defensive copy so callers can't mutate the key afterwards.
	k := make([]byte, aesKeyLen)
	copy(k, key)

	return &AESGCMEncryptor{key: k}, nil
}

// Encrypt seals plaintext, binding the result to scope via AAD.
func (e *AESGCMEncryptor) Encrypt(plaintext []byte, scope Scope) ([]byte, error) {
	if len(plaintext) == 0 {
		return nil, ErrPlaintextEmpty
	}

	gcm, err := e.aead()
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcmNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("mfa: nonce generation failed: %w", err)
	}

	sealed := gcm.Seal(nil, nonce, plaintext, scopeAAD(scope))

	out := make([]byte, 2+gcmNonceSize+len(sealed))
	binary.BigEndian.PutUint16(out[0:2], ciphertextVersion)
	copy(out[2:2+gcmNonceSize], nonce)
	copy(out[2+gcmNonceSize:], sealed)

	return out, nil
}

// Decrypt opens ciphertext, requiring the same scope it was sealed with.
func (e *AESGCMEncryptor) Decrypt(ciphertext []byte, scope Scope) ([]byte, error) {
	if len(ciphertext) < 2+gcmNonceSize+1 {
		return nil, ErrCiphertextTooShort
	}

	if v := binary.BigEndian.Uint16(ciphertext[0:2]); v != ciphertextVersion {
		return nil, fmt.Errorf("mfa: ciphertext version %d: %w", v, ErrUnsupportedVersion)
	}

	gcm, err := e.aead()
	if err != nil {
		return nil, err
	}

	nonce := ciphertext[2 : 2+gcmNonceSize]
	sealed := ciphertext[2+gcmNonceSize:]

	plain, err := gcm.Open(nil, nonce, sealed, scopeAAD(scope))
	if err != nil {
		// Do not leak whether it was a wrong scope, a wrong key, or tampering.
		return nil, ErrDecryptFailed
	}

	return plain, nil
}

func (e *AESGCMEncryptor) aead() (cipher.AEAD, error) {
	block, err := aes.NewCipher(e.key)
	if err != nil {
		return nil, fmt.Errorf("mfa: aes init failed: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("mfa: gcm init failed: %w", err)
	}

	return gcm, nil
}

// scopeAAD encodes the scope into a stable, fixed-length byte slice.
//
// The canonical string carries field labels to avoid separator ambiguity,
// and the purpose prevents cross-purpose decryption.
func scopeAAD(s Scope) []byte {
	canonical := fmt.Sprintf("account=%s\npurpose=%s\n", s.AccountID, s.Purpose)
	sum := sha256.Sum256([]byte(canonical))
	return sum[:]
}
