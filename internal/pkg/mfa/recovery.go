package mfa

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// RecoveryCodeGenerator defines an interface for generating recovery codes.
type RecoveryCodeGenerator interface {
	// Generate returns a batch of unique recovery codes or an error if the
	// random source fails.
	Generate() ([]string, error)
}

// alphabet is the character set used for recovery code generation: digits
// plus upper- and lowercase letters, 62 symbols total. Codes stay
// transcribable by hand while keeping reasonable entropy per character.
const alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

const (
	// DefaultBatchSize is the number of codes issued per batch.
	DefaultBatchSize = 8
	// DefaultSegmentLength is the length of each code segment.
	DefaultSegmentLength = 5
)

// RecoveryCode generates single-use recovery codes formatted as two
// random segments joined by a dash:
//
//	XXXXX-XXXXX
//
// Every character is drawn from crypto/rand.
type RecoveryCode struct {
	batchSize  int
	segmentLen int
}

// NewRecoveryCode returns a RecoveryCode generator.
//
// Non-positive arguments fall back to the defaults (8 codes, 5-char segments).
func NewRecoveryCode(batchSize, segmentLen int) *RecoveryCode {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if segmentLen <= 0 {
		segmentLen = DefaultSegmentLength
	}

	return &RecoveryCode{batchSize: batchSize, segmentLen: segmentLen}
}

// Generate produces a batch of unique recovery codes.
func (rc *RecoveryCode) Generate() ([]string, error) {
	out := make([]string, 0, rc.batchSize)
	seen := make(map[string]struct{}, rc.batchSize)

	for len(out) < rc.batchSize {
		code, err := rc.generateCode()
		if err != nil {
			return nil, err
		}

		// extremely unlikely, but prevents accidental duplicates
		if _, ok := seen[code]; ok {
			continue
		}

		seen[code] = struct{}{}
		out = append(out, code)
	}

	return out, nil
}

func (rc *RecoveryCode) generateCode() (string, error) {
	raw, err := rc.randomString(rc.segmentLen * 2)
	if err != nil {
		return "", err
	}
	return raw[:rc.segmentLen] + "-" + raw[rc.segmentLen:], nil
}

func (rc *RecoveryCode) randomString(n int) (string, error) {
	var sb strings.Builder
	sb.Grow(n)

	max := big.NewInt(int64(len(alphabet)))
	for range n {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		sb.WriteByte(alphabet[idx.Int64()])
	}

	return sb.String(), nil
}
