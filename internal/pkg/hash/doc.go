// Package hash provides helpers for hashing and verifying secrets.
//
// Passwords go through bcrypt; recovery codes are stored as argon2id hashes.
// Only hashes are persisted, and verification is constant-time in both
// implementations.
package hash
