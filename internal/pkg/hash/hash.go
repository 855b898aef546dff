package hash

// Hash turns a plaintext secret into a stored representation and verifies
// submitted plaintext against it.
//
// Verify must not leak timing information about how close the submitted
// value is to a match.
type Hash interface {
	Hash(plaintext string) ([]byte, error)
	Verify(hashed, plaintext string) bool
}
