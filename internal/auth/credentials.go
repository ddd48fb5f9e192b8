package auth

import "golang.org/x/crypto/bcrypt"

// HashCredential derives a bcrypt hash from a plaintext credential.
func HashCredential(plaintext string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// VerifyCredential reports whether plaintext matches the stored hash.
// The hash is opaque to every other package; callers only get a bool.
func VerifyCredential(plaintext, storedHash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext)) == nil
}
