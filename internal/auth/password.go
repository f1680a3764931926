package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt digest from the plaintext password.
// The work factor is bcrypt's default cost; digests self-describe their
// cost, so raising it later only affects newly stored hashes.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether the plaintext password matches the stored
// digest. Malformed digests verify as false rather than erroring, so callers
// get a single uniform failure path.
func VerifyPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
