package auth

import "golang.org/x/crypto/bcrypt"

// DefaultBcryptCost is deliberately slow; signup latency is the price of
// credential stuffing resistance.
const DefaultBcryptCost = 12

// HashPassword hashes a plaintext password with the configured cost.
func HashPassword(password string, cost int) (string, error) {
	if cost <= 0 {
		cost = DefaultBcryptCost
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// ComparePassword verifies a password against its hashed value. A mismatch is
// an error return, not a panic; malformed digests also surface here.
func ComparePassword(hashed, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain))
}
