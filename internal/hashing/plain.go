package hashing

import (
	"crypto/subtle"

	"retail-service/internal/service"
)

// Plain compares secrets stored in clear text. It exists for databases
// seeded without hashing.
type Plain struct{}

func NewPlain() Plain { return Plain{} }

func (Plain) Compare(stored, presented string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}

// ForScheme picks the verifier named by PASSWORD_SCHEME.
func ForScheme(scheme string, bcryptCost int) service.PasswordVerifier {
	if scheme == "bcrypt" {
		return NewBcrypt(bcryptCost)
	}
	return NewPlain()
}
