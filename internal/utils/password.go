package utils

import "golang.org/x/crypto/bcrypt"

// PasswordCost is the bcrypt work factor for email/password identities.
// Tests lower it to bcrypt.MinCost.
var PasswordCost = 12

// HashPassword produces the value stored in identities.password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPasswordHash reports whether a login attempt matches the stored
// hash. Google-only identities have no hash and never match.
func CheckPasswordHash(password, hash string) bool {
	if hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
