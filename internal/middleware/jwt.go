package middleware

import (
	"crypto/rsa"
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

// TokenIssuer is stamped into every access token the auth service signs.
const TokenIssuer = "Rentmio"

var errMissingSubject = errors.New("access token has no subject")

var accessTokenParser = jwt.NewParser(
	jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
	jwt.WithIssuer(TokenIssuer),
	jwt.WithExpirationRequired(),
)

// ValidateToken verifies an RS256 access token and returns its subject,
// the caller's user id. Expired tokens wrap jwt.ErrTokenExpired.
func ValidateToken(tokenString string, publicKey *rsa.PublicKey) (string, error) {
	var claims jwt.RegisteredClaims
	_, err := accessTokenParser.ParseWithClaims(tokenString, &claims, func(*jwt.Token) (any, error) {
		return publicKey, nil
	})
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errMissingSubject
	}
	return claims.Subject, nil
}
