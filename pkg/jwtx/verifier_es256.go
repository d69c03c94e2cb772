package jwtx

import (
	"crypto/ecdsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// VerifyES256 parses a compact JWS, checks the ES256 signature against the
// given public key and returns the claims. Expiry and not-before are
// enforced by the parser.
func VerifyES256(token string, pub *ecdsa.PublicKey) (*Claims, error) {
	var claims Claims

	_, err := jwt.ParseWithClaims(
		token,
		&claims,
		func(*jwt.Token) (any, error) { return pub, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodES256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("jwtx: verify: %w", err)
	}

	return &claims, nil
}
