package jwtx

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ClockSkew is how far the iat claim is backdated to tolerate clock drift
// between the client and the token endpoint.
const ClockSkew = 2 * time.Minute

// Claims are the token claims used across the SDK: the registered set plus
// the OAuth scope claim as a single space-joined string, which is how the
// Parcel token endpoint encodes granted scopes.
type Claims struct {
	jwt.RegisteredClaims

	Scope string `json:"scope,omitempty"`
}

// NewAssertionClaims builds the claims for a self-signed token: issuer and
// subject are both the asserting principal. Returns a fresh value and never
// mutates caller-owned data. iat is backdated by ClockSkew; exp is anchored
// at now, not the backdated instant.
func NewAssertionClaims(
	principal string,
	audience string,
	scope string,
	lifetime time.Duration,
	now time.Time,
) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    principal,
			Subject:   principal,
			Audience:  jwt.ClaimStrings{audience},
			IssuedAt:  jwt.NewNumericDate(now.Add(-ClockSkew)),
			ExpiresAt: jwt.NewNumericDate(now.Add(lifetime)),
			ID:        NewJTI(),
		},
		Scope: scope,
	}
}

// NewJTI returns a random identifier for the "jti" claim: 8 random bytes,
// hex encoded.
func NewJTI() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
