package jwtx

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
)

var (
	// ErrKeyAlgorithm reports a JWK whose kty/alg/crv is not EC P-256 ES256.
	ErrKeyAlgorithm = errors.New("jwtx: key must be an EC P-256 key with alg ES256")

	// ErrMissingPrivateScalar reports a private JWK without the d component.
	ErrMissingPrivateScalar = errors.New("jwtx: private JWK is missing the d component")
)

// p256FieldBytes is the byte length of a P-256 coordinate.
const p256FieldBytes = 32

// JWK represents an EC public key in JSON Web Key format (RFC 7517).
// The Parcel platform only deals in ES256 keys, so the RSA and OKP field
// sets are omitted.
type JWK struct {
	Kty string `json:"kty"`           // key type, always "EC"
	Use string `json:"use,omitempty"` // what we use it for: "sig"
	Alg string `json:"alg,omitempty"` // always "ES256"
	Kid string `json:"kid,omitempty"` // key ID

	Crv string `json:"crv,omitempty"` // curve, always "P-256"
	X   string `json:"x,omitempty"`   // base64url x-coordinate
	Y   string `json:"y,omitempty"`   // base64url y-coordinate
}

// PrivateJWK is a JWK carrying the private scalar d. The public form is
// obtained with Public, which simply drops d.
type PrivateJWK struct {
	JWK

	D string `json:"d"`
}

// NewES256JWK builds a JWK for an ECDSA P-256 public key.
func NewES256JWK(kid, use string, pub *ecdsa.PublicKey) JWK {
	return JWK{
		Kty: "EC",
		Use: use,
		Alg: "ES256",
		Kid: kid,
		Crv: "P-256",
		X:   base64.RawURLEncoding.EncodeToString(padCoordinate(pub.X)),
		Y:   base64.RawURLEncoding.EncodeToString(padCoordinate(pub.Y)),
	}
}

// NewPrivateES256JWK builds a private JWK for an ECDSA P-256 private key.
func NewPrivateES256JWK(kid string, key *ecdsa.PrivateKey) PrivateJWK {
	return PrivateJWK{
		JWK: NewES256JWK(kid, "sig", &key.PublicKey),
		D:   base64.RawURLEncoding.EncodeToString(padCoordinate(key.D)),
	}
}

// Validate checks that the key is usable for ES256 signing. Providers call
// this at construction so a bad key fails fast instead of at first sign.
func (j PrivateJWK) Validate() error {
	if j.Kty != "EC" || j.Alg != "ES256" || j.Crv != "P-256" {
		return ErrKeyAlgorithm
	}
	if j.D == "" {
		return ErrMissingPrivateScalar
	}
	return nil
}

// Public returns the public form of the key, omitting the private scalar.
func (j PrivateJWK) Public() JWK {
	return j.JWK
}

// PublicKey decodes the JWK into a crypto/ecdsa public key.
func (j JWK) PublicKey() (*ecdsa.PublicKey, error) {
	if j.Kty != "EC" || j.Crv != "P-256" {
		return nil, ErrKeyAlgorithm
	}

	xb, err := base64.RawURLEncoding.DecodeString(j.X)
	if err != nil {
		return nil, fmt.Errorf("jwtx: decode x: %w", err)
	}
	yb, err := base64.RawURLEncoding.DecodeString(j.Y)
	if err != nil {
		return nil, fmt.Errorf("jwtx: decode y: %w", err)
	}

	pub := &ecdsa.PublicKey{
		Curve: elliptic.P256(),
		X:     new(big.Int).SetBytes(xb),
		Y:     new(big.Int).SetBytes(yb),
	}

	if !pub.Curve.IsOnCurve(pub.X, pub.Y) {
		return nil, errors.New("jwtx: point is not on P-256")
	}

	return pub, nil
}

// ECDSAKey decodes the private JWK into a crypto/ecdsa private key.
func (j PrivateJWK) ECDSAKey() (*ecdsa.PrivateKey, error) {
	if err := j.Validate(); err != nil {
		return nil, err
	}

	pub, err := j.JWK.PublicKey()
	if err != nil {
		return nil, err
	}

	db, err := base64.RawURLEncoding.DecodeString(j.D)
	if err != nil {
		return nil, fmt.Errorf("jwtx: decode d: %w", err)
	}

	return &ecdsa.PrivateKey{
		PublicKey: *pub,
		D:         new(big.Int).SetBytes(db),
	}, nil
}

// padCoordinate left-pads a P-256 field element to exactly 32 bytes so the
// base64url encoding is canonical.
func padCoordinate(v *big.Int) []byte {
	b := v.Bytes()
	out := make([]byte, p256FieldBytes)
	copy(out[p256FieldBytes-len(b):], b)
	return out
}
