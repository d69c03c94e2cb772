package jwtx

// Signer is our interface for anything that can sign JWTs.
//
// The Parcel platform only accepts ES256 (ECDSA P-256 with SHA-256) for
// client assertions and self-issued tokens, so that is the only
// implementation this package ships. Providers reject any other key
// algorithm at construction time rather than at sign time.
type Signer interface {
	Alg() string
	KID() string
	Sign(Claims) (string, error)
	PublicJWK() JWK
	Validate() error
}

// NewSignerES256 creates an ES256 signer from PEM bytes.
// ECDSA P-256 keys must be in PKCS8 format.
func NewSignerES256(kid string, pemKey []byte) (Signer, error) {
	return newES256Signer(kid, pemKey)
}

// NewSignerFromJWK creates an ES256 signer from a private EC JWK.
// The JWK must carry kty "EC", alg "ES256" and the private scalar d.
func NewSignerFromJWK(key PrivateJWK) (Signer, error) {
	return newES256SignerFromJWK(key)
}
