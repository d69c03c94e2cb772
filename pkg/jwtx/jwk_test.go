package jwtx_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oasislabs/parcel-go/pkg/cryptox"
	"github.com/oasislabs/parcel-go/pkg/jwtx"
)

func testPrivateJWK(t *testing.T) jwtx.PrivateJWK {
	t.Helper()

	pemKey, err := cryptox.GenerateES256Key()
	require.NoError(t, err)
	key, err := cryptox.ParseES256Key(pemKey)
	require.NoError(t, err)

	return jwtx.NewPrivateES256JWK("test-key", key)
}

func TestPrivateJWKRoundTrip(t *testing.T) {
	t.Parallel()

	jwk := testPrivateJWK(t)
	require.Equal(t, "EC", jwk.Kty)
	require.Equal(t, "ES256", jwk.Alg)
	require.Equal(t, "P-256", jwk.Crv)
	require.NoError(t, jwk.Validate())

	key, err := jwk.ECDSAKey()
	require.NoError(t, err)

	// Re-encoding the decoded key reproduces the original JWK.
	again := jwtx.NewPrivateES256JWK("test-key", key)
	require.Equal(t, jwk, again)
}

func TestPublicJWKOmitsPrivateScalar(t *testing.T) {
	t.Parallel()

	jwk := testPrivateJWK(t)
	pub := jwk.Public()
	require.Equal(t, jwk.X, pub.X)
	require.Equal(t, jwk.Y, pub.Y)

	key, err := pub.PublicKey()
	require.NoError(t, err)
	require.Equal(t, "P-256", key.Curve.Params().Name)
}

func TestPrivateJWKValidate(t *testing.T) {
	t.Parallel()

	t.Run("wrong kty", func(t *testing.T) {
		jwk := testPrivateJWK(t)
		jwk.Kty = "RSA"
		require.ErrorIs(t, jwk.Validate(), jwtx.ErrKeyAlgorithm)
	})

	t.Run("wrong alg", func(t *testing.T) {
		jwk := testPrivateJWK(t)
		jwk.Alg = "RS256"
		require.ErrorIs(t, jwk.Validate(), jwtx.ErrKeyAlgorithm)
	})

	t.Run("missing d", func(t *testing.T) {
		jwk := testPrivateJWK(t)
		jwk.D = ""
		require.ErrorIs(t, jwk.Validate(), jwtx.ErrMissingPrivateScalar)
	})
}

func TestSignerFromJWK(t *testing.T) {
	t.Parallel()

	jwk := testPrivateJWK(t)
	signer, err := jwtx.NewSignerFromJWK(jwk)
	require.NoError(t, err)
	require.Equal(t, "test-key", signer.KID())
	require.NoError(t, signer.Validate())

	bad := jwk
	bad.Alg = "EdDSA"
	_, err = jwtx.NewSignerFromJWK(bad)
	require.ErrorIs(t, err, jwtx.ErrKeyAlgorithm)
}
