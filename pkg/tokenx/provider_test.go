package tokenx_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oasislabs/parcel-go/pkg/cryptox"
	"github.com/oasislabs/parcel-go/pkg/jwtx"
	"github.com/oasislabs/parcel-go/pkg/tokenx"
)

func newTestKey(t *testing.T) jwtx.PrivateJWK {
	t.Helper()

	pemKey, err := cryptox.GenerateES256Key()
	require.NoError(t, err)
	key, err := cryptox.ParseES256Key(pemKey)
	require.NoError(t, err)

	return jwtx.NewPrivateES256JWK("test-key", key)
}

// tokenEndpoint is a scripted token endpoint. Each request increments calls
// and responds via the handler.
type tokenEndpoint struct {
	t       *testing.T
	calls   atomic.Int64
	handler func(n int64, r *http.Request, w http.ResponseWriter)
	server  *httptest.Server
}

func newTokenEndpoint(t *testing.T, handler func(n int64, r *http.Request, w http.ResponseWriter)) *tokenEndpoint {
	t.Helper()

	te := &tokenEndpoint{t: t, handler: handler}
	te.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		require.NoError(t, r.ParseForm())
		te.handler(te.calls.Add(1), r, w)
	}))
	t.Cleanup(te.server.Close)
	return te
}

func writeTokenResponse(w http.ResponseWriter, accessToken string, expiresIn int, refreshToken string) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token":  accessToken,
		"token_type":    "Bearer",
		"expires_in":    expiresIn,
		"refresh_token": refreshToken,
	})
}

func TestRenewingProviderRequestShape(t *testing.T) {
	t.Parallel()

	key := newTestKey(t)
	pub, err := key.Public().PublicKey()
	require.NoError(t, err)

	var endpoint *tokenEndpoint
	endpoint = newTokenEndpoint(t, func(_ int64, r *http.Request, w http.ResponseWriter) {
		require.Equal(t, "client_credentials", r.PostFormValue("grant_type"))
		require.Equal(t, "a b", r.PostFormValue("scope"))
		require.Equal(t, "https://api.example.com", r.PostFormValue("audience"))
		require.Equal(t,
			"urn:ietf:params:oauth:client-assertion-type:jwt-bearer",
			r.PostFormValue("client_assertion_type"),
		)

		claims, err := jwtx.VerifyES256(r.PostFormValue("client_assertion"), pub)
		require.NoError(t, err)
		require.Equal(t, "client-1", claims.Issuer)
		require.Equal(t, "client-1", claims.Subject)
		require.Contains(t, claims.Audience, endpoint.server.URL)
		require.NotEmpty(t, claims.ID)

		writeTokenResponse(w, "tok-1", 3600, "")
	})

	provider, err := tokenx.NewRenewingProvider(tokenx.RenewingTokenSource{
		ClientID:      "client-1",
		PrivateKey:    key,
		TokenEndpoint: endpoint.server.URL,
		Audience:      "https://api.example.com",
		Scopes:        []string{"a", "b"},
	})
	require.NoError(t, err)

	token, err := provider.GetToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-1", token)
}

func TestRenewingProviderRejectsBadKey(t *testing.T) {
	t.Parallel()

	key := newTestKey(t)
	key.Alg = "RS256"

	_, err := tokenx.NewRenewingProvider(tokenx.RenewingTokenSource{
		ClientID:      "client-1",
		PrivateKey:    key,
		TokenEndpoint: "https://auth.example.com/token",
	})
	require.ErrorIs(t, err, jwtx.ErrKeyAlgorithm)
}

func TestRenewingProviderCachesToken(t *testing.T) {
	t.Parallel()

	endpoint := newTokenEndpoint(t, func(n int64, _ *http.Request, w http.ResponseWriter) {
		writeTokenResponse(w, fmt.Sprintf("tok-%d", n), 3600, "")
	})

	provider, err := tokenx.NewRenewingProvider(tokenx.RenewingTokenSource{
		ClientID:      "client-1",
		PrivateKey:    newTestKey(t),
		TokenEndpoint: endpoint.server.URL,
	})
	require.NoError(t, err)

	first, err := provider.GetToken(context.Background())
	require.NoError(t, err)
	second, err := provider.GetToken(context.Background())
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.EqualValues(t, 1, endpoint.calls.Load())
}

func TestRenewingProviderRenewsExpiredToken(t *testing.T) {
	t.Parallel()

	endpoint := newTokenEndpoint(t, func(n int64, _ *http.Request, w http.ResponseWriter) {
		// expires_in of zero makes every token stale immediately.
		writeTokenResponse(w, fmt.Sprintf("tok-%d", n), 0, "")
	})

	provider, err := tokenx.NewRenewingProvider(tokenx.RenewingTokenSource{
		ClientID:      "client-1",
		PrivateKey:    newTestKey(t),
		TokenEndpoint: endpoint.server.URL,
	})
	require.NoError(t, err)

	first, err := provider.GetToken(context.Background())
	require.NoError(t, err)
	second, err := provider.GetToken(context.Background())
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	require.EqualValues(t, 2, endpoint.calls.Load())
}

func TestRenewingProviderCoalescesConcurrentRenewals(t *testing.T) {
	t.Parallel()

	endpoint := newTokenEndpoint(t, func(n int64, _ *http.Request, w http.ResponseWriter) {
		time.Sleep(50 * time.Millisecond)
		writeTokenResponse(w, fmt.Sprintf("tok-%d", n), 3600, "")
	})

	provider, err := tokenx.NewRenewingProvider(tokenx.RenewingTokenSource{
		ClientID:      "client-1",
		PrivateKey:    newTestKey(t),
		TokenEndpoint: endpoint.server.URL,
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	tokens := make([]string, 10)
	for i := range tokens {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, err := provider.GetToken(context.Background())
			require.NoError(t, err)
			tokens[i] = tok
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, endpoint.calls.Load())
	for _, tok := range tokens {
		require.Equal(t, tokens[0], tok)
	}
}

func TestRenewingProviderSurfacesAuthError(t *testing.T) {
	t.Parallel()

	endpoint := newTokenEndpoint(t, func(_ int64, _ *http.Request, w http.ResponseWriter) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":             "invalid_client",
			"error_description": "unknown client",
		})
	})

	provider, err := tokenx.NewRenewingProvider(tokenx.RenewingTokenSource{
		ClientID:      "client-1",
		PrivateKey:    newTestKey(t),
		TokenEndpoint: endpoint.server.URL,
	})
	require.NoError(t, err)

	_, err = provider.GetToken(context.Background())

	var tokenErr *tokenx.TokenError
	require.ErrorAs(t, err, &tokenErr)
	require.Equal(t, http.StatusUnauthorized, tokenErr.StatusCode)
	require.Equal(t, "invalid_client", tokenErr.Code)
	require.Contains(t, tokenErr.Error(), "unknown client")

	// The cache stays empty, so a later call retries renewal.
	_, err = provider.GetToken(context.Background())
	require.Error(t, err)
	require.EqualValues(t, 2, endpoint.calls.Load())
}

func TestRefreshingProviderRotatesRefreshToken(t *testing.T) {
	t.Parallel()

	endpoint := newTokenEndpoint(t, func(n int64, r *http.Request, w http.ResponseWriter) {
		require.Equal(t, "refresh_token", r.PostFormValue("grant_type"))

		switch n {
		case 1:
			require.Equal(t, "rt-1", r.PostFormValue("refresh_token"))
			writeTokenResponse(w, "tok-1", 0, "rt-2")
		default:
			// Renewal must present the rotated token, not the original.
			require.Equal(t, "rt-2", r.PostFormValue("refresh_token"))
			writeTokenResponse(w, "tok-2", 3600, "")
		}
	})

	provider, err := tokenx.NewRefreshingProvider(tokenx.RefreshingTokenSource{
		RefreshToken:  "rt-1",
		TokenEndpoint: endpoint.server.URL,
	})
	require.NoError(t, err)

	first, err := provider.GetToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-1", first)
	require.Equal(t, "rt-2", provider.RefreshToken())

	second, err := provider.GetToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "tok-2", second)

	// A response without a replacement keeps the current refresh token.
	require.Equal(t, "rt-2", provider.RefreshToken())
	require.EqualValues(t, 2, endpoint.calls.Load())
}

func TestRefreshingProviderRequiresRefreshToken(t *testing.T) {
	t.Parallel()

	_, err := tokenx.NewRefreshingProvider(tokenx.RefreshingTokenSource{
		TokenEndpoint: "https://auth.example.com/token",
	})
	require.Error(t, err)
}

func TestSelfIssuedProviderRoundTrip(t *testing.T) {
	t.Parallel()

	key := newTestKey(t)
	pub, err := key.Public().PublicKey()
	require.NoError(t, err)

	provider, err := tokenx.NewSelfIssuedProvider(tokenx.SelfIssuedTokenSource{
		Principal:     "acme-corp",
		PrivateKey:    key,
		Scopes:        []string{"parcel.read", "parcel.write"},
		TokenLifetime: 45 * time.Minute,
	})
	require.NoError(t, err)

	token, err := provider.GetToken(context.Background())
	require.NoError(t, err)

	claims, err := jwtx.VerifyES256(token, pub)
	require.NoError(t, err)
	require.Equal(t, "acme-corp", claims.Issuer)
	require.Equal(t, "acme-corp", claims.Subject)
	require.Contains(t, claims.Audience, tokenx.PlatformAudience)
	require.Equal(t, "parcel.read parcel.write", claims.Scope)
	require.Equal(t,
		45*time.Minute+jwtx.ClockSkew,
		claims.ExpiresAt.Sub(claims.IssuedAt.Time),
	)

	// No network call and a valid cache: the same token comes back.
	again, err := provider.GetToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, token, again)
}

func TestStaticProvider(t *testing.T) {
	t.Parallel()

	provider := tokenx.NewStaticProvider("fixed-token")
	token, err := provider.GetToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "fixed-token", token)
}
