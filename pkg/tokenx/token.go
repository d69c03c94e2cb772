package tokenx

import "time"

// Token is an immutable bearer token with its expiry instant. Providers
// replace a cached Token wholesale on renewal; nothing ever mutates one.
type Token struct {
	value  string
	expiry time.Time
}

// NewToken creates a token value.
func NewToken(value string, expiry time.Time) Token {
	return Token{value: value, expiry: expiry}
}

// IsExpired reports whether the token has expired at the current time.
func (t Token) IsExpired() bool {
	return t.IsExpiredAt(time.Now())
}

// IsExpiredAt reports whether the token is expired at the given instant:
// true iff now >= expiry.
func (t Token) IsExpiredAt(now time.Time) bool {
	return !now.Before(t.expiry)
}

// Expiry returns the expiry instant.
func (t Token) Expiry() time.Time { return t.expiry }

// String returns the raw bearer value.
func (t Token) String() string { return t.value }
