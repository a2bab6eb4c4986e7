package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/Tyrowin/gochat-gateway/internal/apperr"
)

const testSecret = "test-secret-with-enough-length-0123456789"

func TestJWTVerifier_RoundTrip(t *testing.T) {
	req := require.New(t)
	v := NewJWTVerifier(testSecret, "gochat")

	token, err := v.Issue("user-42", time.Minute)
	req.NoError(err)

	claims, err := v.Verify(context.Background(), token)
	req.NoError(err)
	req.Equal("user-42", claims.Identity)
	req.WithinDuration(time.Now().Add(time.Minute), claims.ExpiresAt, 5*time.Second)
}

func TestJWTVerifier_SubjectFallback(t *testing.T) {
	req := require.New(t)
	v := NewJWTVerifier(testSecret, "")

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "from-sub",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte(testSecret))
	req.NoError(err)

	claims, err := v.Verify(context.Background(), token)
	req.NoError(err)
	req.Equal("from-sub", claims.Identity)
}

func TestJWTVerifier_Rejects(t *testing.T) {
	v := NewJWTVerifier(testSecret, "gochat")
	other := NewJWTVerifier("another-secret-entirely-0123456789abcdef", "gochat")
	wrongIssuer := NewJWTVerifier(testSecret, "someone-else")

	expired, err := v.Issue("u", -time.Minute)
	require.NoError(t, err)
	forged, err := other.Issue("u", time.Minute)
	require.NoError(t, err)
	foreign, err := wrongIssuer.Issue("u", time.Minute)
	require.NoError(t, err)
	noIdentity, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "gochat",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := map[string]string{
		"empty":       "",
		"garbage":     "not-a-jwt",
		"expired":     expired,
		"bad secret":  forged,
		"bad issuer":  foreign,
		"no identity": noIdentity,
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), token)
			require.ErrorIs(t, err, apperr.ErrAuthentication)
		})
	}
}

func TestTokenFromRequest(t *testing.T) {
	tests := []struct {
		name   string
		header string
		query  string
		want   string
	}{
		{"bearer header", "Bearer abc", "", "abc"},
		{"case insensitive scheme", "bearer abc", "", "abc"},
		{"other scheme", "Basic abc", "xyz", ""},
		{"query fallback", "", "xyz", "xyz"},
		{"nothing", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target := "/ws"
			if tt.query != "" {
				target += "?token=" + tt.query
			}
			r := httptest.NewRequest(http.MethodGet, target, http.NoBody)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			require.Equal(t, tt.want, TokenFromRequest(r))
		})
	}
}
