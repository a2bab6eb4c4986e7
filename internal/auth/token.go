// Package auth verifies the bearer token presented on the WebSocket handshake
// and turns it into the identity the connection is bound to.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Tyrowin/gochat-gateway/internal/apperr"
)

// Claims is what the gateway keeps from a verified token.
type Claims struct {
	Identity  string
	ExpiresAt time.Time
}

// Verifier turns a raw bearer token into Claims. Implementations return an
// error wrapping apperr.ErrAuthentication for every rejected token.
type Verifier interface {
	Verify(ctx context.Context, token string) (Claims, error)
}

// TokenClaims is the JWT payload issued for chat users.
type TokenClaims struct {
	UserID string `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// JWTVerifier validates HS256 tokens signed with a shared secret.
type JWTVerifier struct {
	secret []byte
	issuer string
	parser *jwt.Parser
}

func NewJWTVerifier(secret, issuer string) *JWTVerifier {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	return &JWTVerifier{
		secret: []byte(secret),
		issuer: issuer,
		parser: jwt.NewParser(opts...),
	}
}

// Verify parses and validates the signature and expiration of token. The
// identity comes from the user_id claim, falling back to sub.
func (v *JWTVerifier) Verify(_ context.Context, token string) (Claims, error) {
	if token == "" {
		return Claims{}, apperr.Authentication("missing bearer token", nil)
	}

	claims := &TokenClaims{}
	parsed, err := v.parser.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	})
	if err != nil {
		return Claims{}, apperr.Authentication("invalid bearer token", err)
	}
	if !parsed.Valid {
		return Claims{}, apperr.Authentication("invalid bearer token", jwt.ErrSignatureInvalid)
	}

	identity := claims.UserID
	if identity == "" {
		identity = claims.Subject
	}
	if identity == "" {
		return Claims{}, apperr.Authentication("token carries no identity", errors.New("empty user_id and sub"))
	}

	out := Claims{Identity: identity}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

// Issue signs a token for identity. The gateway itself never issues tokens in
// production; this backs the dev tooling and the tests.
func (v *JWTVerifier) Issue(identity string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &TokenClaims{
		UserID: identity,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

// TokenFromRequest extracts the bearer token from the Authorization header or,
// for browser clients that cannot set headers on a WebSocket handshake, from
// the token query parameter.
func TokenFromRequest(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		scheme, token, ok := strings.Cut(header, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}
