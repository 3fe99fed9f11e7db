package api

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims is the subset of the access token payload the client cares
// about. The token is decoded without signature verification: the backend is
// the authority, the client only reads the expiry and identity hints.
type TokenClaims struct {
	UserID    int
	Username  string
	Email     string
	ExpiresAt time.Time
}

// DecodeAccessToken parses the JWT payload of an access token.
func DecodeAccessToken(token string) (TokenClaims, error) {
	var claims jwt.MapClaims
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return TokenClaims{}, fmt.Errorf("api: decode access token: %w", err)
	}

	out := TokenClaims{}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if id, ok := claims["user_id"].(float64); ok {
		out.UserID = int(id)
	}
	if username, ok := claims["username"].(string); ok {
		out.Username = username
	}
	if email, ok := claims["email"].(string); ok {
		out.Email = email
	}
	return out, nil
}

// TokenExpired reports whether the access token's expiry has passed. An
// undecodable token counts as expired.
func TokenExpired(token string, now time.Time) bool {
	claims, err := DecodeAccessToken(token)
	if err != nil || claims.ExpiresAt.IsZero() {
		return true
	}
	return !now.Before(claims.ExpiresAt)
}
