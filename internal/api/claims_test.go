package api_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lonhq/lonboard/internal/api"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestDecodeAccessToken(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := signedToken(t, jwt.MapClaims{
		"user_id":  float64(42),
		"username": "alice",
		"email":    "alice@example.com",
		"exp":      exp.Unix(),
	})

	claims, err := api.DecodeAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, 42, claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.WithinDuration(t, exp, claims.ExpiresAt, time.Second)
}

func TestDecodeAccessTokenRejectsGarbage(t *testing.T) {
	_, err := api.DecodeAccessToken("not-a-jwt")
	require.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	live := signedToken(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()})
	dead := signedToken(t, jwt.MapClaims{"exp": now.Add(-time.Hour).Unix()})
	noExp := signedToken(t, jwt.MapClaims{"user_id": float64(1)})

	assert.False(t, api.TokenExpired(live, now))
	assert.True(t, api.TokenExpired(dead, now))
	assert.True(t, api.TokenExpired(noExp, now), "token without exp counts as expired")
	assert.True(t, api.TokenExpired("garbage", now))
}

func TestDateWireFormat(t *testing.T) {
	d := api.NewDate(2025, time.March, 9)
	assert.Equal(t, "2025-03-09", d.String())

	var task api.Task
	require.NoError(t, json.Unmarshal([]byte(`{"id":1,"title":"t","status":"todo","start_date":"2025-03-09","end_date":null}`), &task))
	assert.Equal(t, "2025-03-09", task.StartDate.String())
	assert.True(t, task.EndDate.IsZero())
}
