package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt-testing"

func TestGenerateToken(t *testing.T) {
	tests := []struct {
		name    string
		userID  uint
		email   string
		role    string
		secret  string
		expiry  time.Duration
		wantErr bool
	}{
		{
			name:   "Valid token generation",
			userID: 1,
			email:  "test@example.com",
			role:   "user",
			secret: testSecret,
			expiry: 15 * time.Minute,
		},
		{
			name:   "With admin role",
			userID: 2,
			email:  "admin@example.com",
			role:   "admin",
			secret: testSecret,
			expiry: 15 * time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := GenerateToken(tt.userID, tt.email, tt.role, tt.secret, tt.expiry)

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, token)

			claims, err := ValidateToken(token, tt.secret)
			require.NoError(t, err)
			assert.Equal(t, tt.userID, claims.UserID)
			assert.Equal(t, tt.email, claims.Email)
			assert.Equal(t, tt.role, claims.Role)
		})
	}
}

func TestValidateToken_WrongSecret(t *testing.T) {
	token, err := GenerateToken(1, "test@example.com", "user", testSecret, 15*time.Minute)
	require.NoError(t, err)

	claims, err := ValidateToken(token, "a-different-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestValidateToken_Expired(t *testing.T) {
	token, err := GenerateToken(1, "test@example.com", "user", testSecret, -1*time.Minute)
	require.NoError(t, err)

	claims, err := ValidateToken(token, testSecret)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestValidateToken_Garbage(t *testing.T) {
	claims, err := ValidateToken("not-a-token", testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}
