package websocket

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockUserLookup is a test double for UserLookup
type mockUserLookup struct {
	userID int32
	err    error
}

func (m *mockUserLookup) GetUserIDByAuth0ID(ctx context.Context, auth0ID string) (int32, error) {
	return m.userID, m.err
}

func TestCustomClaims_Validate(t *testing.T) {
	claims := &CustomClaims{}
	assert.NoError(t, claims.Validate(context.Background()))
}

func TestNewAuth0JWTValidator_Success(t *testing.T) {
	lookup := &mockUserLookup{userID: 1}

	v, err := NewAuth0JWTValidator("test.auth0.com", "https://api.tally.app", lookup)
	require.NoError(t, err)
	assert.NotNil(t, v.validator)
	assert.Equal(t, lookup, v.userLookup)
}

func TestAuth0JWTValidator_ValidateToken_InvalidJWT(t *testing.T) {
	lookup := &mockUserLookup{userID: 1}

	v, err := NewAuth0JWTValidator("test.auth0.com", "https://api.tally.app", lookup)
	require.NoError(t, err)

	userID, err := v.ValidateToken(context.Background(), "invalid-token")
	assert.True(t, errors.Is(err, ErrInvalidToken))
	assert.Equal(t, int32(0), userID)
}
