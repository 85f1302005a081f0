package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caseeracademy/sky-agent-platform-sub002/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	agentID := uuid.New()

	tokens, err := GenerateTokenPair(agentID, "agent@example.com", models.RoleAgent)
	require.NoError(t, err)
	assert.Equal(t, "Bearer", tokens.TokenType)
	assert.NotEmpty(t, tokens.AccessToken)
	assert.NotEmpty(t, tokens.RefreshToken)

	claims, err := ValidateToken(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, agentID, claims.AgentID)
	assert.Equal(t, "agent@example.com", claims.Email)
	assert.Equal(t, models.RoleAgent, claims.Role)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-token")
	assert.Error(t, err)
}
