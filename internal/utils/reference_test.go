package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateReference(t *testing.T) {
	ref := GenerateReference("APP")
	parts := strings.Split(ref, "_")
	assert.Len(t, parts, 3)
	assert.Equal(t, "APP", parts[0])
	assert.Len(t, parts[1], 8)
	assert.Len(t, parts[2], 8)

	// references are effectively unique
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		r := GenerateReference("APP")
		assert.False(t, seen[r])
		seen[r] = true
	}
}

func TestGenerateAgentCode(t *testing.T) {
	code := GenerateAgentCode(8)
	assert.Len(t, code, 8)
	for _, ch := range code {
		assert.Contains(t, referenceCharset, string(ch))
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	assert.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret-pass", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}
