package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery staple", hash)

	assert.True(t, ComparePassword("correct horse battery staple", hash))
	assert.False(t, ComparePassword("wrong password", hash))
}

func TestComparePassword_InvalidHash(t *testing.T) {
	assert.False(t, ComparePassword("anything", "not-a-bcrypt-hash"))
}
