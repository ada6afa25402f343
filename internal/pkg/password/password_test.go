package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("supersecret")
	require.NoError(t, err)
	assert.NotEqual(t, "supersecret", hash)

	assert.True(t, Verify("supersecret", hash))
	assert.False(t, Verify("SuperSecret", hash)) // case-sensitive
	assert.False(t, Verify("wrong", hash))
	assert.False(t, Verify("supersecret", "not-a-hash"))
}

func TestHashToken(t *testing.T) {
	a := HashToken("token-a")
	b := HashToken("token-b")

	assert.NotEqual(t, a, b)
	assert.Equal(t, a, HashToken("token-a")) // deterministic
	assert.Len(t, a, 64)                     // hex sha256
}

func TestValidatePassword(t *testing.T) {
	assert.False(t, ValidatePassword(""))
	assert.False(t, ValidatePassword("short"))
	assert.True(t, ValidatePassword("12345678"))
	assert.True(t, ValidatePassword("a long passphrase"))
}
