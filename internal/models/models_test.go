package models

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetPasswordAndMatch(t *testing.T) {
	var user User
	require.NoError(t, user.SetPassword("pw123456"))
	assert.NotEqual(t, "pw123456", user.PasswordHash, "plaintext must never be stored")

	ok, err := user.PasswordMatches("pw123456")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = user.PasswordMatches("wrong-password")
	require.NoError(t, err, "a mismatch is not an error")
	assert.False(t, ok)
}

func TestAvatarHashNormalizes(t *testing.T) {
	hash := AvatarHash("alice@x.com")

	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{32}$`), hash)
	assert.Equal(t, hash, AvatarHash("  Alice@X.Com  "), "case and whitespace must not change the fingerprint")
	assert.NotEqual(t, hash, AvatarHash("bob@x.com"))
}
