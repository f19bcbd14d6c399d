package crypto

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheck(t *testing.T) {
	hash, err := HashPasswordAsBcrypt("broccoli")
	require.NoError(t, err)

	assert.NotEqual(t, "broccoli", hash)
	assert.True(t, CheckPasswordHash(hash, "broccoli"))
	assert.False(t, CheckPasswordHash(hash, "Broccoli"))
	assert.False(t, CheckPasswordHash("not-a-hash", "broccoli"))
}

func TestHashIsSalted(t *testing.T) {
	a, err := HashPasswordAsBcrypt("same")
	require.NoError(t, err)
	b, err := HashPasswordAsBcrypt("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashRejectsLongPassword(t *testing.T) {
	_, err := HashPasswordAsBcrypt(strings.Repeat("a", MaxPasswordBytes+1))
	assert.Error(t, err)
}

func TestBurnPasswordCheck(t *testing.T) {
	require.NoError(t, BurnPasswordCheck("anything"))

	hash, err := dummyHash()
	require.NoError(t, err)
	cost, err := bcrypt.Cost(hash)
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)

	again, err := dummyHash()
	require.NoError(t, err)
	assert.Equal(t, hash, again)
}
