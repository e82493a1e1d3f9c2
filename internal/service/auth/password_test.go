package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/phrazzld/taskboard-api/internal/service/auth"
)

func TestHashPassword(t *testing.T) {
	t.Parallel()

	hash, err := auth.HashPassword("correct horse battery", bcrypt.MinCost)
	require.NoError(t, err)

	verifier := auth.NewBcryptVerifier()
	assert.NoError(t, verifier.Compare(hash, "correct horse battery"))
	assert.ErrorIs(t, verifier.Compare(hash, "wrong horse battery"), bcrypt.ErrMismatchedHashAndPassword)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.MinCost, cost)
}

func TestHashPassword_OutOfRangeCost(t *testing.T) {
	t.Parallel()

	hash, err := auth.HashPassword("correct horse battery", 99)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
