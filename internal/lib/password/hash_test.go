package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHashAndCompare(t *testing.T) {
	hash, err := GetHash("motdepasse")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "motdepasse", hash)

	assert.NoError(t, CompareHash(hash, "motdepasse"))
	assert.Error(t, CompareHash(hash, "autremotdepasse"))
}
