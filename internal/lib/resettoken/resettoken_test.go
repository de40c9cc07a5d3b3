package resettoken

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	raw, hash, err := New()
	require.NoError(t, err)

	// 32 случайных байта в hex
	assert.Len(t, raw, 64)
	assert.Len(t, hash, 64)
	assert.NotEqual(t, raw, hash)
	assert.Equal(t, hash, Hash(raw))
}

func TestNew_Unique(t *testing.T) {
	first, _, err := New()
	require.NoError(t, err)
	second, _, err := New()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestHash_Deterministic(t *testing.T) {
	assert.Equal(t, Hash("token"), Hash("token"))
	assert.NotEqual(t, Hash("token"), Hash("other"))
}
