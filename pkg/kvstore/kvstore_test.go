package kvstore_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connectsphere/clientkit/pkg/kvstore"
)

func TestMemoryStore(t *testing.T) {
	t.Parallel()

	s := kvstore.NewMemoryStore()

	_, ok := s.Get("missing")
	assert.False(t, ok)

	require.NoError(t, s.Set("k", "v"))
	v, ok := s.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)

	require.NoError(t, s.Set("k", "v2"))
	v, _ = s.Get("k")
	assert.Equal(t, "v2", v)

	require.NoError(t, s.Delete("k"))
	_, ok = s.Get("k")
	assert.False(t, ok)

	// Deleting an absent key is fine.
	require.NoError(t, s.Delete("k"))
}

func TestJSONHelpers(t *testing.T) {
	t.Parallel()

	type prefs struct {
		Email bool `json:"email"`
		Push  bool `json:"push"`
	}

	s := kvstore.NewMemoryStore()

	var out prefs
	found, err := kvstore.GetJSON(s, "prefs", &out)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, kvstore.SetJSON(s, "prefs", prefs{Email: true}))
	found, err = kvstore.GetJSON(s, "prefs", &out)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, out.Email)
	assert.False(t, out.Push)

	// Corrupt value: present but unparseable.
	require.NoError(t, s.Set("prefs", "{not json"))
	found, err = kvstore.GetJSON(s, "prefs", &out)
	assert.True(t, found)
	assert.Error(t, err)
}
