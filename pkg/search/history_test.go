package search_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/connectsphere/clientkit/pkg/kvstore"
	"github.com/connectsphere/clientkit/pkg/search"
)

func TestHistory_Add(t *testing.T) {
	t.Parallel()

	t.Run("newest first", func(t *testing.T) {
		t.Parallel()

		h := search.NewHistory(kvstore.NewMemoryStore())
		h.Add("golang")
		h.Add("websockets")

		assert.Equal(t, []string{"websockets", "golang"}, h.Recent())
	})

	t.Run("ignores blank queries", func(t *testing.T) {
		t.Parallel()

		h := search.NewHistory(kvstore.NewMemoryStore())
		h.Add("")
		h.Add("   ")

		assert.Empty(t, h.Recent())
	})

	t.Run("ignores duplicates", func(t *testing.T) {
		t.Parallel()

		h := search.NewHistory(kvstore.NewMemoryStore())
		h.Add("golang")
		h.Add("websockets")
		h.Add("golang")

		assert.Equal(t, []string{"websockets", "golang"}, h.Recent())
	})

	t.Run("caps at fifty entries", func(t *testing.T) {
		t.Parallel()

		h := search.NewHistory(kvstore.NewMemoryStore())
		for i := 0; i < 60; i++ {
			h.Add(fmt.Sprintf("query-%02d", i))
		}

		recent := h.Recent()
		require.Len(t, recent, search.MaxHistory)
		assert.Equal(t, "query-59", recent[0])
		assert.Equal(t, "query-10", recent[len(recent)-1])
	})
}

func TestHistory_RemoveAndClear(t *testing.T) {
	t.Parallel()

	h := search.NewHistory(kvstore.NewMemoryStore())
	h.Add("a")
	h.Add("b")
	h.Add("c")

	h.Remove("b")
	assert.Equal(t, []string{"c", "a"}, h.Recent())

	h.Remove("missing")
	assert.Equal(t, []string{"c", "a"}, h.Recent())

	h.Clear()
	assert.Empty(t, h.Recent())
}

func TestHistory_PersistsAcrossRestart(t *testing.T) {
	t.Parallel()

	storage := kvstore.NewMemoryStore()

	h := search.NewHistory(storage)
	h.Add("golang")
	h.Save(search.SavedSearch{
		Name:    "hard quizzes",
		Query:   "quiz",
		Filters: search.Filters{Difficulty: "hard", Type: "quiz"},
	})

	reopened := search.NewHistory(storage)
	assert.Equal(t, []string{"golang"}, reopened.Recent())

	saved := reopened.SavedSearches()
	require.Len(t, saved, 1)
	assert.Equal(t, "hard quizzes", saved[0].Name)
	assert.Equal(t, "hard", saved[0].Filters.Difficulty)
}

func TestHistory_CorruptStorageStartsEmpty(t *testing.T) {
	t.Parallel()

	storage := kvstore.NewMemoryStore()
	require.NoError(t, storage.Set("connectsphere_search_history", "{broken"))
	require.NoError(t, storage.Set("connectsphere_saved_searches", "[broken"))

	h := search.NewHistory(storage)
	assert.Empty(t, h.Recent())
	assert.Empty(t, h.SavedSearches())
}

func TestHistory_Suggest(t *testing.T) {
	t.Parallel()

	h := search.NewHistory(kvstore.NewMemoryStore())
	h.Add("golang basics")
	h.Add("golang concurrency")
	h.Add("zero knowledge proofs")

	t.Run("matches case-insensitively", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t,
			[]string{"golang concurrency", "golang basics"},
			h.Suggest("GOLANG"),
		)
	})

	t.Run("excludes the query itself", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t,
			[]string{"golang concurrency"},
			h.Suggest("golang basics"),
		)
	})

	t.Run("empty query returns most recent", func(t *testing.T) {
		t.Parallel()
		got := h.Suggest("")
		require.Len(t, got, 3)
		assert.Equal(t, "zero knowledge proofs", got[0])
	})
}

func TestHistory_SavedSearches(t *testing.T) {
	t.Parallel()

	t.Run("resaving a name replaces it", func(t *testing.T) {
		t.Parallel()

		h := search.NewHistory(kvstore.NewMemoryStore())
		h.Save(search.SavedSearch{Name: "mine", Query: "v1"})
		h.Save(search.SavedSearch{Name: "mine", Query: "v2"})

		saved := h.SavedSearches()
		require.Len(t, saved, 1)
		assert.Equal(t, "v2", saved[0].Query)
	})

	t.Run("caps at twenty", func(t *testing.T) {
		t.Parallel()

		h := search.NewHistory(kvstore.NewMemoryStore())
		for i := 0; i < 25; i++ {
			h.Save(search.SavedSearch{
				Name:  fmt.Sprintf("search-%02d", i),
				Query: "q",
			})
		}

		saved := h.SavedSearches()
		require.Len(t, saved, search.MaxSavedSearches)
		assert.Equal(t, "search-24", saved[0].Name)
	})

	t.Run("requires name and query", func(t *testing.T) {
		t.Parallel()

		h := search.NewHistory(kvstore.NewMemoryStore())
		h.Save(search.SavedSearch{Name: "", Query: "q"})
		h.Save(search.SavedSearch{Name: "n", Query: " "})

		assert.Empty(t, h.SavedSearches())
	})

	t.Run("delete by name", func(t *testing.T) {
		t.Parallel()

		h := search.NewHistory(kvstore.NewMemoryStore())
		h.Save(search.SavedSearch{Name: "a", Query: "q"})
		h.Save(search.SavedSearch{Name: "b", Query: "q"})

		h.DeleteSaved("a")
		saved := h.SavedSearches()
		require.Len(t, saved, 1)
		assert.Equal(t, "b", saved[0].Name)
	})
}
