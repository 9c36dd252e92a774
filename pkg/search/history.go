package search

import (
	"log/slog"
	"strings"
	"sync"

	"github.com/connectsphere/clientkit/pkg/kvstore"
	"github.com/connectsphere/clientkit/pkg/logger"
)

// Retention caps for the persisted search state.
const (
	MaxHistory       = 50
	MaxSavedSearches = 20
	MaxSuggestions   = 10
)

// Durable storage keys.
const (
	historyKey       = "connectsphere_search_history"
	savedSearchesKey = "connectsphere_saved_searches"
)

// Filters narrows a search to specific facets. Zero values mean no filter.
type Filters struct {
	Category   string `json:"category,omitempty"`
	Difficulty string `json:"difficulty,omitempty"`
	Status     string `json:"status,omitempty"`
	DateFrom   string `json:"dateFrom,omitempty"`
	DateTo     string `json:"dateTo,omitempty"`
	Type       string `json:"type,omitempty"`
}

// SavedSearch is a named query with its filters, recallable by name.
type SavedSearch struct {
	Query   string  `json:"query"`
	Filters Filters `json:"filters"`
	Name    string  `json:"name"`
}

// History keeps the user's recent and saved searches, persisted to durable
// storage on every mutation. Recent queries are ordered newest first and
// capped; saved searches are keyed by name, re-saving a name replaces it.
//
// Storage failures are logged and swallowed: the in-memory state remains
// authoritative for the session.
type History struct {
	mu      sync.Mutex
	recent  []string
	saved   []SavedSearch
	storage kvstore.Store
	logger  *slog.Logger
}

// HistoryOption configures a History.
type HistoryOption func(*History)

// WithHistoryLogger sets the logger.
func WithHistoryLogger(log *slog.Logger) HistoryOption {
	return func(h *History) {
		if log != nil {
			h.logger = log
		}
	}
}

// NewHistory loads prior state from storage. Corrupt or missing state
// falls back to empty without error.
func NewHistory(storage kvstore.Store, opts ...HistoryOption) *History {
	h := &History{
		storage: storage,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.load()
	return h
}

func (h *History) load() {
	var recent []string
	if _, err := kvstore.GetJSON(h.storage, historyKey, &recent); err != nil {
		h.logger.Warn("stored search history is unreadable, starting empty",
			logger.Component("search"),
			logger.StorageKey(historyKey),
			logger.Error(err),
		)
	} else {
		h.recent = recent
	}

	var saved []SavedSearch
	if _, err := kvstore.GetJSON(h.storage, savedSearchesKey, &saved); err != nil {
		h.logger.Warn("stored saved searches are unreadable, starting empty",
			logger.Component("search"),
			logger.StorageKey(savedSearchesKey),
			logger.Error(err),
		)
	} else {
		h.saved = saved
	}
}

// Add records a query at the front of the history. Blank queries and exact
// duplicates are ignored; the oldest entries beyond the cap are evicted.
func (h *History) Add(query string) {
	if strings.TrimSpace(query) == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for _, q := range h.recent {
		if q == query {
			return
		}
	}

	h.recent = append([]string{query}, h.recent...)
	if len(h.recent) > MaxHistory {
		h.recent = h.recent[:MaxHistory]
	}
	h.persistRecentLocked()
}

// Recent returns a snapshot of the history, newest first.
func (h *History) Recent() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]string, len(h.recent))
	copy(out, h.recent)
	return out
}

// Remove deletes a single query from the history.
func (h *History) Remove(query string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	kept := h.recent[:0]
	for _, q := range h.recent {
		if q != query {
			kept = append(kept, q)
		}
	}
	if len(kept) == len(h.recent) {
		return
	}
	h.recent = kept
	h.persistRecentLocked()
}

// Clear removes the entire history.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.recent = nil
	h.persistRecentLocked()
}

// Suggest returns history entries containing the query, case-insensitive,
// excluding the query itself. An empty query returns the most recent
// entries. At most MaxSuggestions entries are returned.
func (h *History) Suggest(query string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if query == "" {
		n := min(len(h.recent), MaxSuggestions)
		out := make([]string, n)
		copy(out, h.recent[:n])
		return out
	}

	needle := strings.ToLower(query)
	var out []string
	for _, q := range h.recent {
		if q == query {
			continue
		}
		if strings.Contains(strings.ToLower(q), needle) {
			out = append(out, q)
			if len(out) == MaxSuggestions {
				break
			}
		}
	}
	return out
}

// Save stores a named search, replacing any existing search of the same
// name and evicting the oldest beyond the cap.
func (h *History) Save(s SavedSearch) {
	if strings.TrimSpace(s.Query) == "" || strings.TrimSpace(s.Name) == "" {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	kept := make([]SavedSearch, 0, len(h.saved)+1)
	kept = append(kept, s)
	for _, existing := range h.saved {
		if existing.Name != s.Name {
			kept = append(kept, existing)
		}
	}
	if len(kept) > MaxSavedSearches {
		kept = kept[:MaxSavedSearches]
	}
	h.saved = kept
	h.persistSavedLocked()
}

// SavedSearches returns a snapshot of the saved searches, newest first.
func (h *History) SavedSearches() []SavedSearch {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]SavedSearch, len(h.saved))
	copy(out, h.saved)
	return out
}

// DeleteSaved removes a saved search by name.
func (h *History) DeleteSaved(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	kept := h.saved[:0]
	for _, s := range h.saved {
		if s.Name != name {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(h.saved) {
		return
	}
	h.saved = kept
	h.persistSavedLocked()
}

func (h *History) persistRecentLocked() {
	if err := kvstore.SetJSON(h.storage, historyKey, h.recent); err != nil {
		h.logger.Warn("failed to persist search history",
			logger.Component("search"),
			logger.StorageKey(historyKey),
			logger.Error(err),
		)
	}
}

func (h *History) persistSavedLocked() {
	if err := kvstore.SetJSON(h.storage, savedSearchesKey, h.saved); err != nil {
		h.logger.Warn("failed to persist saved searches",
			logger.Component("search"),
			logger.StorageKey(savedSearchesKey),
			logger.Error(err),
		)
	}
}
