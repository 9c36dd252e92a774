package notifications

// CategoryPreferences toggles notification delivery per product area.
type CategoryPreferences struct {
	Quiz        bool `json:"quiz"`
	Proof       bool `json:"proof"`
	Achievement bool `json:"achievement"`
	System      bool `json:"system"`
	Marketing   bool `json:"marketing"`
}

// Preferences holds the per-session notification channel and category
// toggles. One instance exists per client session; it is loaded from
// durable storage at construction, merged field-by-field over defaults,
// and persisted on every update.
type Preferences struct {
	Email   bool                `json:"email"`
	Push    bool                `json:"push"`
	Browser bool                `json:"browser"`
	Types   CategoryPreferences `json:"types"`
}

// DefaultPreferences enables every channel and category except marketing.
func DefaultPreferences() Preferences {
	return Preferences{
		Email:   true,
		Push:    true,
		Browser: true,
		Types: CategoryPreferences{
			Quiz:        true,
			Proof:       true,
			Achievement: true,
			System:      true,
			Marketing:   false,
		},
	}
}

// Allows reports whether the category is enabled. The empty category is
// always allowed so ad-hoc notifications are never filtered.
func (p Preferences) Allows(c Category) bool {
	switch c {
	case CategoryQuiz:
		return p.Types.Quiz
	case CategoryProof:
		return p.Types.Proof
	case CategoryAchievement:
		return p.Types.Achievement
	case CategorySystem:
		return p.Types.System
	case CategoryMarketing:
		return p.Types.Marketing
	default:
		return true
	}
}
