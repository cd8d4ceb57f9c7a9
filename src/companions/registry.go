package companions

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Registry owns companion records and owner preferences.
type Registry struct {
	mu          sync.RWMutex
	nextID      uint64
	companions  map[uint64]*record
	preferences map[int64]OwnerPreference
	now         func() time.Time
}

type record struct {
	Companion
	interactions atomic.Uint64
}

// NewRegistry returns an empty registry. Token ids start at 1.
func NewRegistry() *Registry {
	return &Registry{
		companions:  map[uint64]*record{},
		preferences: map[int64]OwnerPreference{},
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Create mints a companion and resets the owner's preference.
func (r *Registry) Create(name, personality, systemPrompt string, owner int64, tier AccessTier) (uint64, error) {
	if !tier.Valid() {
		return 0, fmt.Errorf("%w: access tier %d", ErrValidation, tier)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.companions[id] = &record{Companion: Companion{
		TokenID:      id,
		Name:         name,
		Personality:  personality,
		SystemPrompt: systemPrompt,
		AccessTier:   tier,
		OwnerID:      owner,
		CreatedAt:    r.now(),
		Tone:         defaultTone,
		Expertise:    defaultExpertise(),
	}}
	r.preferences[owner] = OwnerPreference{
		TokenID: id,
		ApprovedActions: map[ActionType]struct{}{
			ActionPost:  {},
			ActionReply: {},
		},
		RequiresApproval: true,
		MaxDailyPosts:    defaultMaxDailyPosts,
	}
	return id, nil
}

// Get returns a copy of the companion.
func (r *Registry) Get(tokenID uint64) (Companion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec := r.companions[tokenID]
	if rec == nil {
		return Companion{}, fmt.Errorf("%w: token %d", ErrNotFound, tokenID)
	}
	return rec.snapshot(), nil
}

// Companions returns snapshots of every companion ordered by token id.
func (r *Registry) Companions() []Companion {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Companion, 0, len(r.companions))
	for _, rec := range r.companions {
		out = append(out, rec.snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TokenID < out[j].TokenID })
	return out
}

// Preference returns the owner's approval policy, or the default when none exists.
func (r *Registry) Preference(owner int64) OwnerPreference {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pref, ok := r.preferences[owner]
	if !ok {
		return DefaultPreference()
	}
	pref.ApprovedActions = cloneActions(pref.ApprovedActions)
	return pref
}

// IncrementInteractions bumps the published-interaction counter.
func (r *Registry) IncrementInteractions(tokenID uint64) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec := r.companions[tokenID]
	if rec == nil {
		return fmt.Errorf("%w: token %d", ErrNotFound, tokenID)
	}
	rec.interactions.Add(1)
	return nil
}

// SetAutoPost toggles auto-posting. Owner only.
func (r *Registry) SetAutoPost(tokenID uint64, requester int64, enabled bool) error {
	return r.mutate(tokenID, requester, func(c *Companion) {
		c.AutoPostEnabled = enabled
	})
}

// AppendSchedule adds an entry to the companion's schedule. Owner only.
func (r *Registry) AppendSchedule(tokenID uint64, requester int64, entry ScheduleEntry) error {
	if err := entry.Validate(); err != nil {
		return err
	}
	return r.mutate(tokenID, requester, func(c *Companion) {
		c.Schedule = append(c.Schedule, entry)
	})
}

// UpdatePersona replaces tone and expertise. Empty values keep the current ones.
func (r *Registry) UpdatePersona(tokenID uint64, requester int64, tone string, expertise []string) error {
	tone = strings.TrimSpace(tone)
	cleaned := make([]string, 0, len(expertise))
	for _, e := range expertise {
		if e = strings.TrimSpace(e); e != "" {
			cleaned = append(cleaned, e)
		}
	}
	return r.mutate(tokenID, requester, func(c *Companion) {
		if tone != "" {
			c.Tone = tone
		}
		if len(cleaned) > 0 {
			c.Expertise = cleaned
		}
	})
}

// ListFeatured returns marketplace entries for companions at or above TokenHolders.
func (r *Registry) ListFeatured() []Featured {
	out := []Featured{}
	for _, c := range r.Companions() {
		if c.AccessTier < TierTokenHolders {
			continue
		}
		out = append(out, Featured{
			TokenID:           c.TokenID,
			Name:              c.Name,
			Personality:       Preview(c.Personality, previewRunes),
			TotalInteractions: c.TotalInteractions,
			AccessTier:        c.AccessTier,
			Expertise:         c.Expertise,
		})
	}
	return out
}

func (r *Registry) mutate(tokenID uint64, requester int64, fn func(*Companion)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.companions[tokenID]
	if rec == nil {
		return fmt.Errorf("%w: token %d", ErrNotFound, tokenID)
	}
	if rec.OwnerID != requester {
		return fmt.Errorf("%w: identity %d does not own token %d", ErrUnauthorized, requester, tokenID)
	}
	fn(&rec.Companion)
	return nil
}

func (rec *record) snapshot() Companion {
	c := rec.Companion
	c.TotalInteractions = rec.interactions.Load()
	c.Expertise = cloneStrings(rec.Expertise)
	c.Schedule = make([]ScheduleEntry, len(rec.Schedule))
	copy(c.Schedule, rec.Schedule)
	return c
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneActions(in map[ActionType]struct{}) map[ActionType]struct{} {
	out := make(map[ActionType]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}
