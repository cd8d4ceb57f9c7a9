package companions

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mint(t *testing.T, r *Registry, owner int64, tier AccessTier) uint64 {
	t.Helper()
	id, err := r.Create("Nova", "Curious and upbeat explorer", "You write short, friendly casts about onchain art.", owner, tier)
	require.NoError(t, err)
	return id
}

func TestCreate_AssignsSequentialIDs(t *testing.T) {
	r := NewRegistry()

	var last uint64
	for i := 0; i < 5; i++ {
		id := mint(t, r, 42, TierPrivate)
		assert.Greater(t, id, last)
		last = id
	}
	assert.Equal(t, uint64(5), last)
}

func TestCreate_ConcurrentIDsAreUnique(t *testing.T) {
	r := NewRegistry()

	const n = 64
	ids := make(chan uint64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(owner int64) {
			defer wg.Done()
			id, err := r.Create("Nova", "Curious and upbeat explorer", "You write short, friendly casts.", owner, TierPublic)
			assert.NoError(t, err)
			ids <- id
		}(int64(i))
	}
	wg.Wait()
	close(ids)

	seen := map[uint64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestCreate_Defaults(t *testing.T) {
	r := NewRegistry()
	id := mint(t, r, 7, TierTokenHolders)

	c, err := r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "conversational", c.Tone)
	assert.Equal(t, []string{"web3", "farcaster"}, c.Expertise)
	assert.False(t, c.AutoPostEnabled)
	assert.Empty(t, c.Schedule)
	assert.Zero(t, c.TotalInteractions)
	assert.Equal(t, int64(7), c.OwnerID)

	pref := r.Preference(7)
	assert.True(t, pref.RequiresApproval)
	assert.Equal(t, 5, pref.MaxDailyPosts)
	assert.Equal(t, id, pref.TokenID)
	assert.Contains(t, pref.ApprovedActions, ActionPost)
	assert.Contains(t, pref.ApprovedActions, ActionReply)
}

func TestCreate_OverwritesOwnerPreference(t *testing.T) {
	r := NewRegistry()
	mint(t, r, 7, TierPrivate)
	second := mint(t, r, 7, TierPrivate)

	assert.Equal(t, second, r.Preference(7).TokenID)
}

func TestCreate_RejectsUnknownTier(t *testing.T) {
	r := NewRegistry()
	_, err := r.Create("Nova", "Curious and upbeat explorer", "You write short casts.", 1, AccessTier(9))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPreference_DefaultWhenAbsent(t *testing.T) {
	r := NewRegistry()
	pref := r.Preference(999)
	assert.True(t, pref.RequiresApproval)
	assert.Empty(t, pref.ApprovedActions)
}

func TestGet_NotFound(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get(12)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIncrementInteractions_Concurrent(t *testing.T) {
	r := NewRegistry()
	id := mint(t, r, 1, TierPublic)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, r.IncrementInteractions(id))
		}()
	}
	wg.Wait()

	c, err := r.Get(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), c.TotalInteractions)

	assert.ErrorIs(t, r.IncrementInteractions(id+1), ErrNotFound)
}

func TestOwnerOnlyOperations(t *testing.T) {
	r := NewRegistry()
	id := mint(t, r, 10, TierPublic)
	entry := ScheduleEntry{Time: "09:30", ActionType: ActionPost, Context: "gm"}

	for _, intruder := range []int64{0, 9, 11, -10, 1 << 40} {
		assert.ErrorIs(t, r.SetAutoPost(id, intruder, true), ErrUnauthorized)
		assert.ErrorIs(t, r.AppendSchedule(id, intruder, entry), ErrUnauthorized)
		assert.ErrorIs(t, r.UpdatePersona(id, intruder, "dry", nil), ErrUnauthorized)
	}

	require.NoError(t, r.SetAutoPost(id, 10, true))
	require.NoError(t, r.AppendSchedule(id, 10, entry))
	require.NoError(t, r.AppendSchedule(id, 10, entry))

	c, err := r.Get(id)
	require.NoError(t, err)
	assert.True(t, c.AutoPostEnabled)
	assert.Equal(t, []ScheduleEntry{entry, entry}, c.Schedule)

	assert.ErrorIs(t, r.SetAutoPost(id+1, 10, true), ErrNotFound)
}

func TestAppendSchedule_Validation(t *testing.T) {
	r := NewRegistry()
	id := mint(t, r, 10, TierPublic)

	for _, bad := range []ScheduleEntry{
		{Time: "9:30", ActionType: ActionPost},
		{Time: "25:00", ActionType: ActionPost},
		{Time: "noon", ActionType: ActionPost},
		{Time: "09:30", ActionType: ActionType(0)},
	} {
		err := r.AppendSchedule(id, 10, bad)
		assert.True(t, errors.Is(err, ErrValidation), "entry %+v", bad)
	}
}

func TestUpdatePersona(t *testing.T) {
	r := NewRegistry()
	id := mint(t, r, 3, TierPrivate)

	require.NoError(t, r.UpdatePersona(id, 3, "  witty ", []string{"defi", " ", "zk"}))
	c, _ := r.Get(id)
	assert.Equal(t, "witty", c.Tone)
	assert.Equal(t, []string{"defi", "zk"}, c.Expertise)

	require.NoError(t, r.UpdatePersona(id, 3, "", nil))
	c, _ = r.Get(id)
	assert.Equal(t, "witty", c.Tone)
	assert.Equal(t, []string{"defi", "zk"}, c.Expertise)
}

func TestGet_ReturnsCopy(t *testing.T) {
	r := NewRegistry()
	id := mint(t, r, 3, TierPrivate)

	c, _ := r.Get(id)
	c.Expertise[0] = "mutated"
	again, _ := r.Get(id)
	assert.Equal(t, "web3", again.Expertise[0])
}

func TestListFeatured(t *testing.T) {
	r := NewRegistry()
	long := "An endlessly talkative persona who narrates every block as if it were the season finale of a drama series."
	_, err := r.Create("Hidden", long, "You write short casts about nothing.", 1, TierPrivate)
	require.NoError(t, err)
	holders, err := r.Create("Holders", long, "You write short casts about nothing.", 1, TierTokenHolders)
	require.NoError(t, err)
	public, err := r.Create("Public", "Short one here", "You write short casts about nothing.", 2, TierPublic)
	require.NoError(t, err)

	featured := r.ListFeatured()
	require.Len(t, featured, 2)
	assert.Equal(t, holders, featured[0].TokenID)
	assert.Equal(t, public, featured[1].TokenID)
	assert.Len(t, []rune(featured[0].Personality), 100)
	assert.Equal(t, "Short one here", featured[1].Personality)
}

func TestParseActionType(t *testing.T) {
	cases := map[string]ActionType{
		"1":         ActionPost,
		"reply":     ActionReply,
		" Quote ":   ActionQuote,
		"6":         ActionAnalysis,
		"summarize": ActionSummarize,
	}
	for in, want := range cases {
		got, err := ParseActionType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	for _, bad := range []string{"0", "7", "boost", ""} {
		_, err := ParseActionType(bad)
		assert.ErrorIs(t, err, ErrValidation, bad)
	}
}

func TestActionType_UnmarshalJSON(t *testing.T) {
	var entry ScheduleEntry
	require.NoError(t, json.Unmarshal([]byte(`{"time":"08:00","actionType":"summarize"}`), &entry))
	assert.Equal(t, ActionSummarize, entry.ActionType)

	require.NoError(t, json.Unmarshal([]byte(`{"time":"08:00","actionType":2}`), &entry))
	assert.Equal(t, ActionReply, entry.ActionType)

	err := json.Unmarshal([]byte(`{"actionType":9}`), &entry)
	assert.ErrorIs(t, err, ErrValidation)

	out, err := json.Marshal(ScheduleEntry{Time: "09:30", ActionType: ActionPost})
	require.NoError(t, err)
	assert.JSONEq(t, `{"time":"09:30","actionType":1,"context":""}`, string(out))
}
