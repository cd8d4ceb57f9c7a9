package companions

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrNotFound is returned for unknown token ids.
	ErrNotFound = errors.New("companions: companion not found")
	// ErrUnauthorized is returned when the caller is not the companion owner.
	ErrUnauthorized = errors.New("companions: not authorized")
	// ErrValidation flags malformed input before any state is touched.
	ErrValidation = errors.New("companions: invalid input")
)

// AccessTier controls marketplace visibility. Values are ordered.
type AccessTier int

const (
	TierPrivate      AccessTier = 1
	TierTokenHolders AccessTier = 2
	TierPublic       AccessTier = 3
)

func (t AccessTier) Valid() bool {
	return t >= TierPrivate && t <= TierPublic
}

func (t AccessTier) String() string {
	switch t {
	case TierPrivate:
		return "private"
	case TierTokenHolders:
		return "token_holders"
	case TierPublic:
		return "public"
	}
	return "unknown"
}

// ActionType is the kind of content operation a companion performs.
type ActionType int

const (
	ActionPost      ActionType = 1
	ActionReply     ActionType = 2
	ActionQuote     ActionType = 3
	ActionLike      ActionType = 4
	ActionSummarize ActionType = 5
	ActionAnalysis  ActionType = 6
)

var actionNames = map[ActionType]string{
	ActionPost:      "post",
	ActionReply:     "reply",
	ActionQuote:     "quote",
	ActionLike:      "like",
	ActionSummarize: "summarize",
	ActionAnalysis:  "analysis",
}

func (a ActionType) Valid() bool {
	_, ok := actionNames[a]
	return ok
}

func (a ActionType) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

// Publishable reports whether the action ends with a cast on the network.
func (a ActionType) Publishable() bool {
	return a == ActionPost || a == ActionReply
}

// ParseActionType accepts either the numeric wire value or the lowercase name.
func ParseActionType(raw string) (ActionType, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if n, err := strconv.Atoi(raw); err == nil {
		if a := ActionType(n); a.Valid() {
			return a, nil
		}
		return 0, fmt.Errorf("%w: action type %d", ErrValidation, n)
	}
	for a, name := range actionNames {
		if name == raw {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: action type %q", ErrValidation, raw)
}

// UnmarshalJSON accepts the numeric wire value or a quoted name.
func (a *ActionType) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	parsed, err := ParseActionType(raw)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ScheduleEntry is a time-of-day action template. Time is "HH:MM".
type ScheduleEntry struct {
	Time       string     `json:"time"`
	ActionType ActionType `json:"actionType"`
	Context    string     `json:"context"`
}

// Validate checks the time format and action type.
func (e ScheduleEntry) Validate() error {
	if _, err := time.Parse("15:04", e.Time); err != nil || len(e.Time) != 5 {
		return fmt.Errorf("%w: schedule time %q must be HH:MM", ErrValidation, e.Time)
	}
	if !e.ActionType.Valid() {
		return fmt.Errorf("%w: action type %d", ErrValidation, e.ActionType)
	}
	return nil
}

// Companion is a snapshot of a minted persona.
type Companion struct {
	TokenID           uint64          `json:"tokenId"`
	Name              string          `json:"name"`
	Personality       string          `json:"personality"`
	SystemPrompt      string          `json:"systemPrompt"`
	AccessTier        AccessTier      `json:"accessTier"`
	OwnerID           int64           `json:"ownerIdentity"`
	CreatedAt         time.Time       `json:"creationTime"`
	TotalInteractions uint64          `json:"totalInteractions"`
	AutoPostEnabled   bool            `json:"autoPostEnabled"`
	Tone              string          `json:"tone"`
	Expertise         []string        `json:"expertise"`
	Schedule          []ScheduleEntry `json:"schedule"`
}

// OwnerPreference is the approval policy for everything an owner minted.
type OwnerPreference struct {
	TokenID          uint64
	ApprovedActions  map[ActionType]struct{}
	RequiresApproval bool
	MaxDailyPosts    int
}

// DefaultPreference applies when an owner has no stored preference.
func DefaultPreference() OwnerPreference {
	return OwnerPreference{RequiresApproval: true}
}

// Featured is the marketplace listing view of a companion.
type Featured struct {
	TokenID           uint64     `json:"tokenId"`
	Name              string     `json:"name"`
	Personality       string     `json:"personality"`
	TotalInteractions uint64     `json:"totalInteractions"`
	AccessTier        AccessTier `json:"accessTier"`
	Expertise         []string   `json:"expertise"`
}

const (
	defaultTone          = "conversational"
	defaultMaxDailyPosts = 5
	previewRunes         = 100
)

func defaultExpertise() []string {
	return []string{"web3", "farcaster"}
}

// Preview truncates s to at most n runes.
func Preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
