// Package schedule exposes companion schedule entries to the time-driven
// trigger that turns them into interaction requests. Firing itself happens
// outside this service.
package schedule

import (
	"fmt"

	"github.com/selfai-labs/selfai/src/companions"
)

// Registry is the subset of the companion registry the store needs.
type Registry interface {
	Get(tokenID uint64) (companions.Companion, error)
	Companions() []companions.Companion
	AppendSchedule(tokenID uint64, requester int64, entry companions.ScheduleEntry) error
}

// Due is a schedule entry that matches the queried time of day.
type Due struct {
	TokenID  uint64                   `json:"tokenId"`
	OwnerID  int64                    `json:"ownerIdentity"`
	AutoPost bool                     `json:"autoPostEnabled"`
	Entry    companions.ScheduleEntry `json:"entry"`
}

type Store struct {
	registry Registry
}

func NewStore(registry Registry) *Store {
	return &Store{registry: registry}
}

// Append adds an entry for the companion. Owner only.
func (s *Store) Append(tokenID uint64, requester int64, entry companions.ScheduleEntry) error {
	return s.registry.AppendSchedule(tokenID, requester, entry)
}

// Entries returns the companion's schedule in insertion order.
func (s *Store) Entries(tokenID uint64) ([]companions.ScheduleEntry, error) {
	c, err := s.registry.Get(tokenID)
	if err != nil {
		return nil, err
	}
	if c.Schedule == nil {
		return []companions.ScheduleEntry{}, nil
	}
	return c.Schedule, nil
}

// DueAt lists entries scheduled for timeOfDay ("HH:MM") across all companions.
func (s *Store) DueAt(timeOfDay string) ([]Due, error) {
	check := companions.ScheduleEntry{Time: timeOfDay, ActionType: companions.ActionPost}
	if err := check.Validate(); err != nil {
		return nil, fmt.Errorf("schedule: %w", err)
	}

	out := []Due{}
	for _, c := range s.registry.Companions() {
		for _, entry := range c.Schedule {
			if entry.Time != timeOfDay {
				continue
			}
			out = append(out, Due{
				TokenID:  c.TokenID,
				OwnerID:  c.OwnerID,
				AutoPost: c.AutoPostEnabled,
				Entry:    entry,
			})
		}
	}
	return out, nil
}
