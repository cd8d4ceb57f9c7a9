// Package ledger records executed interactions per companion.
package ledger

import (
	"context"
	"time"

	"github.com/selfai-labs/selfai/src/companions"
)

// Entry is one executed interaction: generated content and, for publishable
// actions, the outcome of publishing it.
type Entry struct {
	ID          uint64                `gorm:"primaryKey" json:"id"`
	TokenID     uint64                `gorm:"index;not null" json:"tokenId"`
	ActionType  companions.ActionType `gorm:"not null" json:"actionType"`
	RequesterID int64                 `gorm:"not null" json:"userIdentity"`
	ApprovalID  uint64                `json:"approvalId,omitempty"`
	Content     string                `gorm:"type:text" json:"content"`
	ContentID   string                `gorm:"size:128" json:"contentId,omitempty"`
	Published   bool                  `json:"published"`
	Error       string                `gorm:"size:512" json:"error,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
}

func (Entry) TableName() string { return "interactions" }

// Recorder stores and lists ledger entries.
type Recorder interface {
	Record(ctx context.Context, e *Entry) error
	Recent(ctx context.Context, tokenID uint64, limit int) ([]Entry, error)
}

const (
	DefaultLimit = 20
	MaxLimit     = 200
)

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}
