package approvals

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/selfai-labs/selfai/src/companions"
)

// ErrNotFound is returned for unknown or already-resolved approval ids.
var ErrNotFound = errors.New("approvals: pending approval not found")

// PendingApproval is an interaction waiting for the companion owner.
type PendingApproval struct {
	ID          uint64                `json:"approvalId"`
	TokenID     uint64                `json:"tokenId"`
	RequesterID int64                 `json:"userIdentity"`
	ActionType  companions.ActionType `json:"actionType"`
	Context     string                `json:"context,omitempty"`
	ReplyTarget string                `json:"replyTarget,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
}

// Store persists pending approvals. Take must remove the record atomically so
// that concurrent takes of one id succeed at most once.
type Store interface {
	Add(ctx context.Context, p PendingApproval) (uint64, error)
	Get(ctx context.Context, id uint64) (PendingApproval, error)
	Take(ctx context.Context, id uint64) (PendingApproval, error)
	List(ctx context.Context) ([]PendingApproval, error)
}

// Companions resolves companion ownership.
type Companions interface {
	Get(tokenID uint64) (companions.Companion, error)
}

// Queue admits gated interactions and resolves them for the owner.
type Queue struct {
	store      Store
	companions Companions
	now        func() time.Time
}

func NewQueue(store Store, registry Companions) *Queue {
	return &Queue{
		store:      store,
		companions: registry,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Enqueue stores a pending approval and returns its id.
func (q *Queue) Enqueue(ctx context.Context, tokenID uint64, requester int64, action companions.ActionType, actionContext, replyTarget string) (uint64, error) {
	if _, err := q.companions.Get(tokenID); err != nil {
		return 0, err
	}
	return q.store.Add(ctx, PendingApproval{
		TokenID:     tokenID,
		RequesterID: requester,
		ActionType:  action,
		Context:     actionContext,
		ReplyTarget: replyTarget,
		CreatedAt:   q.now(),
	})
}

// Resolve removes and returns the approval when approver owns its companion.
func (q *Queue) Resolve(ctx context.Context, id uint64, approver int64) (PendingApproval, error) {
	if err := q.authorize(ctx, id, approver); err != nil {
		return PendingApproval{}, err
	}
	return q.store.Take(ctx, id)
}

// Reject discards the approval without executing it.
func (q *Queue) Reject(ctx context.Context, id uint64, approver int64) error {
	if err := q.authorize(ctx, id, approver); err != nil {
		return err
	}
	_, err := q.store.Take(ctx, id)
	return err
}

// Pending lists approvals waiting on the given owner, oldest first.
func (q *Queue) Pending(ctx context.Context, owner int64) ([]PendingApproval, error) {
	all, err := q.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := []PendingApproval{}
	for _, p := range all {
		c, err := q.companions.Get(p.TokenID)
		if err != nil || c.OwnerID != owner {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (q *Queue) authorize(ctx context.Context, id uint64, approver int64) error {
	p, err := q.store.Get(ctx, id)
	if err != nil {
		return err
	}
	c, err := q.companions.Get(p.TokenID)
	if err != nil {
		return err
	}
	if c.OwnerID != approver {
		return fmt.Errorf("%w: identity %d cannot approve %d", companions.ErrUnauthorized, approver, id)
	}
	return nil
}
