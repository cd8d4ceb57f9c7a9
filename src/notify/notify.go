// Package notify tells companion owners that content is waiting for them.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/selfai-labs/selfai/src/companions"
)

// ApprovalNotice describes a freshly queued approval.
type ApprovalNotice struct {
	ApprovalID    uint64
	TokenID       uint64
	CompanionName string
	OwnerID       int64
	RequesterID   int64
	ActionType    companions.ActionType
	Context       string
}

// Notifier delivers owner notifications.
type Notifier interface {
	ApprovalQueued(ctx context.Context, n ApprovalNotice) error
}

// Nop drops every notification.
type Nop struct{}

func (Nop) ApprovalQueued(context.Context, ApprovalNotice) error { return nil }

const maxContextPreview = 280

// FormatApproval renders the message body shared by every channel.
func FormatApproval(n ApprovalNotice) string {
	var b strings.Builder
	fmt.Fprintf(&b, "**%s #%d** has a %s waiting for approval (ID: %d)\n", n.CompanionName, n.TokenID, n.ActionType, n.ApprovalID)
	fmt.Fprintf(&b, "Owner FID %d, requested by FID %d\n", n.OwnerID, n.RequesterID)
	if ctx := strings.TrimSpace(n.Context); ctx != "" {
		fmt.Fprintf(&b, "> %s\n", companions.Preview(ctx, maxContextPreview))
	}
	fmt.Fprintf(&b, "Approve with `POST /approve/%d?approverIdentity=%d`", n.ApprovalID, n.OwnerID)
	return b.String()
}
