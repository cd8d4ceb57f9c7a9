package notify

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/selfai-labs/selfai/src/companions"
)

func TestFormatApproval(t *testing.T) {
	msg := FormatApproval(ApprovalNotice{
		ApprovalID:    7,
		TokenID:       3,
		CompanionName: "Nova",
		OwnerID:       100,
		RequesterID:   55,
		ActionType:    companions.ActionQuote,
		Context:       strings.Repeat("x", 400),
	})
	assert.Contains(t, msg, "**Nova #3** has a quote waiting for approval (ID: 7)")
	assert.Contains(t, msg, "requested by FID 55")
	assert.Contains(t, msg, "> "+strings.Repeat("x", 280)+"\n")
	assert.NotContains(t, msg, strings.Repeat("x", 281))
	assert.Contains(t, msg, "/approve/7?approverIdentity=100")
}

func TestFormatApproval_NoContext(t *testing.T) {
	msg := FormatApproval(ApprovalNotice{ApprovalID: 1, TokenID: 1, CompanionName: "Nova", ActionType: companions.ActionPost})
	assert.NotContains(t, msg, "> ")
}

func TestNewDiscord_RequiresConfig(t *testing.T) {
	_, err := NewDiscord("", "123")
	assert.Error(t, err)
	_, err = NewDiscord("token", "")
	assert.Error(t, err)
}

func TestNop(t *testing.T) {
	assert.NoError(t, Nop{}.ApprovalQueued(context.Background(), ApprovalNotice{}))
}
