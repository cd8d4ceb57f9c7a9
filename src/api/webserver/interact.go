package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/selfai-labs/selfai/src/companions"
	"github.com/selfai-labs/selfai/src/interactions"
)

type interactRequest struct {
	TokenID     uint64                `json:"tokenId" binding:"required"`
	RequesterID int64                 `json:"userIdentity"`
	ActionType  companions.ActionType `json:"actionType" binding:"required"`
	Context     string                `json:"context"`
	ReplyTarget string                `json:"replyTarget"`
}

func (s *server) Interact(c *gin.Context) {
	var req interactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	ctxText, err := s.plain("context", req.Context)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := checkLen("context", ctxText, 0, 4000); err != nil {
		badRequest(c, err.Error())
		return
	}

	out, err := s.Dispatcher.HandleInteraction(c.Request.Context(), interactions.Request{
		TokenID:     req.TokenID,
		RequesterID: req.RequesterID,
		ActionType:  req.ActionType,
		Context:     ctxText,
		ReplyTarget: req.ReplyTarget,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *server) Approve(c *gin.Context) {
	id, ok := uintParam(c, "approvalId")
	if !ok {
		return
	}
	approver, ok := identityQuery(c, "approverIdentity")
	if !ok {
		return
	}
	out, err := s.Dispatcher.Approve(c.Request.Context(), id, approver)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *server) Reject(c *gin.Context) {
	id, ok := uintParam(c, "approvalId")
	if !ok {
		return
	}
	approver, ok := identityQuery(c, "approverIdentity")
	if !ok {
		return
	}
	if err := s.Dispatcher.Reject(c.Request.Context(), id, approver); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Approval rejected"})
}

func (s *server) Pending(c *gin.Context) {
	owner, ok := identityQuery(c, "ownerIdentity")
	if !ok {
		return
	}
	pending, err := s.Queue.Pending(c.Request.Context(), owner)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pending)
}
