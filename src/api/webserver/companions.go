package webserver

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/selfai-labs/selfai/src/companions"
)

type mintRequest struct {
	Name         string                `json:"name" binding:"required"`
	Personality  string                `json:"personality" binding:"required"`
	SystemPrompt string                `json:"systemPrompt" binding:"required"`
	OwnerID      int64                 `json:"ownerIdentity" binding:"required"`
	AccessTier   companions.AccessTier `json:"accessTier"`
	Signature    string                `json:"signature" binding:"required"`
}

// Mint registers a companion. The signature is required but not verified here.
func (s *server) Mint(c *gin.Context) {
	var req mintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	fields := []struct {
		name     string
		value    *string
		min, max int
	}{
		{"name", &req.Name, 1, 50},
		{"personality", &req.Personality, 10, 500},
		{"systemPrompt", &req.SystemPrompt, 20, 2000},
	}
	for _, f := range fields {
		v, err := s.plain(f.name, *f.value)
		if err != nil {
			s.fail(c, err)
			return
		}
		if err := checkLen(f.name, v, f.min, f.max); err != nil {
			badRequest(c, err.Error())
			return
		}
		*f.value = v
	}
	if req.AccessTier == 0 {
		req.AccessTier = companions.TierPrivate
	}

	id, err := s.Registry.Create(req.Name, req.Personality, req.SystemPrompt, req.OwnerID, req.AccessTier)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.Logger.Info().Uint64("token_id", id).Int64("owner", req.OwnerID).Msg("companion minted")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"tokenId": id,
		"message": fmt.Sprintf("Successfully minted %s as SelfAI #%d", req.Name, id),
	})
}

func (s *server) Companion(c *gin.Context) {
	id, ok := uintParam(c, "tokenId")
	if !ok {
		return
	}
	comp, err := s.Registry.Get(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, struct {
		companions.Companion
		CanInteract bool `json:"canInteract"`
	}{comp, true})
}

func (s *server) AutoPost(c *gin.Context) {
	id, ok := uintParam(c, "tokenId")
	if !ok {
		return
	}
	requester, ok := identityQuery(c, "requesterIdentity")
	if !ok {
		return
	}
	enabled, err := strconv.ParseBool(c.Query("enabled"))
	if err != nil {
		badRequest(c, "enabled must be true or false")
		return
	}

	if err := s.Registry.SetAutoPost(id, requester, enabled); err != nil {
		s.fail(c, err)
		return
	}
	state := "disabled"
	if enabled {
		state = "enabled"
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Auto-post " + state})
}

type scheduleRequest struct {
	RequesterID int64                 `json:"requesterIdentity"`
	Time        string                `json:"time"`
	ActionType  companions.ActionType `json:"actionType"`
	Context     string                `json:"context"`
}

func (s *server) ListSchedule(c *gin.Context) {
	id, ok := uintParam(c, "tokenId")
	if !ok {
		return
	}
	entries, err := s.Schedule.Entries(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

// AddSchedule takes a JSON body; query parameters fill fields the body leaves empty.
func (s *server) AddSchedule(c *gin.Context) {
	id, ok := uintParam(c, "tokenId")
	if !ok {
		return
	}

	var req scheduleRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	if req.RequesterID == 0 {
		v, ok := identityQuery(c, "requesterIdentity")
		if !ok {
			return
		}
		req.RequesterID = v
	}
	if req.Time == "" {
		req.Time = c.Query("time")
	}
	if req.ActionType == 0 && c.Query("actionType") != "" {
		a, err := companions.ParseActionType(c.Query("actionType"))
		if err != nil {
			s.fail(c, err)
			return
		}
		req.ActionType = a
	}
	if req.Context == "" {
		req.Context = c.Query("context")
	}

	actionContext, err := s.plain("context", req.Context)
	if err != nil {
		s.fail(c, err)
		return
	}
	entry := companions.ScheduleEntry{Time: req.Time, ActionType: req.ActionType, Context: actionContext}
	if err := s.Schedule.Append(id, req.RequesterID, entry); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Added to schedule"})
}

type personaRequest struct {
	RequesterID int64    `json:"requesterIdentity" binding:"required"`
	Tone        string   `json:"tone"`
	Expertise   []string `json:"expertise"`
}

func (s *server) UpdatePersona(c *gin.Context) {
	id, ok := uintParam(c, "tokenId")
	if !ok {
		return
	}
	var req personaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	tone, err := s.plain("tone", req.Tone)
	if err != nil {
		s.fail(c, err)
		return
	}
	if tone != "" {
		if err := checkLen("tone", tone, 1, 50); err != nil {
			badRequest(c, err.Error())
			return
		}
	}
	var expertise []string
	for _, e := range req.Expertise {
		tag, err := s.plain("expertise", e)
		if err != nil {
			s.fail(c, err)
			return
		}
		if tag != "" {
			expertise = append(expertise, strings.ToLower(tag))
		}
	}
	if len(expertise) > 10 {
		badRequest(c, "at most 10 expertise tags")
		return
	}

	if err := s.Registry.UpdatePersona(id, req.RequesterID, tone, expertise); err != nil {
		s.fail(c, err)
		return
	}
	comp, err := s.Registry.Get(id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, comp)
}

func (s *server) Activity(c *gin.Context) {
	id, ok := uintParam(c, "tokenId")
	if !ok {
		return
	}
	if _, err := s.Registry.Get(id); err != nil {
		s.fail(c, err)
		return
	}
	entries, err := s.Ledger.Recent(c.Request.Context(), id, intQuery(c, "limit"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (s *server) Featured(c *gin.Context) {
	c.JSON(http.StatusOK, s.Registry.ListFeatured())
}
