package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const version = "1.0.0"

func (s *server) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"name":        "SelfAI API",
		"version":     version,
		"description": "Tokenized AI companions for Farcaster",
		"endpoints": gin.H{
			"mint":      "POST /companions",
			"companion": "GET /companions/{tokenId}",
			"interact":  "POST /interact",
			"approve":   "POST /approve/{approvalId}",
			"approvals": "GET /approvals",
			"trending":  "GET /trending",
			"featured":  "GET /marketplace/featured",
		},
	})
}

func (s *server) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Trending never fails; an unreachable source yields an empty list.
func (s *server) Trending(c *gin.Context) {
	c.JSON(http.StatusOK, s.Trends.FetchTrending(c.Request.Context(), intQuery(c, "topN")))
}
