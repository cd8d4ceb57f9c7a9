package webserver

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func attachRoutes(r *gin.Engine, d Deps) {
	r.Use(cors.New(corsConfig(d.Config.CORSOrigins)))

	s := &server{Deps: d, sanitizer: newSanitizer()}

	r.GET("/", s.Root)
	r.GET("/healthz", s.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	comp := r.Group("/companions")
	{
		comp.POST("", s.Mint)
		comp.GET("/:tokenId", s.Companion)
		comp.POST("/:tokenId/auto-post", s.AutoPost)
		comp.GET("/:tokenId/schedule", s.ListSchedule)
		comp.POST("/:tokenId/schedule", s.AddSchedule)
		comp.PATCH("/:tokenId/persona", s.UpdatePersona)
		comp.GET("/:tokenId/activity", s.Activity)
	}

	interact := []gin.HandlerFunc{}
	if d.Config.InteractRate > 0 {
		interact = append(interact, RateLimitMiddleware(NewRateLimiter(d.Config.InteractRate, time.Minute)))
	}
	r.POST("/interact", append(interact, s.Interact)...)

	r.POST("/approve/:approvalId", s.Approve)
	r.DELETE("/approve/:approvalId", s.Reject)
	r.GET("/approvals", s.Pending)

	r.GET("/trending", s.Trending)
	r.GET("/marketplace/featured", s.Featured)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
		ExposeHeaders: []string{"Content-Length", requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}
