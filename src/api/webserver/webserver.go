// Package webserver exposes the companion service over HTTP.
package webserver

import (
	"github.com/gin-gonic/gin"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/selfai-labs/selfai/src/approvals"
	"github.com/selfai-labs/selfai/src/companions"
	"github.com/selfai-labs/selfai/src/config"
	"github.com/selfai-labs/selfai/src/interactions"
	"github.com/selfai-labs/selfai/src/ledger"
	"github.com/selfai-labs/selfai/src/metrics"
	"github.com/selfai-labs/selfai/src/schedule"
	"github.com/selfai-labs/selfai/src/trending"
)

// Deps are the services behind the routes. Trends may be nil.
type Deps struct {
	Config     config.Config
	Logger     zerolog.Logger
	Registry   *companions.Registry
	Schedule   *schedule.Store
	Queue      *approvals.Queue
	Dispatcher *interactions.Dispatcher
	Trends     *trending.Reporter
	Ledger     ledger.Recorder
}

func New(d Deps) *gin.Engine {
	metrics.RegisterMetrics()

	g := gin.New()
	g.Use(gin.Recovery(), requestID(), requestLogger(d.Logger), requestMetrics())
	attachRoutes(g, d)
	return g
}

type server struct {
	Deps
	sanitizer *bluemonday.Policy
}
