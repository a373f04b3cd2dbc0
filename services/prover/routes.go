// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package prover

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"
)

// RegisterRoutes registers all prover routes with the router.
//
// Inputs:
//
//	rg - Gin router group (typically /v1)
//	handlers - The handlers instance
//
// Endpoints:
//
//	POST   /v1/prover/sessions                - Start a proof session
//	GET    /v1/prover/sessions/:id            - Get a session and its tree
//	DELETE /v1/prover/sessions/:id            - Discard a session
//	POST   /v1/prover/sessions/:id/apply      - Apply a tactic to one node
//	POST   /v1/prover/sessions/:id/expand     - Apply a tactic to every open leaf
//	POST   /v1/prover/sessions/:id/abandon    - Abandon a leaf
//	POST   /v1/prover/sessions/:id/register   - Register the proved theorem
//	GET    /v1/prover/theorems                - List theorems
//	GET    /v1/prover/theorems/:id            - Get a theorem
//	POST   /v1/prover/scripts/check           - Replay a proof script
//	GET    /v1/prover/health                  - Health check
func RegisterRoutes(rg *gin.RouterGroup, handlers *Handlers) {
	prover := rg.Group("/prover")
	{
		prover.POST("/sessions", handlers.HandleCreateSession)
		prover.GET("/sessions/:id", handlers.HandleGetSession)
		prover.DELETE("/sessions/:id", handlers.HandleDeleteSession)
		prover.POST("/sessions/:id/apply", handlers.HandleApply)
		prover.POST("/sessions/:id/expand", handlers.HandleExpand)
		prover.POST("/sessions/:id/abandon", handlers.HandleAbandon)
		prover.POST("/sessions/:id/register", handlers.HandleRegister)

		prover.GET("/theorems", handlers.HandleListTheorems)
		prover.GET("/theorems/:id", handlers.HandleGetTheorem)

		prover.POST("/scripts/check", handlers.HandleCheckScript)

		prover.GET("/health", handlers.HandleHealth)
	}
}

// RouterConfig configures NewRouter.
type RouterConfig struct {
	// RateLimit is the request rate in requests per second. Zero disables
	// limiting.
	RateLimit float64
	RateBurst int

	// Gatherer serves /metrics. Nil disables the endpoint.
	Gatherer prometheus.Gatherer

	// ServiceName enables otelgin request spans when non-empty.
	ServiceName string

	// TracerProvider for request spans. Nil uses the global provider.
	TracerProvider trace.TracerProvider

	Logger *slog.Logger
}

// NewRouter builds a gin engine serving the prover API under /v1.
func NewRouter(handlers *Handlers, cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(cfg.Logger))
	if cfg.ServiceName != "" {
		var opts []otelgin.Option
		if cfg.TracerProvider != nil {
			opts = append(opts, otelgin.WithTracerProvider(cfg.TracerProvider))
		}
		router.Use(otelgin.Middleware(cfg.ServiceName, opts...))
	}

	if cfg.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	v1 := router.Group("/v1")
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		v1.Use(RateLimit(cfg.RateLimit, burst))
	}
	RegisterRoutes(v1, handlers)
	return router
}
