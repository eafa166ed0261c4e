package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hyperterse/graphgate/core/domain/interfaces"
	"github.com/hyperterse/graphgate/core/infrastructure/logging"
	"github.com/hyperterse/graphgate/core/infrastructure/transport/http/dto"
	"github.com/hyperterse/graphgate/core/infrastructure/transport/http/handlers"
)

// RegisterRoutes registers all HTTP routes
func RegisterRoutes(r chi.Router, gateway interfaces.Gateway) {
	log := logging.New("routes")

	graphql := NewGraphQLHandler(gateway)
	r.Post("/graphql", graphql.ServeHTTP)
	r.Options("/graphql", graphql.ServeHTTP)

	heartbeat := handlers.NewBaseHandler("http:heartbeat")
	r.Get("/heartbeat", func(w http.ResponseWriter, _ *http.Request) {
		heartbeat.WriteSuccess(w, dto.HealthResponse{Success: true})
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	log.Infof("Routes registered: POST /graphql, OPTIONS /graphql, GET /heartbeat, GET /metrics")
}
