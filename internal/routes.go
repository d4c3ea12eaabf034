package internal

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"mediabot/internal/controllers"
	"mediabot/internal/providers"
	"mediabot/internal/structures"
)

func InitRoutes(healthController *controllers.HealthController, conf *structures.Config) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/health", http.HandlerFunc(healthController.Health))
	if conf.Metrics.Enabled {
		routers.Get("/metrics", promhttp.Handler())
	}
	return routers
}
