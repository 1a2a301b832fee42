package handlers

import (
	"archive-twin/internal/config"
	"archive-twin/internal/services"

	"github.com/gin-gonic/gin"
)

// Services bundles everything the HTTP layer depends on.
type Services struct {
	Stats          services.IStatsService
	Trends         services.ITrendService
	Data           services.IDataService
	Rooms          services.IRoomService
	Automation     services.IAutomationService
	Recommendation services.IRecommendationService
	Insights       services.IInsightService
	Health         services.IHealthService
}

// NewRouter assembles the gin engine with every route registered. Every
// route, the health probe included, sits behind the API key middleware.
func NewRouter(cfg config.ServerConfig, svc Services) *gin.Engine {
	router := gin.Default()
	auth := APIKeyAuth(cfg)

	NewStatsHandler(svc.Stats).RegisterRoutes(router, auth)
	NewTrendHandler(svc.Trends).RegisterRoutes(router, auth)
	NewDataHandler(svc.Data, svc.Health).RegisterRoutes(router, auth)
	NewRoomHandler(svc.Rooms).RegisterRoutes(router, auth)
	NewAutomationHandler(svc.Automation).RegisterRoutes(router, auth)
	NewRecommendationHandler(svc.Recommendation).RegisterRoutes(router, auth)
	NewInsightHandler(svc.Insights).RegisterRoutes(router, auth)
	NewSystemHandler(svc.Health).RegisterRoutes(router, auth)

	return router
}
