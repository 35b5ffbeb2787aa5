package restapi

import (
	"net/http"

	"asset_dashboard/internal/infrastructure/configloader"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// SetupRouter builds the gin engine with every route of the service.
func SetupRouter(handler *DashboardHandler, cfg *configloader.Config, zapLogger *zap.Logger) *gin.Engine {
	router := gin.New()

	corsConfig := cors.DefaultConfig()
	if len(cfg.Server.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.Server.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	router.Use(cors.New(corsConfig))
	router.Use(ZapLoggerMiddleware(zapLogger.Named("http")))
	router.Use(gin.Recovery())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/networks", handler.GetNetworksHandler)
		v1.GET("/dashboard/:account", handler.GetDashboardHandler)
		v1.DELETE("/dashboard/:account", handler.DeleteDashboardHandler)
		v1.POST("/dashboard/:account/picker", handler.PostPickerHandler)
		v1.GET("/currencies/:account", handler.GetCurrenciesHandler)
	}

	router.GET("/swap", GetSwapIntent)
	router.GET("/swap/:inputCurrency", handler.RedirectToSwap)
	router.GET("/send", RedirectPathToSwapOnly)
	router.GET("/claim", OpenClaimAddressModalAndRedirectToSwap)

	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if cfg.Swagger.Enabled {
		router.StaticFile("/docs/swagger.yaml", cfg.Swagger.SpecPath)
		swaggerURL := ginSwagger.URL("/docs/swagger.yaml")
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, swaggerURL))
	}

	return router
}
