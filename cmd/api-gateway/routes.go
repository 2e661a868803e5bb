package main

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/iep-hero-api/api/swagger"
	"github.com/noah-isme/iep-hero-api/internal/handler"
	"github.com/noah-isme/iep-hero-api/internal/middleware"
	"github.com/noah-isme/iep-hero-api/internal/service"
	"github.com/noah-isme/iep-hero-api/pkg/config"
	"github.com/noah-isme/iep-hero-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/iep-hero-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/iep-hero-api/pkg/middleware/requestid"
)

type routeDeps struct {
	identity      *service.IdentityService
	metrics       *service.MetricsService
	db            handler.Pinger
	accommodation *service.AccommodationService
	sessions      *service.SessionService
	reviews       *service.ReviewService
	advocates     *service.AdvocateService
	students      *service.StudentService
	exports       *service.ExportService

	autismProfiles *service.AutismProfileService
}

func newRouter(cfg *config.Config, logr *zap.Logger, deps routeDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.metrics))

	ops := handler.NewMetricsHandler(deps.metrics, deps.db)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.WithResponseMeta())

	exportHandler := handler.NewExportHandler(deps.exports)
	api.GET("/exports/:token", exportHandler.Download)

	secured := api.Group("")
	secured.Use(middleware.JWT(deps.identity))

	auth := handler.NewAuthHandler(deps.identity)
	secured.GET("/auth/me", auth.Me)
	secured.GET("/auth/users/:id", auth.User)

	accommodations := handler.NewAccommodationHandler(deps.accommodation)
	secured.POST("/accommodations/generate", accommodations.Generate)

	sessions := handler.NewSessionHandler(deps.sessions)
	secured.GET("/sessions/:id", middleware.RBAC(middleware.Self), sessions.List)
	secured.GET("/session/:id", sessions.Detail)
	secured.POST("/session/:id/comments", sessions.AddComment)
	secured.PUT("/session/:id/approval", sessions.SetApproval)
	secured.GET("/session/:id/legal-analysis", sessions.LegalAnalysis)
	secured.POST("/session/:id/export", exportHandler.Export)

	hero := handler.NewHeroHandler(deps.reviews, deps.advocates)
	secured.POST("/hero/advanced-review", hero.AdvancedReview)
	secured.GET("/hero/advocate-recommendations/:id", hero.AdvocateRecommendations)

	students := handler.NewStudentHandler(deps.students)
	secured.GET("/students", students.List)
	secured.POST("/students", students.Create)
	secured.GET("/students/:id", students.Get)

	autismProfiles := handler.NewAutismProfileHandler(deps.autismProfiles)
	secured.POST("/autism-profiles/generate", autismProfiles.Generate)
	secured.GET("/autism-profiles", autismProfiles.List)
	secured.GET("/autism-profiles/:id", autismProfiles.Get)
	secured.POST("/autism-profiles/:id/share", autismProfiles.Share)

	return r
}
