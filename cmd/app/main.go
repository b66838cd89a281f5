package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"dossier/cmd/fx/account_fx"
	"dossier/cmd/fx/completion_fx"
	"dossier/cmd/fx/controllers_fx"
	"dossier/cmd/fx/dashboard_fx"
	"dossier/cmd/fx/db_fx"
	"dossier/cmd/fx/feedback_fx"
	"dossier/cmd/fx/logger_fx"
	"dossier/cmd/fx/mail_fx"
	"dossier/cmd/fx/memcache_fx"
	"dossier/cmd/fx/project_fx"
	"dossier/cmd/fx/reference_fx"
	"dossier/cmd/fx/wizard_fx"
	"dossier/internal/api/controllers"
	"dossier/pkg/middleware"
	"dossier/pkg/utils"
)

func main() {
	if err := utils.LoadEnv(); err != nil {
		log.Fatalf("load .env: %v", err)
	}

	app := fx.New(
		logger_fx.Module,
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger.Named("fx")}
		}),
		db_fx.Module,
		completion_fx.Module,
		memcache_fx.Module,
		mail_fx.Module,
		account_fx.Module,
		project_fx.Module,
		reference_fx.Module,
		dashboard_fx.Module,
		feedback_fx.Module,
		wizard_fx.Module,
		controllers_fx.Module,

		fx.Provide(ProvideRouter),
		fx.Invoke(StartServer),
	)

	app.Run()
}

func StartServer(lc fx.Lifecycle, engine *gin.Engine, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              ":" + utils.GetEnvWithDefault("PORT", "8080"),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info("starting HTTP server", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Fatal("HTTP server failed", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping HTTP server")
			return srv.Shutdown(ctx)
		},
	})
}

func ProvideRouter(
	logger *zap.Logger,
	accountController *controllers.AccountController,
	projectController *controllers.ProjectController,
	wizardController *controllers.WizardController,
	dashboardController *controllers.DashboardController,
	feedbackController *controllers.FeedbackController) *gin.Engine {

	if utils.GetEnvWithDefault("GIN_MODE", "") == gin.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.TraceIDMiddleware())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORSMiddleware(strings.Split(utils.GetEnvWithDefault("CORS_ORIGINS", "*"), ",")))

	RegisterRoutes(r, accountController, projectController, wizardController, dashboardController, feedbackController)

	return r
}

func RegisterRoutes(r *gin.Engine,
	accountController *controllers.AccountController,
	projectController *controllers.ProjectController,
	wizardController *controllers.WizardController,
	dashboardController *controllers.DashboardController,
	feedbackController *controllers.FeedbackController) {

	r.GET("/healthz", func(c *gin.Context) {
		utils.RespondSuccess(c, gin.H{"status": "ok"}, "")
	})

	accounts := r.Group("/accounts")
	accounts.POST("/register", accountController.Register)
	accounts.POST("/login", accountController.Login)
	accounts.POST("/forgot-password", accountController.ForgotPassword)
	accounts.POST("/reset-password", accountController.ResetPassword)
	accounts.GET("/me", middleware.JWTAuthMiddleware(), accountController.Me)

	r.GET("/dashboard", middleware.JWTAuthMiddleware(), dashboardController.GetDashboard)
	r.GET("/feedback", middleware.JWTAuthMiddleware(), middleware.RoleMiddleware("admin"), feedbackController.ListFeedback)

	projects := r.Group("/projects", middleware.JWTAuthMiddleware())
	projects.POST("", projectController.CreateProject)
	projects.GET("", projectController.ListProjects)

	project := projects.Group("/:id")
	project.GET("", projectController.GetProject)
	project.GET("/sections", projectController.ListSections)
	project.GET("/export", projectController.Export)
	project.POST("/feedback", feedbackController.AddFeedback)
	controllers.RegisterWizardRoutes(project, wizardController)
}
