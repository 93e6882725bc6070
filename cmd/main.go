package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/talentgate/assessment-api/config"
	"github.com/talentgate/assessment-api/database"
	"github.com/talentgate/assessment-api/internal/controller/candidate"
	"github.com/talentgate/assessment-api/internal/event"
	"github.com/talentgate/assessment-api/internal/logger"
	"github.com/talentgate/assessment-api/internal/model"
	"github.com/talentgate/assessment-api/internal/repository"
	"github.com/talentgate/assessment-api/internal/service"
	"github.com/talentgate/assessment-api/internal/storage"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Candidate Assessment API
// @version 1.0
// @description Test lifecycle and auto-grading engine for candidate assessments: attempt creation with frozen question snapshots, answer and video submission, deterministic grading.
// @contact.name API Support
// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html
// @host localhost:8080
// @BasePath /api/v1
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		// Core application components
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
			NewBlobStore,
			NewVideoAnalysisNotifier,
		),

		// Repositories layer
		fx.Provide(
			repository.NewTestInstanceRepository,
			repository.NewQuestionSnapshotRepository,
			repository.NewQuestionResponseRepository,
			repository.NewVideoResponseRepository,
			repository.NewQuestionTemplateRepository,
			repository.NewQuestionGroupRepository,
			repository.NewReadingTextRepository,
		),

		// Services layer
		fx.Provide(
			service.NewGradingService,
			service.NewTestCreationService,
			service.NewTestLifecycleService,
			service.NewAnswerSubmissionService,
			service.NewVideoResponseService,
			service.NewTimeGuardService,
			service.NewTestQueryService,
		),

		// API controllers layer
		fx.Provide(
			candidate.NewTestController,
			candidate.NewVideoController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

// NewBlobStore picks the video blob backend: MinIO when an endpoint is
// configured, the local filesystem otherwise.
func NewBlobStore(cfg *config.Config) (storage.BlobStore, error) {
	if cfg.Blob.Endpoint == "" {
		log.Warn().Msg("No blob endpoint configured, using local filesystem store")
		return storage.NewFSStore("")
	}
	return storage.NewMinioStore(cfg)
}

// NewVideoAnalysisNotifier picks the analysis hand-off channel: the amqp
// exchange when a broker is configured, log-only otherwise.
func NewVideoAnalysisNotifier(cfg *config.Config) (event.VideoAnalysisNotifier, error) {
	if cfg.Amqp.URL == "" {
		log.Warn().Msg("No amqp broker configured, video-ready notifications will be logged only")
		return event.NewLogNotifier(), nil
	}
	return event.NewAmqpNotifier(cfg.Amqp.URL, cfg.Amqp.Exchange)
}

func NewGinEngine() *gin.Engine {
	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures API routes and manages the server
// lifecycle.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	testCtrl *candidate.TestController,
	videoCtrl *candidate.VideoController,
) {
	api := router.Group("/api/v1")
	{
		api.POST("/tests", testCtrl.CreateTest)
		api.GET("/tests/:test_id", testCtrl.GetTest)
		api.GET("/candidates/:candidate_id/tests", testCtrl.GetCandidateTests)

		api.POST("/tests/:test_id/start", testCtrl.StartTest)
		api.POST("/tests/:test_id/submit", testCtrl.SubmitTest)
		api.POST("/tests/:test_id/answers", testCtrl.SubmitAnswers)
		api.DELETE("/tests/:test_id/responses/:response_id", testCtrl.DeleteResponse)
		api.GET("/tests/:test_id/remaining-time", testCtrl.GetRemainingTime)

		api.POST("/tests/:test_id/videos", videoCtrl.UploadVideo)
		api.DELETE("/tests/:test_id/videos/:video_id", videoCtrl.DeleteVideo)
		api.GET("/tests/:test_id/videos/:video_id/url", videoCtrl.GetPlaybackURL)
	}

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Assessment API server starting on port %s", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.TestInstance{},
		&model.QuestionSnapshot{},
		&model.QuestionResponse{},
		&model.VideoResponse{},
		&model.QuestionTemplate{},
		&model.QuestionGroup{},
		&model.QuestionGroupItem{},
		&model.ReadingText{},
	)
	if err != nil {
		log.Error().Err(err).Msg("Database migration failed")
		return err
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
