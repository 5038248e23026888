package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/saqibullah/symptom-disease-predictor/api"
	"github.com/saqibullah/symptom-disease-predictor/config"
	_ "github.com/saqibullah/symptom-disease-predictor/docs/swagger"
	"github.com/saqibullah/symptom-disease-predictor/internal/app"
	"github.com/saqibullah/symptom-disease-predictor/internal/artifact"
	"github.com/saqibullah/symptom-disease-predictor/internal/httpserver"
	"github.com/saqibullah/symptom-disease-predictor/internal/metrics"
	"github.com/saqibullah/symptom-disease-predictor/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.Any("err", err))
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, true, cfg.Server.Environment)
	if cfg.Server.Environment == config.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var collector *metrics.Collector
	var opts []app.Option
	if cfg.Metrics.Enabled {
		collector = metrics.New()
		opts = append(opts, app.WithObserver(collector))
	}

	predictor, err := loadApp(ctx, cfg, log, opts...)
	if err != nil {
		log.Error("failed to load model", slog.Any("err", err))
		os.Exit(1)
	}

	routerOpts := api.RouterOptions{
		App:            predictor,
		Logger:         log,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Swagger:        cfg.Swagger.Enabled,
	}
	if collector != nil {
		collector.SetVocabularySize(predictor.SymptomCount())
		routerOpts.Metrics = collector
		routerOpts.MetricsHandler = collector.Handler()
	}

	srv, err := httpserver.New(cfg.Addr(), api.NewRouter(routerOpts), log)
	if err != nil {
		log.Error("failed to create server", slog.Any("err", err))
		os.Exit(1)
	}

	log.Info("disease prediction API is running",
		slog.String("addr", cfg.Addr()),
		slog.Int("symptoms", predictor.SymptomCount()))

	runErr := srv.Run(ctx)
	if err := predictor.Close(); err != nil {
		log.Warn("failed to release model", slog.Any("err", err))
	}
	if runErr != nil {
		log.Error("server stopped", slog.Any("err", runErr))
		os.Exit(1)
	}
	log.Info("server stopped")
}

func loadApp(ctx context.Context, cfg *config.Config, log *slog.Logger, opts ...app.Option) (*app.App, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.ArtifactTimeout())
	defer cancel()

	fetcher := artifact.NewFetcher(artifact.Config{
		Timeout: cfg.ArtifactTimeout(),
		S3: artifact.S3Config{
			Region:       cfg.S3.Region,
			Endpoint:     cfg.S3.Endpoint,
			UsePathStyle: cfg.S3.UsePathStyle,
		},
		MinIO: artifact.MinIOConfig{
			Endpoint:  cfg.MinIO.Endpoint,
			AccessKey: cfg.MinIO.AccessKey,
			SecretKey: cfg.MinIO.SecretKey,
			UseSSL:    cfg.MinIO.UseSSL,
		},
	}, log)

	return app.Load(ctx, app.Sources{
		Vocabulary:      cfg.Artifacts.Vocabulary,
		Model:           cfg.Artifacts.Model,
		ONNXLibraryPath: cfg.ONNX.LibraryPath,
	}, fetcher, log, opts...)
}
