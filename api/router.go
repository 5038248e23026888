package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/saqibullah/symptom-disease-predictor/internal/app"
)

// RouterOptions configures NewRouter. Metrics and MetricsHandler are optional;
// /metrics is mounted only when MetricsHandler is set.
type RouterOptions struct {
	App            *app.App
	Logger         *slog.Logger
	AllowedOrigins []string
	Metrics        RequestObserver
	MetricsHandler http.Handler
	Swagger        bool
}

func NewRouter(opts RouterOptions) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	r := gin.New()
	r.Use(withRequestID())
	r.Use(withRequestLog(log))
	r.Use(gin.CustomRecovery(recovered(log)))
	// Counted before CORS so aborted preflights are recorded too.
	if opts.Metrics != nil {
		r.Use(withMetrics(opts.Metrics))
	}
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	h := NewHandlers(opts.App, log)
	r.POST("/predict", h.PredictHandler)
	r.POST("/extract", h.ExtractHandler)
	r.GET("/symptoms", h.SymptomsHandler)
	r.GET("/health", h.HealthHandler)

	if opts.MetricsHandler != nil {
		r.GET("/metrics", gin.WrapH(opts.MetricsHandler))
	}
	if opts.Swagger {
		r.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"))))
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", HeaderRequestID},
		ExposeHeaders: []string{HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
