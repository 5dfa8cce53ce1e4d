package server

import (
	_ "embed"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"postsmith/internal/database"
	"postsmith/internal/notify"
	"postsmith/internal/pipeline"
)

//go:embed index.html
var indexHTML []byte

const defaultRunTimeout = 2 * time.Minute

// Server exposes the pipeline and run history over HTTP.
type Server struct {
	pipeline   *pipeline.Pipeline
	db         *database.Database
	notifier   *notify.TelegramNotifier
	runTimeout time.Duration
	log        *slog.Logger
}

func New(
	p *pipeline.Pipeline,
	db *database.Database,
	notifier *notify.TelegramNotifier,
	runTimeout time.Duration,
	log *slog.Logger,
) *Server {
	if runTimeout <= 0 {
		runTimeout = defaultRunTimeout
	}

	return &Server{
		pipeline:   p,
		db:         db,
		notifier:   notifier,
		runTimeout: runTimeout,
		log:        log,
	}
}

func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", indexHTML)
	})

	api := r.Group("/api")
	{
		api.POST("/posts", s.handleGeneratePost)
		api.GET("/runs", s.handleListRuns)
		api.GET("/topics", s.handleListTopics)
		api.POST("/topics", s.handleAddTopic)
		api.DELETE("/topics/:id", s.handleRemoveTopic)
	}

	return r
}
