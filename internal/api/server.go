package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"anastat/adapters/stats/uncertainty"
	"anastat/app"
	"anastat/ports"
)

// Server is the JSON API surface: analysis runs, the dataset library and
// uncertainty propagation.
type Server struct {
	router      *gin.Engine
	analysis    *app.AnalysisService
	propagation *uncertainty.Engine
	datasets    ports.DatasetRepository
	runs        ports.RunRepository
}

// NewServer wires the API around the analysis service and repositories.
func NewServer(analysis *app.AnalysisService, propagation *uncertainty.Engine, datasets ports.DatasetRepository, runs ports.RunRepository, ginMode string) *Server {
	if ginMode != "" {
		gin.SetMode(ginMode)
	}

	s := &Server{
		router:      gin.New(),
		analysis:    analysis,
		propagation: propagation,
		datasets:    datasets,
		runs:        runs,
	}
	s.router.Use(gin.Recovery(), requestLogger())
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.router.Group("/v1")
	{
		v1.POST("/analyze", s.handleAnalyze)
		v1.POST("/propagate", s.handlePropagate)

		v1.POST("/datasets", s.handleCreateDataset)
		v1.GET("/datasets", s.handleListDatasets)
		v1.GET("/datasets/:id", s.handleGetDataset)
		v1.PUT("/datasets/:id", s.handleUpdateDataset)
		v1.DELETE("/datasets/:id", s.handleDeleteDataset)
		v1.POST("/datasets/:id/pin", s.handlePinDataset)
	}
}

// Run starts the HTTP server on the given port.
func (s *Server) Run(port string) error {
	log.Printf("[API] Listening on :%s", port)
	return s.router.Run(":" + port)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Printf("[API] %s %s -> %d (%s)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}
