package server

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultAllowOrigins are used when Config.AllowOrigins is empty.
var DefaultAllowOrigins = []string{
	"http://localhost:8050",
	"http://127.0.0.1:8050",
	"http://localhost:3000",
	"http://127.0.0.1:3000",
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	origins := s.origins
	if len(origins) == 0 {
		origins = DefaultAllowOrigins
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "X-Requested-With"},
		MaxAge:       12 * time.Hour,
	}))

	router.GET("/healthcheck", s.healthCheck)
	if reg := s.metrics.Registry(); reg != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	// Record endpoints, shaped like the upstream record API.
	router.GET("/authors", s.listAuthors)
	router.GET("/research_authors", s.listAuthorships)
	router.GET("/researches", s.listPublications)
	router.GET("/campuses", s.listCampuses)
	router.GET("/colleges", s.listColleges)
	router.GET("/programs", s.listPrograms)
	router.GET("/author_research/:id", s.authorResearch)

	api := router.Group("/api")
	{
		api.GET("/stats", s.viewStats)
		api.GET("/authors", s.viewAuthors)
		api.GET("/years", s.viewYears)
		api.GET("/filter", s.filterOptions)
		api.GET("/aggregate", s.aggregateQuery)
		api.POST("/rebuild", s.rebuild)
	}

	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}
