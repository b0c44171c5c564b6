package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/teamconnect/teamconnect/internal/observability"
)

// AdminRouter builds the operator HTTP surface: liveness, metrics and a
// read-only snapshot of the directory. It never mutates directory state.
func (s *Server) AdminRouter(corsOrigins []string) *gin.Engine {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestLogger(log.Logger))
	r.Use(observability.RequestMetricsMiddleware(s.node))
	if origins := normalizeOrigins(corsOrigins); len(origins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: origins,
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.started).String(),
			"service": s.node,
			"users":   s.dir.UserCount(),
		})
	})

	r.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   true,
			"uptime":  time.Since(s.started).String(),
			"service": s.node,
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/directory", func(c *gin.Context) {
		teams, users := s.dir.Snapshot()
		teamNames, statusNames := s.dir.Description()
		c.JSON(http.StatusOK, gin.H{
			"teams":    teams,
			"users":    users,
			"names":    teamNames,
			"statuses": statusNames,
		})
	})

	return r
}

// ServeAdmin runs the admin endpoint; it blocks like gin's Run.
func (s *Server) ServeAdmin(addr string, corsOrigins []string) error {
	return s.AdminRouter(corsOrigins).Run(addr)
}

func normalizeOrigins(in []string) []string {
	out := make([]string, 0, len(in))
	for _, origin := range in {
		v := strings.TrimSpace(origin)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
