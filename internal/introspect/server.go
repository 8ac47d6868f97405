// Package introspect serves the read-only HTTP surface operators use to
// watch a running horusd process: liveness, Prometheus scraping, and JSON
// snapshots of node state and topic bindings. Built on the same
// gin+gin-contrib/cors stack the teacher's server package wires up, with
// sonic in place of gin's default encoding/json for the snapshot endpoints.
package introspect

import (
	"context"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/horus-rt/horus/internal/config"
	"github.com/horus-rt/horus/internal/logging"
	"github.com/horus-rt/horus/internal/metrics"
	"github.com/horus-rt/horus/internal/scheduler"
	"github.com/horus-rt/horus/internal/topic"
)

// NodeSource is the subset of *scheduler.Scheduler the introspection server
// reads from. Defined as an interface so tests can supply a fake scheduler.
type NodeSource interface {
	Nodes() []scheduler.NodeStatus
	RunID() uuid.UUID
}

// Server serves HORUS's introspection endpoints over HTTP.
type Server struct {
	engine   *gin.Engine
	http     *http.Server
	log      *logging.Logger
	sched    NodeSource
	registry *topic.Registry
	metrics  *metrics.Metrics
}

// New builds an introspection Server bound to addr. metrics may be nil, in
// which case no /metrics route is registered.
func New(cfg config.IntrospectConfig, log *logging.Logger, sched NodeSource, registry *topic.Registry, m *metrics.Metrics) *Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}))

	s := &Server{
		engine:   engine,
		log:      log,
		sched:    sched,
		registry: registry,
		metrics:  m,
	}

	engine.GET("/healthz", s.handleHealthz)
	engine.GET("/nodes", s.handleNodes)
	engine.GET("/topics", s.handleTopics)
	if m != nil {
		engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.Registry(), promhttp.HandlerOpts{})))
	}

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving HTTP until the server is shut down or an
// unrecoverable listener error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("introspection server listening", zap.String("addr", s.http.Addr))
	err := s.http.ListenAndServe()
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown gracefully stops the HTTP listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func renderJSON(c *gin.Context, status int, v any) {
	body, err := sonic.Marshal(v)
	if err != nil {
		c.Data(http.StatusInternalServerError, "application/json", []byte(`{"error":"encoding failure"}`))
		return
	}
	c.Data(status, "application/json; charset=utf-8", body)
}

func (s *Server) handleHealthz(c *gin.Context) {
	renderJSON(c, http.StatusOK, gin.H{
		"status": "ok",
		"run_id": s.sched.RunID().String(),
	})
}

type nodeView struct {
	Name             string   `json:"name"`
	Priority         int      `json:"priority"`
	State            string   `json:"state"`
	Crashed          bool     `json:"crashed"`
	UptimeNs         int64    `json:"uptime_ns"`
	PublishedTopics  []string `json:"published_topics"`
	SubscribedTopics []string `json:"subscribed_topics"`
}

func (s *Server) handleNodes(c *gin.Context) {
	statuses := s.sched.Nodes()
	views := make([]nodeView, len(statuses))
	for i, st := range statuses {
		views[i] = nodeView{
			Name:             st.Name,
			Priority:         st.Priority,
			State:            st.State.String(),
			Crashed:          st.Crashed,
			UptimeNs:         st.UptimeNs,
			PublishedTopics:  st.PublishedTopics,
			SubscribedTopics: st.SubscribedTopics,
		}
	}
	renderJSON(c, http.StatusOK, gin.H{"run_id": s.sched.RunID().String(), "nodes": views})
}

type topicView struct {
	Name         string `json:"name"`
	TypeID       int    `json:"type_id"`
	Subscribers  int    `json:"subscribers"`
	HasPublisher bool   `json:"has_publisher"`
}

func (s *Server) handleTopics(c *gin.Context) {
	names := s.registry.Names()
	views := make([]topicView, 0, len(names))
	for _, name := range names {
		typeID, subs, hasPub, ok := s.registry.Describe(name)
		if !ok {
			continue
		}
		views = append(views, topicView{
			Name:         name,
			TypeID:       int(typeID),
			Subscribers:  subs,
			HasPublisher: hasPub,
		})
	}
	renderJSON(c, http.StatusOK, gin.H{"run_id": s.sched.RunID().String(), "topics": views})
}
