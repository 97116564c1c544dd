// Package api serves the simulation over HTTP. The boundary only
// constructs core instances, calls their public operations, and serializes
// results; no simulation logic lives here.
package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/talgya/polisim/internal/api/middleware"
	"github.com/talgya/polisim/internal/api/models"
	"github.com/talgya/polisim/internal/config"
	"github.com/talgya/polisim/internal/counterfactual"
	"github.com/talgya/polisim/internal/emergence"
	"github.com/talgya/polisim/internal/engine"
	"github.com/talgya/polisim/internal/policy"
)

// Server wires the HTTP layer around the simulation core.
type Server struct {
	cfg    *config.Config
	router *gin.Engine
	http   *http.Server
}

// New builds the router and handlers from configuration.
func New(cfg *config.Config) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	s := &Server{cfg: cfg, router: router}

	// Simulation runs are CPU-bound; budget the compute endpoints.
	simLimiter := middleware.NewRateLimiter(120, time.Hour)

	router.GET("/health", s.handleHealth)

	v1 := router.Group("/api/v1")
	{
		v1.GET("/policies", s.handlePolicies)
		v1.POST("/simulate", middleware.RateLimit(simLimiter), s.handleSimulate)
		v1.POST("/compare", middleware.RateLimit(simLimiter), s.handleCompare)
	}

	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Router exposes the handler for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// ListenAndServe blocks until the server stops.
func (s *Server) ListenAndServe() error {
	slog.Info("api listening", "addr", s.http.Addr)
	return s.http.ListenAndServe()
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func (s *Server) handleHealth(g *gin.Context) {
	g.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handlePolicies lists the registered policy kinds with their default
// parameter sets and declared ranges.
func (s *Server) handlePolicies(g *gin.Context) {
	kinds := policy.Kinds()
	out := make([]models.PolicyInfo, 0, len(kinds))
	for _, k := range kinds {
		params, err := policy.Describe(k)
		if err != nil {
			continue
		}
		out = append(out, models.PolicyInfo{Type: string(k), Params: params})
	}
	g.JSON(http.StatusOK, gin.H{"policies": out})
}

func (s *Server) handleSimulate(g *gin.Context) {
	var req models.SimulationRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		badRequest(g, "INVALID_REQUEST", err.Error())
		return
	}
	s.applyDefaults(&req)

	eng, err := engine.New(req.PopulationSize, *req.Seed)
	if err != nil {
		badRequest(g, "INVALID_POPULATION", err.Error())
		return
	}

	// An empty policy_type runs the no-policy baseline.
	if req.PolicyType != "" {
		p, err := policy.FromSpec(req.PolicyType, req.Params)
		if err != nil {
			badRequest(g, "UNKNOWN_POLICY", err.Error())
			return
		}
		eng.AddPolicy(p)
	}

	history := eng.Run(req.Steps)
	detector := emergence.NewDetector(s.cfg.Simulation.DetectorWindow)
	analysis := detector.Analyze(history)
	explanation, recommendations := buildExplanation(analysis, history)

	g.JSON(http.StatusOK, models.SimulationResponse{
		History:         history,
		Analysis:        analysis,
		Neighborhoods:   eng.Env().Snapshot(),
		Explanation:     explanation,
		Recommendations: recommendations,
	})
}

func (s *Server) handleCompare(g *gin.Context) {
	var req models.CompareRequest
	if err := g.ShouldBindJSON(&req); err != nil {
		badRequest(g, "INVALID_REQUEST", err.Error())
		return
	}

	policies := make([]policy.Policy, 0, len(req.Requests))
	for i, r := range req.Requests {
		// An empty policy_type compares against the no-policy baseline.
		if r.PolicyType == "" {
			policies = append(policies, nil)
			continue
		}
		p, err := policy.FromSpec(r.PolicyType, r.Params)
		if err != nil {
			badRequest(g, "UNKNOWN_POLICY", fmt.Sprintf("variant %d: %v", i, err))
			return
		}
		policies = append(policies, p)
	}

	first := req.Requests[0]
	s.applyDefaults(&first)

	analyzer := counterfactual.NewAnalyzer(first.PopulationSize, *first.Seed)
	results, err := analyzer.ComparePolicies(policies, first.Steps)
	if err != nil {
		badRequest(g, "COMPARE_FAILED", err.Error())
		return
	}

	g.JSON(http.StatusOK, models.CompareResponse{
		Results:  results,
		Dominant: analyzer.IdentifyDominance(results),
	})
}

// applyDefaults fills unset request fields from configuration.
func (s *Server) applyDefaults(req *models.SimulationRequest) {
	if req.Steps <= 0 {
		req.Steps = s.cfg.Simulation.DefaultSteps
	}
	if req.PopulationSize == 0 {
		req.PopulationSize = s.cfg.Simulation.DefaultPopulation
	}
	if req.Seed == nil {
		seed := s.cfg.Simulation.DefaultSeed
		req.Seed = &seed
	}
}

func badRequest(g *gin.Context, code, message string) {
	g.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{Code: code, Message: message},
	})
}
