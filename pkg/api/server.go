package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/config"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/logging"
	"github.com/PRK-Vasista/MLOps-House-Price-Predictor/pkg/models"
)

// Server provides the model serving HTTP API
type Server struct {
	router   *mux.Router
	resolver *Resolver
	cfg      config.ServingConfig
	logger   *logging.Logger
	docs     []byte
}

// NewServer creates a new serving API server. The resolver may still be
// loading or failed; every route except /health reports that state rather
// than serving predictions.
func NewServer(resolver *Resolver, cfg config.ServingConfig, logger *logging.Logger) (*Server, error) {
	s := &Server{
		router:   mux.NewRouter(),
		resolver: resolver,
		cfg:      cfg,
		logger:   logger,
		docs:     renderDocs(),
	}

	if err := s.setupRoutes(); err != nil {
		return nil, err
	}
	return s, nil
}

// Router returns the configured handler, for wrapping with CORS and serving
func (s *Server) Router() http.Handler {
	return s.router
}

// setupRoutes sets up the HTTP routes and middleware
func (s *Server) setupRoutes() error {
	// Add middleware
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.errorRecoveryMiddleware)

	if s.cfg.RateLimit != "" {
		mw, err := newRateLimit(s.cfg.RateLimit)
		if err != nil {
			return err
		}
		s.router.Use(mw)
	}

	if s.cfg.RequestTimeoutSeconds > 0 {
		timeout := time.Duration(s.cfg.RequestTimeoutSeconds) * time.Second
		s.router.Use(TimeoutMiddleware(timeout))
	}

	s.router.HandleFunc("/invocations", s.handlePredict).Methods("POST")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.HandleFunc("/ready", s.handleReady).Methods("GET")
	s.router.HandleFunc("/model", s.handleModel).Methods("GET")
	s.router.HandleFunc("/docs", s.handleDocs).Methods("GET")
	return nil
}

// handleHealth handles health check requests. It reports process liveness
// only, so it answers 200 in every serving state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// handleReady handles readiness check requests
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	state, cause := s.resolver.State()
	if state != StateReady {
		resp := map[string]string{"status": "not ready", "state": string(state)}
		if cause != nil {
			resp["error"] = cause.Error()
		}
		writeJSONResponse(w, http.StatusServiceUnavailable, resp)
		return
	}

	writeJSONResponse(w, http.StatusOK, map[string]string{"status": "ready", "state": string(state)})
}

// handleModel reports which model the server is holding
func (s *Server) handleModel(w http.ResponseWriter, r *http.Request) {
	state, cause := s.resolver.State()

	info := map[string]any{
		"name":  s.cfg.ModelName,
		"alias": s.cfg.ModelAlias,
		"state": string(state),
	}
	if mv, ok := s.resolver.Version(); ok {
		info["version"] = mv.Version
		info["run_id"] = mv.RunID
		info["signature"] = mv.Signature
	}
	if cause != nil {
		info["error"] = cause.Error()
	}

	writeJSONResponse(w, http.StatusOK, info)
}

// handlePredict handles prediction requests. The payload is validated
// against the model signature before any inference runs; predictions come
// back in input row order.
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	model, ok := s.resolver.Model()
	if !ok {
		state, cause := s.resolver.State()
		msg := fmt.Sprintf("model not ready: state is %s", state)
		if cause != nil {
			msg = fmt.Sprintf("%s: %v", msg, cause)
		}
		writeErrorResponse(w, http.StatusServiceUnavailable, msg)
		return
	}

	var req models.PredictRequest
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	payload, err := req.Payload()
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := buildMatrix(payload, model.Signature)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	predictions, err := model.PredictBatch(rows)
	if err != nil {
		writeErrorResponse(w, http.StatusInternalServerError, fmt.Sprintf("prediction failed: %v", err))
		return
	}

	writeJSONResponse(w, http.StatusOK, models.PredictResponse{Predictions: predictions})
}

// handleDocs serves the rendered API documentation
func (s *Server) handleDocs(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(s.docs)
}
