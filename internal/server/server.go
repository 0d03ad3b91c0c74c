// Package server exposes the node registry over HTTP so a host runtime
// can discover and invoke nodes with validated scalar parameters.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/BAIKEMARK/civitai-prompt-stats/internal/logging"
	"github.com/BAIKEMARK/civitai-prompt-stats/internal/nodes"
	"github.com/BAIKEMARK/civitai-prompt-stats/pkg/api"
)

// Version is stamped by the build.
var Version = "dev"

// Server serves the node API.
type Server struct {
	httpServer *http.Server
	rt         *nodes.Runtime
	log        *logging.Logger
}

// New creates a server over an initialized runtime.
func New(rt *nodes.Runtime) *Server {
	return &Server{
		rt:  rt,
		log: logging.Default(),
	}
}

// Routes builds the request handler. Exposed for tests.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/v1/nodes", s.handleNodes)
	mux.HandleFunc("/api/v1/nodes/", s.handleInvoke)
	return s.requestMiddleware(mux)
}

// Start runs the HTTP server until a shutdown signal arrives.
func (s *Server) Start(port int) error {
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // invocations hash large files and page the registry
		IdleTimeout:  60 * time.Second,
	}

	go s.handleShutdown()

	s.log.Infof("node API listening on http://localhost:%d", port)
	if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (s *Server) handleShutdown() {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	s.log.Info("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.log.Errorf("error during shutdown: %v", err)
	}
}

func (s *Server) requestMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)
		start := time.Now()
		next.ServeHTTP(w, r)
		s.log.Debug("request", map[string]any{
			"id":       requestID,
			"method":   r.Method,
			"path":     r.URL.Path,
			"duration": time.Since(start).String(),
		})
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, api.HealthResponse{Status: "ok", Version: Version})
}

func (s *Server) handleNodes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	specs := nodes.List()
	infos := make([]api.NodeInfo, 0, len(specs))
	for _, spec := range specs {
		infos = append(infos, nodeInfo(spec))
	}
	writeJSON(w, http.StatusOK, infos)
}

func (s *Server) handleInvoke(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/api/v1/nodes/")
	if name == "" || strings.Contains(name, "/") {
		writeError(w, http.StatusNotFound, "unknown node")
		return
	}
	spec, ok := nodes.Lookup(name)
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("unknown node: %s", name))
		return
	}

	var req api.InvokeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	params := nodes.Params{
		FileName:       req.FileName,
		TopN:           req.TopN,
		MaxPages:       req.MaxPages,
		Sort:           req.Sort,
		TimeoutSeconds: req.Timeout,
		ForceRefresh:   req.ForceRefresh,
	}
	if req.Retries != nil {
		params.SetRetries(*req.Retries)
	}

	result, err := spec.Run(s.rt, params)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, nodes.ErrInvalidParams) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, api.InvokeResponse{
		Node:         spec.Name,
		Outputs:      result.Values,
		CacheHit:     result.CacheHit,
		PagesFetched: result.PagesFetched,
		PagesFailed:  result.PagesFailed,
	})
}

func nodeInfo(spec nodes.Spec) api.NodeInfo {
	inputs := make([]api.NodeInput, 0, len(spec.Inputs))
	for _, in := range spec.Inputs {
		inputs = append(inputs, api.NodeInput{
			Name:    in.Name,
			Kind:    string(in.Kind),
			Default: in.Default,
			Min:     in.Min,
			Max:     in.Max,
			Options: in.Options,
		})
	}
	return api.NodeInfo{
		Name:        spec.Name,
		DisplayName: spec.DisplayName,
		Category:    spec.Category,
		Inputs:      inputs,
		Outputs:     spec.Outputs,
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, api.ErrorResponse{Error: message})
}
