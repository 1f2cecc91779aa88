// Package remote carries route.Oracle queries over HTTP, on TCP or a unix socket.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/plan-systems/klog"
	"github.com/rapidroute/rapidroute-go/route"
)

const (
	PathsRoute  = "/paths"
	FanOutRoute = "/fanout"
	ResetRoute  = "/reset"
)

type pathsResponse struct {
	Paths []route.Path `json:"paths"`
}

type fanOutResponse struct {
	Nodes []route.NodeID `json:"nodes"`
}

type resetRequest struct {
	Node route.NodeID `json:"node"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type ServerConfig struct {
	Listener net.Listener
	Oracle   route.Oracle
}

// Server answers oracle queries until its context is canceled.
type Server struct {
	done chan struct{}
}

func NewServer(ctx context.Context, cfg ServerConfig) *Server {
	srv := &http.Server{
		Handler: NewHandler(cfg.Oracle),

		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	s := &Server{
		done: make(chan struct{}),
	}
	go s.serve(cfg.Listener, srv)
	go s.waitForShutdown(ctx, srv)

	klog.Infof("remote: serving oracle on %v", cfg.Listener.Addr())
	return s
}

// Wait blocks until the server has stopped.
func (s *Server) Wait() {
	<-s.done
}

func (s *Server) waitForShutdown(ctx context.Context, srv *http.Server) {
	select {
	case <-s.done:
		return
	case <-ctx.Done():
		_ = srv.Close()
	}
}

func (s *Server) serve(ln net.Listener, srv *http.Server) {
	defer close(s.done)

	if err := srv.Serve(ln); err != nil {
		if errors.Is(err, net.ErrClosed) || errors.Is(err, http.ErrServerClosed) {
			klog.Infof("remote: oracle server shutting down")
		} else {
			klog.Errorf("remote: oracle server shutting down due to error: %v", err)
		}
	}
}

// NewHandler exposes o over HTTP.  Queries are passed to o one at a time.
func NewHandler(o route.Oracle) http.Handler {
	h := &handler{oracle: o}

	r := mux.NewRouter()
	r.HandleFunc(PathsRoute, h.handlePaths).Methods("GET")
	r.HandleFunc(FanOutRoute, h.handleFanOut).Methods("GET")
	r.HandleFunc(ResetRoute, h.handleReset).Methods("POST")
	return r
}

type handler struct {
	mu     sync.Mutex
	oracle route.Oracle
}

func (h *handler) handlePaths(w http.ResponseWriter, req *http.Request) {
	q := req.URL.Query()
	maxDepth, err := strconv.Atoi(q.Get("max_depth"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	h.mu.Lock()
	paths, err := h.oracle.EnumeratePaths(route.NodeID(q.Get("src")), route.NodeID(q.Get("snk")), maxDepth)
	h.mu.Unlock()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if paths == nil {
		paths = []route.Path{}
	}
	writeJSON(w, pathsResponse{Paths: paths})
}

func (h *handler) handleFanOut(w http.ResponseWriter, req *http.Request) {
	node := route.NodeID(req.URL.Query().Get("node"))

	h.mu.Lock()
	nodes, err := h.oracle.FanOut(node)
	h.mu.Unlock()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if nodes == nil {
		nodes = []route.NodeID{}
	}
	writeJSON(w, fanOutResponse{Nodes: nodes})
}

func (h *handler) handleReset(w http.ResponseWriter, req *http.Request) {
	var body resetRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	h.mu.Lock()
	err := h.oracle.ResetTo(body.Node)
	h.mu.Unlock()
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, route.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, route.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		klog.Warningf("remote: failed to marshal response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	if status == http.StatusInternalServerError {
		klog.Errorf("remote: %v", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
}
