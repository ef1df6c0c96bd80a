// Package server exposes the daemon's boundary operations over a local
// HTTP/JSON API, with Server-Sent Events for the streaming operations.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"

	"genomed/internal/genomed/files"
	"genomed/internal/genomed/mcp"
	"genomed/internal/genomed/stream"
	"genomed/internal/genomed/watch"
	"genomed/pkg/config"
	pkgerrors "genomed/pkg/errors"
	"genomed/pkg/logger"
)

// Server routes boundary requests to the files service, streaming sessions,
// the file watcher, and the MCP lifecycle manager. Every response is a
// structured success/failure body; nothing propagates as an unhandled fault.
type Server struct {
	cfg     *config.Config
	files   *files.Service
	manager *mcp.Manager
	logger  *logger.Logger
}

func New(cfg *config.Config, filesSvc *files.Service, manager *mcp.Manager) *Server {
	return &Server{
		cfg:     cfg,
		files:   filesSvc,
		manager: manager,
		logger:  logger.WithField("component", "api-server"),
	}
}

// Handler returns the daemon's route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/files/read", s.handleReadWhole)
	mux.HandleFunc("GET /api/files/stream", s.handleStream)
	mux.HandleFunc("GET /api/files/info", s.handleInfo)
	mux.HandleFunc("GET /api/files/watch", s.handleWatch)

	mux.HandleFunc("POST /api/mcp/start", s.handleMCPStart)
	mux.HandleFunc("POST /api/mcp/stop", s.handleMCPStop)
	mux.HandleFunc("GET /api/mcp/status", s.handleMCPStatus)

	return mux
}

type readRequest struct {
	Path string `json:"path"`
}

type readResponse struct {
	Success bool   `json:"success"`
	Data    string `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleReadWhole(w http.ResponseWriter, r *http.Request) {
	var req readRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Path == "" {
		writeJSON(w, http.StatusBadRequest, readResponse{Success: false, Error: "missing or invalid path"})
		return
	}

	log := s.logger.WithFields("operation", "read-file-whole", "path", req.Path)

	data, err := s.files.ReadWhole(req.Path)
	if err != nil {
		log.Warn("whole read failed", "error", err)
		writeJSON(w, http.StatusOK, readResponse{Success: false, Error: err.Error()})
		return
	}

	log.Debug("whole read served", "size", len(data))
	writeJSON(w, http.StatusOK, readResponse{Success: true, Data: string(data)})
}

func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing path parameter"})
		return
	}

	info, err := s.files.Info(path)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, os.ErrNotExist) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, info)
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing path parameter"})
		return
	}

	chunkSize := s.cfg.Stream.DefaultChunkSize
	if raw := r.URL.Query().Get("chunkSize"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "chunkSize must be a positive integer"})
			return
		}
		chunkSize = parsed
	}

	log := s.logger.WithFields("operation", "read-file-stream", "path", path, "chunkSize", chunkSize)

	session, err := stream.NewSession(stream.Config{
		Path:        path,
		ChunkSize:   chunkSize,
		EventBuffer: s.cfg.Stream.EventBuffer,
	})
	if err != nil {
		log.Warn("failed to create stream session", "error", err)
		status := http.StatusInternalServerError
		if errors.Is(err, os.ErrNotExist) {
			status = http.StatusNotFound
		}
		writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	sse, err := newSSEWriter(w)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	log.Debug("stream session opened", "sessionId", session.ID(), "fileSize", session.TotalBytes())

	// the request context tears the session down if the viewer goes away
	for ev := range session.Events(r.Context()) {
		var sendErr error
		switch ev.Type {
		case stream.EventLines:
			sendErr = sse.send("lines", ev.Batch)
		case stream.EventProgress:
			sendErr = sse.send("progress", ev.Progress)
		case stream.EventComplete:
			sendErr = sse.send("complete", ev.Done)
		case stream.EventError:
			sendErr = sse.send("error", map[string]string{"error": ev.Err.Error()})
		}
		if sendErr != nil {
			log.Debug("client went away mid-stream", "sessionId", session.ID(), "error", sendErr)
			return
		}
	}
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing path parameter"})
		return
	}

	log := s.logger.WithFields("operation", "watch-file", "path", path)

	watcher, err := watch.New(path, s.cfg.Watch.Debounce)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	changes, err := watcher.Start()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	defer func() {
		if stopErr := watcher.Stop(); stopErr != nil {
			log.Warn("failed to stop watcher", "error", stopErr)
		}
	}()

	sse, err := newSSEWriter(w)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			s.files.Invalidate(path)
			if err := sse.send("change", map[string]string{"path": path}); err != nil {
				return
			}
		}
	}
}

type mcpStartResponse struct {
	Success  bool      `json:"success"`
	Message  string    `json:"message"`
	Status   mcp.State `json:"status"`
	HTTPPort int       `json:"httpPort,omitempty"`
	WSPort   int       `json:"wsPort,omitempty"`
}

func (s *Server) handleMCPStart(w http.ResponseWriter, r *http.Request) {
	log := s.logger.WithField("operation", "service-start")

	result, err := s.manager.Start(r.Context())
	if err != nil {
		status := http.StatusOK
		if errors.Is(err, pkgerrors.ErrAlreadyStarting) || errors.Is(err, pkgerrors.ErrStopInFlight) {
			status = http.StatusConflict
		}
		log.Warn("start rejected or failed", "error", err)
		writeJSON(w, status, mcpStartResponse{
			Success: false,
			Message: err.Error(),
			Status:  s.manager.Status().State,
		})
		return
	}

	writeJSON(w, http.StatusOK, mcpStartResponse{
		Success:  true,
		Message:  result.Message,
		Status:   mcp.StateRunning,
		HTTPPort: result.HTTPPort,
		WSPort:   result.WSPort,
	})
}

type mcpStopResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	Status  mcp.State `json:"status"`
}

func (s *Server) handleMCPStop(w http.ResponseWriter, r *http.Request) {
	log := s.logger.WithField("operation", "service-stop")

	// teardown should not be cut short by the client dropping the request
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	message, err := s.manager.Stop(ctx)
	if err != nil {
		status := http.StatusOK
		if errors.Is(err, pkgerrors.ErrAlreadyStopping) {
			status = http.StatusConflict
		}
		log.Warn("stop rejected", "error", err)
		writeJSON(w, status, mcpStopResponse{
			Success: false,
			Message: err.Error(),
			Status:  s.manager.Status().State,
		})
		return
	}

	writeJSON(w, http.StatusOK, mcpStopResponse{
		Success: true,
		Message: message,
		Status:  mcp.StateStopped,
	})
}

func (s *Server) handleMCPStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.Status())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
