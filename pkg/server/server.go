package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/finparse/bksparse/pkg/config"
	"github.com/finparse/bksparse/pkg/csv"
	"github.com/finparse/bksparse/pkg/models"
	"github.com/finparse/bksparse/pkg/parser"
)

var allowedExtensions = map[string]struct{}{
	".xls":  {},
	".xlsx": {},
}

// Server exposes the statement extraction engine over HTTP.
type Server struct {
	config     *config.Config
	logger     *log.Logger
	mux        *http.ServeMux
	parser     *parser.Parser
	statements sync.Map
}

// New creates a new HTTP server.
func New(config *config.Config, logger *log.Logger) *Server {
	return &Server{
		config: config,
		logger: logger,
		mux:    http.NewServeMux(),
		parser: parser.New(logger),
	}
}

// Start starts the HTTP server.
func (s *Server) Start(addr string) error {
	s.setupRoutes()
	return http.ListenAndServe(addr, s.mux)
}

func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/parse", s.withLogging(s.handleParse))
	s.mux.HandleFunc("/api/files/", s.withLogging(s.handleFiles))
	s.mux.HandleFunc("/health", s.withLogging(s.handleHealth))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// handleParse accepts a multipart statement upload and returns the extracted
// metadata and events. Parse failures are client-facing 422s; the upload is
// processed fully in memory.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, r, http.StatusMethodNotAllowed, "method not allowed", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)

	file, header, err := r.FormFile("statement")
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "statement file required", err)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedExtensions[ext]; !ok {
		s.respondError(w, r, http.StatusBadRequest, "only .xls and .xlsx files are supported", nil)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		s.respondError(w, r, http.StatusBadRequest, "failed to read upload", err)
		return
	}

	statement, err := s.parser.ProcessBytes(data, header.Filename)
	if err != nil {
		s.respondError(w, r, http.StatusUnprocessableEntity, "failed to parse statement", err)
		return
	}

	// Cache for CSV download.
	s.statements.Store(header.Filename, statement)

	s.logger.Info("parsed statement",
		"file", header.Filename,
		"events", len(statement.Events),
		"unresolved", len(statement.Diagnostics.UnresolvedOperations))

	if err := s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"file":      header.Filename,
		"statement": statement,
	}); err != nil {
		s.logger.Warn("failed to write json response", "err", err)
	}
}

// handleFiles serves the event list of a previously parsed statement as CSV.
func (s *Server) handleFiles(w http.ResponseWriter, r *http.Request) {
	filename := strings.TrimPrefix(r.URL.Path, "/api/files/")
	if filename == "" {
		s.respondError(w, r, http.StatusBadRequest, "filename required", nil)
		return
	}

	value, ok := s.statements.Load(filename)
	if !ok {
		s.respondError(w, r, http.StatusNotFound, "file not found", nil)
		return
	}
	statement, ok := value.(*models.Statement)
	if !ok {
		s.respondError(w, r, http.StatusInternalServerError, "internal type assertion error", nil)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q.csv", filename))
	if _, err := w.Write(csv.Create(statement.Events, nil)); err != nil {
		s.logger.Warn("failed to write csv response", "err", err)
	}
}

// --- helpers ---

// writeJSON encodes v as JSON with the given status and writes headers.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(v)
}

// respondError logs the error and returns a minimal JSON error body.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil {
		s.logger.Warn("request error", "status", status, "msg", message, "err", err, "method", r.Method, "path", r.URL.Path)
	} else {
		s.logger.Warn("request error", "status", status, "msg", message, "method", r.Method, "path", r.URL.Path)
	}
	_ = s.writeJSON(w, status, map[string]string{
		"status": "error",
		"error":  message,
	})
}

// withLogging wraps a handler to log request start/end and recover panics.
func (s *Server) withLogging(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "remote", r.RemoteAddr)
		defer func() {
			if rec := recover(); rec != nil {
				s.logger.Error("panic recovered", "panic", rec, "method", r.Method, "path", r.URL.Path)
				s.respondError(w, r, http.StatusInternalServerError, "internal server error", fmt.Errorf("panic: %v", rec))
			}
		}()
		next(w, r)
	}
}
