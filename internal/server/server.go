// Package server exposes receipt rendering and event logging over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lvillar/receipts"
	"github.com/lvillar/receipts/eventlog"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 32 << 20

// Generator renders receipts. *receipts.Generator satisfies it.
type Generator interface {
	Generate(ctx context.Context, w io.Writer, req *receipts.Request) error
}

// EventLogger records activity events. *eventlog.Forwarder satisfies it.
type EventLogger interface {
	Log(ctx context.Context, e eventlog.Event) (eventlog.Record, error)
}

// Readiness reports whether a dependency is ready. *orgs.Registry
// satisfies it.
type Readiness interface {
	Loaded() bool
}

// Server routes the HTTP API.
type Server struct {
	gen    Generator
	events EventLogger
	orgs   Readiness
	log    *zap.Logger
	router *mux.Router
}

// New returns a server. events and orgs may be nil.
func New(gen Generator, events EventLogger, orgs Readiness, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{gen: gen, events: events, orgs: orgs, log: log}
	r := mux.NewRouter()
	r.Use(s.recoverer, s.logRequests)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/pdf", s.handlePDF).Methods(http.MethodPost)
	if events != nil {
		api.HandleFunc("/eventlog", s.handleEvent).Methods(http.MethodPost)
	}
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{"status": "ok"}
	if s.orgs != nil {
		resp["orgs"] = s.orgs.Loaded()
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	var req receipts.Request
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var buf bytes.Buffer
	if err := s.gen.Generate(r.Context(), &buf, &req); err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, receipts.ErrMalformedPayload),
			errors.Is(err, receipts.ErrNoLayout),
			errors.Is(err, receipts.ErrNoInstance):
			status = http.StatusBadRequest
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			status = http.StatusServiceUnavailable
		}
		writeError(w, status, err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	var e eventlog.Event
	if err := decodeJSON(w, r, &e); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	rec, err := s.events.Log(r.Context(), e)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, eventlog.ErrInvalidEvent) {
			status = http.StatusBadRequest
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": rec.ID})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		return errors.New("invalid JSON body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
