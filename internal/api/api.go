package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/thatsimonsguy/firesim/internal/match"
	"github.com/thatsimonsguy/firesim/internal/model"
	"github.com/thatsimonsguy/firesim/internal/sim"
)

// Server exposes the simulation surface to the external UI: discovery results
// per loop driver, the device/config match report, and activation control.
type Server struct {
	loops   map[string][]model.DiscoveredDevice
	report  match.Report
	session *sim.Session
}

type DeviceStateRequest struct {
	Active bool `json:"active"`
}

type ActivationsResponse struct {
	Activated []string `json:"activated"`
	Outputs   []string `json:"outputs"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewServer(loops map[string][]model.DiscoveredDevice, report match.Report, session *sim.Session) *Server {
	return &Server{
		loops:   loops,
		report:  report,
		session: session,
	}
}

func (s *Server) Start(port int) error {
	mux := http.NewServeMux()

	// Add CORS middleware
	corsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		mux.ServeHTTP(w, r)
	})

	mux.HandleFunc("/api/discovery", s.handleDiscovery)
	mux.HandleFunc("/api/match", s.handleMatch)
	mux.HandleFunc("/api/activations", s.handleActivations)
	mux.HandleFunc("/api/devices/", s.handleDeviceOperations)
	mux.HandleFunc("/api/reset", s.handleReset)

	addr := fmt.Sprintf("0.0.0.0:%d", port)
	log.Info().Str("address", addr).Msg("Starting REST API server")

	return http.ListenAndServe(addr, corsHandler)
}

func (s *Server) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.loops)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, struct {
		match.Report
		Valid bool `json:"valid"`
	}{s.report, s.report.Valid()})
}

func (s *Server) handleActivations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, ActivationsResponse{
		Activated: s.session.Activated(),
		Outputs:   s.session.Outputs(),
	})
}

func (s *Server) handleDeviceOperations(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/devices/")
	parts := strings.Split(path, "/")

	if len(parts) < 1 || parts[0] == "" {
		s.writeError(w, http.StatusNotFound, "Device ID required")
		return
	}

	deviceID := parts[0]

	if len(parts) != 2 || parts[1] != "state" {
		s.writeError(w, http.StatusNotFound, "Invalid path")
		return
	}
	if r.Method != http.MethodPut {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req DeviceStateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	var err error
	if req.Active {
		err = s.session.Activate(deviceID)
	} else {
		err = s.session.Clear(deviceID)
	}
	if errors.Is(err, sim.ErrUnknownDevice) {
		s.writeError(w, http.StatusNotFound, fmt.Sprintf("Unknown device: %s", deviceID))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, ActivationsResponse{
		Activated: s.session.Activated(),
		Outputs:   s.session.Outputs(),
	})
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	s.session.Reset()
	s.writeJSON(w, http.StatusOK, ActivationsResponse{
		Activated: s.session.Activated(),
		Outputs:   s.session.Outputs(),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode API response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, ErrorResponse{Error: message})
}
