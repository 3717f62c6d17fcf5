package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"i4.energy/across/hibergw/lpgan"
	"i4.energy/across/hibergw/modem"
)

// Server handles incoming HTTP requests for interacting with the
// configured modem instance
type Server struct {
	Logger *slog.Logger
	Modem  *modem.Modem

	once   sync.Once
	router chi.Router
}

// ServeHTTP implements the http.Handler interface for the Server struct
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.once.Do(s.routes)
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)

	r.Route("/modem", func(r chi.Router) {
		r.Get("/", s.handleModemInfo)
		r.Get("/firmware", s.handleFirmware)
	})

	r.Get("/location", s.handleLocation)
	r.Get("/datetime", s.handleDatetime)
	r.Get("/alarm", s.handleAlarm)
	r.Get("/pass", s.handlePass)
	r.Post("/sleep", s.handleSleep)
	r.Post("/commands", s.handleCommand)

	s.router = r
}

func (s *Server) sendJSON(w http.ResponseWriter, v any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) sendError(w http.ResponseWriter, message string, statusCode int) {
	if message == "" {
		w.WriteHeader(statusCode)
		return
	}

	type ErrorResponse struct {
		Message string `json:"message"`
	}
	s.sendJSON(w, ErrorResponse{Message: message}, statusCode)
}

// sendResult writes v, or the error mapped to its HTTP status.
func (s *Server) sendResult(w http.ResponseWriter, r *http.Request, v any, err error) {
	if err != nil {
		status := httpStatus(err)
		if status >= http.StatusInternalServerError {
			s.Logger.Error("Modem command failed", "error", err, "path", r.URL.Path,
				"request_id", middleware.GetReqID(r.Context()))
		}
		s.sendError(w, err.Error(), status)
		return
	}
	s.sendJSON(w, v, http.StatusOK)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	type HealthResponse struct {
		Status   string `json:"status"`
		Firmware string `json:"firmware_version"`
	}
	s.sendJSON(w, HealthResponse{Status: "ok", Firmware: s.Modem.Firmware()}, http.StatusOK)
}

func (s *Server) handleModemInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.Modem.ModemInfo(r.Context())
	s.sendResult(w, r, info, err)
}

func (s *Server) handleFirmware(w http.ResponseWriter, r *http.Request) {
	version, err := s.Modem.FirmwareVersion(r.Context())
	s.sendResult(w, r, lpgan.FirmwareVersion{Version: version}, err)
}

func (s *Server) handleLocation(w http.ResponseWriter, r *http.Request) {
	loc, err := s.Modem.Location(r.Context())
	s.sendResult(w, r, loc, err)
}

func (s *Server) handleDatetime(w http.ResponseWriter, r *http.Request) {
	type DatetimeResponse struct {
		Datetime time.Time `json:"datetime"`
	}
	now, err := s.Modem.Datetime(r.Context())
	s.sendResult(w, r, DatetimeResponse{Datetime: now}, err)
}

func (s *Server) handleAlarm(w http.ResponseWriter, r *http.Request) {
	alarm, err := s.Modem.NextAlarm(r.Context())
	s.sendResult(w, r, alarm, err)
}

func (s *Server) handlePass(w http.ResponseWriter, r *http.Request) {
	left, err := s.Modem.NextPass(r.Context())
	s.sendResult(w, r, lpgan.Pass{SecondsLeft: int64(left / time.Second)}, err)
}

// handleSleep puts the modem to sleep, retrying while the wakeup pin is
// high. A modem that keeps refusing yields 409 Conflict.
func (s *Server) handleSleep(w http.ResponseWriter, r *http.Request) {
	sleep, err := s.Modem.GoToSleep(r.Context())
	if err == nil {
		s.Logger.Info("Modem sleeping", "alarm_id", sleep.AlarmID, "seconds_until_alarm", sleep.SecondsUntilAlarm)
	}
	s.sendResult(w, r, sleep, err)
}

// handleCommand executes an arbitrary command given as a CommandRequest.
// The CommandReply is returned for every outcome that reached the modem.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	if req.Command == "" {
		s.sendError(w, "'command' field is required", http.StatusBadRequest)
		return
	}

	reply, err := Execute(r.Context(), s.Modem, req)
	status := httpStatus(err)
	if status >= http.StatusInternalServerError {
		s.Logger.Error("Command failed", "error", err, "command", req.Command,
			"request_id", middleware.GetReqID(r.Context()))
	}
	s.sendJSON(w, reply, status)
}
