package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gordonklaus/ambient"
	"github.com/gordonklaus/ambient/stream"
)

const maxBlueprintSize = 64 * 1024

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

type status struct {
	ambient.Status
	Stream *streamStatus `json:"stream,omitempty"`
}

type streamStatus struct {
	stream.Stats
	Peers int `json:"peers"`
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	st := status{Status: s.engine.Status()}
	if s.stream != nil {
		st.Stream = &streamStatus{
			Stats: s.stream.Broadcaster.Stats(),
			Peers: s.stream.WebRTC.PeerCount(),
		}
	}
	s.writeJSON(w, http.StatusOK, st)
}

// handleBlueprint validates a blueprint and configures the engine with it.
func (s *Server) handleBlueprint(w http.ResponseWriter, r *http.Request) {
	b, err := ambient.ParseBlueprint(http.MaxBytesReader(w, r.Body, maxBlueprintSize))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := s.engine.Configure(b); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Start(); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.engine.Status())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Stop(); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.engine.Status())
}

type analysis struct {
	Mode string    `json:"mode"`
	Size int       `json:"size"`
	Data []float32 `json:"data"`
}

// handleAnalysis returns the current waveform window or its dB spectrum.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	a := s.engine.Analyser()
	res := analysis{Mode: r.URL.Query().Get("mode"), Size: a.Size()}
	switch res.Mode {
	case "", "waveform":
		res.Mode = "waveform"
		res.Data = a.Waveform(nil)
	case "fft":
		res.Data = a.Magnitudes(nil)
	default:
		s.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "mode must be waveform or fft"})
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("encode response", slog.Any("error", err))
	}
}

// writeError maps engine errors to HTTP status codes.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	body := map[string]string{"error": err.Error()}
	status := http.StatusInternalServerError
	var fe *ambient.FieldError
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &fe):
		status = http.StatusBadRequest
		body["field"] = fe.Field
	case errors.As(err, &tooBig):
		status = http.StatusRequestEntityTooLarge
	case errors.Is(err, ambient.ErrInvalidBlueprint):
		status = http.StatusBadRequest
	case errors.Is(err, ambient.ErrNotReady), errors.Is(err, ambient.ErrNotConfigured):
		status = http.StatusConflict
	case errors.Is(err, ambient.ErrClosed):
		status = http.StatusServiceUnavailable
	}
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", slog.Any("error", err))
	}
	s.writeJSON(w, status, body)
}
