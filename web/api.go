package web

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"github.com/ggldnl/hexviz/referenceframe"
	"github.com/ggldnl/hexviz/telemetry"
	"github.com/ggldnl/hexviz/viewer"
)

const maxBodySize = 32 << 20

type statusResponse struct {
	SessionID   string `json:"session_id"`
	ModelLoaded bool   `json:"model_loaded"`
	Connected   bool   `json:"connected"`
	viewer.StatusReport
}

type loadResponse struct {
	Name   string `json:"name"`
	Links  int    `json:"links"`
	Joints int    `json:"joints"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (a *api) status(w http.ResponseWriter, r *http.Request) {
	_, err := a.session.Description()
	a.writeJSON(w, http.StatusOK, statusResponse{
		SessionID:    a.session.ID(),
		ModelLoaded:  err == nil,
		Connected:    a.session.Telemetry().Connected,
		StatusReport: a.session.Status(),
	})
}

func (a *api) scene(w http.ResponseWriter, r *http.Request) {
	scene, err := a.session.Snapshot()
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, scene)
}

func (a *api) joints(w http.ResponseWriter, r *http.Request) {
	joints, err := a.session.Joints()
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, joints)
}

// pose takes a map of joint name to degrees.
func (a *api) pose(w http.ResponseWriter, r *http.Request) {
	var angles map[string]float64
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&angles); err != nil {
		a.writeStatusError(w, http.StatusBadRequest, errors.Wrap(err, "invalid pose"))
		return
	}
	if err := a.session.ApplyPose(angles); err != nil {
		a.writeError(w, err)
		return
	}
	a.joints(w, r)
}

// description takes a URDF document as the request body.
func (a *api) description(w http.ResponseWriter, r *http.Request) {
	doc, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		a.writeStatusError(w, http.StatusBadRequest, errors.Wrap(err, "failed to read description"))
		return
	}
	if err := a.session.LoadDescription(r.Context(), doc); err != nil {
		a.writeError(w, err)
		return
	}
	desc, err := a.session.Description()
	if err != nil {
		a.writeError(w, err)
		return
	}
	joints, err := a.session.Joints()
	if err != nil {
		a.writeError(w, err)
		return
	}
	a.writeJSON(w, http.StatusOK, loadResponse{Name: desc.Name, Links: len(desc.Links), Joints: len(joints)})
}

// connect takes a telemetry client config. Port and rate default when omitted.
func (a *api) connect(w http.ResponseWriter, r *http.Request) {
	cfg := telemetry.ClientConfig{Port: telemetry.DefaultPort, UpdateRateHz: telemetry.DefaultUpdateRateHz}
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodySize)).Decode(&cfg); err != nil {
		a.writeStatusError(w, http.StatusBadRequest, errors.Wrap(err, "invalid connection settings"))
		return
	}
	if err := cfg.Validate("connect"); err != nil {
		a.writeStatusError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.session.Connect(r.Context(), cfg); err != nil {
		a.writeStatusError(w, http.StatusBadGateway, err)
		return
	}
	a.writeJSON(w, http.StatusOK, a.session.Telemetry())
}

func (a *api) disconnect(w http.ResponseWriter, r *http.Request) {
	a.session.Disconnect()
	w.WriteHeader(http.StatusNoContent)
}

func (a *api) telemetry(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, a.session.Telemetry())
}

// writeError maps session errors to HTTP statuses.
func (a *api) writeError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case errors.Is(err, viewer.ErrNoModel):
		code = http.StatusNotFound
	case errors.Is(err, viewer.ErrSuperseded):
		code = http.StatusConflict
	case errors.Is(err, viewer.ErrClosed):
		code = http.StatusServiceUnavailable
	case referenceframe.IsParseError(err):
		code = http.StatusBadRequest
	}
	a.writeStatusError(w, code, err)
}

func (a *api) writeStatusError(w http.ResponseWriter, code int, err error) {
	if code >= http.StatusInternalServerError {
		a.logger.Warnw("request failed", "status", code, "error", err)
	} else {
		a.logger.Debugw("request rejected", "status", code, "error", err)
	}
	a.writeJSON(w, code, errorResponse{Error: err.Error()})
}

func (a *api) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Debugw("error writing response", "error", err)
	}
}
