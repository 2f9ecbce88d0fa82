package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"delivery-route-service/internal/api/dto"
	"delivery-route-service/internal/dispatch"
	"delivery-route-service/internal/domain"
)

// DispatchHandler exposes the Dispatcher over HTTP.
type DispatchHandler struct {
	Dispatcher *dispatch.Dispatcher
}

// Run triggers one synchronous dispatch pass and returns its outcome.
func (h *DispatchHandler) Run(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req dto.DispatchRunRequest
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, "failed to read request body")
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}

	opts := dispatch.FilterOptions{
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Lat:       req.Lat,
		Lon:       req.Lon,
		RadiusKM:  req.RadiusKM,
	}

	result, err := h.Dispatcher.Run(r.Context(), opts, time.Now())
	if err != nil {
		status := http.StatusInternalServerError
		var routeErr *domain.RouteProviderError
		var persistErr *domain.PersistenceError
		if errors.As(err, &routeErr) || errors.As(err, &persistErr) {
			status = http.StatusBadGateway
		}
		writeError(w, r, status, err.Error())
		return
	}

	writeJSON(w, r, http.StatusOK, toResponse(result))
}

func toResponse(result domain.DispatchResult) dto.DispatchRunResponse {
	resp := dto.DispatchRunResponse{
		Assigned:   make([]dto.AssignedPair, len(result.Assigned)),
		Unassigned: make([]dto.Deferral, len(result.Unassigned)),
	}
	for i, a := range result.Assigned {
		resp.Assigned[i] = dto.AssignedPair{
			DriverID:      a.Driver.ID,
			ClusterID:     a.Cluster.ID,
			OrderIDs:      a.Cluster.OrderIDs(),
			Cost:          a.Cost,
			RelaxationLog: a.RelaxationLog,
		}
	}
	for i, u := range result.Unassigned {
		resp.Unassigned[i] = dto.Deferral{
			ClusterID: u.Cluster.ID,
			OrderIDs:  u.Cluster.OrderIDs(),
			Reason:    u.Reason,
		}
	}
	return resp
}
