package handlers

import (
	"encoding/json"
	"net/http"

	"paygate/internal/health"
)

type Health struct {
	svc *health.Service
}

func NewHealth(svc *health.Service) *Health {
	return &Health{svc: svc}
}

func (h *Health) Handler(w http.ResponseWriter, r *http.Request) {
	res := h.svc.Check(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if !res.OK {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(res)
}
