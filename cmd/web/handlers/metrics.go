package handlers

import (
	"encoding/json"
	"net/http"

	"paygate/kit/observability"
)

type Metrics struct {
	m *observability.Metrics
}

func NewMetrics(m *observability.Metrics) *Metrics {
	return &Metrics{m: m}
}

func (h *Metrics) Handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.m.Snapshot())
}
