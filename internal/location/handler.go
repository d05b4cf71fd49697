package location

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	repo *Repository
}

func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) GetDriverHistory(w http.ResponseWriter, r *http.Request) {
	driverID := chi.URLParam(r, "driverID")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	samples, err := h.repo.RecentSamples(r.Context(), driverID, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(samples)
}

func (h *Handler) GetActiveTrucks(w http.ResponseWriter, r *http.Request) {
	samples, err := h.repo.ActiveTrucks(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	json.NewEncoder(w).Encode(samples)
}
