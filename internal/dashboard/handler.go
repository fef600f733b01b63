package dashboard

import (
	"encoding/json"
	"net/http"

	"OilPro/internal/repo"
)

type Handler struct {
	Repo repo.Repository
}

type Overview struct {
	Stats   repo.DashboardStats `json:"stats"`
	Recent  []repo.Inspection   `json:"recent"`
	Overdue []repo.Tank         `json:"overdue"`
}

// External inspections are due at most every 5 years (API 653 6.3.2.1).
const overdueAfterYears = 5

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	uid, ok := r.Context().Value("userID").(int)
	if !ok || uid == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	stats, err := h.Repo.GetDashboardStats(r.Context(), uid)
	if err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	recent, err := h.Repo.ListRecentInspections(r.Context(), uid, 10)
	if err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	if recent == nil {
		recent = []repo.Inspection{}
	}
	overdue, err := h.Repo.ListOverdueTanks(r.Context(), uid, overdueAfterYears)
	if err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	if overdue == nil {
		overdue = []repo.Tank{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(Overview{Stats: stats, Recent: recent, Overdue: overdue})
}
