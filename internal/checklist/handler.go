package checklist

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"OilPro/internal/repo"

	"github.com/gorilla/mux"
)

type Handler struct {
	Repo repo.Repository
}

var validStatus = map[string]bool{"ok": true, "deficient": true, "na": true}

// Seed fills an inspection with the default Annex C style checklist.
func (h *Handler) Seed(w http.ResponseWriter, r *http.Request) {
	inspectionID, ok := h.owned(w, r)
	if !ok {
		return
	}
	items := DefaultItems(inspectionID)
	if err := h.Repo.ReplaceChecklist(r.Context(), inspectionID, items); err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(items)
}

type saveRequest struct {
	Items []repo.ChecklistItem `json:"items"`
}

func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	inspectionID, ok := h.owned(w, r)
	if !ok {
		return
	}
	var req saveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	for _, it := range req.Items {
		if it.Item == "" || it.Category == "" {
			http.Error(w, "category and item required", http.StatusBadRequest)
			return
		}
		if !validStatus[it.Status] {
			http.Error(w, "status must be ok, deficient or na", http.StatusBadRequest)
			return
		}
	}
	if err := h.Repo.ReplaceChecklist(r.Context(), inspectionID, req.Items); err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	inspectionID, ok := h.owned(w, r)
	if !ok {
		return
	}
	items, err := h.Repo.ListChecklist(r.Context(), inspectionID)
	if err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	if items == nil {
		items = []repo.ChecklistItem{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func (h *Handler) owned(w http.ResponseWriter, r *http.Request) (int, bool) {
	uid, ok := r.Context().Value("userID").(int)
	if !ok || uid == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return 0, false
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Bad id", http.StatusBadRequest)
		return 0, false
	}
	in, err := h.Repo.GetInspection(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Inspection not found", http.StatusNotFound)
		} else {
			http.Error(w, "DB error", http.StatusInternalServerError)
		}
		return 0, false
	}
	tank, err := h.Repo.GetTank(r.Context(), in.TankID)
	if err != nil || tank.OwnerID != uid {
		http.Error(w, "Inspection not found", http.StatusNotFound)
		return 0, false
	}
	return in.ID, true
}
