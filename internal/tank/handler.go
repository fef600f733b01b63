package tank

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

func userID(r *http.Request) (int, bool) {
	id, ok := r.Context().Value("userID").(int)
	return id, ok && id != 0
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var t repo.Tank
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if t.TankNumber == "" {
		http.Error(w, "tank_number required", http.StatusBadRequest)
		return
	}
	if t.DiameterFt < 0 || t.HeightFt < 0 {
		http.Error(w, "Negative dimensions", http.StatusBadRequest)
		return
	}
	if t.SpecificGravity <= 0 {
		t.SpecificGravity = 1.0
	}
	t.OwnerID = uid

	id, err := h.Repo.CreateTank(r.Context(), t)
	if err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	t.ID = id
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(t)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	t, ok := h.ownedTank(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(t)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	tanks, err := h.Repo.ListTanks(r.Context(), uid)
	if err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	if tanks == nil {
		tanks = []repo.Tank{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(tanks)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.ownedTank(w, r)
	if !ok {
		return
	}

	var t repo.Tank
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	t.ID = existing.ID
	t.OwnerID = existing.OwnerID
	if t.TankNumber == "" {
		t.TankNumber = existing.TankNumber
	}

	if err := h.Repo.UpdateTank(r.Context(), t); err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	t, ok := h.ownedTank(w, r)
	if !ok {
		return
	}
	if err := h.Repo.DeleteTank(r.Context(), t.ID); err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ownedTank loads the tank from the route id and checks it belongs to the
// authenticated user. Writes the error response itself.
func (h *Handler) ownedTank(w http.ResponseWriter, r *http.Request) (repo.Tank, bool) {
	uid, ok := userID(r)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return repo.Tank{}, false
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Bad id", http.StatusBadRequest)
		return repo.Tank{}, false
	}
	t, err := h.Repo.GetTank(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Tank not found", http.StatusNotFound)
		} else {
			http.Error(w, "DB error", http.StatusInternalServerError)
		}
		return repo.Tank{}, false
	}
	if t.OwnerID != uid {
		http.Error(w, "Tank not found", http.StatusNotFound)
		return repo.Tank{}, false
	}
	return t, true
}
