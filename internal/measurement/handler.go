package measurement

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"OilPro/internal/calc/shell"
	"OilPro/internal/repo"

	"github.com/gorilla/mux"
)

type Handler struct {
	Repo repo.Repository
}

type Reading struct {
	Component    string  `json:"component"`
	CourseNumber int     `json:"course_number"`
	Position     string  `json:"position"`
	OriginalIn   float64 `json:"original_in"`
	PreviousIn   float64 `json:"previous_in"`
	CurrentIn    float64 `json:"current_in"`
	PreviousDate string  `json:"previous_date"` // YYYY-MM-DD
}

type CreateRequest struct {
	Readings []Reading `json:"readings"`
}

// Create stores readings for an inspection. Shell readings get the one-foot
// method evaluation attached; other components just record the corrosion rate.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	in, tank, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if len(req.Readings) == 0 {
		http.Error(w, "No readings", http.StatusBadRequest)
		return
	}

	ms := make([]repo.Measurement, 0, len(req.Readings))
	for _, rd := range req.Readings {
		if rd.CurrentIn <= 0 {
			http.Error(w, "current_in must be positive", http.StatusBadRequest)
			return
		}
		m := repo.Measurement{
			Component:    rd.Component,
			CourseNumber: rd.CourseNumber,
			Position:     rd.Position,
			OriginalIn:   rd.OriginalIn,
			PreviousIn:   rd.PreviousIn,
			CurrentIn:    rd.CurrentIn,
		}
		if m.Component == "" {
			m.Component = "shell"
		}

		interval := 0.0
		if rd.PreviousDate != "" {
			prev, err := time.Parse("2006-01-02", rd.PreviousDate)
			if err != nil {
				http.Error(w, "Bad previous_date", http.StatusBadRequest)
				return
			}
			m.PreviousDate = &prev
			interval = in.InspectionDate.Sub(prev).Hours() / (24 * 365.25)
		}

		evaluate(&m, tank, in, interval)
		ms = append(ms, m)
	}

	if err := h.Repo.CreateMeasurements(r.Context(), in.ID, ms); err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func evaluate(m *repo.Measurement, tank repo.Tank, in repo.Inspection, intervalYears float64) {
	if m.Component != "shell" || tank.DiameterFt <= 0 || tank.HeightFt <= 0 {
		if m.PreviousIn > 0 && intervalYears > 0 {
			m.RateInYr = (m.PreviousIn - m.CurrentIn) / intervalYears
		}
		m.Status = "recorded"
		return
	}

	courses := tank.CourseCount
	if courses < 1 {
		courses = 1
	}
	courseHeight := tank.HeightFt / float64(courses)
	course := m.CourseNumber
	if course < 1 {
		course = 1
	}
	fill := tank.HeightFt - float64(course-1)*courseHeight

	age := 0.0
	if tank.YearBuilt > 0 {
		age = float64(in.InspectionDate.Year() - tank.YearBuilt)
	}
	res, err := shell.Calculate(shell.Input{
		DiameterFt:      tank.DiameterFt,
		FillHeightFt:    fill,
		SpecificGravity: tank.SpecificGravity,
		JointEfficiency: in.JointEfficiency,
		OriginalIn:      m.OriginalIn,
		PreviousIn:      m.PreviousIn,
		CurrentIn:       m.CurrentIn,
		IntervalYears:   intervalYears,
		AgeYears:        age,
	})
	if err != nil {
		m.Status = "recorded"
		return
	}
	m.RateInYr = res.CorrosionRateInYr
	m.RemainingLifeYr = res.RemainingLifeYears
	m.Status = res.Status
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	in, _, ok := h.owned(w, r)
	if !ok {
		return
	}
	ms, err := h.Repo.ListMeasurements(r.Context(), in.ID)
	if err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	if ms == nil {
		ms = []repo.Measurement{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ms)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	in, _, ok := h.owned(w, r)
	if !ok {
		return
	}
	mid, err := strconv.Atoi(mux.Vars(r)["mid"])
	if err != nil {
		http.Error(w, "Bad id", http.StatusBadRequest)
		return
	}
	if err := h.Repo.DeleteMeasurement(r.Context(), in.ID, mid); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Measurement not found", http.StatusNotFound)
			return
		}
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) owned(w http.ResponseWriter, r *http.Request) (repo.Inspection, repo.Tank, bool) {
	uid, ok := r.Context().Value("userID").(int)
	if !ok || uid == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return repo.Inspection{}, repo.Tank{}, false
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Bad id", http.StatusBadRequest)
		return repo.Inspection{}, repo.Tank{}, false
	}
	in, err := h.Repo.GetInspection(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Inspection not found", http.StatusNotFound)
		} else {
			http.Error(w, "DB error", http.StatusInternalServerError)
		}
		return repo.Inspection{}, repo.Tank{}, false
	}
	tank, err := h.Repo.GetTank(r.Context(), in.TankID)
	if err != nil || tank.OwnerID != uid {
		http.Error(w, "Inspection not found", http.StatusNotFound)
		return repo.Inspection{}, repo.Tank{}, false
	}
	return in, tank, true
}
