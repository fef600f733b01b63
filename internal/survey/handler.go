package survey

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"OilPro/internal/calc/settlement"
	"OilPro/internal/repo"

	"github.com/gorilla/mux"
)

type Handler struct {
	Repo repo.Repository
}

type CreateRequest struct {
	Datum      string             `json:"datum"`
	SurveyDate string             `json:"survey_date"` // YYYY-MM-DD
	Points     []repo.SurveyPoint `json:"points"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	in, _, ok := h.ownedInspection(w, r)
	if !ok {
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if len(req.Points) < 8 {
		http.Error(w, "At least 8 survey points required", http.StatusBadRequest)
		return
	}

	date := time.Now()
	if req.SurveyDate != "" {
		var err error
		date, err = time.Parse("2006-01-02", req.SurveyDate)
		if err != nil {
			http.Error(w, "Bad survey_date", http.StatusBadRequest)
			return
		}
	}
	for i := range req.Points {
		if req.Points[i].PointNumber == 0 {
			req.Points[i].PointNumber = i + 1
		}
	}

	s := repo.Survey{
		InspectionID: in.ID,
		Datum:        req.Datum,
		SurveyDate:   date,
		Points:       req.Points,
	}
	id, err := h.Repo.CreateSurvey(r.Context(), s)
	if err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	s.ID = id
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(s)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	s, _, ok := h.ownedSurvey(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s)
}

func (h *Handler) ListByInspection(w http.ResponseWriter, r *http.Request) {
	in, _, ok := h.ownedInspection(w, r)
	if !ok {
		return
	}
	list, err := h.Repo.ListSurveys(r.Context(), in.ID)
	if err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []repo.Survey{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

type analyzeRequest struct {
	YieldPsi   float64 `json:"yield_psi"`
	ModulusPsi float64 `json:"modulus_psi"`
}

// Analyze runs the Annex B cosine fit over the stored points and persists the
// verdicts on the survey row. Returns the full point-wise result.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	s, tank, ok := h.ownedSurvey(w, r)
	if !ok {
		return
	}

	var req analyzeRequest
	if r.Body != nil {
		// Body is optional; material overrides only.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	points := make([]settlement.Point, 0, len(s.Points))
	for _, p := range s.Points {
		points = append(points, settlement.Point{
			PointNumber: p.PointNumber,
			AngleDeg:    p.AngleDeg,
			ElevationFt: p.ElevationFt,
		})
	}
	res, err := settlement.Calculate(settlement.Input{
		DiameterFt: tank.DiameterFt,
		HeightFt:   tank.HeightFt,
		YieldPsi:   req.YieldPsi,
		ModulusPsi: req.ModulusPsi,
		Points:     points,
	})
	if err != nil {
		http.Error(w, "Calculation error: "+err.Error(), http.StatusBadRequest)
		return
	}

	saved := repo.SurveyResult{
		RSquared:        res.RSquared,
		MaxOutOfPlaneFt: res.MaxOutOfPlaneFt,
		AllowableFt:     res.AllowableFt,
		FitAcceptable:   res.FitAcceptable,
		SettlementOK:    res.SettlementOK,
	}
	if err := h.Repo.SaveSurveyResult(r.Context(), s.ID, saved); err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

func (h *Handler) ownedInspection(w http.ResponseWriter, r *http.Request) (repo.Inspection, repo.Tank, bool) {
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

func (h *Handler) ownedSurvey(w http.ResponseWriter, r *http.Request) (repo.Survey, repo.Tank, bool) {
	uid, ok := r.Context().Value("userID").(int)
	if !ok || uid == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return repo.Survey{}, repo.Tank{}, false
	}
	id, err := strconv.Atoi(mux.Vars(r)["sid"])
	if err != nil {
		http.Error(w, "Bad id", http.StatusBadRequest)
		return repo.Survey{}, repo.Tank{}, false
	}
	s, err := h.Repo.GetSurvey(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Survey not found", http.StatusNotFound)
		} else {
			http.Error(w, "DB error", http.StatusInternalServerError)
		}
		return repo.Survey{}, repo.Tank{}, false
	}
	in, err := h.Repo.GetInspection(r.Context(), s.InspectionID)
	if err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return repo.Survey{}, repo.Tank{}, false
	}
	tank, err := h.Repo.GetTank(r.Context(), in.TankID)
	if err != nil || tank.OwnerID != uid {
		http.Error(w, "Survey not found", http.StatusNotFound)
		return repo.Survey{}, repo.Tank{}, false
	}
	return s, tank, true
}
