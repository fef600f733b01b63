package inspection

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"OilPro/internal/repo"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type Handler struct {
	Repo repo.Repository
}

const (
	StatusDraft    = "draft"
	StatusInReview = "in_review"
	StatusApproved = "approved"
)

type CreateRequest struct {
	TankID               int     `json:"tank_id"`
	ReportNumber         string  `json:"report_number"`
	InspectionDate       string  `json:"inspection_date"` // YYYY-MM-DD
	InspectionType       string  `json:"inspection_type"`
	InspectorName        string  `json:"inspector_name"`
	InspectorCert        string  `json:"inspector_cert"`
	Company              string  `json:"company"`
	TestMethods          string  `json:"test_methods"`
	CorrosionAllowanceIn float64 `json:"corrosion_allowance_in"`
	JointEfficiency      float64 `json:"joint_efficiency"`
	Findings             string  `json:"findings"`
	Recommendations      string  `json:"recommendations"`
}

// NewReportNumber generates RPT-XXXXXXXX for inspections created without one.
func NewReportNumber() string {
	return "RPT-" + strings.ToUpper(uuid.NewString()[:8])
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	uid, ok := r.Context().Value("userID").(int)
	if !ok || uid == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.TankID == 0 {
		http.Error(w, "tank_id required", http.StatusBadRequest)
		return
	}
	if !h.ownsTank(w, r, uid, req.TankID) {
		return
	}

	date := time.Now()
	if req.InspectionDate != "" {
		var err error
		date, err = time.Parse("2006-01-02", req.InspectionDate)
		if err != nil {
			http.Error(w, "Bad inspection_date", http.StatusBadRequest)
			return
		}
	}
	if req.ReportNumber == "" {
		req.ReportNumber = NewReportNumber()
	}
	if req.InspectionType == "" {
		req.InspectionType = "In-Service"
	}
	if req.JointEfficiency <= 0 || req.JointEfficiency > 1 {
		req.JointEfficiency = 0.85
	}

	in := repo.Inspection{
		TankID:               req.TankID,
		ReportNumber:         req.ReportNumber,
		InspectionDate:       date,
		InspectionType:       req.InspectionType,
		InspectorName:        req.InspectorName,
		InspectorCert:        req.InspectorCert,
		Company:              req.Company,
		TestMethods:          req.TestMethods,
		CorrosionAllowanceIn: req.CorrosionAllowanceIn,
		JointEfficiency:      req.JointEfficiency,
		Status:               StatusDraft,
		Findings:             req.Findings,
		Recommendations:      req.Recommendations,
	}
	id, err := h.Repo.CreateInspection(r.Context(), in)
	if err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	in.ID = id
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(in)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	in, ok := h.owned(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(in)
}

func (h *Handler) ListByTank(w http.ResponseWriter, r *http.Request) {
	uid, ok := r.Context().Value("userID").(int)
	if !ok || uid == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	tankID, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Bad id", http.StatusBadRequest)
		return
	}
	if !h.ownsTank(w, r, uid, tankID) {
		return
	}
	list, err := h.Repo.ListInspectionsByTank(r.Context(), tankID)
	if err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	if list == nil {
		list = []repo.Inspection{}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(list)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	existing, ok := h.owned(w, r)
	if !ok {
		return
	}
	if existing.Status == StatusApproved {
		http.Error(w, "Approved reports are read only", http.StatusConflict)
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if req.InspectionDate != "" {
		date, err := time.Parse("2006-01-02", req.InspectionDate)
		if err != nil {
			http.Error(w, "Bad inspection_date", http.StatusBadRequest)
			return
		}
		existing.InspectionDate = date
	}
	if req.InspectionType != "" {
		existing.InspectionType = req.InspectionType
	}
	if req.InspectorName != "" {
		existing.InspectorName = req.InspectorName
	}
	if req.InspectorCert != "" {
		existing.InspectorCert = req.InspectorCert
	}
	if req.Company != "" {
		existing.Company = req.Company
	}
	if req.TestMethods != "" {
		existing.TestMethods = req.TestMethods
	}
	if req.CorrosionAllowanceIn > 0 {
		existing.CorrosionAllowanceIn = req.CorrosionAllowanceIn
	}
	if req.JointEfficiency > 0 && req.JointEfficiency <= 1 {
		existing.JointEfficiency = req.JointEfficiency
	}
	existing.Findings = req.Findings
	existing.Recommendations = req.Recommendations

	if err := h.Repo.UpdateInspection(r.Context(), existing); err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	in, ok := h.owned(w, r)
	if !ok {
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if !validTransition(in.Status, req.Status) {
		http.Error(w, "Invalid status transition", http.StatusConflict)
		return
	}
	if err := h.Repo.UpdateInspectionStatus(r.Context(), in.ID, req.Status); err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func validTransition(from, to string) bool {
	switch from {
	case StatusDraft:
		return to == StatusInReview
	case StatusInReview:
		return to == StatusApproved || to == StatusDraft
	case StatusApproved:
		return false
	}
	return false
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	in, ok := h.owned(w, r)
	if !ok {
		return
	}
	if in.Status == StatusApproved {
		http.Error(w, "Approved reports are read only", http.StatusConflict)
		return
	}
	if err := h.Repo.DeleteInspection(r.Context(), in.ID); err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) owned(w http.ResponseWriter, r *http.Request) (repo.Inspection, bool) {
	uid, ok := r.Context().Value("userID").(int)
	if !ok || uid == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return repo.Inspection{}, false
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Bad id", http.StatusBadRequest)
		return repo.Inspection{}, false
	}
	in, err := h.Repo.GetInspection(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Inspection not found", http.StatusNotFound)
		} else {
			http.Error(w, "DB error", http.StatusInternalServerError)
		}
		return repo.Inspection{}, false
	}
	if !h.ownsTank(w, r, uid, in.TankID) {
		return repo.Inspection{}, false
	}
	return in, true
}

func (h *Handler) ownsTank(w http.ResponseWriter, r *http.Request, uid, tankID int) bool {
	t, err := h.Repo.GetTank(r.Context(), tankID)
	if err != nil || t.OwnerID != uid {
		http.Error(w, "Tank not found", http.StatusNotFound)
		return false
	}
	return true
}
