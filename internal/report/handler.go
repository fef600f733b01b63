package report

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"OilPro/internal/repo"

	"github.com/gorilla/mux"
)

type Handler struct {
	Repo repo.Repository
}

func (h *Handler) GeneratePDF(w http.ResponseWriter, r *http.Request) {
	b, ok := h.bundle(w, r)
	if !ok {
		return
	}
	pdf := BuildPDF(b)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", b.Inspection.ReportNumber+".pdf"))
	if err := pdf.Output(w); err != nil {
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
}

func (h *Handler) GenerateCSV(w http.ResponseWriter, r *http.Request) {
	b, ok := h.bundle(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", b.Inspection.ReportNumber+".csv"))
	if err := WriteMeasurementsCSV(w, b.Measurements); err != nil {
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
}

func (h *Handler) GenerateXLSX(w http.ResponseWriter, r *http.Request) {
	b, ok := h.bundle(w, r)
	if !ok {
		return
	}
	f, err := BuildWorkbook(b)
	if err != nil {
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
	defer f.Close()
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", b.Inspection.ReportNumber+".xlsx"))
	if err := f.Write(w); err != nil {
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
}

// Ad-hoc PDF endpoint in the legacy shape: free-form title and notes, no
// persisted inspection required.
type QuickInput struct {
	Project string `json:"project"`
	Author  string `json:"author"`
	Title   string `json:"title"`
	Notes   string `json:"notes"`
}

func (h *Handler) GenerateQuick(w http.ResponseWriter, r *http.Request) {
	var input QuickInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if input.Title == "" {
		input.Title = "Inspection Notes"
	}
	pdf := BuildQuickPDF(input)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"report.pdf\"")
	if err := pdf.Output(w); err != nil {
		http.Error(w, "Report generation error", http.StatusInternalServerError)
		return
	}
}

func (h *Handler) bundle(w http.ResponseWriter, r *http.Request) (Bundle, bool) {
	uid, ok := r.Context().Value("userID").(int)
	if !ok || uid == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return Bundle{}, false
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Bad id", http.StatusBadRequest)
		return Bundle{}, false
	}
	in, err := h.Repo.GetInspection(r.Context(), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "Inspection not found", http.StatusNotFound)
		} else {
			http.Error(w, "DB error", http.StatusInternalServerError)
		}
		return Bundle{}, false
	}
	tank, err := h.Repo.GetTank(r.Context(), in.TankID)
	if err != nil || tank.OwnerID != uid {
		http.Error(w, "Inspection not found", http.StatusNotFound)
		return Bundle{}, false
	}

	ms, err := h.Repo.ListMeasurements(r.Context(), in.ID)
	if err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return Bundle{}, false
	}
	items, err := h.Repo.ListChecklist(r.Context(), in.ID)
	if err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return Bundle{}, false
	}
	surveys, err := h.Repo.ListSurveys(r.Context(), in.ID)
	if err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return Bundle{}, false
	}
	// Survey points are needed for the point count on the PDF.
	for i, s := range surveys {
		full, err := h.Repo.GetSurvey(r.Context(), s.ID)
		if err == nil {
			surveys[i] = full
		}
	}

	return Bundle{
		Tank:         tank,
		Inspection:   in,
		Measurements: ms,
		Checklist:    items,
		Surveys:      surveys,
	}, true
}
