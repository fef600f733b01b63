package extract

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"OilPro/internal/inspection"
	"OilPro/internal/repo"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"
)

type Handler struct {
	Repo   repo.Repository
	Client *Client
}

type ImportResult struct {
	TicketID     int        `json:"ticket_id"`
	TankID       int        `json:"tank_id"`
	InspectionID int        `json:"inspection_id"`
	Readings     int        `json:"readings"`
	Extraction   Extraction `json:"extraction"`
}

// ImportExcel runs the whole pipeline: workbook -> text -> AI extraction ->
// cleanup -> draft tank/inspection/measurements plus a pending review ticket.
func (h *Handler) ImportExcel(w http.ResponseWriter, r *http.Request) {
	uid, ok := r.Context().Value("userID").(int)
	if !ok || uid == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	f, err := excelize.OpenReader(file)
	if err != nil {
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}
	defer f.Close()

	text, err := WorkbookText(f, header.Filename)
	if err != nil {
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}

	ex, err := h.Client.Extract(r.Context(), text)
	if err != nil {
		log.Error().Err(err).Str("file", header.Filename).Msg("extraction failed")
		http.Error(w, "Extraction failed", http.StatusBadGateway)
		return
	}
	Clean(&ex, header.Filename)

	tankID, err := h.Repo.CreateTank(r.Context(), repo.Tank{
		OwnerID:          uid,
		TankNumber:       ex.TankInfo.TankNumber,
		ClientName:       ex.TankInfo.ClientName,
		Location:         ex.TankInfo.Location,
		EquipmentID:      ex.TankInfo.EquipmentID,
		DiameterFt:       ex.TankInfo.DiameterFt,
		HeightFt:         ex.TankInfo.HeightFt,
		CapacityGal:      ex.TankInfo.CapacityGal,
		Product:          ex.TankInfo.Product,
		SpecificGravity:  ex.TankInfo.SpecificGravity,
		ConstructionCode: ex.TankInfo.ConstructionCode,
		YearBuilt:        ex.TankInfo.YearBuilt,
		ShellMaterial:    ex.TankInfo.ShellMaterial,
		RoofType:         ex.TankInfo.RoofType,
		FoundationType:   ex.TankInfo.FoundationType,
		CourseCount:      ex.TankInfo.NumberOfCourses,
	})
	if err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}

	date, _ := time.Parse("2006-01-02", ex.InspectionInfo.InspectionDate)
	inspectionID, err := h.Repo.CreateInspection(r.Context(), repo.Inspection{
		TankID:               tankID,
		ReportNumber:         NewImportReportNumber(),
		InspectionDate:       date,
		InspectionType:       ex.InspectionInfo.InspectionType,
		InspectorName:        ex.InspectionInfo.InspectorName,
		InspectorCert:        ex.InspectionInfo.InspectorCertification,
		Company:              ex.InspectionInfo.InspectionCompany,
		TestMethods:          ex.InspectionInfo.TestMethods,
		CorrosionAllowanceIn: ex.InspectionInfo.CorrosionAllowance,
		JointEfficiency:      ex.InspectionInfo.JointEfficiency,
		Status:               inspection.StatusDraft,
	})
	if err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}

	var ms []repo.Measurement
	for _, course := range ex.ThicknessData {
		for _, rd := range course.Readings {
			if rd.Thickness <= 0 {
				continue
			}
			ms = append(ms, repo.Measurement{
				Component:    "shell",
				CourseNumber: course.CourseNumber,
				Position:     rd.Position,
				CurrentIn:    rd.Thickness,
				Status:       "recorded",
			})
		}
	}
	for _, nz := range ex.NozzleData {
		for _, rd := range nz.Readings {
			if rd.Thickness <= 0 {
				continue
			}
			ms = append(ms, repo.Measurement{
				Component: "nozzle",
				Position:  nz.NozzleID + " " + rd.Position,
				CurrentIn: rd.Thickness,
				Status:    "recorded",
			})
		}
	}
	if len(ms) > 0 {
		if err := h.Repo.CreateMeasurements(r.Context(), inspectionID, ms); err != nil {
			http.Error(w, "DB error", http.StatusInternalServerError)
			return
		}
	}

	ticketID, err := h.Repo.CreateImportTicket(r.Context(), uid, inspectionID, header.Filename)
	if err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(ImportResult{
		TicketID:     ticketID,
		TankID:       tankID,
		InspectionID: inspectionID,
		Readings:     len(ms),
		Extraction:   ex,
	})
}

func (h *Handler) ListTickets(w http.ResponseWriter, r *http.Request) {
	uid, ok := r.Context().Value("userID").(int)
	if !ok || uid == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	status := r.URL.Query().Get("status")
	if status == "" {
		status = "pending"
	}
	tickets, err := h.Repo.ListImportTickets(r.Context(), status)
	if err != nil {
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}
	mine := make([]repo.ImportTicket, 0, len(tickets))
	for _, t := range tickets {
		if t.UserID == uid {
			mine = append(mine, t)
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(mine)
}

type reviewRequest struct {
	Action string `json:"action"` // approve or reject
}

// ReviewTicket approves or rejects an import. Rejection removes the draft
// inspection the import created.
func (h *Handler) ReviewTicket(w http.ResponseWriter, r *http.Request) {
	uid, ok := r.Context().Value("userID").(int)
	if !ok || uid == 0 {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.Error(w, "Bad id", http.StatusBadRequest)
		return
	}
	ticket, err := h.Repo.GetImportTicket(r.Context(), id)
	if err != nil || ticket.UserID != uid {
		http.Error(w, "Ticket not found", http.StatusNotFound)
		return
	}
	if ticket.Status != "pending" {
		http.Error(w, "Ticket already reviewed", http.StatusConflict)
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	switch req.Action {
	case "approve":
		if err := h.Repo.UpdateImportTicketStatus(r.Context(), id, "approved"); err != nil {
			http.Error(w, "DB error", http.StatusInternalServerError)
			return
		}
	case "reject":
		if err := h.Repo.UpdateImportTicketStatus(r.Context(), id, "rejected"); err != nil {
			http.Error(w, "DB error", http.StatusInternalServerError)
			return
		}
		cleanupDraft(r.Context(), h.Repo, ticket.InspectionID)
	default:
		http.Error(w, "action must be approve or reject", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CleanupDraft removes the draft inspection a rejected import created, and the
// tank too when that inspection was the only one on it. Imports always create
// a fresh tank, so a rejected import would otherwise strand an empty tank on
// the dashboard.
func CleanupDraft(ctx context.Context, r repo.Repository, inspectionID int) {
	cleanupDraft(ctx, r, inspectionID)
}

func cleanupDraft(ctx context.Context, r repo.Repository, inspectionID int) {
	in, err := r.GetInspection(ctx, inspectionID)
	if err != nil {
		log.Error().Err(err).Int("inspection", inspectionID).Msg("draft lookup failed")
		return
	}
	if err := r.DeleteInspection(ctx, inspectionID); err != nil {
		log.Error().Err(err).Int("inspection", inspectionID).Msg("draft cleanup failed")
		return
	}
	remaining, err := r.ListInspectionsByTank(ctx, in.TankID)
	if err != nil {
		log.Error().Err(err).Int("tank", in.TankID).Msg("tank lookup failed")
		return
	}
	if len(remaining) == 0 {
		if err := r.DeleteTank(ctx, in.TankID); err != nil {
			log.Error().Err(err).Int("tank", in.TankID).Msg("tank cleanup failed")
		}
	}
}
