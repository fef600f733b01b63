package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type Profile struct {
	ID           int        `json:"id"`
	Login        string     `json:"login"`
	Email        string     `json:"email"`
	Company      string     `json:"company"`
	CertNumber   string     `json:"cert_number"`
	CertExpiry   *time.Time `json:"cert_expiry,omitempty"`
	SignatureURL string     `json:"signature_url"`
}

type Tank struct {
	ID               int     `json:"id"`
	OwnerID          int     `json:"owner_id"`
	TankNumber       string  `json:"tank_number"`
	ClientName       string  `json:"client_name"`
	Location         string  `json:"location"`
	EquipmentID      string  `json:"equipment_id"`
	DiameterFt       float64 `json:"diameter_ft"`
	HeightFt         float64 `json:"height_ft"`
	CapacityGal      float64 `json:"capacity_gal"`
	Product          string  `json:"product"`
	SpecificGravity  float64 `json:"specific_gravity"`
	ConstructionCode string  `json:"construction_code"`
	YearBuilt        int     `json:"year_built"`
	ShellMaterial    string  `json:"shell_material"`
	RoofType         string  `json:"roof_type"`
	FoundationType   string  `json:"foundation_type"`
	CourseCount      int     `json:"course_count"`
}

type Inspection struct {
	ID                   int       `json:"id"`
	TankID               int       `json:"tank_id"`
	ReportNumber         string    `json:"report_number"`
	InspectionDate       time.Time `json:"inspection_date"`
	InspectionType       string    `json:"inspection_type"`
	InspectorName        string    `json:"inspector_name"`
	InspectorCert        string    `json:"inspector_cert"`
	Company              string    `json:"company"`
	TestMethods          string    `json:"test_methods"`
	CorrosionAllowanceIn float64   `json:"corrosion_allowance_in"`
	JointEfficiency      float64   `json:"joint_efficiency"`
	Status               string    `json:"status"`
	Findings             string    `json:"findings"`
	Recommendations      string    `json:"recommendations"`
	CreatedAt            time.Time `json:"created_at"`
}

type Measurement struct {
	ID              int        `json:"id"`
	InspectionID    int        `json:"inspection_id"`
	Component       string     `json:"component"` // shell, bottom, roof, nozzle
	CourseNumber    int        `json:"course_number"`
	Position        string     `json:"position"`
	OriginalIn      float64    `json:"original_in"`
	PreviousIn      float64    `json:"previous_in"`
	CurrentIn       float64    `json:"current_in"`
	PreviousDate    *time.Time `json:"previous_date,omitempty"`
	RateInYr        float64    `json:"rate_in_yr"`
	RemainingLifeYr float64    `json:"remaining_life_yr"`
	Status          string     `json:"status"`
}

type ChecklistItem struct {
	ID           int    `json:"id"`
	InspectionID int    `json:"inspection_id"`
	Category     string `json:"category"`
	Item         string `json:"item"`
	Status       string `json:"status"` // ok, deficient, na
	Notes        string `json:"notes"`
}

type SurveyPoint struct {
	PointNumber int     `json:"point_number"`
	AngleDeg    float64 `json:"angle_deg"`
	ElevationFt float64 `json:"elevation_ft"`
}

type SurveyResult struct {
	RSquared        float64 `json:"r_squared"`
	MaxOutOfPlaneFt float64 `json:"max_out_of_plane_ft"`
	AllowableFt     float64 `json:"allowable_ft"`
	FitAcceptable   bool    `json:"fit_acceptable"`
	SettlementOK    bool    `json:"settlement_ok"`
}

type Survey struct {
	ID           int           `json:"id"`
	InspectionID int           `json:"inspection_id"`
	Datum        string        `json:"datum"`
	SurveyDate   time.Time     `json:"survey_date"`
	Points       []SurveyPoint `json:"points"`
	Analyzed     bool          `json:"analyzed"`
	Result       SurveyResult  `json:"result"`
}

type ImportTicket struct {
	ID           int       `json:"id"`
	UserID       int       `json:"user_id"`
	InspectionID int       `json:"inspection_id"`
	Source       string    `json:"source"`
	Status       string    `json:"status"` // pending, approved, rejected
	CreatedAt    time.Time `json:"created_at"`
}

type DashboardStats struct {
	Tanks          int            `json:"tanks"`
	Inspections    map[string]int `json:"inspections"`
	PendingImports int            `json:"pending_imports"`
}

type Repository interface {
	CreateUser(ctx context.Context, login, email, password string) (int, error)
	GetBylogin(ctx context.Context, login string) (int, string, error)

	GetProfileByID(ctx context.Context, id int) (Profile, error)
	UpdateProfile(ctx context.Context, id int, company, certNumber string, certExpiry *time.Time) error
	UpdateSignature(ctx context.Context, id int, path string) error

	CreateTank(ctx context.Context, t Tank) (int, error)
	GetTank(ctx context.Context, id int) (Tank, error)
	ListTanks(ctx context.Context, ownerID int) ([]Tank, error)
	UpdateTank(ctx context.Context, t Tank) error
	DeleteTank(ctx context.Context, id int) error

	CreateInspection(ctx context.Context, in Inspection) (int, error)
	GetInspection(ctx context.Context, id int) (Inspection, error)
	ListInspectionsByTank(ctx context.Context, tankID int) ([]Inspection, error)
	UpdateInspection(ctx context.Context, in Inspection) error
	UpdateInspectionStatus(ctx context.Context, id int, status string) error
	DeleteInspection(ctx context.Context, id int) error

	CreateMeasurements(ctx context.Context, inspectionID int, ms []Measurement) error
	ListMeasurements(ctx context.Context, inspectionID int) ([]Measurement, error)
	DeleteMeasurement(ctx context.Context, inspectionID, id int) error

	ReplaceChecklist(ctx context.Context, inspectionID int, items []ChecklistItem) error
	ListChecklist(ctx context.Context, inspectionID int) ([]ChecklistItem, error)

	CreateSurvey(ctx context.Context, s Survey) (int, error)
	GetSurvey(ctx context.Context, id int) (Survey, error)
	ListSurveys(ctx context.Context, inspectionID int) ([]Survey, error)
	SaveSurveyResult(ctx context.Context, id int, res SurveyResult) error

	CreateImportTicket(ctx context.Context, userID, inspectionID int, source string) (int, error)
	GetImportTicket(ctx context.Context, id int) (ImportTicket, error)
	ListImportTickets(ctx context.Context, status string) ([]ImportTicket, error)
	UpdateImportTicketStatus(ctx context.Context, id int, status string) error

	GetDashboardStats(ctx context.Context, ownerID int) (DashboardStats, error)
	ListRecentInspections(ctx context.Context, ownerID, limit int) ([]Inspection, error)
	ListOverdueTanks(ctx context.Context, ownerID int, maxAgeYears int) ([]Tank, error)
}

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresDB(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateUser(ctx context.Context, login, email, password string) (int, error) {
	var id int
	query := "INSERT INTO users (login, email, password) VALUES ($1, $2, $3) RETURNING id"
	err := r.db.QueryRowContext(ctx, query, login, email, password).Scan(&id)
	return id, err
}

func (r *PostgresRepository) GetBylogin(ctx context.Context, login string) (int, string, error) {
	var id int
	var hash string

	query := "SELECT id, password FROM users WHERE login=$1"

	err := r.db.QueryRowContext(ctx, query, login).Scan(&id, &hash)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, "", nil
		}
		return 0, "", err
	}
	return id, hash, nil
}

func (r *PostgresRepository) GetProfileByID(ctx context.Context, id int) (Profile, error) {
	var p Profile
	var expiry sql.NullTime
	query := `SELECT id, login, email, company, cert_number, cert_expiry, signature_url
		FROM users WHERE id=$1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&p.ID, &p.Login, &p.Email, &p.Company, &p.CertNumber, &expiry, &p.SignatureURL)
	if err != nil {
		return Profile{}, err
	}
	if expiry.Valid {
		p.CertExpiry = &expiry.Time
	}
	return p, nil
}

func (r *PostgresRepository) UpdateProfile(ctx context.Context, id int, company, certNumber string, certExpiry *time.Time) error {
	query := "UPDATE users SET company=$2, cert_number=$3, cert_expiry=$4 WHERE id=$1"
	_, err := r.db.ExecContext(ctx, query, id, company, certNumber, certExpiry)
	return err
}

func (r *PostgresRepository) UpdateSignature(ctx context.Context, id int, path string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE users SET signature_url=$2 WHERE id=$1", id, path)
	return err
}

const tankColumns = `id, owner_id, tank_number, client_name, location, equipment_id,
	diameter_ft, height_ft, capacity_gal, product, specific_gravity, construction_code,
	year_built, shell_material, roof_type, foundation_type, course_count`

func scanTank(row interface{ Scan(...any) error }) (Tank, error) {
	var t Tank
	err := row.Scan(&t.ID, &t.OwnerID, &t.TankNumber, &t.ClientName, &t.Location, &t.EquipmentID,
		&t.DiameterFt, &t.HeightFt, &t.CapacityGal, &t.Product, &t.SpecificGravity,
		&t.ConstructionCode, &t.YearBuilt, &t.ShellMaterial, &t.RoofType, &t.FoundationType,
		&t.CourseCount)
	return t, err
}

func (r *PostgresRepository) CreateTank(ctx context.Context, t Tank) (int, error) {
	var id int
	query := `INSERT INTO tanks (owner_id, tank_number, client_name, location, equipment_id,
		diameter_ft, height_ft, capacity_gal, product, specific_gravity, construction_code,
		year_built, shell_material, roof_type, foundation_type, course_count)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, t.OwnerID, t.TankNumber, t.ClientName, t.Location,
		t.EquipmentID, t.DiameterFt, t.HeightFt, t.CapacityGal, t.Product, t.SpecificGravity,
		t.ConstructionCode, t.YearBuilt, t.ShellMaterial, t.RoofType, t.FoundationType,
		t.CourseCount).Scan(&id)
	return id, err
}

func (r *PostgresRepository) GetTank(ctx context.Context, id int) (Tank, error) {
	query := "SELECT " + tankColumns + " FROM tanks WHERE id=$1"
	return scanTank(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) ListTanks(ctx context.Context, ownerID int) ([]Tank, error) {
	query := "SELECT " + tankColumns + " FROM tanks WHERE owner_id=$1 ORDER BY tank_number"
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tanks []Tank
	for rows.Next() {
		t, err := scanTank(rows)
		if err != nil {
			return nil, err
		}
		tanks = append(tanks, t)
	}
	return tanks, rows.Err()
}

func (r *PostgresRepository) UpdateTank(ctx context.Context, t Tank) error {
	query := `UPDATE tanks SET tank_number=$2, client_name=$3, location=$4, equipment_id=$5,
		diameter_ft=$6, height_ft=$7, capacity_gal=$8, product=$9, specific_gravity=$10,
		construction_code=$11, year_built=$12, shell_material=$13, roof_type=$14,
		foundation_type=$15, course_count=$16 WHERE id=$1`
	res, err := r.db.ExecContext(ctx, query, t.ID, t.TankNumber, t.ClientName, t.Location,
		t.EquipmentID, t.DiameterFt, t.HeightFt, t.CapacityGal, t.Product, t.SpecificGravity,
		t.ConstructionCode, t.YearBuilt, t.ShellMaterial, t.RoofType, t.FoundationType,
		t.CourseCount)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepository) DeleteTank(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tanks WHERE id=$1", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

const inspectionColumns = `id, tank_id, report_number, inspection_date, inspection_type,
	inspector_name, inspector_cert, company, test_methods, corrosion_allowance_in,
	joint_efficiency, status, findings, recommendations, created_at`

func scanInspection(row interface{ Scan(...any) error }) (Inspection, error) {
	var in Inspection
	err := row.Scan(&in.ID, &in.TankID, &in.ReportNumber, &in.InspectionDate, &in.InspectionType,
		&in.InspectorName, &in.InspectorCert, &in.Company, &in.TestMethods,
		&in.CorrosionAllowanceIn, &in.JointEfficiency, &in.Status, &in.Findings,
		&in.Recommendations, &in.CreatedAt)
	return in, err
}

func (r *PostgresRepository) CreateInspection(ctx context.Context, in Inspection) (int, error) {
	var id int
	query := `INSERT INTO inspections (tank_id, report_number, inspection_date, inspection_type,
		inspector_name, inspector_cert, company, test_methods, corrosion_allowance_in,
		joint_efficiency, status, findings, recommendations)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13) RETURNING id`
	err := r.db.QueryRowContext(ctx, query, in.TankID, in.ReportNumber, in.InspectionDate,
		in.InspectionType, in.InspectorName, in.InspectorCert, in.Company, in.TestMethods,
		in.CorrosionAllowanceIn, in.JointEfficiency, in.Status, in.Findings,
		in.Recommendations).Scan(&id)
	return id, err
}

func (r *PostgresRepository) GetInspection(ctx context.Context, id int) (Inspection, error) {
	query := "SELECT " + inspectionColumns + " FROM inspections WHERE id=$1"
	return scanInspection(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) ListInspectionsByTank(ctx context.Context, tankID int) ([]Inspection, error) {
	query := "SELECT " + inspectionColumns + " FROM inspections WHERE tank_id=$1 ORDER BY inspection_date DESC"
	return r.queryInspections(ctx, query, tankID)
}

func (r *PostgresRepository) queryInspections(ctx context.Context, query string, args ...any) ([]Inspection, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Inspection
	for rows.Next() {
		in, err := scanInspection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpdateInspection(ctx context.Context, in Inspection) error {
	query := `UPDATE inspections SET inspection_date=$2, inspection_type=$3, inspector_name=$4,
		inspector_cert=$5, company=$6, test_methods=$7, corrosion_allowance_in=$8,
		joint_efficiency=$9, findings=$10, recommendations=$11 WHERE id=$1`
	res, err := r.db.ExecContext(ctx, query, in.ID, in.InspectionDate, in.InspectionType,
		in.InspectorName, in.InspectorCert, in.Company, in.TestMethods, in.CorrosionAllowanceIn,
		in.JointEfficiency, in.Findings, in.Recommendations)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepository) UpdateInspectionStatus(ctx context.Context, id int, status string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE inspections SET status=$2 WHERE id=$1", id, status)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepository) DeleteInspection(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM inspections WHERE id=$1", id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepository) CreateMeasurements(ctx context.Context, inspectionID int, ms []Measurement) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `INSERT INTO measurements (inspection_id, component, course_number, position,
		original_in, previous_in, current_in, previous_date, rate_in_yr, remaining_life_yr, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, m := range ms {
		_, err := stmt.ExecContext(ctx, inspectionID, m.Component, m.CourseNumber, m.Position,
			m.OriginalIn, m.PreviousIn, m.CurrentIn, m.PreviousDate, m.RateInYr,
			m.RemainingLifeYr, m.Status)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *PostgresRepository) ListMeasurements(ctx context.Context, inspectionID int) ([]Measurement, error) {
	query := `SELECT id, inspection_id, component, course_number, position, original_in,
		previous_in, current_in, previous_date, rate_in_yr, remaining_life_yr, status
		FROM measurements WHERE inspection_id=$1 ORDER BY component, course_number, id`
	rows, err := r.db.QueryContext(ctx, query, inspectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Measurement
	for rows.Next() {
		var m Measurement
		var prev sql.NullTime
		err := rows.Scan(&m.ID, &m.InspectionID, &m.Component, &m.CourseNumber, &m.Position,
			&m.OriginalIn, &m.PreviousIn, &m.CurrentIn, &prev, &m.RateInYr,
			&m.RemainingLifeYr, &m.Status)
		if err != nil {
			return nil, err
		}
		if prev.Valid {
			m.PreviousDate = &prev.Time
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// DeleteMeasurement is scoped to the inspection so a row id from another
// inspection cannot be deleted through it.
func (r *PostgresRepository) DeleteMeasurement(ctx context.Context, inspectionID, id int) error {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM measurements WHERE id=$1 AND inspection_id=$2", id, inspectionID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepository) ReplaceChecklist(ctx context.Context, inspectionID int, items []ChecklistItem) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM checklist_items WHERE inspection_id=$1", inspectionID); err != nil {
		return err
	}
	query := `INSERT INTO checklist_items (inspection_id, category, item, status, notes)
		VALUES ($1,$2,$3,$4,$5)`
	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, it := range items {
		if _, err := stmt.ExecContext(ctx, inspectionID, it.Category, it.Item, it.Status, it.Notes); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *PostgresRepository) ListChecklist(ctx context.Context, inspectionID int) ([]ChecklistItem, error) {
	query := `SELECT id, inspection_id, category, item, status, notes
		FROM checklist_items WHERE inspection_id=$1 ORDER BY category, id`
	rows, err := r.db.QueryContext(ctx, query, inspectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ChecklistItem
	for rows.Next() {
		var it ChecklistItem
		if err := rows.Scan(&it.ID, &it.InspectionID, &it.Category, &it.Item, &it.Status, &it.Notes); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) CreateSurvey(ctx context.Context, s Survey) (int, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var id int
	query := `INSERT INTO settlement_surveys (inspection_id, datum, survey_date)
		VALUES ($1,$2,$3) RETURNING id`
	if err := tx.QueryRowContext(ctx, query, s.InspectionID, s.Datum, s.SurveyDate).Scan(&id); err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO survey_points (survey_id, point_number, angle_deg, elevation_ft)
		VALUES ($1,$2,$3,$4)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()
	for _, p := range s.Points {
		if _, err := stmt.ExecContext(ctx, id, p.PointNumber, p.AngleDeg, p.ElevationFt); err != nil {
			return 0, err
		}
	}
	return id, tx.Commit()
}

func (r *PostgresRepository) GetSurvey(ctx context.Context, id int) (Survey, error) {
	var s Survey
	query := `SELECT id, inspection_id, datum, survey_date, analyzed, r_squared,
		max_out_of_plane_ft, allowable_ft, fit_acceptable, settlement_ok
		FROM settlement_surveys WHERE id=$1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.InspectionID, &s.Datum,
		&s.SurveyDate, &s.Analyzed, &s.Result.RSquared, &s.Result.MaxOutOfPlaneFt,
		&s.Result.AllowableFt, &s.Result.FitAcceptable, &s.Result.SettlementOK)
	if err != nil {
		return Survey{}, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT point_number, angle_deg, elevation_ft
		FROM survey_points WHERE survey_id=$1 ORDER BY point_number`, id)
	if err != nil {
		return Survey{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var p SurveyPoint
		if err := rows.Scan(&p.PointNumber, &p.AngleDeg, &p.ElevationFt); err != nil {
			return Survey{}, err
		}
		s.Points = append(s.Points, p)
	}
	return s, rows.Err()
}

func (r *PostgresRepository) ListSurveys(ctx context.Context, inspectionID int) ([]Survey, error) {
	query := `SELECT id, inspection_id, datum, survey_date, analyzed, r_squared,
		max_out_of_plane_ft, allowable_ft, fit_acceptable, settlement_ok
		FROM settlement_surveys WHERE inspection_id=$1 ORDER BY survey_date DESC`
	rows, err := r.db.QueryContext(ctx, query, inspectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Survey
	for rows.Next() {
		var s Survey
		err := rows.Scan(&s.ID, &s.InspectionID, &s.Datum, &s.SurveyDate, &s.Analyzed,
			&s.Result.RSquared, &s.Result.MaxOutOfPlaneFt, &s.Result.AllowableFt,
			&s.Result.FitAcceptable, &s.Result.SettlementOK)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) SaveSurveyResult(ctx context.Context, id int, res SurveyResult) error {
	query := `UPDATE settlement_surveys SET analyzed=true, r_squared=$2, max_out_of_plane_ft=$3,
		allowable_ft=$4, fit_acceptable=$5, settlement_ok=$6 WHERE id=$1`
	out, err := r.db.ExecContext(ctx, query, id, res.RSquared, res.MaxOutOfPlaneFt,
		res.AllowableFt, res.FitAcceptable, res.SettlementOK)
	if err != nil {
		return err
	}
	return requireRow(out)
}

func (r *PostgresRepository) CreateImportTicket(ctx context.Context, userID, inspectionID int, source string) (int, error) {
	var id int
	query := `INSERT INTO import_tickets (user_id, inspection_id, source, status)
		VALUES ($1,$2,$3,'pending') RETURNING id`
	err := r.db.QueryRowContext(ctx, query, userID, inspectionID, source).Scan(&id)
	return id, err
}

func (r *PostgresRepository) GetImportTicket(ctx context.Context, id int) (ImportTicket, error) {
	var t ImportTicket
	query := `SELECT id, user_id, inspection_id, source, status, created_at
		FROM import_tickets WHERE id=$1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&t.ID, &t.UserID, &t.InspectionID, &t.Source, &t.Status, &t.CreatedAt)
	return t, err
}

func (r *PostgresRepository) ListImportTickets(ctx context.Context, status string) ([]ImportTicket, error) {
	query := `SELECT id, user_id, inspection_id, source, status, created_at
		FROM import_tickets WHERE status=$1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ImportTicket
	for rows.Next() {
		var t ImportTicket
		if err := rows.Scan(&t.ID, &t.UserID, &t.InspectionID, &t.Source, &t.Status, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpdateImportTicketStatus(ctx context.Context, id int, status string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE import_tickets SET status=$2 WHERE id=$1", id, status)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PostgresRepository) GetDashboardStats(ctx context.Context, ownerID int) (DashboardStats, error) {
	stats := DashboardStats{Inspections: map[string]int{}}

	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tanks WHERE owner_id=$1", ownerID).
		Scan(&stats.Tanks)
	if err != nil {
		return DashboardStats{}, err
	}

	rows, err := r.db.QueryContext(ctx, `SELECT i.status, COUNT(*) FROM inspections i
		JOIN tanks t ON t.id = i.tank_id WHERE t.owner_id=$1 GROUP BY i.status`, ownerID)
	if err != nil {
		return DashboardStats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return DashboardStats{}, err
		}
		stats.Inspections[status] = n
	}
	if err := rows.Err(); err != nil {
		return DashboardStats{}, err
	}

	err = r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM import_tickets
		WHERE user_id=$1 AND status='pending'`, ownerID).Scan(&stats.PendingImports)
	if err != nil {
		return DashboardStats{}, err
	}
	return stats, nil
}

func (r *PostgresRepository) ListRecentInspections(ctx context.Context, ownerID, limit int) ([]Inspection, error) {
	query := `SELECT i.id, i.tank_id, i.report_number, i.inspection_date, i.inspection_type,
		i.inspector_name, i.inspector_cert, i.company, i.test_methods, i.corrosion_allowance_in,
		i.joint_efficiency, i.status, i.findings, i.recommendations, i.created_at
		FROM inspections i JOIN tanks t ON t.id = i.tank_id
		WHERE t.owner_id=$1 ORDER BY i.created_at DESC LIMIT $2`
	return r.queryInspections(ctx, query, ownerID, limit)
}

// ListOverdueTanks returns the owner's tanks whose latest inspection is older
// than maxAgeYears, or that were never inspected at all.
func (r *PostgresRepository) ListOverdueTanks(ctx context.Context, ownerID int, maxAgeYears int) ([]Tank, error) {
	query := "SELECT " + tankColumns + ` FROM tanks
		WHERE owner_id=$1 AND NOT EXISTS (
			SELECT 1 FROM inspections i WHERE i.tank_id = tanks.id
			AND i.inspection_date > now() - make_interval(years => $2)
		) ORDER BY tank_number`
	rows, err := r.db.QueryContext(ctx, query, ownerID, maxAgeYears)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Tank
	for rows.Next() {
		t, err := scanTank(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no rows affected: %w", sql.ErrNoRows)
	}
	return nil
}
