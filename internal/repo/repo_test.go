package repo

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresDB(db), mock
}

func TestGetByloginMissingUser(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, password FROM users WHERE login=$1")).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	id, hash, err := r.GetBylogin(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Equal(t, 0, id)
	assert.Empty(t, hash)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateTankReturnsID(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO tanks")).
		WithArgs(7, "TK-101", "Acme Refining", "Houston, TX", "EQ-9",
			120.0, 48.0, 2000000.0, "Crude Oil", 0.88, "API 650",
			1987, "A36", "fixed cone", "concrete ringwall", 8).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))

	id, err := r.CreateTank(context.Background(), Tank{
		OwnerID: 7, TankNumber: "TK-101", ClientName: "Acme Refining",
		Location: "Houston, TX", EquipmentID: "EQ-9", DiameterFt: 120,
		HeightFt: 48, CapacityGal: 2000000, Product: "Crude Oil",
		SpecificGravity: 0.88, ConstructionCode: "API 650", YearBuilt: 1987,
		ShellMaterial: "A36", RoofType: "fixed cone",
		FoundationType: "concrete ringwall", CourseCount: 8,
	})
	require.NoError(t, err)
	assert.Equal(t, 42, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateInspectionStatusMissingRow(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE inspections SET status=$2 WHERE id=$1")).
		WithArgs(99, "in_review").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := r.UpdateInspectionStatus(context.Background(), 99, "in_review")
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListMeasurementsNullPreviousDate(t *testing.T) {
	r, mock := newMock(t)
	prev := time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "inspection_id", "component", "course_number",
		"position", "original_in", "previous_in", "current_in", "previous_date",
		"rate_in_yr", "remaining_life_yr", "status"}).
		AddRow(1, 5, "shell", 1, "N 0°", 0.5, 0.45, 0.42, prev, 0.003, 25.0, "acceptable").
		AddRow(2, 5, "bottom", 0, "B-3", 0.25, 0.0, 0.22, nil, 0.0, 0.0, "recorded")
	mock.ExpectQuery("SELECT id, inspection_id, component").
		WithArgs(5).
		WillReturnRows(rows)

	ms, err := r.ListMeasurements(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, ms, 2)
	require.NotNil(t, ms[0].PreviousDate)
	assert.Equal(t, prev, *ms[0].PreviousDate)
	assert.Nil(t, ms[1].PreviousDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMeasurementsTransaction(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectPrepare(regexp.QuoteMeta("INSERT INTO measurements"))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO measurements")).
		WithArgs(5, "shell", 1, "N 0°", 0.5, 0.0, 0.42, nil, 0.0, 0.0, "recorded").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := r.CreateMeasurements(context.Background(), 5, []Measurement{
		{Component: "shell", CourseNumber: 1, Position: "N 0°",
			OriginalIn: 0.5, CurrentIn: 0.42, Status: "recorded"},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMeasurementScopedToInspection(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM measurements WHERE id=$1 AND inspection_id=$2")).
		WithArgs(9, 5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, r.DeleteMeasurement(context.Background(), 5, 9))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMeasurementWrongInspection(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM measurements WHERE id=$1 AND inspection_id=$2")).
		WithArgs(9, 6).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := r.DeleteMeasurement(context.Background(), 6, 9)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sql.ErrNoRows))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveSurveyResult(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE settlement_surveys SET analyzed=true")).
		WithArgs(3, 0.97, 0.021, 0.105, true, true).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := r.SaveSurveyResult(context.Background(), 3, SurveyResult{
		RSquared: 0.97, MaxOutOfPlaneFt: 0.021, AllowableFt: 0.105,
		FitAcceptable: true, SettlementOK: true,
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDashboardStats(t *testing.T) {
	r, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tanks WHERE owner_id=$1")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))
	mock.ExpectQuery("SELECT i.status, COUNT").
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"status", "count"}).
			AddRow("draft", 2).AddRow("approved", 5))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM import_tickets")).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	stats, err := r.GetDashboardStats(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Tanks)
	assert.Equal(t, map[string]int{"draft": 2, "approved": 5}, stats.Inspections)
	assert.Equal(t, 1, stats.PendingImports)
	assert.NoError(t, mock.ExpectationsWereMet())
}
