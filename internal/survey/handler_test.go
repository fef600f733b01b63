package survey

import (
	"context"
	"math"
	"net/http"
	"testing"
	"time"

	"OilPro/internal/repo"

	"github.com/gorilla/mux"
	"github.com/steinfletcher/apitest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	repo.Repository
	getInspection    func(ctx context.Context, id int) (repo.Inspection, error)
	getTank          func(ctx context.Context, id int) (repo.Tank, error)
	getSurvey        func(ctx context.Context, id int) (repo.Survey, error)
	createSurvey     func(ctx context.Context, s repo.Survey) (int, error)
	saveSurveyResult func(ctx context.Context, id int, res repo.SurveyResult) error
}

func (s *stubRepo) GetInspection(ctx context.Context, id int) (repo.Inspection, error) {
	return s.getInspection(ctx, id)
}
func (s *stubRepo) GetTank(ctx context.Context, id int) (repo.Tank, error) {
	return s.getTank(ctx, id)
}
func (s *stubRepo) GetSurvey(ctx context.Context, id int) (repo.Survey, error) {
	return s.getSurvey(ctx, id)
}
func (s *stubRepo) CreateSurvey(ctx context.Context, sv repo.Survey) (int, error) {
	return s.createSurvey(ctx, sv)
}
func (s *stubRepo) SaveSurveyResult(ctx context.Context, id int, res repo.SurveyResult) error {
	return s.saveSurveyResult(ctx, id, res)
}

func router(h *Handler, uid int) *mux.Router {
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), "userID", uid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	r.HandleFunc("/inspections/{id:[0-9]+}/surveys", h.Create).Methods("POST")
	r.HandleFunc("/inspections/{id:[0-9]+}/surveys/{sid:[0-9]+}/analyze", h.Analyze).Methods("POST")
	return r
}

func ownedStub() *stubRepo {
	return &stubRepo{
		getInspection: func(ctx context.Context, id int) (repo.Inspection, error) {
			return repo.Inspection{ID: id, TankID: 3, Status: "draft"}, nil
		},
		getTank: func(ctx context.Context, id int) (repo.Tank, error) {
			return repo.Tank{ID: id, OwnerID: 7, DiameterFt: 100, HeightFt: 40}, nil
		},
	}
}

func TestCreateSurveyRejectsTooFewPoints(t *testing.T) {
	h := &Handler{Repo: ownedStub()}

	apitest.New().
		Handler(router(h, 7)).
		Post("/inspections/1/surveys").
		JSON(`{"datum":"north rim","points":[{"elevation_ft":0.1},{"elevation_ft":0.2}]}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestCreateSurveyNumbersPoints(t *testing.T) {
	s := ownedStub()
	var saved repo.Survey
	s.createSurvey = func(ctx context.Context, sv repo.Survey) (int, error) {
		saved = sv
		return 9, nil
	}
	h := &Handler{Repo: s}

	apitest.New().
		Handler(router(h, 7)).
		Post("/inspections/1/surveys").
		JSON(`{"datum":"north rim","survey_date":"2026-03-15","points":[
			{"elevation_ft":0.01},{"elevation_ft":0.02},{"elevation_ft":0.015},
			{"elevation_ft":0.005},{"elevation_ft":-0.01},{"elevation_ft":-0.02},
			{"elevation_ft":-0.015},{"elevation_ft":-0.005}]}`).
		Expect(t).
		Status(http.StatusCreated).
		End()

	require.Len(t, saved.Points, 8)
	assert.Equal(t, 1, saved.Points[0].PointNumber)
	assert.Equal(t, 8, saved.Points[7].PointNumber)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), saved.SurveyDate)
}

func TestAnalyzePersistsVerdicts(t *testing.T) {
	s := ownedStub()
	// rim elevations on a perfect tilted plane, amplitude 0.05 ft
	points := make([]repo.SurveyPoint, 12)
	for i := range points {
		theta := float64(i) * 2 * math.Pi / 12
		points[i] = repo.SurveyPoint{
			PointNumber: i + 1,
			AngleDeg:    float64(i) * 360 / 12,
			ElevationFt: 0.02 + 0.05*math.Cos(theta),
		}
	}
	s.getSurvey = func(ctx context.Context, id int) (repo.Survey, error) {
		return repo.Survey{ID: id, InspectionID: 1, Points: points}, nil
	}
	var saved repo.SurveyResult
	s.saveSurveyResult = func(ctx context.Context, id int, res repo.SurveyResult) error {
		saved = res
		return nil
	}
	h := &Handler{Repo: s}

	apitest.New().
		Handler(router(h, 7)).
		Post("/inspections/1/surveys/4/analyze").
		JSON(`{}`).
		Expect(t).
		Status(http.StatusOK).
		End()

	assert.True(t, saved.FitAcceptable)
	assert.True(t, saved.SettlementOK)
	assert.InDelta(t, 1.0, saved.RSquared, 1e-9)
	assert.InDelta(t, 0.0, saved.MaxOutOfPlaneFt, 1e-9)
}

func TestAnalyzeOtherOwnerHidden(t *testing.T) {
	s := ownedStub()
	s.getTank = func(ctx context.Context, id int) (repo.Tank, error) {
		return repo.Tank{ID: id, OwnerID: 99, DiameterFt: 100, HeightFt: 40}, nil
	}
	s.getSurvey = func(ctx context.Context, id int) (repo.Survey, error) {
		return repo.Survey{ID: id, InspectionID: 1}, nil
	}
	h := &Handler{Repo: s}

	apitest.New().
		Handler(router(h, 7)).
		Post("/inspections/1/surveys/4/analyze").
		JSON(`{}`).
		Expect(t).
		Status(http.StatusNotFound).
		End()
}
