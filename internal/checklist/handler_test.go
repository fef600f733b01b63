package checklist

import (
	"context"
	"net/http"
	"testing"

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
	replaceChecklist func(ctx context.Context, inspectionID int, items []repo.ChecklistItem) error
	listChecklist    func(ctx context.Context, inspectionID int) ([]repo.ChecklistItem, error)
}

func (s *stubRepo) GetInspection(ctx context.Context, id int) (repo.Inspection, error) {
	return s.getInspection(ctx, id)
}
func (s *stubRepo) GetTank(ctx context.Context, id int) (repo.Tank, error) {
	return s.getTank(ctx, id)
}
func (s *stubRepo) ReplaceChecklist(ctx context.Context, inspectionID int, items []repo.ChecklistItem) error {
	return s.replaceChecklist(ctx, inspectionID, items)
}
func (s *stubRepo) ListChecklist(ctx context.Context, inspectionID int) ([]repo.ChecklistItem, error) {
	return s.listChecklist(ctx, inspectionID)
}

func router(h *Handler) *mux.Router {
	r := mux.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(context.WithValue(req.Context(), "userID", 7)))
		})
	})
	r.HandleFunc("/inspections/{id:[0-9]+}/checklist/seed", h.Seed).Methods("POST")
	r.HandleFunc("/inspections/{id:[0-9]+}/checklist", h.Save).Methods("PUT")
	r.HandleFunc("/inspections/{id:[0-9]+}/checklist", h.List).Methods("GET")
	return r
}

func ownedStub() *stubRepo {
	return &stubRepo{
		getInspection: func(ctx context.Context, id int) (repo.Inspection, error) {
			return repo.Inspection{ID: id, TankID: 3, Status: "draft"}, nil
		},
		getTank: func(ctx context.Context, id int) (repo.Tank, error) {
			return repo.Tank{ID: id, OwnerID: 7}, nil
		},
	}
}

func TestSeedWritesTemplate(t *testing.T) {
	s := ownedStub()
	var saved []repo.ChecklistItem
	s.replaceChecklist = func(ctx context.Context, inspectionID int, items []repo.ChecklistItem) error {
		saved = items
		return nil
	}
	h := &Handler{Repo: s}

	apitest.New().
		Handler(router(h)).
		Post("/inspections/1/checklist/seed").
		Expect(t).
		Status(http.StatusCreated).
		End()

	require.NotEmpty(t, saved)
	categories := map[string]bool{}
	for _, it := range saved {
		assert.Equal(t, 1, it.InspectionID)
		assert.Equal(t, "na", it.Status)
		assert.NotEmpty(t, it.Item)
		categories[it.Category] = true
	}
	for _, c := range []string{"foundation", "shell", "roof", "appurtenances", "external"} {
		assert.True(t, categories[c], "missing category %s", c)
	}
}

func TestSaveValidatesStatus(t *testing.T) {
	h := &Handler{Repo: ownedStub()}

	apitest.New().
		Handler(router(h)).
		Put("/inspections/1/checklist").
		JSON(`{"items":[{"category":"shell","item":"Shell-to-bottom weld condition","status":"maybe"}]}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestSaveRequiresCategoryAndItem(t *testing.T) {
	h := &Handler{Repo: ownedStub()}

	apitest.New().
		Handler(router(h)).
		Put("/inspections/1/checklist").
		JSON(`{"items":[{"item":"Shell-to-bottom weld condition","status":"ok"}]}`).
		Expect(t).
		Status(http.StatusBadRequest).
		End()
}

func TestSaveReplacesItems(t *testing.T) {
	s := ownedStub()
	var saved []repo.ChecklistItem
	s.replaceChecklist = func(ctx context.Context, inspectionID int, items []repo.ChecklistItem) error {
		saved = items
		return nil
	}
	h := &Handler{Repo: s}

	apitest.New().
		Handler(router(h)).
		Put("/inspections/1/checklist").
		JSON(`{"items":[
			{"category":"shell","item":"Shell-to-bottom weld condition","status":"deficient","notes":"Pitting at NE"},
			{"category":"roof","item":"Standing water or product on the roof","status":"ok"}]}`).
		Expect(t).
		Status(http.StatusNoContent).
		End()

	require.Len(t, saved, 2)
	assert.Equal(t, "deficient", saved[0].Status)
	assert.Equal(t, "Pitting at NE", saved[0].Notes)
}

func TestListEmptyIsArray(t *testing.T) {
	s := ownedStub()
	s.listChecklist = func(ctx context.Context, inspectionID int) ([]repo.ChecklistItem, error) {
		return nil, nil
	}
	h := &Handler{Repo: s}

	apitest.New().
		Handler(router(h)).
		Get("/inspections/1/checklist").
		Expect(t).
		Status(http.StatusOK).
		Body(`[]`).
		End()
}
