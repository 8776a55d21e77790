package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"trackfit/models"
)

type staticIdentity struct {
	id  uint
	err error
}

func (s staticIdentity) CurrentUserID() (uint, error) {
	return s.id, s.err
}

func newTestDataService(t *testing.T, handler http.HandlerFunc) *FoodDataService {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc := NewFoodDataService(NewFoodService(srv.URL), staticIdentity{id: 7})
	t.Cleanup(svc.Close)
	return svc
}

func TestAddFoodPrependsPersistedEntry(t *testing.T) {
	svc := newTestDataService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "message": "", "data": {"id": 99, "name": "Banana", "calories": 105, "date": "2024-03-05T12:00:00Z"}}`))
	})
	svc.SetTodaysFoods([]models.Food{{ID: 1, Name: "Eggs", Calories: 155}})

	sub := svc.TodaysFoods()
	defer sub.Cancel()
	recvFoods(t, sub) // initial snapshot

	saved, err := svc.AddFood(context.Background(), models.Food{Name: "Banana", Calories: 105})
	if err != nil {
		t.Fatalf("AddFood: %v", err)
	}
	if saved.ID != 99 {
		t.Fatalf("saved.ID = %d, want 99", saved.ID)
	}

	foods := svc.Foods()
	if len(foods) != 2 || foods[0].ID != 99 || foods[1].ID != 1 {
		t.Fatalf("foods after add = %v, want new entry first", foodNames(foods))
	}

	published := recvFoods(t, sub)
	if len(published) != 2 || published[0].ID != 99 {
		t.Fatalf("published snapshot = %v, want new entry first", foodNames(published))
	}
}

func TestSaveFoodReplacesMatchingEntryInPlace(t *testing.T) {
	svc := newTestDataService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "message": "", "data": {"id": 2, "name": "Brown Rice", "calories": 215, "date": "2024-03-05T12:00:00Z"}}`))
	})
	svc.SetTodaysFoods([]models.Food{
		{ID: 1, Name: "Eggs", Calories: 155},
		{ID: 2, Name: "Rice", Calories: 206},
		{ID: 3, Name: "Tea", Calories: 2},
	})

	if _, err := svc.SaveFood(context.Background(), models.Food{ID: 2, Name: "Brown Rice", Calories: 215}); err != nil {
		t.Fatalf("SaveFood: %v", err)
	}

	foods := svc.Foods()
	if len(foods) != 3 {
		t.Fatalf("collection length changed: %d", len(foods))
	}
	if foods[1].ID != 2 || foods[1].Name != "Brown Rice" || foods[1].Calories != 215 {
		t.Fatalf("slot 1 = %+v, want updated entry in place", foods[1])
	}
	if foods[0].Name != "Eggs" || foods[2].Name != "Tea" {
		t.Fatal("neighboring entries were disturbed")
	}
}

func TestSaveFoodUnknownIDRepublishesUnchanged(t *testing.T) {
	svc := newTestDataService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "message": "", "data": {"id": 42, "name": "Ghost", "calories": 1, "date": "2024-03-05T12:00:00Z"}}`))
	})
	svc.SetTodaysFoods([]models.Food{{ID: 1, Name: "Eggs", Calories: 155}})

	sub := svc.TodaysFoods()
	defer sub.Cancel()
	recvFoods(t, sub)

	if _, err := svc.SaveFood(context.Background(), models.Food{ID: 42, Name: "Ghost"}); err != nil {
		t.Fatalf("SaveFood: %v", err)
	}

	// defined no-op: the unchanged collection is still republished
	published := recvFoods(t, sub)
	if len(published) != 1 || published[0].ID != 1 {
		t.Fatalf("published snapshot = %v, want unchanged [Eggs]", foodNames(published))
	}
}

func TestDeleteFoodsTrustsCallerRemainder(t *testing.T) {
	svc := newTestDataService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "message": "foods deleted", "data": null}`))
	})
	a := models.Food{ID: 1, Name: "A"}
	b := models.Food{ID: 2, Name: "B"}
	c := models.Food{ID: 3, Name: "C"}
	svc.SetTodaysFoods([]models.Food{a, b, c})

	resp, err := svc.DeleteFoods(context.Background(), []uint{b.ID}, []models.Food{a, c})
	if err != nil {
		t.Fatalf("DeleteFoods: %v", err)
	}
	if !resp.Success {
		t.Fatalf("resp = %+v", resp)
	}

	foods := svc.Foods()
	if len(foods) != 2 || foods[0].ID != 1 || foods[1].ID != 3 {
		t.Fatalf("foods = %v, want exactly the caller remainder [A C]", foodNames(foods))
	}
}

func TestDeleteFoodsFailureLeavesCollection(t *testing.T) {
	svc := newTestDataService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "message": "delete rejected", "data": null}`))
	})
	svc.SetTodaysFoods([]models.Food{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}})

	_, err := svc.DeleteFoods(context.Background(), []uint{1}, []models.Food{{ID: 2, Name: "B"}})
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error = %v, want *RequestError", err)
	}

	if foods := svc.Foods(); len(foods) != 2 {
		t.Fatalf("foods = %v, want untouched [A B]", foodNames(foods))
	}
}

func TestUpdateAutocompleteDedupesByCalories(t *testing.T) {
	svc := newTestDataService(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("name"); got != "x" {
			t.Errorf("name query = %q, want x", got)
		}
		w.Write([]byte(`{
			"success": true,
			"message": "",
			"data": [
				{"id": 1, "name": "X", "calories": 100, "date": "2024-03-05T08:00:00Z"},
				{"id": 2, "name": "Y", "calories": 100, "date": "2024-03-05T09:00:00Z"},
				{"id": 3, "name": "Z", "calories": 200, "date": "2024-03-05T10:00:00Z"}
			]
		}`))
	})

	sub := svc.AutocompleteOptions()
	defer sub.Cancel()
	recvFoods(t, sub)

	options, err := svc.UpdateAutocompleteOptions(context.Background(), "x")
	if err != nil {
		t.Fatalf("UpdateAutocompleteOptions: %v", err)
	}

	want := []string{"X", "Z"}
	if got := foodNames(options); !sameNames(got, want) {
		t.Fatalf("returned options = %v, want %v", got, want)
	}
	if got := foodNames(recvFoods(t, sub)); !sameNames(got, want) {
		t.Fatalf("published options = %v, want %v", got, want)
	}
}

func TestUpdateAutocompleteEmptyQueryShortCircuits(t *testing.T) {
	var calls atomic.Int64
	svc := newTestDataService(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"success": true, "message": "", "data": []}`))
	})

	sub := svc.AutocompleteOptions()
	defer sub.Cancel()
	recvFoods(t, sub)

	options, err := svc.UpdateAutocompleteOptions(context.Background(), "")
	if err != nil {
		t.Fatalf("UpdateAutocompleteOptions: %v", err)
	}
	if len(options) != 0 {
		t.Fatalf("options = %v, want empty", foodNames(options))
	}

	if published := recvFoods(t, sub); len(published) != 0 {
		t.Fatalf("published = %v, want empty", foodNames(published))
	}
	if calls.Load() != 0 {
		t.Fatalf("remote calls = %d, want 0", calls.Load())
	}
}

func TestChangeDateQueriesWholeDayAndReplaces(t *testing.T) {
	var gotStart, gotEnd string
	svc := newTestDataService(t, func(w http.ResponseWriter, r *http.Request) {
		gotStart = r.URL.Query().Get("start")
		gotEnd = r.URL.Query().Get("end")
		w.Write([]byte(`{"success": true, "message": "", "data": [{"id": 5, "name": "Soup", "calories": 120, "date": "2024-03-05T13:00:00Z"}]}`))
	})
	svc.SetTodaysFoods([]models.Food{{ID: 1, Name: "Stale"}})

	day := time.Date(2024, 3, 5, 15, 30, 0, 0, time.UTC)
	foods, err := svc.ChangeDate(context.Background(), day)
	if err != nil {
		t.Fatalf("ChangeDate: %v", err)
	}

	if gotStart != "2024-03-05T00:00:00Z" || gotEnd != "2024-03-06T00:00:00Z" {
		t.Fatalf("range = [%s, %s), want [2024-03-05T00:00:00Z, 2024-03-06T00:00:00Z)", gotStart, gotEnd)
	}
	if len(foods) != 1 || foods[0].Name != "Soup" {
		t.Fatalf("returned foods = %v", foodNames(foods))
	}

	// full replace, not merge
	cached := svc.Foods()
	if len(cached) != 1 || cached[0].ID != 5 {
		t.Fatalf("cached foods = %v, want exactly the returned set", foodNames(cached))
	}
}

func TestFailedCreateLeavesStateUntouched(t *testing.T) {
	svc := newTestDataService(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "message": "calories required", "data": null}`))
	})
	svc.SetTodaysFoods([]models.Food{{ID: 1, Name: "Eggs"}})

	sub := svc.TodaysFoods()
	defer sub.Cancel()
	recvFoods(t, sub)

	_, err := svc.AddFood(context.Background(), models.Food{Name: "Banana"})
	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error = %v, want *RequestError", err)
	}
	if reqErr.Message != "calories required" {
		t.Fatalf("message = %q", reqErr.Message)
	}

	if foods := svc.Foods(); len(foods) != 1 || foods[0].ID != 1 {
		t.Fatalf("foods = %v, want untouched [Eggs]", foodNames(foods))
	}

	// the failure must not have published: the next snapshot the subscriber
	// sees is the sentinel below, not an intermediate one
	svc.SetTodaysFoods([]models.Food{{ID: 8, Name: "Sentinel"}})
	if got := foodNames(recvFoods(t, sub)); !sameNames(got, []string{"Sentinel"}) {
		t.Fatalf("next snapshot = %v, want [Sentinel]", got)
	}
}

func TestOperationsRequireIdentity(t *testing.T) {
	var calls atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	t.Cleanup(srv.Close)

	svc := NewFoodDataService(NewFoodService(srv.URL), staticIdentity{err: ErrNoCurrentUser})
	t.Cleanup(svc.Close)
	svc.SetTodaysFoods([]models.Food{{ID: 1, Name: "Eggs"}})

	ctx := context.Background()
	ops := map[string]func() error{
		"ChangeDate": func() error {
			_, err := svc.ChangeDate(ctx, time.Now())
			return err
		},
		"UpdateAutocompleteOptions": func() error {
			_, err := svc.UpdateAutocompleteOptions(ctx, "egg")
			return err
		},
		"AddFood": func() error {
			_, err := svc.AddFood(ctx, models.Food{Name: "Banana"})
			return err
		},
		"SaveFood": func() error {
			_, err := svc.SaveFood(ctx, models.Food{ID: 1, Name: "Eggs"})
			return err
		},
		"DeleteFoods": func() error {
			_, err := svc.DeleteFoods(ctx, []uint{1}, nil)
			return err
		},
	}

	for name, op := range ops {
		if err := op(); !errors.Is(err, ErrNoCurrentUser) {
			t.Fatalf("%s error = %v, want ErrNoCurrentUser", name, err)
		}
	}

	if calls.Load() != 0 {
		t.Fatalf("remote calls = %d, want 0", calls.Load())
	}
	if foods := svc.Foods(); len(foods) != 1 {
		t.Fatalf("foods = %v, want untouched", foodNames(foods))
	}
}
