package services

import (
	"context"
	"time"

	"trackfit/models"
)

// FoodDataService owns the client-side view of the food log: the entries of
// the currently selected day and the transient autocomplete suggestions. Every
// successful remote operation is merged into the owned collection and the new
// snapshot is broadcast, while the result is also returned to the caller.
//
// Operations may run concurrently; publishes happen in completion order and
// the last mutation to finish wins. Callers that depend on one mutation
// landing before another must serialize those calls themselves.
type FoodDataService struct {
	foods        *FoodService
	identity     Identity
	todays       *FoodSource
	autocomplete *FoodSource
}

func NewFoodDataService(foods *FoodService, identity Identity) *FoodDataService {
	return &FoodDataService{
		foods:        foods,
		identity:     identity,
		todays:       NewFoodSource(nil),
		autocomplete: NewFoodSource(nil),
	}
}

// Foods returns the current today's-foods snapshot without subscribing.
func (s *FoodDataService) Foods() []models.Food {
	return s.todays.Value()
}

// TodaysFoods subscribes to the today's-foods collection.
func (s *FoodDataService) TodaysFoods() *FoodSubscription {
	return s.todays.Subscribe()
}

// AutocompleteOptions subscribes to the autocomplete collection.
func (s *FoodDataService) AutocompleteOptions() *FoodSubscription {
	return s.autocomplete.Subscribe()
}

// SetTodaysFoods replaces and publishes the today's-foods collection directly,
// without touching the server.
func (s *FoodDataService) SetTodaysFoods(foods []models.Food) {
	s.todays.Next(foods)
}

// Close cancels all active subscriptions on both collections.
func (s *FoodDataService) Close() {
	s.todays.Close()
	s.autocomplete.Close()
}

// ChangeDate loads the entries of the given calendar day and publishes them as
// the new today's-foods collection. The query covers [midnight, next midnight)
// in day's own location.
func (s *FoodDataService) ChangeDate(ctx context.Context, day time.Time) ([]models.Food, error) {
	userID, err := s.identity.CurrentUserID()
	if err != nil {
		return nil, err
	}

	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	end := start.AddDate(0, 0, 1)

	foods, err := s.foods.GetFoodsByDate(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}

	s.todays.Next(foods)
	return foods, nil
}

// UpdateAutocompleteOptions refreshes the suggestion list for a name query.
// An empty query publishes an empty list without a remote call. Results are
// deduplicated by calorie value (first occurrence wins): the UI shows the
// calorie count as the disambiguator, so same-calorie entries would look like
// duplicates. Intentionally lossy.
func (s *FoodDataService) UpdateAutocompleteOptions(ctx context.Context, query string) ([]models.Food, error) {
	if query == "" {
		s.autocomplete.Next(nil)
		return []models.Food{}, nil
	}

	userID, err := s.identity.CurrentUserID()
	if err != nil {
		return nil, err
	}

	foods, err := s.foods.GetFoodsByName(ctx, userID, query)
	if err != nil {
		return nil, err
	}

	options := dedupeByCalories(foods)
	s.autocomplete.Next(options)
	return options, nil
}

// AddFood creates the entry remotely and prepends the persisted form to the
// today's-foods collection, newest first.
func (s *FoodDataService) AddFood(ctx context.Context, food models.Food) (models.Food, error) {
	userID, err := s.identity.CurrentUserID()
	if err != nil {
		return models.Food{}, err
	}

	saved, err := s.foods.AddFood(ctx, userID, food)
	if err != nil {
		return models.Food{}, err
	}

	s.todays.Next(append([]models.Food{saved}, s.todays.Value()...))
	return saved, nil
}

// SaveFood updates the entry remotely and replaces the matching entry in
// place, keeping its position. When no entry with that id is cached the
// unchanged collection is republished; that is a defined no-op, not an error.
func (s *FoodDataService) SaveFood(ctx context.Context, food models.Food) (models.Food, error) {
	userID, err := s.identity.CurrentUserID()
	if err != nil {
		return models.Food{}, err
	}

	saved, err := s.foods.UpdateFood(ctx, userID, food)
	if err != nil {
		return models.Food{}, err
	}

	foods := s.todays.Value()
	for i := range foods {
		if foods[i].ID == saved.ID {
			foods[i] = saved
		}
	}
	s.todays.Next(foods)
	return saved, nil
}

// DeleteFoods removes the entries remotely as one batch. When the server
// confirms, the today's-foods collection becomes exactly remainingFoods, the
// caller's locally computed post-delete view; it is not recomputed from the
// ids. On failure the collection is left untouched.
func (s *FoodDataService) DeleteFoods(ctx context.Context, foodIDs []uint, remainingFoods []models.Food) (models.ApiResponse, error) {
	userID, err := s.identity.CurrentUserID()
	if err != nil {
		return models.ApiResponse{}, err
	}

	resp, err := s.foods.DeleteFoods(ctx, userID, foodIDs)
	if err != nil {
		return models.ApiResponse{}, err
	}

	if resp.Success {
		s.todays.Next(remainingFoods)
	}
	return resp, nil
}

// dedupeByCalories keeps the first entry of each calorie value, preserving
// server order.
func dedupeByCalories(foods []models.Food) []models.Food {
	seen := make(map[int]bool, len(foods))
	options := make([]models.Food, 0, len(foods))
	for _, food := range foods {
		if seen[food.Calories] {
			continue
		}
		seen[food.Calories] = true
		options = append(options, food)
	}
	return options
}
