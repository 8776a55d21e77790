package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"trackfit/models"
)

// FoodService translates food log operations into calls against the REST API.
// It is stateless apart from the configured endpoint and auth token; every
// operation takes the owning user id explicitly.
type FoodService struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewFoodService initializes the FoodService against the given API base URL.
func NewFoodService(baseURL string) *FoodService {
	return &FoodService{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// SetAuthToken installs the bearer token sent with every request.
func (s *FoodService) SetAuthToken(token string) {
	s.token = token
}

// apiEnvelope mirrors models.ApiResponse with the payload left undecoded.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// List returns every food entry of the user.
func (s *FoodService) List(ctx context.Context, userID uint) ([]models.Food, error) {
	return s.getFoods(ctx, "list foods", s.foodsURL(userID, nil))
}

// GetFoodsByDate returns entries whose timestamp falls in [start, end).
func (s *FoodService) GetFoodsByDate(ctx context.Context, userID uint, start, end time.Time) ([]models.Food, error) {
	query := url.Values{}
	query.Set("start", start.Format(time.RFC3339))
	query.Set("end", end.Format(time.RFC3339))
	return s.getFoods(ctx, "list foods by date", s.foodsURL(userID, query))
}

// GetFoodsByName returns entries whose name matches the given query; matching
// semantics are the server's.
func (s *FoodService) GetFoodsByName(ctx context.Context, userID uint, name string) ([]models.Food, error) {
	query := url.Values{}
	query.Set("name", name)
	return s.getFoods(ctx, "list foods by name", s.foodsURL(userID, query))
}

// AddFood creates the entry and returns its persisted form, id included.
func (s *FoodService) AddFood(ctx context.Context, userID uint, food models.Food) (models.Food, error) {
	return s.sendFood(ctx, "add food", http.MethodPost, s.foodsURL(userID, nil), food)
}

// UpdateFood saves changes to an existing entry and returns the persisted form.
func (s *FoodService) UpdateFood(ctx context.Context, userID uint, food models.Food) (models.Food, error) {
	target := fmt.Sprintf("%s/%d", s.foodsURL(userID, nil), food.ID)
	return s.sendFood(ctx, "update food", http.MethodPut, target, food)
}

// DeleteFoods removes the given entries as one batch. The returned envelope
// reports overall success or failure of the batch.
func (s *FoodService) DeleteFoods(ctx context.Context, userID uint, foodIDs []uint) (models.ApiResponse, error) {
	const op = "delete foods"

	body, err := json.Marshal(map[string][]uint{"ids": foodIDs})
	if err != nil {
		return models.ApiResponse{}, &RequestError{Op: op, Err: err}
	}

	env, err := s.do(ctx, op, http.MethodDelete, s.foodsURL(userID, nil), bytes.NewReader(body))
	if err != nil {
		return models.ApiResponse{}, err
	}

	return models.ApiResponse{Success: env.Success, Message: env.Message}, nil
}

func (s *FoodService) foodsURL(userID uint, query url.Values) string {
	u := fmt.Sprintf("%s/users/%d/foods", s.baseURL, userID)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// getFoods performs a list-style request and adapts every raw record.
func (s *FoodService) getFoods(ctx context.Context, op, target string) ([]models.Food, error) {
	env, err := s.do(ctx, op, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	var records []models.FoodRecord
	if err := json.Unmarshal(env.Data, &records); err != nil {
		return nil, &RequestError{Op: op, Err: fmt.Errorf("failed to decode food list: %w", err)}
	}

	foods := make([]models.Food, 0, len(records))
	for _, record := range records {
		foods = append(foods, models.AdaptFood(record))
	}
	return foods, nil
}

// sendFood performs a create/update-style request carrying one entry.
func (s *FoodService) sendFood(ctx context.Context, op, method, target string, food models.Food) (models.Food, error) {
	body, err := json.Marshal(food)
	if err != nil {
		return models.Food{}, &RequestError{Op: op, Err: err}
	}

	env, err := s.do(ctx, op, method, target, bytes.NewReader(body))
	if err != nil {
		return models.Food{}, err
	}

	var record models.FoodRecord
	if err := json.Unmarshal(env.Data, &record); err != nil {
		return models.Food{}, &RequestError{Op: op, Err: fmt.Errorf("failed to decode food record: %w", err)}
	}
	return models.AdaptFood(record), nil
}

// do runs one request and validates the response envelope. A success=false
// envelope or a null payload is a failed operation carrying the server message.
func (s *FoodService) do(ctx context.Context, op, method, target string, body io.Reader) (apiEnvelope, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return apiEnvelope{}, &RequestError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return apiEnvelope{}, &RequestError{Op: op, Err: fmt.Errorf("failed to call food API: %w", err)}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return apiEnvelope{}, &RequestError{Op: op, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	var env apiEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return apiEnvelope{}, &RequestError{Op: op, Err: fmt.Errorf("food API error %d: %s", resp.StatusCode, string(raw))}
	}
	if !env.Success {
		return apiEnvelope{}, &RequestError{Op: op, Message: env.Message}
	}
	if method != http.MethodDelete && (len(env.Data) == 0 || string(env.Data) == "null") {
		return apiEnvelope{}, &RequestError{Op: op, Message: env.Message, Err: fmt.Errorf("envelope carried no data")}
	}

	return env, nil
}
