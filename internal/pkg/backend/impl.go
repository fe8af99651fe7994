// Package backend is the client for the match service HTTP API. The backend
// is a projection of chain state, never the system of record.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/samber/do/v2"
)

var ErrNotFound = errors.New("not found")

// APIError is a non-2xx response. The backend reports failures through a
// "detail" field; when absent the HTTP status text stands in.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if len(e.Detail) > 0 {
		return e.Detail
	}

	return http.StatusText(e.StatusCode)
}

func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}

	return nil
}

type BackendService struct {
	BaseURL string

	httpClient *http.Client
}

func NewBackendService(i do.Injector) (*BackendService, error) {
	baseURL := do.MustInvokeNamed[string](i, "backend-url")

	return &BackendService{
		BaseURL: baseURL,

		httpClient: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

func (s *BackendService) ListRooms(ctx context.Context) ([]Room, error) {
	var rooms []Room

	err := s.getJSON(ctx, "/rooms", &rooms)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}

	return rooms, nil
}

func (s *BackendService) GetGame(ctx context.Context, gameID string) (*GameState, error) {
	var game GameState

	err := s.getJSON(ctx, "/game/"+url.PathEscape(gameID), &game)
	if err != nil {
		return nil, fmt.Errorf("failed to get game %s: %w", gameID, err)
	}

	return &game, nil
}

func (s *BackendService) GetLeaderboard(ctx context.Context, limit int) (*LeaderboardResponse, error) {
	var leaderboard LeaderboardResponse

	err := s.getJSON(ctx, "/leaderboard?limit="+strconv.Itoa(limit), &leaderboard)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}

	return &leaderboard, nil
}

func (s *BackendService) GetHistory(ctx context.Context, limit int) (*HistoryResponse, error) {
	var history HistoryResponse

	err := s.getJSON(ctx, "/history?limit="+strconv.Itoa(limit), &history)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}

	return &history, nil
}

func (s *BackendService) CreateRoom(ctx context.Context, req CreateRoomRequest) error {
	err := s.postJSON(ctx, "/create_room", req)
	if err != nil {
		return fmt.Errorf("failed to create room: %w", err)
	}

	return nil
}

func (s *BackendService) JoinRoom(ctx context.Context, req JoinRoomRequest) error {
	err := s.postJSON(ctx, "/join_room", req)
	if err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	return nil
}

func (s *BackendService) SubmitGuess(ctx context.Context, req GuessRequest) error {
	err := s.postJSON(ctx, "/submit", req)
	if err != nil {
		return fmt.Errorf("failed to submit guess: %w", err)
	}

	return nil
}

func (s *BackendService) CancelRoom(ctx context.Context, req CancelRoomRequest) error {
	err := s.postJSON(ctx, "/cancel_room", req)
	if err != nil {
		return fmt.Errorf("failed to cancel room: %w", err)
	}

	return nil
}

func (s *BackendService) RefundRoom(ctx context.Context, req RefundRoomRequest) error {
	err := s.postJSON(ctx, "/refund_room", req)
	if err != nil {
		return fmt.Errorf("failed to refund room: %w", err)
	}

	return nil
}

// ResolveImageURL turns a challenge image reference into a fetchable URL.
// Absolute references pass through; relative ones are anchored to the
// backend.
func (s *BackendService) ResolveImageURL(imageURL string) string {
	if len(imageURL) == 0 {
		return ""
	}

	parsed, err := url.Parse(imageURL)
	if err == nil && parsed.IsAbs() {
		return imageURL
	}

	if imageURL[0] != '/' {
		imageURL = "/" + imageURL
	}

	return s.BaseURL + imageURL
}

func (s *BackendService) getJSON(ctx context.Context, path string, result any) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	return s.do(request, result)
}

func (s *BackendService) postJSON(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, s.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	request.Header.Set("Content-Type", "application/json")

	return s.do(request, nil)
}

func (s *BackendService) do(request *http.Request, result any) error {
	response, err := s.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("failed to reach backend: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		apiError := &APIError{StatusCode: response.StatusCode}

		var detail struct {
			Detail string `json:"detail"`
		}
		if err := json.NewDecoder(response.Body).Decode(&detail); err == nil {
			apiError.Detail = detail.Detail
		}

		return apiError
	}

	if result != nil {
		err = json.NewDecoder(response.Body).Decode(result)
		if err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}
