// Package bookingapi is the HTTP client of the remote booking service.
package bookingapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// APIError is a non-2xx answer of the booking service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

// Client calls the booking service schedule, density and booking endpoints.
type Client struct {
	baseURL    string
	apiKey     string
	apiExtra   string
	httpClient *http.Client
	newKey     func() string
}

// NewClient constructs a client with baseURL, API key and extra header.
func NewClient(baseURL, apiKey, apiExtra string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		apiExtra:   apiExtra,
		httpClient: &http.Client{Timeout: timeout},
		newKey:     func() string { return uuid.NewString() },
	}
}

// GetSchedules fetches the schedule list for a 0-based month.
func (c *Client) GetSchedules(ctx context.Context, year, month0 int) ([]ScheduleDTO, error) {
	endpoint := fmt.Sprintf("%s/api/v1/schedules?year=%d&month=%d", c.baseURL, year, month0)
	var wrap SchedulesResponse
	if err := c.doGet(ctx, endpoint, &wrap); err != nil {
		return nil, err
	}
	return wrap.Schedules, nil
}

// GetDensity fetches per-day occupancy for a 0-based month.
func (c *Client) GetDensity(ctx context.Context, year, month0 int) (map[string]DayDensityDTO, error) {
	endpoint := fmt.Sprintf("%s/api/v1/density?year=%d&month=%d", c.baseURL, year, month0)
	var wrap DensityResponse
	if err := c.doGet(ctx, endpoint, &wrap); err != nil {
		return nil, err
	}
	if wrap.Days == nil {
		wrap.Days = map[string]DayDensityDTO{}
	}
	return wrap.Days, nil
}

// CreateBooking posts a booking. Each call carries a fresh Idempotency-Key.
func (c *Client) CreateBooking(ctx context.Context, req CreateBookingRequest) (*CreateBookingResponse, error) {
	endpoint := fmt.Sprintf("%s/api/v1/bookings", c.baseURL)
	var resp CreateBookingResponse
	if err := c.doPost(ctx, endpoint, c.newKey(), req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// HealthCheck checks if the booking service is available.
func (c *Client) HealthCheck(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/healthz", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed: %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) doGet(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return err
	}
	c.addHeaders(req)
	return c.do(req, out)
}

func (c *Client) doPost(ctx context.Context, endpoint, idempotencyKey string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}
	c.addHeaders(req)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if out == nil {
		return nil
	}
	dec := json.NewDecoder(resp.Body)
	return dec.Decode(out)
}

func (c *Client) addHeaders(req *http.Request) {
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}
	if c.apiExtra != "" {
		req.Header.Set("x-api-extra", c.apiExtra)
	}
}

// errorMessage extracts "error" or "message" from a JSON body, else the trimmed text.
func errorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, 4096))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return strings.TrimSpace(string(raw))
}

// monthQuery is the 0-based month the service expects.
func monthQuery(m time.Month) int {
	return int(m) - 1
}

