package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/comitanigiacomo/kanso-weeks/internal/core/domain"
	"github.com/comitanigiacomo/kanso-weeks/internal/core/reconciler"
	"github.com/comitanigiacomo/kanso-weeks/internal/core/services"
)

var _ reconciler.Gateway = (*Client)(nil)

const DefaultTimeout = 10 * time.Second

// Client talks to the /api/v1 HTTP API. It mirrors WeekService for week
// operations and implements the reconciler gateway for habits.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		http:    &http.Client{Timeout: timeout},
	}
}

// NewClientWithHTTP uses hc as is, e.g. an httptest server client.
func NewClientWithHTTP(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api/v1",
		http:    hc,
	}
}

type apiError struct {
	Error string       `json:"error"`
	Week  *domain.Week `json:"week,omitempty"`
}

// do sends body as JSON and decodes a 2xx response into out. Error
// statuses are turned back into domain errors; notFound is the sentinel
// for a 404 on this resource.
func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}, notFound error) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return domain.NewStoreError(op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.NewStoreError(op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || resp.StatusCode == http.StatusNoContent {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return domain.NewStoreError(op, fmt.Errorf("decode response: %w", err))
		}
		return nil
	}

	var apiErr apiError
	_ = json.NewDecoder(resp.Body).Decode(&apiErr)
	return c.statusError(op, resp.StatusCode, apiErr, notFound)
}

func (c *Client) statusError(op string, status int, apiErr apiError, notFound error) error {
	switch {
	case status == http.StatusBadRequest:
		msg := strings.TrimPrefix(apiErr.Error, domain.ErrValidation.Error()+": ")
		return fmt.Errorf("%w: %s", domain.ErrValidation, msg)
	case status == http.StatusNotFound && notFound != nil:
		return notFound
	case apiErr.Week != nil:
		return &domain.PartialCreationError{
			Week: apiErr.Week,
			Err:  domain.NewStoreError(op, errors.New(apiErr.Error)),
		}
	}

	msg := apiErr.Error
	if msg == "" {
		msg = http.StatusText(status)
	}
	return domain.NewStoreError(op, fmt.Errorf("status %d: %s", status, msg))
}

func escape(id string) string {
	return url.PathEscape(id)
}

func (c *Client) ListWeeks(ctx context.Context) ([]*domain.Week, error) {
	var weeks []*domain.Week
	if err := c.do(ctx, "list weeks", http.MethodGet, "/weeks", nil, &weeks, nil); err != nil {
		return nil, err
	}
	return weeks, nil
}

type createWeekBody struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date,omitempty"`
}

// CreateWeek returns the week with a *domain.PartialCreationError when the
// server stored it without its days.
func (c *Client) CreateWeek(ctx context.Context, input services.CreateWeekInput) (*domain.Week, error) {
	var week domain.Week
	err := c.do(ctx, "create week", http.MethodPost, "/weeks",
		createWeekBody{StartDate: input.StartDate, EndDate: input.EndDate}, &week, nil)
	if err != nil {
		var partial *domain.PartialCreationError
		if errors.As(err, &partial) {
			return partial.Week, err
		}
		return nil, err
	}
	return &week, nil
}

type dayResponse struct {
	domain.DaySummary
	Progress int `json:"progress"`
}

func (c *Client) FetchWeekWithDays(ctx context.Context, id string) (*domain.WeekTree, error) {
	var resp struct {
		Week *domain.Week  `json:"week"`
		Days []dayResponse `json:"days"`
	}
	if err := c.do(ctx, "get week", http.MethodGet, "/weeks/"+escape(id), nil, &resp, domain.ErrWeekNotFound); err != nil {
		return nil, err
	}

	tree := &domain.WeekTree{Week: resp.Week, Days: make([]domain.DaySummary, 0, len(resp.Days))}
	for _, d := range resp.Days {
		tree.Days = append(tree.Days, d.DaySummary)
	}
	return tree, nil
}

func (c *Client) DeleteWeek(ctx context.Context, id string) error {
	return c.do(ctx, "delete week", http.MethodDelete, "/weeks/"+escape(id), nil, nil, domain.ErrWeekNotFound)
}

func (c *Client) FetchDayWithHabits(ctx context.Context, id string) (*domain.DayTree, error) {
	var tree domain.DayTree
	if err := c.do(ctx, "get day", http.MethodGet, "/days/"+escape(id), nil, &tree, domain.ErrDayNotFound); err != nil {
		return nil, err
	}
	return &tree, nil
}

func (c *Client) SetDayCompletion(ctx context.Context, id string, completed bool) error {
	body := map[string]bool{"is_completed": completed}
	return c.do(ctx, "set day completed", http.MethodPatch, "/days/"+escape(id), body, nil, domain.ErrDayNotFound)
}

func (c *Client) ListHabitsByDay(ctx context.Context, dayID string) ([]*domain.Habit, error) {
	var habits []*domain.Habit
	if err := c.do(ctx, "list habits", http.MethodGet, "/days/"+escape(dayID)+"/habits", nil, &habits, domain.ErrDayNotFound); err != nil {
		return nil, err
	}
	return habits, nil
}

// CreateHabit fills in the id and creation time assigned by the server.
func (c *Client) CreateHabit(ctx context.Context, habit *domain.Habit) error {
	var created domain.Habit
	body := map[string]string{"name": habit.Name}
	if err := c.do(ctx, "create habit", http.MethodPost, "/days/"+escape(habit.DayID)+"/habits", body, &created, domain.ErrDayNotFound); err != nil {
		return err
	}
	*habit = created
	return nil
}

func (c *Client) SetHabitDone(ctx context.Context, id string, done bool) error {
	body := map[string]bool{"is_done": done}
	return c.do(ctx, "set habit done", http.MethodPatch, "/habits/"+escape(id), body, nil, domain.ErrHabitNotFound)
}

func (c *Client) RenameHabit(ctx context.Context, id string, name string) error {
	body := map[string]string{"name": name}
	return c.do(ctx, "rename habit", http.MethodPatch, "/habits/"+escape(id), body, nil, domain.ErrHabitNotFound)
}

func (c *Client) DeleteHabit(ctx context.Context, id string) error {
	return c.do(ctx, "delete habit", http.MethodDelete, "/habits/"+escape(id), nil, nil, domain.ErrHabitNotFound)
}
