package habitica

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pkg/errors"
)

const (
	DefaultBaseURL = "https://habitica.com/api/v3"
	DefaultTimeout = 30 * time.Second

	clientName = "ConvertDailiesToTodos"
)

// Credentials identify one Habitica account.
type Credentials struct {
	UserID   string
	APIToken string
}

// Client talks to the Habitica v3 REST API on behalf of a single account.
type Client struct {
	baseURL string
	creds   Credentials
	http    *http.Client
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.Timeout = timeout
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

func NewClient(creds Credentials, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		creds:   creds,
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is returned when Habitica answers with an unexpected status.
// Body keeps the raw payload for the account log.
type APIError struct {
	Op         string
	StatusCode int
	Code       string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status=%d body=%s", e.Op, e.StatusCode, e.Body)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Message string          `json:"message"`
}

// GetUser fetches the authenticated user's state.
func (c *Client) GetUser(ctx context.Context) (*User, error) {
	var user User
	if err := c.do(ctx, "fetch user", http.MethodGet, "/user", nil, http.StatusOK, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListDailies returns every Daily of the account in listing order.
func (c *Client) ListDailies(ctx context.Context) ([]Daily, error) {
	var dailies []Daily
	if err := c.do(ctx, "list dailies", http.MethodGet, "/tasks/user?type=dailys", nil, http.StatusOK, &dailies); err != nil {
		return nil, err
	}
	return dailies, nil
}

// CreateTodo submits a new To-Do and returns the entity Habitica created.
func (c *Client) CreateTodo(ctx context.Context, todo Todo) (*Todo, error) {
	var created Todo
	if err := c.do(ctx, "create todo", http.MethodPost, "/tasks/user", todo, http.StatusCreated, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ScoreUp checks off the task, which completes a Daily for today.
func (c *Client) ScoreUp(ctx context.Context, taskID string) error {
	path := fmt.Sprintf("/tasks/%s/score/up", url.PathEscape(taskID))
	return c.do(ctx, "score task", http.MethodPost, path, nil, http.StatusOK, nil)
}

func (c *Client) do(ctx context.Context, op, method, path string, payload any, want int, out any) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrapf(err, "%s: encode request", op)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrapf(err, "%s: build request", op)
	}
	req.Header.Set("x-client", c.creds.UserID+"-"+clientName)
	req.Header.Set("x-api-user", c.creds.UserID)
	req.Header.Set("x-api-key", c.creds.APIToken)
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, op)
	}
	defer res.Body.Close()
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "%s: read response", op)
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)
	if res.StatusCode != want {
		return &APIError{
			Op:         op,
			StatusCode: res.StatusCode,
			Code:       env.Error,
			Message:    env.Message,
			Body:       string(raw),
		}
	}
	if out == nil {
		return nil
	}
	if decodeErr != nil {
		return errors.Wrapf(decodeErr, "%s: decode response", op)
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return errors.Wrapf(err, "%s: decode data", op)
	}
	return nil
}
