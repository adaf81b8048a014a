package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nhle/tareas/internal/model"
)

// DefaultTimeout bounds a single request when no option overrides it.
const DefaultTimeout = 30 * time.Second

// Client is a thin HTTP client for the tareas REST API. Each call is a
// single request: there is no retry, deduplication or cancellation beyond
// the caller's context.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithLogger routes request logs to l instead of the standard logger.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for the server rooted at baseURL
// (e.g., http://localhost:3333).
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server root this client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Register creates a new account.
func (c *Client) Register(
	ctx context.Context,
	reg model.Registration,
) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/register", reg, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login exchanges credentials for the user's id and name.
func (c *Client) Login(
	ctx context.Context,
	email, password string,
) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	body := model.Credentials{Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ListTasks fetches every task owned by userID.
func (c *Client) ListTasks(
	ctx context.Context,
	userID int,
) (*model.TaskResponse, error) {
	var resp model.TaskResponse
	path := "/tarea/" + strconv.Itoa(userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// CreateTask submits a new task.
func (c *Client) CreateTask(
	ctx context.Context,
	task model.NewTask,
) (*model.TaskResponse, error) {
	var resp model.TaskResponse
	if err := c.do(ctx, http.MethodPost, "/tarea", task, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateTask sends the non-nil fields of patch for task patch.ID.
func (c *Client) UpdateTask(
	ctx context.Context,
	patch model.TaskPatch,
) (*model.TaskResponse, error) {
	var resp model.TaskResponse
	path := "/tarea/" + strconv.Itoa(patch.ID)
	if err := c.do(ctx, http.MethodPut, path, patch, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// DeleteTask removes a task. No screen or command reaches it yet; it is
// kept so the client covers every endpoint the server exposes.
func (c *Client) DeleteTask(
	ctx context.Context,
	id int,
) (*model.TaskResponse, error) {
	var resp model.TaskResponse
	path := "/tarea/" + strconv.Itoa(id)
	if err := c.do(ctx, http.MethodDelete, path, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// do builds the request, sends it once and decodes the JSON envelope.
// Anything that prevents a well-formed envelope from arriving is reported
// as a *TransportError.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return &TransportError{Method: method, Path: path, Err: err}
	}

	requestID := uuid.New().String()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Printf("api %s %s id=%s failed after %s: %v",
			method, path, requestID, time.Since(start).Round(time.Millisecond), err)
		return &TransportError{Method: method, Path: path, Err: err}
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()

	c.logger.Printf("api %s %s id=%s status=%d in %s",
		method, path, requestID, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if readErr != nil {
		return &TransportError{
			Method: method, Path: path, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("reading response body: %w", readErr),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &TransportError{
			Method: method, Path: path, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet(respBody)),
		}
	}

	if result == nil {
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return &TransportError{
			Method: method, Path: path, StatusCode: resp.StatusCode,
			Err: fmt.Errorf("unmarshaling response: %w", err),
		}
	}

	return nil
}

// snippet trims a response body for inclusion in an error message.
func snippet(b []byte) string {
	const limit = 200
	s := strings.TrimSpace(string(b))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
