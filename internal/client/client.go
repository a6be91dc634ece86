// Package client talks to the content service REST API.
package client

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

	"predman/internal/domain"
)

// Client wraps http.Client with helpers for the JSON API.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// New creates a client for baseURL authenticated with token (may be empty).
func New(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 15 * time.Second},
	}
}

// do sends body as JSON and decodes a 2xx response into out (if non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf := new(bytes.Buffer)
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body struct {
		Error string `json:"error"`
	}
	msg := strings.TrimSpace(string(raw))
	if json.Unmarshal(raw, &body) == nil && body.Error != "" {
		msg = body.Error
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

func esc(s string) string { return url.PathEscape(s) }

// users

func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/v1/users/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/v1/users/login", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Me(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, http.MethodGet, "/v1/users", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// projects

func (c *Client) JoinedProjects(ctx context.Context) ([]domain.Project, error) {
	var out []domain.Project
	err := c.do(ctx, http.MethodGet, "/v1/projects/user", nil, &out)
	return out, err
}

func (c *Client) OwnedProjects(ctx context.Context) ([]domain.Project, error) {
	var out []domain.Project
	err := c.do(ctx, http.MethodGet, "/v1/projects/owner", nil, &out)
	return out, err
}

func (c *Client) CreateProject(ctx context.Context, np domain.NewProject) (*domain.ProjectInfo, error) {
	var out domain.ProjectInfo
	if err := c.do(ctx, http.MethodPost, "/v1/projects", np, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ProjectInfo(ctx context.Context, projectID string) (*domain.ProjectInfo, error) {
	var out domain.ProjectInfo
	if err := c.do(ctx, http.MethodGet, "/v1/projects/info/"+esc(projectID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Members(ctx context.Context, projectID string) ([]domain.User, error) {
	var out []domain.User
	err := c.do(ctx, http.MethodGet, "/v1/projects/members/"+esc(projectID), nil, &out)
	return out, err
}

func (c *Client) AddMember(ctx context.Context, req domain.MemberByEmail) (*domain.User, error) {
	var out domain.User
	if err := c.do(ctx, http.MethodPost, "/v1/projects/members", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Statistics(ctx context.Context, projectID string) ([]domain.ProjectStatistics, error) {
	var out []domain.ProjectStatistics
	err := c.do(ctx, http.MethodGet, "/v1/projects/statistics/"+esc(projectID), nil, &out)
	return out, err
}

// tasks

// FetchBoard returns the ordered columns of a project.
func (c *Client) FetchBoard(ctx context.Context, projectID string) (domain.Board, error) {
	var out domain.Board
	err := c.do(ctx, http.MethodGet, "/v1/tasks/project/"+esc(projectID), nil, &out)
	return out, err
}

func (c *Client) Task(ctx context.Context, taskID string) (*domain.TaskInfo, error) {
	var out domain.TaskInfo
	if err := c.do(ctx, http.MethodGet, "/v1/tasks/"+esc(taskID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateTask(ctx context.Context, nt domain.NewTask) (domain.Task, error) {
	var out domain.Task
	err := c.do(ctx, http.MethodPost, "/v1/tasks", nt, &out)
	return out, err
}

// UpdateTask sends a partial update. A move carries isNextUpdated with next
// set to the following task, or null for the end of the column.
func (c *Client) UpdateTask(ctx context.Context, taskID string, patch domain.TaskPatch) (domain.Task, error) {
	var out domain.Task
	err := c.do(ctx, http.MethodPatch, "/v1/tasks/"+esc(taskID), patch, &out)
	return out, err
}

func (c *Client) DeleteTask(ctx context.Context, ref domain.TaskRef) error {
	return c.do(ctx, http.MethodDelete, "/v1/tasks", ref, nil)
}
