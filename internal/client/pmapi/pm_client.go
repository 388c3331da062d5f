package pmapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/TWRT/pm-dashboard/internal/client"
	"github.com/TWRT/pm-dashboard/internal/models"
)

const DefaultTimeout = 10 * time.Second

// PMClient talks to the project-management API. Every call asks the session
// provider for a fresh bearer token; without one the call goes out anonymous.
type PMClient struct {
	baseUrl    string
	session    client.SessionProvider
	httpClient *http.Client
	logger     *slog.Logger
}

var _ client.Gateway = (*PMClient)(nil)

func NewPMClient(baseUrl string, session client.SessionProvider, httpClient *http.Client, logger *slog.Logger) *PMClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PMClient{
		baseUrl:    strings.TrimRight(baseUrl, "/"),
		session:    session,
		httpClient: httpClient,
		logger:     logger,
	}
}

func (c *PMClient) GetProjects(ctx context.Context) ([]models.Project, error) {
	var projects []models.Project
	if err := c.do(ctx, "get projects", http.MethodGet, "projects", nil, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (c *PMClient) CreateProject(ctx context.Context, project models.Project) (*models.Project, error) {
	var created models.Project
	if err := c.do(ctx, "create project", http.MethodPost, "projects", project, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *PMClient) GetTasks(ctx context.Context, projectId int) ([]models.Task, error) {
	var tasks []models.Task
	path := "tasks?projectId=" + strconv.Itoa(projectId)
	if err := c.do(ctx, "get tasks", http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *PMClient) GetTasksByUser(ctx context.Context, userId int) ([]models.Task, error) {
	var tasks []models.Task
	path := "tasks/user/" + strconv.Itoa(userId)
	if err := c.do(ctx, "get tasks by user", http.MethodGet, path, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (c *PMClient) CreateTask(ctx context.Context, task models.Task) (*models.Task, error) {
	var created models.Task
	if err := c.do(ctx, "create task", http.MethodPost, "tasks", task, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *PMClient) UpdateTaskStatus(ctx context.Context, taskId int, status models.Status) (*models.Task, error) {
	var updated models.Task
	path := "tasks/" + strconv.Itoa(taskId) + "/status"
	body := UpdateTaskStatusRequest{Status: status}
	if err := c.do(ctx, "update task status", http.MethodPatch, path, body, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *PMClient) GetUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.do(ctx, "get users", http.MethodGet, "users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *PMClient) GetTeams(ctx context.Context) ([]models.Team, error) {
	var teams []models.Team
	if err := c.do(ctx, "get teams", http.MethodGet, "teams", nil, &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

func (c *PMClient) Search(ctx context.Context, query string) (*models.SearchResult, error) {
	var result models.SearchResult
	path := "search?query=" + url.QueryEscape(query)
	if err := c.do(ctx, "search", http.MethodGet, path, nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetAuthUser joins the identity provider's view of the user with the
// server's user record for the session subject. Any failure is an AuthError.
func (c *PMClient) GetAuthUser(ctx context.Context) (*models.AuthUser, error) {
	if c.session == nil {
		return nil, &client.AuthError{Message: client.ErrNoSession.Error(), Err: client.ErrNoSession}
	}

	var identity models.Identity
	var session client.Session

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		identity, err = c.session.CurrentUser(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		session, err = c.session.FetchSession(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, client.AsAuthError(err)
	}
	if session.UserSub == "" {
		return nil, &client.AuthError{Message: client.ErrNoSession.Error(), Err: client.ErrNoSession}
	}

	var details models.User
	path := "users/" + url.PathEscape(session.UserSub)
	if err := c.do(ctx, "get user", http.MethodGet, path, nil, &details); err != nil {
		return nil, client.AsAuthError(err)
	}

	return &models.AuthUser{
		User:        identity,
		UserSub:     session.UserSub,
		UserDetails: &details,
	}, nil
}

func (c *PMClient) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseUrl+"/"+path, body)
	if err != nil {
		return fmt.Errorf("build request (%s): %w", op, err)
	}

	requestId := uuid.NewString()
	req.Header.Set("X-Request-Id", requestId)
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.accessToken(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", slog.String("op", op), slog.String("request_id", requestId), slog.String("error", err.Error()))
		return &client.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &client.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr ErrorResponse
		message := ""
		if err := json.Unmarshal(respBody, &apiErr); err == nil {
			message = apiErr.text()
		}
		c.logger.Warn("request rejected",
			slog.String("op", op),
			slog.String("request_id", requestId),
			slog.Int("status", resp.StatusCode),
		)
		if resp.StatusCode == http.StatusUnauthorized {
			if message == "" {
				message = client.ErrUnauthorized.Error()
			}
			return &client.AuthError{Message: message, Err: fmt.Errorf("%s: %w", op, client.ErrUnauthorized)}
		}
		return &client.NetworkError{Op: op, StatusCode: resp.StatusCode, Message: message}
	}

	if out == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &client.NetworkError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("parse response: %w", err)}
	}
	return nil
}

func (c *PMClient) accessToken(ctx context.Context) string {
	if c.session == nil {
		return ""
	}
	session, err := c.session.FetchSession(ctx)
	if err != nil {
		c.logger.Debug("no session, sending unauthenticated request", slog.String("error", err.Error()))
		return ""
	}
	return session.AccessToken
}
