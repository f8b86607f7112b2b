// Package content is the client side of the remote content service that
// stores projects, titles and pages.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pluqqy/pluqqy-studio/pkg/models"
)

// Service is the contract consumed by the editing engine
type Service interface {
	CreateProject(ctx context.Context, title, prompt string) (*models.Project, error)
	GetProject(ctx context.Context, projectID string) (*models.Project, error)
	GetTitle(ctx context.Context, projectID string) (models.ProjectTitle, error)
	UpdateTitle(ctx context.Context, projectID, title string) (models.ProjectTitle, error)
	GetPage(ctx context.Context, projectID string, pageNumber int) (models.Page, error)
	UpdatePage(ctx context.Context, projectID string, pageNumber int, update models.PageUpdate) (models.Page, error)
	AddPage(ctx context.Context, projectID string, page models.PageContent) (models.Page, error)
	DeletePage(ctx context.Context, projectID string, pageNumber int) error
	Generate(ctx context.Context, projectID string, req models.GenerationRequest) (*models.Project, error)
	Chat(ctx context.Context, projectID, message string) (models.ChatReply, error)
}

// TokenSource returns the bearer credential for one request. An empty token
// sends the request without an Authorization header.
type TokenSource func(ctx context.Context) (string, error)

// StaticToken returns a TokenSource that always yields token
func StaticToken(token string) TokenSource {
	return func(context.Context) (string, error) {
		return token, nil
	}
}

// Client talks to the content service over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      TokenSource
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a client for the service at baseURL. token is asked for
// a credential before every request and may be nil.
func NewClient(baseURL string, token TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type createProjectRequest struct {
	Title  string `json:"title,omitempty"`
	Prompt string `json:"prompt,omitempty"`
}

type addPageRequest struct {
	Content models.PageContent `json:"content"`
}

type addPageResponse struct {
	Page models.Page `json:"page"`
}

type deletePageResponse struct {
	Message           string `json:"message"`
	DeletedPageNumber int    `json:"deleted_page_number"`
}

type chatRequest struct {
	Message string `json:"message"`
}

func (c *Client) CreateProject(ctx context.Context, title, prompt string) (*models.Project, error) {
	var project models.Project
	body := createProjectRequest{Title: title, Prompt: prompt}
	if err := c.do(ctx, "create project", http.MethodPost, "/projects", body, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) GetProject(ctx context.Context, projectID string) (*models.Project, error) {
	var project models.Project
	if err := c.do(ctx, "get project", http.MethodGet, projectPath(projectID), nil, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) GetTitle(ctx context.Context, projectID string) (models.ProjectTitle, error) {
	var title models.ProjectTitle
	err := c.do(ctx, "get title", http.MethodGet, projectPath(projectID)+"/title", nil, &title)
	return title, err
}

func (c *Client) UpdateTitle(ctx context.Context, projectID, title string) (models.ProjectTitle, error) {
	var out models.ProjectTitle
	body := models.ProjectTitle{Title: title}
	err := c.do(ctx, "update title", http.MethodPut, projectPath(projectID)+"/title", body, &out)
	return out, err
}

func (c *Client) GetPage(ctx context.Context, projectID string, pageNumber int) (models.Page, error) {
	var page models.Page
	err := c.do(ctx, "get page", http.MethodGet, pagePath(projectID, pageNumber), nil, &page)
	return page, err
}

func (c *Client) UpdatePage(ctx context.Context, projectID string, pageNumber int, update models.PageUpdate) (models.Page, error) {
	var page models.Page
	err := c.do(ctx, "update page", http.MethodPut, pagePath(projectID, pageNumber), update, &page)
	return page, err
}

func (c *Client) AddPage(ctx context.Context, projectID string, page models.PageContent) (models.Page, error) {
	var out addPageResponse
	body := addPageRequest{Content: page}
	err := c.do(ctx, "add page", http.MethodPost, projectPath(projectID)+"/pages", body, &out)
	return out.Page, err
}

func (c *Client) DeletePage(ctx context.Context, projectID string, pageNumber int) error {
	var out deletePageResponse
	return c.do(ctx, "delete page", http.MethodDelete, pagePath(projectID, pageNumber), nil, &out)
}

func (c *Client) Generate(ctx context.Context, projectID string, req models.GenerationRequest) (*models.Project, error) {
	var project models.Project
	if err := c.do(ctx, "generate", http.MethodPost, projectPath(projectID)+"/generate", req, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *Client) Chat(ctx context.Context, projectID, message string) (models.ChatReply, error) {
	var reply models.ChatReply
	err := c.do(ctx, "chat", http.MethodPost, projectPath(projectID)+"/chat", chatRequest{Message: message}, &reply)
	return reply, err
}

func projectPath(projectID string) string {
	return "/projects/" + url.PathEscape(projectID)
}

func pagePath(projectID string, pageNumber int) string {
	return projectPath(projectID) + "/pages/" + strconv.Itoa(pageNumber)
}

// do performs one JSON round trip. in is encoded as the request body when
// non-nil, out receives the decoded 2xx response.
func (c *Client) do(ctx context.Context, op, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.token != nil {
		token, err := c.token(ctx)
		if err != nil {
			return fmt.Errorf("%s: acquire credential: %w", op, err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%s: %w", op, ErrTimeout)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(op, resp)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s: decode response: %w", op, err)
	}
	return nil
}

func decodeError(op string, resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode, Op: op}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(raw) == 0 {
		return apiErr
	}

	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		apiErr.Detail = payload.Detail
		if apiErr.Detail == "" {
			apiErr.Detail = payload.Error
		}
	}
	if apiErr.Detail == "" {
		apiErr.Detail = strings.TrimSpace(string(raw))
	}
	return apiErr
}
