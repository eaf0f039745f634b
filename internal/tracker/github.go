package tracker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// GitHubConfig holds everything the GitHub gateway needs. It is passed in
// at construction; the gateway never reads configuration ad hoc per call.
type GitHubConfig struct {
	BaseURL string // e.g. "https://api.github.com"
	Token   string
	Owner   string
	Repo    string
	Label   string // optional: scope fetch to this label, attach it on create
	Timeout time.Duration
}

// DefaultGitHubConfig returns sensible defaults for the public GitHub API.
func DefaultGitHubConfig(token, owner, repo string) GitHubConfig {
	return GitHubConfig{
		BaseURL: "https://api.github.com",
		Token:   token,
		Owner:   owner,
		Repo:    repo,
		Timeout: 30 * time.Second,
	}
}

// GitHubGateway implements Gateway against the GitHub issues REST API.
type GitHubGateway struct {
	baseURL    string
	token      string
	owner      string
	repo       string
	label      string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewGitHubGateway creates a gateway from an explicit config.
func NewGitHubGateway(cfg GitHubConfig, logger *zap.Logger) *GitHubGateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &GitHubGateway{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		owner:   cfg.Owner,
		repo:    cfg.Repo,
		label:   cfg.Label,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// githubIssue is the subset of the GitHub issue payload this gateway reads.
type githubIssue struct {
	Number int64  `json:"number"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	State  string `json:"state,omitempty"`
	// Present only when the "issue" is actually a pull request.
	PullRequest *struct{} `json:"pull_request,omitempty"`
}

type githubIssueRequest struct {
	Title  string   `json:"title,omitempty"`
	Body   string   `json:"body,omitempty"`
	State  string   `json:"state,omitempty"`
	Labels []string `json:"labels,omitempty"`
}

// FetchAll lists every open issue in the repository, following pagination.
// The GitHub issues endpoint also returns pull requests; those are skipped.
func (g *GitHubGateway) FetchAll(ctx context.Context) ([]Issue, error) {
	var issues []Issue
	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("state", "open")
		q.Set("per_page", "100")
		q.Set("page", strconv.Itoa(page))
		if g.label != "" {
			q.Set("labels", g.label)
		}

		var batch []githubIssue
		path := fmt.Sprintf("/repos/%s/%s/issues?%s", g.owner, g.repo, q.Encode())
		if err := g.do(ctx, http.MethodGet, path, nil, &batch); err != nil {
			return nil, fmt.Errorf("list issues page %d: %w", page, err)
		}
		for _, gi := range batch {
			if gi.PullRequest != nil {
				continue
			}
			issues = append(issues, Issue{
				ID:    gi.Number,
				Title: gi.Title,
				Body:  gi.Body,
				Key:   ParseKey(gi.Body),
			})
		}
		if len(batch) < 100 {
			break
		}
	}
	g.logger.Debug("fetched tracker issues", zap.Int("count", len(issues)))
	return issues, nil
}

// Create opens a new issue and returns it with the tracker-assigned id.
func (g *GitHubGateway) Create(ctx context.Context, title, body string) (*Issue, error) {
	req := githubIssueRequest{Title: title, Body: body}
	if g.label != "" {
		req.Labels = []string{g.label}
	}
	var created githubIssue
	path := fmt.Sprintf("/repos/%s/%s/issues", g.owner, g.repo)
	if err := g.do(ctx, http.MethodPost, path, &req, &created); err != nil {
		return nil, fmt.Errorf("create issue: %w", err)
	}
	g.logger.Debug("created issue", zap.Int64("number", created.Number))
	return &Issue{
		ID:    created.Number,
		Title: created.Title,
		Body:  created.Body,
		Key:   ParseKey(created.Body),
	}, nil
}

// Update replaces an issue's title and body.
func (g *GitHubGateway) Update(ctx context.Context, id int64, title, body string) error {
	req := githubIssueRequest{Title: title, Body: body}
	path := fmt.Sprintf("/repos/%s/%s/issues/%d", g.owner, g.repo, id)
	if err := g.do(ctx, http.MethodPatch, path, &req, nil); err != nil {
		return fmt.Errorf("update issue %d: %w", id, err)
	}
	return nil
}

// Close marks an issue closed.
func (g *GitHubGateway) Close(ctx context.Context, id int64) error {
	req := githubIssueRequest{State: "closed"}
	path := fmt.Sprintf("/repos/%s/%s/issues/%d", g.owner, g.repo, id)
	if err := g.do(ctx, http.MethodPatch, path, &req, nil); err != nil {
		return fmt.Errorf("close issue %d: %w", id, err)
	}
	return nil
}

// do performs one API request. If the context has no deadline yet, the
// client timeout is applied so a stalled tracker call cannot hang the run.
func (g *GitHubGateway) do(ctx context.Context, method, path string, in, out interface{}) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.httpClient.Timeout)
		defer cancel()
	}

	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Authorization", "Bearer "+g.token)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("github API %s %s: status %d: %s", method, path, resp.StatusCode, snippet(data))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func snippet(data []byte) string {
	const max = 200
	if len(data) > max {
		return string(data[:max]) + "..."
	}
	return string(data)
}
