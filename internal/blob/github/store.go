// Package github implements blob.Store on top of the GitHub repository contents API.
// The file blob SHA is the version token; a PUT carrying a stale SHA is rejected by GitHub.
package github

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"PartsKeeper/internal/blob"

	"golang.org/x/oauth2"
)

const defaultAPIURL = "https://api.github.com"

// Config holds repository identity and credentials.
type Config struct {
	APIURL string // default https://api.github.com
	Owner  string
	Repo   string
	Branch string // optional; the default branch when empty
	Token  string // optional for reads of public repositories, required for writes
	// HTTPClient is the base client (tests); oauth2 wraps its transport when Token is set.
	HTTPClient *http.Client
}

// Store talks to /repos/{owner}/{repo}/contents/{path}.
type Store struct {
	api      string
	owner    string
	repo     string
	branch   string
	client   *http.Client
	hasToken bool
}

// New builds a Store. The returned client sends "Authorization: Bearer <token>" when a token is set.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, fmt.Errorf("github owner and repo required")
	}
	api := strings.TrimRight(cfg.APIURL, "/")
	if api == "" {
		api = defaultAPIURL
	}
	base := cfg.HTTPClient
	if base == nil {
		base = http.DefaultClient
	}
	client := base
	if cfg.Token != "" {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token}))
	}
	return &Store{
		api:      api,
		owner:    cfg.Owner,
		repo:     cfg.Repo,
		branch:   cfg.Branch,
		client:   client,
		hasToken: cfg.Token != "",
	}, nil
}

func (s *Store) Driver() blob.Driver { return blob.DriverGitHub }

func (s *Store) contentsURL(key string) string {
	segs := strings.Split(strings.Trim(key, "/"), "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("%s/repos/%s/%s/contents/%s", s.api, url.PathEscape(s.owner), url.PathEscape(s.repo), strings.Join(segs, "/"))
}

type contentResponse struct {
	SHA      string `json:"sha"`
	Size     int64  `json:"size"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

type putRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
	Branch  string `json:"branch,omitempty"`
}

type putResponse struct {
	Content struct {
		SHA string `json:"sha"`
	} `json:"content"`
}

func (s *Store) Get(ctx context.Context, key string) (blob.Object, error) {
	u := s.contentsURL(key)
	if s.branch != "" {
		u += "?ref=" + url.QueryEscape(s.branch)
	}
	body, _, err := s.do(ctx, "get", http.MethodGet, u, "application/vnd.github+json", nil)
	if err != nil {
		return blob.Object{}, err
	}
	var cr contentResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return blob.Object{}, fmt.Errorf("github: decode contents of %s: %w", key, err)
	}

	var data []byte
	switch {
	case cr.Encoding == "base64" && cr.Content != "":
		// content is line-wrapped base64
		data, err = base64.StdEncoding.DecodeString(strings.ReplaceAll(cr.Content, "\n", ""))
		if err != nil {
			return blob.Object{}, fmt.Errorf("github: decode base64 of %s: %w", key, err)
		}
	case cr.Size > 0:
		// files over 1 MB come without inline content
		data, _, err = s.do(ctx, "get", http.MethodGet, u, "application/vnd.github.raw+json", nil)
		if err != nil {
			return blob.Object{}, err
		}
	}
	return blob.Object{Key: key, Data: data, Version: cr.SHA}, nil
}

func (s *Store) Put(ctx context.Context, key string, data []byte, opts blob.PutOptions) (string, error) {
	if !s.hasToken {
		return "", fmt.Errorf("github: token not configured: %w", blob.ErrAuth)
	}
	msg := opts.Message
	if msg == "" {
		msg = "update " + key
	}
	payload, err := json.Marshal(putRequest{
		Message: msg,
		Content: base64.StdEncoding.EncodeToString(data),
		SHA:     opts.IfMatch,
		Branch:  s.branch,
	})
	if err != nil {
		return "", err
	}
	body, status, err := s.do(ctx, "put", http.MethodPut, s.contentsURL(key), "application/vnd.github+json", payload)
	if err != nil {
		if status == http.StatusConflict || status == http.StatusUnprocessableEntity {
			return "", &blob.ConflictError{Key: key, Expected: opts.IfMatch}
		}
		if errors.Is(err, blob.ErrNotFound) {
			// GitHub answers 404 to writes into repositories the token cannot see
			return "", fmt.Errorf("github: repository not writable: %w", blob.ErrAuth)
		}
		return "", err
	}
	var pr putResponse
	if err := json.Unmarshal(body, &pr); err != nil {
		return "", fmt.Errorf("github: decode put response: %w", err)
	}
	return pr.Content.SHA, nil
}

// do executes a request and maps HTTP failures onto blob errors.
// The status code is returned alongside the error for callers that refine the mapping.
func (s *Store) do(ctx context.Context, op, method, u, accept string, payload []byte) ([]byte, int, error) {
	var rd io.Reader
	if payload != nil {
		rd = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, blob.Transient(op, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, blob.Transient(op, err)
	}
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, resp.StatusCode, nil
	}
	return nil, resp.StatusCode, classify(op, resp, body)
}

func classify(op string, resp *http.Response, body []byte) error {
	detail := fmt.Errorf("github: %s: status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %v", blob.ErrNotFound, detail)
	case resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-RateLimit-Remaining") == "0":
		return blob.Transient(op, detail)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %v", blob.ErrAuth, detail)
	case resp.StatusCode >= 500:
		return blob.Transient(op, detail)
	default:
		return detail
	}
}
