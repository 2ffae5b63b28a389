package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"PartsKeeper/internal/cli/repo"
)

// StatusError — ответ сервера с неожиданным кодом.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("server status %d: %s", e.Code, e.Body)
}

// Do sends a request with an optional JSON payload. If token is non-empty, it is passed as auth cookie.
func Do(ctx context.Context, method, url string, payload any, token string, header http.Header) (*http.Response, []byte, error) {
	var r io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, nil, err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, nil, err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if token != "" {
		req.Header.Set("Cookie", "auth_token="+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	return resp, body, nil
}

// PostJSON sends a JSON POST request. If token is non-empty, it is passed as auth cookie.
func PostJSON(url string, payload any, token string) (*http.Response, []byte, error) {
	return Do(context.Background(), http.MethodPost, url, payload, token, nil)
}

// Expect возвращает *StatusError, если код ответа не входит в want.
func Expect(resp *http.Response, body []byte, want ...int) error {
	for _, c := range want {
		if resp.StatusCode == c {
			return nil
		}
	}
	return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// PersistAuthFromResponse извлекает auth cookie из ответа и сохраняет его в store.
func PersistAuthFromResponse(resp *http.Response, store repo.TokenStore) error {
	for _, c := range resp.Cookies() {
		if c.Name == "auth_token" && c.Value != "" {
			return store.Save(c.Value)
		}
	}
	return fmt.Errorf("no auth cookie in response")
}
