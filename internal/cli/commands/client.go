package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"PartsKeeper/internal/cli/api"
	"PartsKeeper/internal/cli/repo"
	fsrepo "PartsKeeper/internal/cli/repo/fs"
	"PartsKeeper/internal/config"
)

// newAuthStore подменяется в тестах.
var newAuthStore = func(cfg *config.Config) repo.SessionStore {
	return fsrepo.AuthFSStore{TokenFile: cfg.TokenFile}
}


func endpoint(cfg *config.Config, path string) string {
	return strings.TrimRight(cfg.ServerURL, "/") + path
}

// call выполняет запрос с сохранённым токеном и проверяет код ответа.
func call(ctx context.Context, cfg *config.Config, method, path string, payload any, header http.Header, want ...int) ([]byte, http.Header, error) {
	token, err := newAuthStore(cfg).Load()
	if err != nil {
		return nil, nil, ErrNotLoggedIn
	}
	resp, body, err := api.Do(ctx, method, endpoint(cfg, path), payload, token, header)
	if err != nil {
		return nil, nil, err
	}
	if err := api.Expect(resp, body, want...); err != nil {
		return nil, nil, explain(err)
	}
	return body, resp.Header, nil
}

// explain переводит код ответа в понятное сообщение.
func explain(err error) error {
	var se *api.StatusError
	if !errors.As(err, &se) {
		return err
	}
	switch se.Code {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w (%s)", ErrNotLoggedIn, se.Body)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, se.Body)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s; run list and retry", ErrConflict, se.Body)
	case http.StatusPreconditionRequired:
		return fmt.Errorf("%w: %s", ErrPrecondition, se.Body)
	case http.StatusBadRequest:
		var v struct {
			Errors []string `json:"errors"`
		}
		if json.Unmarshal([]byte(se.Body), &v) == nil && len(v.Errors) > 0 {
			return fmt.Errorf("invalid input:\n  %s", strings.Join(v.Errors, "\n  "))
		}
	}
	return err
}

func decode[T any](body []byte) (T, error) {
	var v T
	if err := json.Unmarshal(body, &v); err != nil {
		return v, fmt.Errorf("decode: %w", err)
	}
	return v, nil
}

// writeOutput пишет файл или, без имени файла, в Out.
func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := Out.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	fmt.Fprintf(Out, "Saved %s (%d bytes)\n", path, len(data))
	return nil
}
