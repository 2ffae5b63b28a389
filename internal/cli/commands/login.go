package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"PartsKeeper/internal/cli/api"
	"PartsKeeper/internal/config"
)

type LoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginCmd struct{}

func (loginCmd) Name() string        { return "login" }
func (loginCmd) Description() string { return "Login and store auth cookie" }
func (loginCmd) Usage() string       { return "login <login> <password>" }

func (loginCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 2 {
		return ErrUsage
	}
	req := LoginRequest{Login: args[0], Password: args[1]}
	resp, body, err := api.Do(ctx, http.MethodPost, endpoint(cfg, "/api/user/login"), req, "", nil)
	if err != nil {
		return err
	}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return errors.New("invalid login or password")
	default:
		return fmt.Errorf("server error: %s", strings.TrimSpace(string(body)))
	}

	store := newAuthStore(cfg)
	if err := api.PersistAuthFromResponse(resp, store); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}
	sr, err := decode[statusResponse](body)
	if err != nil {
		return err
	}
	if err := store.SaveLogin(sr.Login); err != nil {
		return fmt.Errorf("saving login: %w", err)
	}
	fmt.Fprintf(Out, "Logged in as %s (UF: %s)\n", sr.Login, strings.Join(sr.Regions, ","))
	return nil
}

type logoutCmd struct{}

func (logoutCmd) Name() string        { return "logout" }
func (logoutCmd) Description() string { return "Logout and remove stored auth cookie" }
func (logoutCmd) Usage() string       { return "logout" }

func (logoutCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	store := newAuthStore(cfg)
	if token, err := store.Load(); err == nil {
		// сервер только пишет LOGOUT в журнал; локальный выход важнее
		if _, _, err := api.Do(ctx, http.MethodPost, endpoint(cfg, "/api/user/logout"), nil, token, nil); err != nil {
			fmt.Fprintf(Out, "warning: server logout failed: %v\n", err)
		}
	}
	if err := store.Clear(); err != nil {
		return err
	}
	fmt.Fprintln(Out, "Logged out")
	return nil
}

func init() {
	RegisterCmd(GroupSession, loginCmd{})
	RegisterCmd(GroupSession, logoutCmd{})
}
