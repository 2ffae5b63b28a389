package commands

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"PartsKeeper/internal/cli/api"
	"PartsKeeper/internal/config"
)

type statusResponse struct {
	Result  string   `json:"result"`
	Login   string   `json:"login"`
	Regions []string `json:"regions"`
	Admin   bool     `json:"admin"`
}

type statusCmd struct{}

func (statusCmd) Name() string        { return "status" }
func (statusCmd) Description() string { return "Show current session" }
func (statusCmd) Usage() string       { return "status" }

func (statusCmd) Run(ctx context.Context, cfg *config.Config, args []string) error {
	if len(args) != 0 {
		return ErrUsage
	}
	// без токена сервер ответит anonymous
	token, _ := newAuthStore(cfg).Load()
	resp, body, err := api.Do(ctx, http.MethodPost, endpoint(cfg, "/api/user/test"), nil, token, nil)
	if err != nil {
		return err
	}
	if err := api.Expect(resp, body, http.StatusOK); err != nil {
		return err
	}
	sr, err := decode[statusResponse](body)
	if err != nil {
		return err
	}
	fmt.Fprintln(Out, "Status:", sr.Result)
	if sr.Login != "" {
		role := "user"
		if sr.Admin {
			role = "admin"
		}
		fmt.Fprintf(Out, "UF: %s (%s)\n", strings.Join(sr.Regions, ","), role)
	}
	return nil
}

func init() { RegisterCmd(GroupSession, statusCmd{}) }
