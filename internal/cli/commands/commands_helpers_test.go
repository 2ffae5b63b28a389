package commands

import (
	"net/http/httptest"
	"path/filepath"
	"runtime"
	"testing"

	"PartsKeeper/internal/blob"
	clirepo "PartsKeeper/internal/cli/repo"
	fsrepo "PartsKeeper/internal/cli/repo/fs"
	"PartsKeeper/internal/codec"
	"PartsKeeper/internal/config"
	"PartsKeeper/internal/handlers"
	"PartsKeeper/internal/model"
	"PartsKeeper/internal/repo"
	"PartsKeeper/internal/service"

	"go.uber.org/zap"
)

// withTempConfig переопределяет пользовательские каталоги на время теста,
// чтобы артефакты (токен/логин) создавались в temp.
func withTempConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if runtime.GOOS == "windows" {
		t.Setenv("APPDATA", dir)
	} else {
		t.Setenv("XDG_CONFIG_HOME", dir)
	}
	old := newAuthStore
	newAuthStore = func(*config.Config) clirepo.SessionStore {
		return fsrepo.AuthFSStore{TokenFile: filepath.Join(dir, "pk_token")}
	}
	t.Cleanup(func() { newAuthStore = old })
	return dir
}

// startServer поднимает настоящий HTTP API поверх хранилища в памяти.
func startServer(t *testing.T) *config.Config {
	t.Helper()
	logger := zap.NewNop().Sugar()
	creds, err := repo.ParseCredentials([]byte(`
users:
  chefe: {password: segredo, regions: ALL}
  ana: {password: senha, regions: [BA]}
`))
	if err != nil {
		t.Fatalf("credentials: %v", err)
	}
	store := blob.NewMemory()
	parts := repo.NewSynchronizer[model.Part](store, "SALDO_PECAS.xlsx", codec.PartsXLSX{}, logger, repo.SyncOptions{})
	logs := repo.NewSynchronizer[model.AuditEntry](store, "logs.csv", codec.AuditCSV{}, logger, repo.SyncOptions{})
	auditSvc := service.NewAuditService(logs, nil, logger)
	srvCfg := &config.Config{AuthSecret: "cli-test", MaxBodyMB: 1}
	h := handlers.NewHandler(
		service.NewUserService(creds, auditSvc, logger),
		service.NewPartService(parts, auditSvc, logger),
		auditSvc, logger, srvCfg,
	)
	ts := httptest.NewServer(h.Router)
	t.Cleanup(ts.Close)
	return &config.Config{ServerURL: ts.URL}
}
