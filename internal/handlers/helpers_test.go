package handlers_test

import (
	"PartsKeeper/internal/blob"
	"PartsKeeper/internal/codec"
	"PartsKeeper/internal/config"
	"PartsKeeper/internal/handlers"
	"PartsKeeper/internal/middleware"
	"PartsKeeper/internal/model"
	"PartsKeeper/internal/repo"
	"PartsKeeper/internal/service"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

const testCredentials = `
users:
  chefe:
    password: "segredo"
    regions: ALL
  ana:
    password: "sha256:b7e94be513e96e8c45cd23d162275e5a12ebde9100a425c4ebcdd7fa4dcd897c"
    regions: [BA, PE]
`

// testEnv — обработчики поверх хранилища в памяти и настоящих сервисов.
type testEnv struct {
	router http.Handler
	store  *blob.Memory
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cfg := &config.Config{AuthSecret: testSecret, MaxBodyMB: 1}
	logger := zap.NewNop().Sugar()

	creds, err := repo.ParseCredentials([]byte(testCredentials))
	require.NoError(t, err)

	store := blob.NewMemory()
	opts := repo.SyncOptions{MaxRetries: 1, InitialInterval: time.Millisecond, MaxInterval: time.Millisecond}
	parts := repo.NewSynchronizer[model.Part](store, "SALDO_PECAS.xlsx", codec.PartsXLSX{}, logger, opts)
	logs := repo.NewSynchronizer[model.AuditEntry](store, "logs.csv", codec.AuditCSV{}, logger, opts)

	auditSvc := service.NewAuditService(logs, nil, logger)
	userSvc := service.NewUserService(creds, auditSvc, logger)
	partSvc := service.NewPartService(parts, auditSvc, logger)

	h := handlers.NewHandler(userSvc, partSvc, auditSvc, logger, cfg)
	return &testEnv{router: h.Router, store: store}
}

// do выполняет запрос от имени login (пустой — анонимно).
func (e *testEnv) do(t *testing.T, method, path, login string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	if login != "" {
		addAuthCookie(t, req, login, testSecret)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func addAuthCookie(t *testing.T, req *http.Request, login string, secret string) {
	t.Helper()
	rr := httptest.NewRecorder()
	require.NoError(t, middleware.SetLoginCookie(rr, login, secret))
	for _, c := range rr.Result().Cookies() {
		req.AddCookie(c)
	}
}

func decodeJSON[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func partBody(uf, fru, endDate string) map[string]string {
	return map[string]string{
		"uf": uf, "fru": fru, "descricao": "fonte", "maquinas": "x3650",
		"cliente": "acme", "serial": "sn1", "data_fim": endDate, "sla": "24x7",
	}
}
