package handlers

import (
	"PartsKeeper/internal/blob"
	"PartsKeeper/internal/middleware"
	"PartsKeeper/internal/model"
	"PartsKeeper/internal/service"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// errUnauthenticated — запрос без действующей сессии.
var errUnauthenticated = errors.New("unauthorized")

// sessionSource восстанавливает сессию по логину из cookie.
type sessionSource interface {
	Session(login string) (model.Session, error)
}

// currentSession возвращает сессию пользователя запроса.
func currentSession(r *http.Request, users sessionSource) (model.Session, error) {
	login, ok := middleware.GetLoginFromContext(r.Context())
	if !ok {
		return model.Anonymous(), errUnauthenticated
	}
	sess, err := users.Session(login)
	if err != nil {
		// пользователя удалили из файла учётных данных
		return model.Anonymous(), errUnauthenticated
	}
	return sess, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeFile(w http.ResponseWriter, data []byte, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// writeError переводит ошибку сервиса в HTTP-статус.
func writeError(w http.ResponseWriter, logger *zap.SugaredLogger, op string, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{"errors": verr.Violations()})
		return
	}

	status, msg := http.StatusInternalServerError, "internal error"
	switch {
	case errors.Is(err, errUnauthenticated), errors.Is(err, service.ErrInvalidCredentials):
		status, msg = http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, service.ErrForbidden):
		status, msg = http.StatusForbidden, "forbidden"
	case errors.Is(err, service.ErrNoSuchRow):
		status, msg = http.StatusNotFound, "no such row"
	case errors.Is(err, blob.ErrConflict):
		status, msg = http.StatusConflict, "table was changed by someone else, reload and try again"
	case errors.Is(err, service.ErrRowChanged):
		status, msg = http.StatusConflict, "row was changed, reload and try again"
	case errors.Is(err, service.ErrPreconditionRequired):
		status, msg = http.StatusPreconditionRequired, "If-Match header required"
	case errors.Is(err, service.ErrNotExpired):
		status, msg = http.StatusUnprocessableEntity, "contract is not expired"
	case errors.Is(err, service.ErrUnknownFormat):
		status, msg = http.StatusBadRequest, "unknown format"
	case errors.Is(err, blob.ErrAuth):
		status, msg = http.StatusBadGateway, "remote store rejected credentials, check server configuration"
	case blob.IsTransient(err):
		status, msg = http.StatusServiceUnavailable, "remote store unavailable, try again later"
	}

	if status >= http.StatusInternalServerError {
		logger.Errorw(op+": failed", "status", status, "error", err)
	} else {
		logger.Infow(op+": rejected", "status", status, "error", err)
	}
	http.Error(w, msg, status)
}

// ifMatch читает отпечаток строки из If-Match (кавычки и W/ отбрасываются).
func ifMatch(r *http.Request) string {
	v := strings.TrimSpace(r.Header.Get("If-Match"))
	v = strings.TrimPrefix(v, "W/")
	return strings.Trim(v, `"`)
}
