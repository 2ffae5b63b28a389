package handlers

import (
	"PartsKeeper/internal/service"
	"net/http"

	"go.uber.org/zap"
)

// LogHandler — журнал действий (только администратор).
type LogHandler struct {
	AuditService *service.AuditService
	Users        sessionSource
	Logger       *zap.SugaredLogger
}

func NewLogHandler(auditService *service.AuditService, users sessionSource, logger *zap.SugaredLogger) *LogHandler {
	return &LogHandler{AuditService: auditService, Users: users, Logger: logger}
}

// List — ?format=json (по умолчанию) или csv
func (h *LogHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r, h.Users)
	if err != nil {
		writeError(w, h.Logger, "Logs", err)
		return
	}
	switch format := r.URL.Query().Get("format"); format {
	case "", "json":
		entries, err := h.AuditService.List(r.Context(), sess)
		if err != nil {
			writeError(w, h.Logger, "Logs", err)
			return
		}
		writeJSON(w, http.StatusOK, entries)
	case service.FormatCSV:
		data, contentType, err := h.AuditService.Export(r.Context(), sess)
		if err != nil {
			writeError(w, h.Logger, "Logs", err)
			return
		}
		writeFile(w, data, contentType, "logs.csv")
	default:
		writeError(w, h.Logger, "Logs", service.ErrUnknownFormat)
	}
}
