package handlers

import (
	"PartsKeeper/internal/config"
	"PartsKeeper/internal/service"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// PartHandler — таблица запчастей.
type PartHandler struct {
	PartService *service.PartService
	Users       sessionSource
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

// NewPartHandler создаёт хендлер таблицы
func NewPartHandler(partService *service.PartService, users sessionSource, logger *zap.SugaredLogger, cfg *config.Config) *PartHandler {
	return &PartHandler{PartService: partService, Users: users, Logger: logger, Config: cfg}
}

// List — строки UF пользователя
func (h *PartHandler) List(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r, h.Users)
	if err != nil {
		writeError(w, h.Logger, "List", err)
		return
	}
	rows, err := h.PartService.List(r.Context(), sess)
	if err != nil {
		writeError(w, h.Logger, "List", err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// Create — заведение запчасти
func (h *PartHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r, h.Users)
	if err != nil {
		writeError(w, h.Logger, "Create", err)
		return
	}
	var in service.PartInput
	if !h.decode(w, r, &in) {
		return
	}
	p, err := h.PartService.Create(r.Context(), sess, in)
	if err != nil {
		writeError(w, h.Logger, "Create", err)
		return
	}
	w.Header().Set("ETag", strconv.Quote(p.ETag))
	writeJSON(w, http.StatusCreated, p)
}

// Renew — продление просроченного контракта, требует If-Match
func (h *PartHandler) Renew(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r, h.Users)
	if err != nil {
		writeError(w, h.Logger, "Renew", err)
		return
	}
	index, ok := h.index(w, r)
	if !ok {
		return
	}
	var in service.RenewInput
	if !h.decode(w, r, &in) {
		return
	}
	p, err := h.PartService.Renew(r.Context(), sess, index, ifMatch(r), in)
	if err != nil {
		writeError(w, h.Logger, "Renew", err)
		return
	}
	w.Header().Set("ETag", strconv.Quote(p.ETag))
	writeJSON(w, http.StatusOK, p)
}

// Delete — удаление строки, требует If-Match
func (h *PartHandler) Delete(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r, h.Users)
	if err != nil {
		writeError(w, h.Logger, "Delete", err)
		return
	}
	index, ok := h.index(w, r)
	if !ok {
		return
	}
	if err := h.PartService.Delete(r.Context(), sess, index, ifMatch(r)); err != nil {
		writeError(w, h.Logger, "Delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Export — выгрузка видимых строк ?format=csv|tsv
func (h *PartHandler) Export(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r, h.Users)
	if err != nil {
		writeError(w, h.Logger, "Export", err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = service.FormatCSV
	}
	data, contentType, err := h.PartService.Export(r.Context(), sess, format)
	if err != nil {
		writeError(w, h.Logger, "Export", err)
		return
	}
	writeFile(w, data, contentType, "SALDO_PECAS."+format)
}

// Expired — просроченные строки: JSON по умолчанию, ?format=text|csv|tsv для отчёта
func (h *PartHandler) Expired(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r, h.Users)
	if err != nil {
		writeError(w, h.Logger, "Expired", err)
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" || format == "json" {
		rows, err := h.PartService.Expired(r.Context(), sess)
		if err != nil {
			writeError(w, h.Logger, "Expired", err)
			return
		}
		writeJSON(w, http.StatusOK, rows)
		return
	}
	data, contentType, err := h.PartService.ExpiredReport(r.Context(), sess, format)
	if err != nil {
		writeError(w, h.Logger, "Expired", err)
		return
	}
	ext := format
	if format == service.FormatText {
		ext = "txt"
	}
	writeFile(w, data, contentType, "relatorio_vencidas."+ext)
}

func (h *PartHandler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, int64(h.Config.MaxBodyMB)*1024*1024)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.Logger.Warnw("invalid request body", "path", r.URL.Path, "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return false
	}
	return true
}

func (h *PartHandler) index(w http.ResponseWriter, r *http.Request) (int, bool) {
	i, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || i < 0 {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return 0, false
	}
	return i, true
}
