package handlers

import (
	"PartsKeeper/internal/config"
	"PartsKeeper/internal/middleware"
	"PartsKeeper/internal/model"
	"PartsKeeper/internal/service"
	"encoding/json"
	"net/http"

	"go.uber.org/zap"
)

// UserHandler — вход, выход и статус сессии.
type UserHandler struct {
	UserService *service.UserService
	Logger      *zap.SugaredLogger
	Config      *config.Config
}

// NewUserHandler создаёт хендлер пользователей
func NewUserHandler(userService *service.UserService, logger *zap.SugaredLogger, cfg *config.Config) *UserHandler {
	return &UserHandler{UserService: userService, Logger: logger, Config: cfg}
}

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Result  string   `json:"result"`
	Login   string   `json:"login,omitempty"`
	Regions []string `json:"regions,omitempty"`
	Admin   bool     `json:"admin,omitempty"`
}

func newSessionResponse(result string, sess model.Session) sessionResponse {
	return sessionResponse{Result: result, Login: sess.Login(), Regions: sess.SelectableRegions(), Admin: sess.IsAdmin()}
}

// Login проверяет логин и пароль и выставляет cookie
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Logger.Warnw("Login: invalid request body", "error", err)
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	sess, err := h.UserService.Login(r.Context(), req.Login, req.Password)
	if err != nil {
		writeError(w, h.Logger, "Login", err)
		return
	}

	if err := middleware.SetLoginCookie(w, sess.Login(), h.Config.AuthSecret); err != nil {
		h.Logger.Errorw("Login: failed to set cookie", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse("ok", sess))
}

// Logout удаляет cookie
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if sess, err := currentSession(r, h.UserService); err == nil {
		h.UserService.Logout(r.Context(), sess)
	}
	middleware.ClearLoginCookie(w)
	writeJSON(w, http.StatusOK, sessionResponse{Result: "anonymous"})
}

// Status показывает текущего пользователя
func (h *UserHandler) Status(w http.ResponseWriter, r *http.Request) {
	sess, err := currentSession(r, h.UserService)
	if err != nil {
		writeJSON(w, http.StatusOK, sessionResponse{Result: "anonymous"})
		return
	}
	writeJSON(w, http.StatusOK, newSessionResponse("User = "+sess.Login(), sess))
}
