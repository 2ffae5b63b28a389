package service

import (
	"PartsKeeper/internal/model"
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// CredentialRepository — источник учётных данных.
type CredentialRepository interface {
	GetByLogin(login string) (model.Credential, error)
}

// UserService проверяет учётные данные и строит сессии.
type UserService struct {
	creds  CredentialRepository
	audit  Auditor
	logger *zap.SugaredLogger
}

func NewUserService(creds CredentialRepository, audit Auditor, logger *zap.SugaredLogger) *UserService {
	return &UserService{creds: creds, audit: audit, logger: logger}
}

// Login проверяет пароль и возвращает аутентифицированную сессию.
func (s *UserService) Login(ctx context.Context, login, password string) (model.Session, error) {
	login, password = strings.TrimSpace(login), strings.TrimSpace(password)
	if login == "" || password == "" {
		return model.Anonymous(), ErrInvalidCredentials
	}
	c, err := s.creds.GetByLogin(login)
	if err != nil || !VerifySecret(c.Secret, password) {
		s.logger.Infow("Login failed", "login", login)
		s.audit.Record(ctx, login, model.ActionLoginFail, "Tentativa de login falhou", map[string]string{"usuario": login}, nil)
		return model.Anonymous(), ErrInvalidCredentials
	}
	sess, err := model.Anonymous().Authenticate(c.Login, c.Regions)
	if err != nil {
		return model.Anonymous(), err
	}
	s.audit.Record(ctx, login, model.ActionLogin, "Login bem-sucedido", nil, nil)
	return sess, nil
}

// Logout записывает выход и возвращает анонимную сессию.
func (s *UserService) Logout(ctx context.Context, sess model.Session) model.Session {
	if sess.Authenticated() {
		s.audit.Record(ctx, sess.Login(), model.ActionLogout, "Usuário saiu", nil, nil)
	}
	return sess.Logout()
}

// Session восстанавливает сессию по логину из токена. Права берутся из текущих
// учётных данных, поэтому удалённый пользователь теряет доступ сразу.
func (s *UserService) Session(login string) (model.Session, error) {
	c, err := s.creds.GetByLogin(login)
	if err != nil {
		return model.Anonymous(), errors.Join(ErrForbidden, err)
	}
	return model.Anonymous().Authenticate(c.Login, c.Regions)
}

// VerifySecret сравнивает пароль с сохранённым секретом:
// bcrypt-хеш ($2...), "sha256:<hex>" или пароль как есть.
func VerifySecret(secret, password string) bool {
	switch {
	case strings.HasPrefix(secret, "$2"):
		return bcrypt.CompareHashAndPassword([]byte(secret), []byte(password)) == nil
	case strings.HasPrefix(secret, "sha256:"):
		sum := sha256.Sum256([]byte(password))
		want := strings.ToLower(strings.TrimPrefix(secret, "sha256:"))
		return subtle.ConstantTimeCompare([]byte(hex.EncodeToString(sum[:])), []byte(want)) == 1
	default:
		return subtle.ConstantTimeCompare([]byte(secret), []byte(password)) == 1
	}
}
