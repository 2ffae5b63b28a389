package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CookieName — cookie с JWT сессии.
const CookieName = "auth_token"

// TokenTTL — срок жизни токена.
const TokenTTL = 12 * time.Hour

type ctxKey struct{}

// Claims — полезная нагрузка токена: только логин, права читаются из учётных данных на каждый запрос.
type Claims struct {
	jwt.RegisteredClaims
	Login string `json:"login"`
}

// BuildToken подписывает токен для логина.
func BuildToken(login, secret string) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
		Login: login,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ParseToken проверяет подпись и срок и возвращает логин.
func ParseToken(tokenString, secret string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return "", err
	}
	if !token.Valid || claims.Login == "" {
		return "", fmt.Errorf("invalid token")
	}
	return claims.Login, nil
}

// SetLoginCookie выставляет cookie с токеном.
func SetLoginCookie(w http.ResponseWriter, login, secret string) error {
	token, err := BuildToken(login, secret)
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(TokenTTL),
	})
	return nil
}

// ClearLoginCookie удаляет cookie сессии.
func ClearLoginCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// WithAuth кладёт логин из валидного cookie в контекст. Запрос без cookie
// проходит дальше анонимным, решение о доступе принимает обработчик.
func WithAuth(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(CookieName)
			if err != nil || c.Value == "" {
				next.ServeHTTP(w, r)
				return
			}
			login, err := ParseToken(c.Value, secret)
			if err != nil {
				if logger != nil {
					logger.Debugw("Invalid auth token", "error", err)
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithLogin(r.Context(), login)))
		})
	}
}

// WithLogin возвращает контекст с логином (используется и в тестах обработчиков).
func WithLogin(ctx context.Context, login string) context.Context {
	return context.WithValue(ctx, ctxKey{}, login)
}

// GetLoginFromContext достаёт логин, положенный WithAuth.
func GetLoginFromContext(ctx context.Context) (string, bool) {
	login, ok := ctx.Value(ctxKey{}).(string)
	return login, ok && login != ""
}
