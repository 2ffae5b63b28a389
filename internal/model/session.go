package model

import (
	"errors"
	"slices"
	"strings"
)

// AllRegions — специальное значение прав: доступ ко всем UF (администратор).
const AllRegions = "ALL"

// KnownRegions — UF, доступные администратору при заведении записи.
var KnownRegions = []string{"AM", "BA", "CE", "DF", "GO", "MA", "MG", "PA", "PE", "RJ", "TO"}

// ErrAlreadyAuthenticated — повторный вход без выхода.
var ErrAlreadyAuthenticated = errors.New("session already authenticated")

// Session — пользователь и его UF. Переходы: Anonymous → Authenticated → Anonymous.
type Session struct {
	login   string
	regions []string
}

// Anonymous возвращает пустую сессию.
func Anonymous() Session { return Session{} }

// Authenticate переводит анонимную сессию в аутентифицированную.
func (s Session) Authenticate(login string, regions []string) (Session, error) {
	if s.Authenticated() {
		return s, ErrAlreadyAuthenticated
	}
	if login == "" {
		return s, errors.New("empty login")
	}
	return Session{login: login, regions: normalizeRegions(regions)}, nil
}

// Logout всегда возвращает анонимную сессию.
func (s Session) Logout() Session { return Anonymous() }

func (s Session) Authenticated() bool { return s.login != "" }

func (s Session) Login() string { return s.login }

func (s Session) Regions() []string { return slices.Clone(s.regions) }

// IsAdmin — у пользователя есть доступ ко всем UF.
func (s Session) IsAdmin() bool {
	return s.Authenticated() && slices.Contains(s.regions, AllRegions)
}

// CanAccess проверяет право на просмотр и изменение строк UF.
func (s Session) CanAccess(region string) bool {
	if !s.Authenticated() {
		return false
	}
	if s.IsAdmin() {
		return true
	}
	return slices.Contains(s.regions, strings.ToUpper(strings.TrimSpace(region)))
}

// SelectableRegions — список UF для формы заведения записи.
func (s Session) SelectableRegions() []string {
	if s.IsAdmin() {
		return slices.Clone(KnownRegions)
	}
	return s.Regions()
}

// ParseRegions разбирает строку прав вида "ALL" или "AM,BA".
func ParseRegions(raw string) []string {
	return normalizeRegions(strings.Split(raw, ","))
}

func normalizeRegions(in []string) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		r = strings.ToUpper(strings.TrimSpace(r))
		if r == "" || slices.Contains(out, r) {
			continue
		}
		out = append(out, r)
	}
	return out
}
