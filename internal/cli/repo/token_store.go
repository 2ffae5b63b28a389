package repo

// TokenStore описывает абстракцию хранилища auth-токена на клиенте.
type TokenStore interface {
	Save(token string) error
	Load() (string, error)
	// Clear удаляет токен и сохранённый логин (logout).
	Clear() error
}

// SessionStore — токен плюс логин последнего входа, который показывает status
// и подставляет logout в сообщение.
type SessionStore interface {
	TokenStore
	SaveLogin(login string) error
	LoadLogin() (string, error)
}
