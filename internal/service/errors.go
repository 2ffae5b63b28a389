package service

import "errors"

var (
	// ErrInvalidCredentials — неверный логин или пароль.
	ErrInvalidCredentials = errors.New("invalid login or password")
	// ErrForbidden — у пользователя нет прав на UF строки или на раздел.
	ErrForbidden = errors.New("forbidden")
	// ErrNoSuchRow — позиции нет в таблице.
	ErrNoSuchRow = errors.New("no such row")
	// ErrRowChanged — строка на позиции отличается от той, которую видел пользователь.
	ErrRowChanged = errors.New("row changed since it was read")
	// ErrPreconditionRequired — изменение по позиции без отпечатка строки.
	ErrPreconditionRequired = errors.New("row fingerprint required")
	// ErrNotExpired — продлевать можно только просроченный контракт.
	ErrNotExpired = errors.New("contract is not expired")
	// ErrUnknownFormat — неподдерживаемый формат выгрузки.
	ErrUnknownFormat = errors.New("unknown export format")
)
