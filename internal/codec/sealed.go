package codec

import "PartsKeeper/internal/crypto"

// Sealed шифрует результат Inner мастер-паролем (PBKDF2 + AES-GCM).
type Sealed[T any] struct {
	Inner    Codec[T]
	Password string
}

func (s Sealed[T]) ContentType() string { return "application/octet-stream" }

func (s Sealed[T]) Encode(rows []T) ([]byte, error) {
	plain, err := s.Inner.Encode(rows)
	if err != nil {
		return nil, err
	}
	return crypto.SealWithPassword(plain, s.Password)
}

func (s Sealed[T]) Decode(data []byte) ([]T, error) {
	plain, err := crypto.OpenWithPassword(data, s.Password)
	if err != nil {
		return nil, err
	}
	return s.Inner.Decode(plain)
}
