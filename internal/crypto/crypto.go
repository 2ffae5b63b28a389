package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// keyLen — длина ключа для AES‑256 (в байтах).
	keyLen = 32
	// saltLen — длина соли PBKDF2 в начале запечатанного файла.
	saltLen = 16
	// Iterations — число итераций PBKDF2-SHA256 при выводе ключа из мастер-пароля.
	Iterations = 200_000
)

var (
	// ErrMalformed — данные слишком короткие, чтобы быть запечатанным файлом.
	ErrMalformed = errors.New("crypto: malformed sealed payload")
	// ErrEmptyPassword — мастер-пароль не задан.
	ErrEmptyPassword = errors.New("crypto: empty master password")
)

// DeriveKey выводит 32-байтовый ключ из пароля и соли.
func DeriveKey(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, Iterations, keyLen, sha256.New)
}

// Encrypt шифрует данные plain с помощью AES‑GCM и заданного ключа.
// Возвращает шифртекст и nonce.
func Encrypt(plain []byte, key []byte) ([]byte, []byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, err
	}
	out := gcm.Seal(nil, nonce, plain, nil)
	return out, nonce, nil
}

// Decrypt расшифровывает шифртекст cipher с использованием AES‑GCM, ключа и nonce.
func Decrypt(ciphertext, nonce, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != gcm.NonceSize() {
		return nil, errors.New("invalid nonce size")
	}
	return gcm.Open(nil, nonce, ciphertext, nil)
}

// SealWithPassword шифрует plain ключом из пароля.
// Формат: salt(16) || nonce(12) || ciphertext+tag. Соль новая на каждую запись.
func SealWithPassword(plain []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}
	ct, nonce, err := Encrypt(plain, DeriveKey(password, salt))
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(salt)+len(nonce)+len(ct))
	out = append(out, salt...)
	out = append(out, nonce...)
	return append(out, ct...), nil
}

// OpenWithPassword — обратная операция к SealWithPassword.
// Файлы старого формата (salt || Fernet-токен) тоже читаются.
func OpenWithPassword(sealed []byte, password string) ([]byte, error) {
	if password == "" {
		return nil, ErrEmptyPassword
	}
	// nonce GCM стандартный, 12 байт
	const nonceLen = 12
	if len(sealed) < saltLen+nonceLen {
		return nil, ErrMalformed
	}
	key := DeriveKey(password, sealed[:saltLen])
	nonce := sealed[saltLen : saltLen+nonceLen]
	plain, err := Decrypt(sealed[saltLen+nonceLen:], nonce, key)
	if err != nil && looksFernet(sealed) {
		return OpenFernet(sealed[saltLen:], key)
	}
	return plain, err
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
