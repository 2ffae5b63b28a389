package crypto

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
)

// Старые таблицы хранились как salt(16) || Fernet-токен (base64url).
// Токен: 0x80 | время(8) | IV(16) | AES-128-CBC шифртекст | HMAC-SHA256(32).
// Ключ Fernet — те же 32 байта PBKDF2: первые 16 подписывают, вторые 16 шифруют.
// Такие файлы только читаются, запись всегда идёт в формате SealWithPassword.

const (
	fernetVersion  = 0x80
	fernetHeader   = 1 + 8 + aes.BlockSize
	fernetMACLen   = sha256.Size
	fernetMinToken = fernetHeader + aes.BlockSize + fernetMACLen
)

// fernetPrefix — начало любого base64url-токена версии 0x80.
var fernetPrefix = []byte("gAAAAA")

// ErrFernetToken — токен повреждён или ключ не подходит.
var ErrFernetToken = errors.New("crypto: invalid fernet token")

func looksFernet(sealed []byte) bool {
	return len(sealed) > saltLen && bytes.HasPrefix(sealed[saltLen:], fernetPrefix)
}

// OpenFernet проверяет подпись и расшифровывает base64url-токен 32-байтовым ключом.
func OpenFernet(token, key []byte) ([]byte, error) {
	if len(key) != keyLen {
		return nil, ErrFernetToken
	}
	raw := make([]byte, base64.URLEncoding.DecodedLen(len(token)))
	n, err := base64.URLEncoding.Decode(raw, bytes.TrimSpace(token))
	if err != nil {
		return nil, ErrFernetToken
	}
	raw = raw[:n]
	if len(raw) < fernetMinToken || raw[0] != fernetVersion {
		return nil, ErrFernetToken
	}
	body, sum := raw[:len(raw)-fernetMACLen], raw[len(raw)-fernetMACLen:]
	mac := hmac.New(sha256.New, key[:16])
	mac.Write(body)
	if !hmac.Equal(mac.Sum(nil), sum) {
		return nil, ErrFernetToken
	}
	iv, ct := body[9:fernetHeader], body[fernetHeader:]
	if len(ct)%aes.BlockSize != 0 {
		return nil, ErrFernetToken
	}
	block, err := aes.NewCipher(key[16:])
	if err != nil {
		return nil, err
	}
	plain := make([]byte, len(ct))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ct)
	return unpadPKCS7(plain)
}

func unpadPKCS7(b []byte) ([]byte, error) {
	if len(b) == 0 {
		return nil, ErrFernetToken
	}
	pad := int(b[len(b)-1])
	if pad == 0 || pad > aes.BlockSize || pad > len(b) {
		return nil, ErrFernetToken
	}
	for _, c := range b[len(b)-pad:] {
		if int(c) != pad {
			return nil, ErrFernetToken
		}
	}
	return b[:len(b)-pad], nil
}
