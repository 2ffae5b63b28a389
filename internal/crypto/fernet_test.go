package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"testing"
)

// fernetSeal пишет salt || токен так же, как старая версия приложения.
func fernetSeal(t *testing.T, plain []byte, password string, salt, iv []byte) []byte {
	t.Helper()
	key := DeriveKey(password, salt)
	pad := aes.BlockSize - len(plain)%aes.BlockSize
	padded := append(append([]byte{}, plain...), make([]byte, pad)...)
	for i := len(plain); i < len(padded); i++ {
		padded[i] = byte(pad)
	}
	block, err := aes.NewCipher(key[16:])
	if err != nil {
		t.Fatalf("cipher: %v", err)
	}
	ct := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(ct, padded)

	body := []byte{fernetVersion}
	body = binary.BigEndian.AppendUint64(body, 1_700_000_000)
	body = append(body, iv...)
	body = append(body, ct...)
	mac := hmac.New(sha256.New, key[:16])
	mac.Write(body)
	token := base64.URLEncoding.EncodeToString(mac.Sum(body))
	return append(append([]byte{}, salt...), token...)
}

func TestOpenFernet_KnownToken(t *testing.T) {
	// эталонный токен формата Fernet, ключ и открытый текст "hello"
	secret, err := base64.URLEncoding.DecodeString("cw_0x689RpI-jtRR7oE8h_eQsKImvJapLeSbXpwF4e4=")
	if err != nil {
		t.Fatalf("secret: %v", err)
	}
	token := []byte("gAAAAAAdwJ6wAAECAwQFBgcICQoLDA0ODy021cpGVWKZ_eEwCGM4BLLF_5CV9dOPmrhuVUPgJobwOz7JcbmrR64jVmpU4IwqDA==")
	got, err := OpenFernet(token, secret)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if string(got) != "hello" {
		t.Fatalf("want hello, got %q", got)
	}

	// испорченная подпись
	bad := append([]byte{}, token...)
	bad[len(bad)-5] ^= 1
	if _, err := OpenFernet(bad, secret); !errors.Is(err, ErrFernetToken) {
		t.Fatalf("want ErrFernetToken, got %v", err)
	}
}

func TestOpenWithPassword_LegacyFernetSheet(t *testing.T) {
	salt := []byte("0123456789abcdef")
	iv := []byte("fedcba9876543210")
	plain := []byte("PK\x03\x04 xlsx bytes")
	sealed := fernetSeal(t, plain, "mestre", salt, iv)

	got, err := OpenWithPassword(sealed, "mestre")
	if err != nil {
		t.Fatalf("open legacy: %v", err)
	}
	if string(got) != string(plain) {
		t.Fatalf("plain mismatch: %q", got)
	}

	if _, err := OpenWithPassword(sealed, "errada"); !errors.Is(err, ErrFernetToken) {
		t.Fatalf("wrong password must fail, got %v", err)
	}

	// новый формат по-прежнему читается
	fresh, err := SealWithPassword(plain, "mestre")
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if got, err := OpenWithPassword(fresh, "mestre"); err != nil || string(got) != string(plain) {
		t.Fatalf("gcm round trip: %q %v", got, err)
	}
}
