package model

// Credential — учётные данные пользователя из файла credentials.
// Secret хранится как есть, в виде "sha256:<hex>" или bcrypt-хеша.
type Credential struct {
	Login   string
	Secret  string
	Regions []string
}
