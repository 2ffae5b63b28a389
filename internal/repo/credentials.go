package repo

import (
	"PartsKeeper/internal/model"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrUnknownUser — логина нет в файле учётных данных.
var ErrUnknownUser = errors.New("unknown user")

// CredentialSet — учётные данные, загруженные один раз при старте.
type CredentialSet struct {
	byLogin map[string]model.Credential
}

// credentialsFile — формат YAML:
//
//	users:
//	  ana:
//	    password: "sha256:..."
//	    regions: [SP, RJ]
//	  chefe:
//	    password: "$2a$10$..."
//	    regions: ALL
type credentialsFile struct {
	Users map[string]struct {
		Password string     `yaml:"password"`
		Regions  regionList `yaml:"regions"`
	} `yaml:"users"`
}

// regionList принимает и список, и строку "AM,BA".
type regionList []string

func (r *regionList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*r = model.ParseRegions(value.Value)
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*r = model.ParseRegions(strings.Join(list, ","))
		return nil
	default:
		return fmt.Errorf("line %d: regions must be a string or a list", value.Line)
	}
}

// LoadCredentials читает файл учётных данных.
func LoadCredentials(path string) (*CredentialSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	return ParseCredentials(data)
}

// ParseCredentials разбирает YAML. Пользователь без пароля или без UF — ошибка.
func ParseCredentials(data []byte) (*CredentialSet, error) {
	var f credentialsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse credentials: %w", err)
	}
	set := &CredentialSet{byLogin: make(map[string]model.Credential, len(f.Users))}
	for login, u := range f.Users {
		login = strings.TrimSpace(login)
		if login == "" || u.Password == "" {
			return nil, fmt.Errorf("credentials: user %q has no password", login)
		}
		if len(u.Regions) == 0 {
			return nil, fmt.Errorf("credentials: user %q has no regions", login)
		}
		set.byLogin[login] = model.Credential{Login: login, Secret: u.Password, Regions: u.Regions}
	}
	return set, nil
}

// GetByLogin ищет пользователя; логины чувствительны к регистру.
func (s *CredentialSet) GetByLogin(login string) (model.Credential, error) {
	c, ok := s.byLogin[login]
	if !ok {
		return model.Credential{}, ErrUnknownUser
	}
	return c, nil
}

// Logins — отсортированный список логинов.
func (s *CredentialSet) Logins() []string {
	out := make([]string, 0, len(s.byLogin))
	for l := range s.byLogin {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
