package repo

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const credentialsYAML = `
users:
  ana:
    password: "sha256:9f86d081884c7d659a2feaa0c55ad015a3bf4f1b2b0b822cd15d6c15b0f00a08"
    regions: [sp, RJ]
  chefe:
    password: "$2a$10$abcdefghijklmnopqrstuu"
    regions: ALL
  bia:
    password: plain
    regions: "AM, BA"
`

func TestParseCredentials(t *testing.T) {
	set, err := ParseCredentials([]byte(credentialsYAML))
	require.NoError(t, err)
	assert.Equal(t, []string{"ana", "bia", "chefe"}, set.Logins())

	ana, err := set.GetByLogin("ana")
	require.NoError(t, err)
	assert.Equal(t, []string{"SP", "RJ"}, ana.Regions)

	bia, err := set.GetByLogin("bia")
	require.NoError(t, err)
	assert.Equal(t, []string{"AM", "BA"}, bia.Regions)
	assert.Equal(t, "plain", bia.Secret)

	chefe, err := set.GetByLogin("chefe")
	require.NoError(t, err)
	assert.Equal(t, []string{"ALL"}, chefe.Regions)

	_, err = set.GetByLogin("Ana")
	assert.ErrorIs(t, err, ErrUnknownUser)
}

func TestParseCredentials_Invalid(t *testing.T) {
	cases := map[string]string{
		"no password": "users:\n  ana:\n    regions: ALL\n",
		"no regions":  "users:\n  ana:\n    password: x\n",
		"bad regions": "users:\n  ana:\n    password: x\n    regions: {a: b}\n",
		"not yaml":    "users: [",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCredentials([]byte(src))
			assert.Error(t, err)
		})
	}
}

func TestLoadCredentials(t *testing.T) {
	p := filepath.Join(t.TempDir(), "credentials.yaml")
	require.NoError(t, os.WriteFile(p, []byte(credentialsYAML), 0o600))
	set, err := LoadCredentials(p)
	require.NoError(t, err)
	assert.Len(t, set.Logins(), 3)

	_, err = LoadCredentials(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
