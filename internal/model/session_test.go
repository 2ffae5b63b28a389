package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_Lifecycle(t *testing.T) {
	s := Anonymous()
	assert.False(t, s.Authenticated())
	assert.False(t, s.CanAccess("AM"))

	s, err := s.Authenticate("joao", []string{" am", "BA", "am"})
	require.NoError(t, err)
	assert.True(t, s.Authenticated())
	assert.Equal(t, "joao", s.Login())
	assert.Equal(t, []string{"AM", "BA"}, s.Regions())
	assert.True(t, s.CanAccess("ba"))
	assert.False(t, s.CanAccess("RJ"))
	assert.False(t, s.IsAdmin())

	_, err = s.Authenticate("other", nil)
	assert.ErrorIs(t, err, ErrAlreadyAuthenticated)

	s = s.Logout()
	assert.False(t, s.Authenticated())
	assert.Empty(t, s.Regions())
}

func TestSession_Admin(t *testing.T) {
	s, err := Anonymous().Authenticate("admin", ParseRegions("ALL"))
	require.NoError(t, err)
	assert.True(t, s.IsAdmin())
	assert.True(t, s.CanAccess("TO"))
	assert.Equal(t, KnownRegions, s.SelectableRegions())

	_, err = Anonymous().Authenticate("", nil)
	assert.Error(t, err)
}
