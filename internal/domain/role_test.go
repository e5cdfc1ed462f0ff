package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	for _, r := range Roles {
		got, err := ParseRole(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
		assert.NotEmpty(t, got.Icon())
		assert.NotEqual(t, string(r), got.Title())
	}

	_, err := ParseRole("root")
	assert.Error(t, err)
	_, err = ParseRole("")
	assert.Error(t, err)
}

func TestOrderEntryCompleted(t *testing.T) {
	assert.False(t, OrderEntry{}.Completed())
}
