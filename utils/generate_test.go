package utils

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var projectIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

func TestGenerateProjectID(t *testing.T) {
	seen := make(map[string]struct{}, 10000)
	for i := 0; i < 10000; i++ {
		id, err := GenerateProjectID(ProjectIDLength)
		require.NoError(t, err)
		require.Len(t, id, ProjectIDLength)
		require.True(t, projectIDPattern.MatchString(id), "id %q must stay URL safe", id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 10000, "ids must be distinct across many generations")
}

func TestGenerateProjectID_DefaultLength(t *testing.T) {
	id, err := GenerateProjectID(0)
	require.NoError(t, err)
	assert.Len(t, id, ProjectIDLength)
}

func TestGeneratePassword(t *testing.T) {
	password, err := GeneratePassword(PasswordLength)
	require.NoError(t, err)
	assert.Len(t, password, PasswordLength)

	for i := 0; i < 200; i++ {
		password, err := GeneratePassword(PasswordLength)
		require.NoError(t, err)
		for _, c := range password {
			assert.NotContains(t, "lI10O", string(c), "ambiguous characters must never appear")
		}
	}
}

func TestGeneratePassword_DefaultLength(t *testing.T) {
	password, err := GeneratePassword(-1)
	require.NoError(t, err)
	assert.Len(t, password, PasswordLength)
}
