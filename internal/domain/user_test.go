package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("alice"))
	assert.ErrorIs(t, ValidateUsername(""), ErrUsernameEmpty)
	assert.ErrorIs(t, ValidateUsername(strings.Repeat("x", MaxUsernameLen+1)), ErrUsernameTooLong)
	assert.NoError(t, ValidateUsername(strings.Repeat("x", MaxUsernameLen)))
}
