package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUsernamePattern(t *testing.T) {
	valid := []string{"admin", "waiter_01", "_cashier", "user123"}
	for _, username := range valid {
		assert.True(t, usernamePattern.MatchString(username), "expected %q to be accepted", username)
	}

	invalid := []string{"", "Admin", "user name", "user-1", "user@pos", "пользователь"}
	for _, username := range invalid {
		assert.False(t, usernamePattern.MatchString(username), "expected %q to be rejected", username)
	}
}
