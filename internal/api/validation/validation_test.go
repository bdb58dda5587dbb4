package validation_test

import (
	"strings"
	"testing"

	"github.com/raminkz/gotodo/internal/api/validation"
	"github.com/stretchr/testify/assert"
)

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@example.co.uk",
		"user+tag@example.io",
		"user_name@sub.example.com",
	}
	for _, email := range valid {
		assert.True(t, validation.IsValidEmail(email), "expected %q to be valid", email)
	}

	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"user@",
		"user@example",
		"user @example.com",
		strings.Repeat("a", 250) + "@example.com",
	}
	for _, email := range invalid {
		assert.False(t, validation.IsValidEmail(email), "expected %q to be invalid", email)
	}
}

func TestIsValidPassword(t *testing.T) {
	t.Run("accepts passwords within the length policy", func(t *testing.T) {
		ok, msg := validation.IsValidPassword("longenough")
		assert.True(t, ok)
		assert.Empty(t, msg)
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		ok, msg := validation.IsValidPassword("short")
		assert.False(t, ok)
		assert.Equal(t, "Password must be at least 8 characters", msg)
	})

	t.Run("rejects overlong passwords", func(t *testing.T) {
		ok, msg := validation.IsValidPassword(strings.Repeat("a", 129))
		assert.False(t, ok)
		assert.Equal(t, "Password must be at most 128 characters", msg)
	})
}
