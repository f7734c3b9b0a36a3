package perrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		name          string
		status        int
		message       string
		authenticated bool
		want          ErrCode
		wantText      string
	}{
		{"validation", http.StatusBadRequest, "Invalid input", true, ErrCodeValidationFailed, "Invalid input"},
		{"limit", http.StatusUnprocessableEntity, "User limit reached", true, ErrCodeValidationFailed, "User limit reached"},
		{"expired session", http.StatusUnauthorized, "", true, ErrCodeAuthenticationExpired, "Operation failed"},
		{"bad credentials", http.StatusUnauthorized, "Invalid credentials", false, ErrCodeInvalidCredentials, "Invalid credentials"},
		{"forbidden", http.StatusForbidden, "Unauthorized", true, ErrCodeUnauthorized, "Unauthorized"},
		{"missing", http.StatusNotFound, "", true, ErrCodeNotFound, "Operation failed"},
		{"duplicate", http.StatusConflict, "Subdomain already exists", false, ErrCodeConflict, "Subdomain already exists"},
		{"server", http.StatusBadGateway, "", true, ErrCodeInternalServer, "Operation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromStatus(tt.status, tt.message, "Operation failed", tt.authenticated)
			code, ok := CodeOf(err)
			require.True(t, ok)
			assert.Equal(t, tt.want, code)
			assert.Equal(t, tt.wantText, err.Error())
		})
	}
}

func TestIs_WalksCauses(t *testing.T) {
	conflict := FromStatus(http.StatusConflict, "Subdomain already exists", "Registration failed", false)
	wrapped := New(ErrCodeRegistrationFailed, "Registration failed", conflict)

	assert.True(t, Is(wrapped, ErrCodeRegistrationFailed))
	assert.True(t, Is(wrapped, ErrCodeConflict))
	assert.False(t, Is(wrapped, ErrCodeNotFound))
	assert.Equal(t, "Subdomain already exists", wrapped.Error())

	assert.True(t, Is(fmt.Errorf("create: %w", wrapped), ErrCodeConflict))
	assert.False(t, Is(errors.New("plain"), ErrCodeConflict))
}

func TestDenied(t *testing.T) {
	err := Denied("create", "project")

	assert.True(t, Is(err, ErrCodeUnauthorized))
	assert.Equal(t, "You are not authorized to create project", err.Error())
}
