package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/curaious/taskdesk/internal/perrors"
	"github.com/curaious/taskdesk/internal/services/project"
	"github.com/curaious/taskdesk/internal/services/task"
	"github.com/curaious/taskdesk/internal/services/tenant"
	"github.com/curaious/taskdesk/internal/services/user"
)

func TestAPIError(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{user.ErrUserLimitReached, http.StatusUnprocessableEntity, "User limit reached"},
		{project.ErrProjectLimitReached, http.StatusUnprocessableEntity, "Project limit reached"},
		{task.ErrInvalidAssignee, http.StatusBadRequest, "Invalid assigned user"},
		{fmt.Errorf("%w: acme", tenant.ErrSubdomainExists), http.StatusConflict, "Subdomain already exists"},
		{fmt.Errorf("failed to get project: %w", project.ErrProjectNotFound), http.StatusNotFound, "Project not found"},
		{errors.New("connection reset"), http.StatusInternalServerError, "Failed to do it"},
	}

	for _, tc := range cases {
		msg, err := apiError(tc.err, "Failed to do it")
		assert.Equal(t, tc.message, msg)

		var perr perrors.Err
		if assert.ErrorAs(t, err, &perr) {
			assert.Equal(t, tc.status, perr.HttpStatus(), tc.message)
		}
		assert.ErrorIs(t, err, tc.err)
	}
}
