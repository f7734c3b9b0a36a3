package controllers

import (
	"context"
	"errors"

	"github.com/valyala/fasthttp"

	"github.com/curaious/taskdesk/internal/perrors"
	"github.com/curaious/taskdesk/internal/services/auth"
	"github.com/curaious/taskdesk/internal/services/project"
	"github.com/curaious/taskdesk/internal/services/task"
	"github.com/curaious/taskdesk/internal/services/tenant"
	"github.com/curaious/taskdesk/internal/services/user"
)

type errorMapping struct {
	target  error
	code    perrors.ErrCode
	message string
}

// serviceErrors translates service sentinels into API errors. The message is
// returned to clients verbatim.
var serviceErrors = []errorMapping{
	{auth.ErrInvalidCredentials, perrors.ErrCodeInvalidCredentials, "Invalid email or password"},
	{auth.ErrMissingCredentials, perrors.ErrCodeValidationFailed, "Email and password are required"},
	{auth.ErrAccountInactive, perrors.ErrCodeUnauthorized, "Account is inactive"},
	{auth.ErrTenantInactive, perrors.ErrCodeUnauthorized, "Tenant is not active"},
	{auth.ErrTenantNotFound, perrors.ErrCodeNotFound, "Tenant not found"},

	{tenant.ErrTenantNotFound, perrors.ErrCodeNotFound, "Tenant not found"},
	{tenant.ErrSubdomainExists, perrors.ErrCodeConflict, "Subdomain already exists"},
	{tenant.ErrEmailExists, perrors.ErrCodeConflict, "Email already exists"},
	{tenant.ErrInvalidInput, perrors.ErrCodeValidationFailed, "Invalid input"},
	{tenant.ErrInvalidPlan, perrors.ErrCodeValidationFailed, "Invalid subscription plan"},
	{tenant.ErrInvalidStatus, perrors.ErrCodeValidationFailed, "Invalid tenant status"},

	{user.ErrUserNotFound, perrors.ErrCodeNotFound, "User not found"},
	{user.ErrEmailAlreadyExists, perrors.ErrCodeConflict, "Email already in use"},
	{user.ErrUserLimitReached, perrors.ErrCodeLimitReached, "User limit reached"},
	{user.ErrPasswordTooShort, perrors.ErrCodeValidationFailed, "Password must be at least 8 characters"},
	{user.ErrInvalidRole, perrors.ErrCodeValidationFailed, "Invalid role"},
	{user.ErrMissingFields, perrors.ErrCodeValidationFailed, "Email, password and full name are required"},

	{project.ErrProjectNotFound, perrors.ErrCodeNotFound, "Project not found"},
	{project.ErrProjectAlreadyExists, perrors.ErrCodeConflict, "Project name already exists"},
	{project.ErrProjectLimitReached, perrors.ErrCodeLimitReached, "Project limit reached"},
	{project.ErrNameRequired, perrors.ErrCodeValidationFailed, "Project name is required"},
	{project.ErrInvalidStatus, perrors.ErrCodeValidationFailed, "Invalid project status"},

	{task.ErrTaskNotFound, perrors.ErrCodeNotFound, "Task not found"},
	{task.ErrTitleRequired, perrors.ErrCodeValidationFailed, "Task title is required"},
	{task.ErrInvalidStatus, perrors.ErrCodeValidationFailed, "Invalid task status"},
	{task.ErrInvalidPriority, perrors.ErrCodeValidationFailed, "Invalid task priority"},
	{task.ErrInvalidAssignee, perrors.ErrCodeValidationFailed, "Invalid assigned user"},
}

// apiError maps err onto the error taxonomy. Unknown errors become 500s
// carrying fallback as their message.
func apiError(err error, fallback string) (string, error) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			return m.message, perrors.New(m.code, m.message, err)
		}
	}
	return fallback, perrors.NewErrInternalServerError(fallback, err)
}

func writeServiceError(ctx *fasthttp.RequestCtx, stdCtx context.Context, fallback string, err error) {
	msg, perr := apiError(err, fallback)
	writeError(ctx, stdCtx, msg, perr)
}
