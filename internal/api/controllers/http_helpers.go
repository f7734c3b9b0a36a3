package controllers

import (
	"context"
	"errors"
	"fmt"

	json "github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/valyala/fasthttp"

	"github.com/curaious/taskdesk/internal/api/authenticator"
	"github.com/curaious/taskdesk/internal/api/response"
	"github.com/curaious/taskdesk/internal/pagination"
	"github.com/curaious/taskdesk/internal/perrors"
	"github.com/curaious/taskdesk/internal/rbac"
)

// User value keys set by the server middleware.
const (
	PrincipalKey = "principal"
	ClaimsKey    = "userClaims"
	TraceCtxKey  = "traceCtx"
)

// requestContext returns the context carrying the caller's trace, or
// Background when the middleware did not attach one.
func requestContext(ctx *fasthttp.RequestCtx) context.Context {
	if traceCtx, ok := ctx.UserValue(TraceCtxKey).(context.Context); ok && traceCtx != nil {
		return traceCtx
	}
	return context.Background()
}

func parseBody(ctx *fasthttp.RequestCtx, target any) error {
	body := ctx.PostBody()
	if len(body) == 0 {
		return errors.New("request body is empty")
	}

	return json.Unmarshal(body, target)
}

func writeError(ctx *fasthttp.RequestCtx, stdCtx context.Context, message string, err error) {
	response.NewResponse[any](stdCtx, message, nil).WithError(err).Write(ctx)
}

func writeOK(ctx *fasthttp.RequestCtx, stdCtx context.Context, message string, data any) {
	response.NewResponse(stdCtx, message, data).Write(ctx)
}

func writeCreated(ctx *fasthttp.RequestCtx, stdCtx context.Context, message string, data any) {
	response.NewResponse(stdCtx, message, data).WithStatus(fasthttp.StatusCreated).Write(ctx)
}

func writePage(ctx *fasthttp.RequestCtx, stdCtx context.Context, message string, data any, info *pagination.Info) {
	response.NewResponse(stdCtx, message, data).WithPagination(info).Write(ctx)
}

// writeInvalid answers 400 with message as the envelope text.
func writeInvalid(ctx *fasthttp.RequestCtx, stdCtx context.Context, message string, err error) {
	writeError(ctx, stdCtx, message, perrors.New(perrors.ErrCodeValidationFailed, message, err))
}

func pathParam(ctx *fasthttp.RequestCtx, key string) (string, error) {
	val := ctx.UserValue(key)
	if val == nil {
		return "", fmt.Errorf("%s is required", key)
	}

	return fmt.Sprint(val), nil
}

// pathID returns the UUID path parameter key, answering 400 when it is malformed.
func pathID(ctx *fasthttp.RequestCtx, stdCtx context.Context, key string) (string, bool) {
	val, err := pathParam(ctx, key)
	if err == nil {
		var id uuid.UUID
		if id, err = uuid.Parse(val); err == nil {
			return id.String(), true
		}
	}
	writeInvalid(ctx, stdCtx, "Invalid id", err)
	return "", false
}

// Default page sizes of the list endpoints.
const (
	defaultProjectLimit = 20
	defaultTaskLimit    = 50
	defaultTenantLimit  = 10
	defaultUserLimit    = 50
)

// pageParams reads the page and limit query args. A value that is not a
// non-negative number answers 400.
func pageParams(ctx *fasthttp.RequestCtx, stdCtx context.Context, defaultLimit int) (pagination.Page, bool) {
	args := ctx.QueryArgs()

	number, limit := 0, 0
	var err error
	if args.Has("page") {
		if number, err = args.GetUint("page"); err != nil {
			writeInvalid(ctx, stdCtx, "Invalid page", err)
			return pagination.Page{}, false
		}
	}
	if args.Has("limit") {
		if limit, err = args.GetUint("limit"); err != nil {
			writeInvalid(ctx, stdCtx, "Invalid limit", err)
			return pagination.Page{}, false
		}
	}

	return pagination.New(number, limit, defaultLimit), true
}

func queryString(ctx *fasthttp.RequestCtx, key string) string {
	return string(ctx.QueryArgs().Peek(key))
}

// principalOf returns the principal resolved by the auth middleware.
func principalOf(ctx *fasthttp.RequestCtx) (rbac.Principal, bool) {
	p, ok := ctx.UserValue(PrincipalKey).(rbac.Principal)
	return p, ok
}

func claimsOf(ctx *fasthttp.RequestCtx) (*authenticator.UserClaims, bool) {
	c, ok := ctx.UserValue(ClaimsKey).(*authenticator.UserClaims)
	return c, ok && c != nil
}
