package controllers

import (
	"context"

	"github.com/valyala/fasthttp"

	"github.com/curaious/taskdesk/internal/perrors"
	"github.com/curaious/taskdesk/internal/rbac"
)

// DenialRecorder is notified of every request the policy rejects.
type DenialRecorder interface {
	Denied(action, kind string)
}

// Guard re-checks the authorization policy on the server side.
type Guard struct {
	recorder DenialRecorder
}

func NewGuard(recorder DenialRecorder) *Guard {
	return &Guard{recorder: recorder}
}

// Allow reports whether p may perform action on res and answers 403 when it may not.
func (g *Guard) Allow(ctx *fasthttp.RequestCtx, stdCtx context.Context, p rbac.Principal, action rbac.Action, res rbac.Resource) bool {
	if rbac.Can(p, action, res) {
		return true
	}
	g.deny(ctx, stdCtx, string(action), string(res.Kind))
	return false
}

// Scope resolves the listing scope of kind for p and answers 403 when p may not list it.
func (g *Guard) Scope(ctx *fasthttp.RequestCtx, stdCtx context.Context, p rbac.Principal, kind rbac.Kind) (rbac.Scope, bool) {
	scope, ok := rbac.ListScope(p, kind)
	if !ok {
		g.deny(ctx, stdCtx, "list", string(kind))
	}
	return scope, ok
}

func (g *Guard) deny(ctx *fasthttp.RequestCtx, stdCtx context.Context, action, kind string) {
	if g.recorder != nil {
		g.recorder.Denied(action, kind)
	}
	err := perrors.Denied(action, kind)
	writeError(ctx, stdCtx, err.(perrors.Err).Message, err)
}

// principal fetches the request principal, answering 401 when the middleware did not resolve one.
func principal(ctx *fasthttp.RequestCtx, stdCtx context.Context) (rbac.Principal, bool) {
	p, ok := principalOf(ctx)
	if !ok {
		writeError(ctx, stdCtx, "Authentication required",
			perrors.New(perrors.ErrCodeAuthenticationExpired, "Authentication required", nil))
	}
	return p, ok
}
