package controllers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	"github.com/curaious/taskdesk/internal/rbac"
	"github.com/curaious/taskdesk/internal/services"
	"github.com/curaious/taskdesk/internal/services/user"
)

func RegisterUserRoutes(r *router.Router, svc *services.Services, guard *Guard) {
	// loadUser fetches the user in the id path param and checks action on it.
	loadUser := func(ctx *fasthttp.RequestCtx, stdCtx context.Context, action rbac.Action) (*user.User, bool) {
		p, ok := principal(ctx, stdCtx)
		if !ok {
			return nil, false
		}
		id, ok := pathID(ctx, stdCtx, "id")
		if !ok {
			return nil, false
		}

		u, err := svc.User.GetByID(stdCtx, id)
		if err != nil {
			writeServiceError(ctx, stdCtx, "Failed to get user", err)
			return nil, false
		}
		if !guard.Allow(ctx, stdCtx, p, action, u.Resource()) {
			return nil, false
		}
		return u, true
	}

	r.GET("/api/users", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		p, ok := principal(ctx, stdCtx)
		if !ok {
			return
		}
		scope, ok := guard.Scope(ctx, stdCtx, p, rbac.KindUser)
		if !ok {
			return
		}

		page, ok := pageParams(ctx, stdCtx, defaultUserLimit)
		if !ok {
			return
		}

		// Only a global scope lists across tenants; anyone else is pinned to theirs.
		filter := user.ListFilter{Search: queryString(ctx, "search"), Page: page}
		if !scope.Global {
			filter.TenantID = scope.TenantID
		}

		users, info, err := svc.User.List(stdCtx, filter)
		if err != nil {
			writeServiceError(ctx, stdCtx, "Failed to list users", err)
			return
		}

		writePage(ctx, stdCtx, "success", users, info)
	})

	r.GET("/api/tenants/{id}/users", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		p, ok := principal(ctx, stdCtx)
		if !ok {
			return
		}
		tenantID, ok := pathID(ctx, stdCtx, "id")
		if !ok {
			return
		}
		scope, ok := guard.Scope(ctx, stdCtx, p, rbac.KindUser)
		if !ok {
			return
		}
		if !scope.Contains(tenantID) {
			guard.deny(ctx, stdCtx, "list", string(rbac.KindUser))
			return
		}

		page, ok := pageParams(ctx, stdCtx, defaultUserLimit)
		if !ok {
			return
		}

		users, info, err := svc.User.List(stdCtx, user.ListFilter{TenantID: tenantID, Search: queryString(ctx, "search"), Page: page})
		if err != nil {
			writeServiceError(ctx, stdCtx, "Failed to list users", err)
			return
		}

		writePage(ctx, stdCtx, "success", users, info)
	})

	r.POST("/api/tenants/{id}/users", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		p, ok := principal(ctx, stdCtx)
		if !ok {
			return
		}
		tenantID, ok := pathID(ctx, stdCtx, "id")
		if !ok {
			return
		}
		if !guard.Allow(ctx, stdCtx, p, rbac.ActionCreate, rbac.Resource{Kind: rbac.KindUser, TenantID: tenantID}) {
			return
		}

		var req user.CreateUserRequest
		if err := parseBody(ctx, &req); err != nil {
			writeInvalid(ctx, stdCtx, "Invalid request body", err)
			return
		}

		t, err := svc.Tenant.GetByID(stdCtx, tenantID)
		if err != nil {
			writeServiceError(ctx, stdCtx, "Failed to create user", err)
			return
		}

		u, err := svc.User.Create(stdCtx, tenantID, t.MaxUsers, &req)
		if err != nil {
			writeServiceError(ctx, stdCtx, "Failed to create user", err)
			return
		}

		writeCreated(ctx, stdCtx, "User created successfully", u)
	})

	r.GET("/api/users/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		u, ok := loadUser(ctx, stdCtx, rbac.ActionView)
		if !ok {
			return
		}

		writeOK(ctx, stdCtx, "success", u)
	})

	r.PUT("/api/users/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		u, ok := loadUser(ctx, stdCtx, rbac.ActionUpdate)
		if !ok {
			return
		}

		var req user.UpdateUserRequest
		if err := parseBody(ctx, &req); err != nil {
			writeInvalid(ctx, stdCtx, "Invalid request body", err)
			return
		}

		updated, err := svc.User.Update(stdCtx, u.ID, &req)
		if err != nil {
			writeServiceError(ctx, stdCtx, "Failed to update user", err)
			return
		}

		writeOK(ctx, stdCtx, "User updated successfully", updated)
	})

	r.DELETE("/api/users/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		u, ok := loadUser(ctx, stdCtx, rbac.ActionDelete)
		if !ok {
			return
		}

		if err := svc.User.Delete(stdCtx, u.ID); err != nil {
			writeServiceError(ctx, stdCtx, "Failed to delete user", err)
			return
		}

		writeOK(ctx, stdCtx, "User deleted successfully", nil)
	})
}
