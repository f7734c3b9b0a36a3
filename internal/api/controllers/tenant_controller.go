package controllers

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	"github.com/curaious/taskdesk/internal/rbac"
	"github.com/curaious/taskdesk/internal/services"
	"github.com/curaious/taskdesk/internal/services/tenant"
)

func RegisterTenantRoutes(r *router.Router, svc *services.Services, guard *Guard) {
	r.GET("/api/tenants", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		p, ok := principal(ctx, stdCtx)
		if !ok {
			return
		}
		if _, ok := guard.Scope(ctx, stdCtx, p, rbac.KindTenant); !ok {
			return
		}

		page, ok := pageParams(ctx, stdCtx, defaultTenantLimit)
		if !ok {
			return
		}

		tenants, info, err := svc.Tenant.List(stdCtx, page)
		if err != nil {
			writeServiceError(ctx, stdCtx, "Failed to list tenants", err)
			return
		}

		writePage(ctx, stdCtx, "success", tenants, info)
	})

	r.GET("/api/tenants/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		p, ok := principal(ctx, stdCtx)
		if !ok {
			return
		}
		id, ok := pathID(ctx, stdCtx, "id")
		if !ok {
			return
		}
		if !guard.Allow(ctx, stdCtx, p, rbac.ActionView, rbac.Resource{Kind: rbac.KindTenant, ID: id, TenantID: id}) {
			return
		}

		t, err := svc.Tenant.GetByID(stdCtx, id)
		if err != nil {
			writeServiceError(ctx, stdCtx, "Failed to get tenant", err)
			return
		}

		writeOK(ctx, stdCtx, "success", t)
	})

	r.PUT("/api/tenants/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		p, ok := principal(ctx, stdCtx)
		if !ok {
			return
		}
		id, ok := pathID(ctx, stdCtx, "id")
		if !ok {
			return
		}

		var req tenant.UpdateTenantRequest
		if err := parseBody(ctx, &req); err != nil {
			writeInvalid(ctx, stdCtx, "Invalid request body", err)
			return
		}

		res := rbac.Resource{Kind: rbac.KindTenant, ID: id, TenantID: id}
		if (req.Name != nil || req.Status != nil || req.SubscriptionPlan == nil) && !guard.Allow(ctx, stdCtx, p, rbac.ActionUpdate, res) {
			return
		}
		if req.SubscriptionPlan != nil && !guard.Allow(ctx, stdCtx, p, rbac.ActionManageTenantPlan, res) {
			return
		}

		t, err := svc.Tenant.Update(stdCtx, id, &req)
		if err != nil {
			writeServiceError(ctx, stdCtx, "Failed to update tenant", err)
			return
		}

		writeOK(ctx, stdCtx, "Tenant updated successfully", t)
	})
}
