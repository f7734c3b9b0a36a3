package controllers

import (
	"context"
	"log/slog"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	"github.com/curaious/taskdesk/internal/api/authenticator"
	"github.com/curaious/taskdesk/internal/services"
	"github.com/curaious/taskdesk/internal/services/auth"
	"github.com/curaious/taskdesk/internal/services/tenant"
)

func RegisterAuthRoutes(r *router.Router, svc *services.Services, authn *authenticator.Authenticator) {
	issue := func(ctx *fasthttp.RequestCtx, stdCtx context.Context, profile *auth.Profile, created bool) {
		token, err := authn.GenerateToken(profile.Principal())
		if err != nil {
			writeServiceError(ctx, stdCtx, "Failed to generate token", err)
			return
		}

		session := auth.Session{
			Token:     token,
			ExpiresIn: int64(authn.TTL().Seconds()),
			User:      *profile,
		}
		if created {
			writeCreated(ctx, stdCtx, "Tenant registered successfully", session)
			return
		}
		writeOK(ctx, stdCtx, "Login successful", session)
	}

	r.POST("/api/auth/login", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		var req auth.LoginRequest
		if err := parseBody(ctx, &req); err != nil {
			writeInvalid(ctx, stdCtx, "Invalid request body", err)
			return
		}

		profile, err := svc.Auth.Login(stdCtx, &req)
		if err != nil {
			writeServiceError(ctx, stdCtx, "Login failed", err)
			return
		}

		slog.InfoContext(stdCtx, "User logged in", slog.String("user_id", profile.ID), slog.String("tenant_id", profile.TenantID))
		issue(ctx, stdCtx, profile, false)
	})

	r.POST("/api/auth/register-tenant", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		var req tenant.RegisterTenantRequest
		if err := parseBody(ctx, &req); err != nil {
			writeInvalid(ctx, stdCtx, "Invalid request body", err)
			return
		}

		profile, err := svc.Auth.Register(stdCtx, &req)
		if err != nil {
			writeServiceError(ctx, stdCtx, "Registration failed", err)
			return
		}

		slog.InfoContext(stdCtx, "Tenant registered", slog.String("tenant_id", profile.TenantID), slog.String("subdomain", req.Subdomain))
		issue(ctx, stdCtx, profile, true)
	})

	r.GET("/api/auth/me", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		p, ok := principal(ctx, stdCtx)
		if !ok {
			return
		}

		profile, err := svc.Auth.Me(stdCtx, p.ID)
		if err != nil {
			writeServiceError(ctx, stdCtx, "Failed to get user", err)
			return
		}

		writeOK(ctx, stdCtx, "success", profile)
	})

	r.POST("/api/auth/logout", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		if claims, ok := claimsOf(ctx); ok {
			if err := authn.Revoke(stdCtx, claims); err != nil {
				writeServiceError(ctx, stdCtx, "Failed to logout", err)
				return
			}
		}

		writeOK(ctx, stdCtx, "Logged out successfully", nil)
	})
}
