package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/curaious/taskdesk/internal/api/controllers"
	"github.com/curaious/taskdesk/internal/api/response"
	"github.com/curaious/taskdesk/internal/perrors"
	"github.com/curaious/taskdesk/internal/services/user"
)

var tracePropagator = propagation.TraceContext{}

var tracer = otel.Tracer("github.com/curaious/taskdesk/internal/api")

var publicRoutes = map[string]bool{
	"/api/health":               true,
	"/api/auth/login":           true,
	"/api/auth/register-tenant": true,
	"/metrics":                  true,
}

func (s *Server) initRoutes() fasthttp.RequestHandler {
	r := router.New()
	r.SaveMatchedRoutePath = true

	r.GET("/api/health", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusOK)
		_, _ = ctx.Write([]byte("OK"))
	})
	r.GET("/metrics", s.metrics.Handler())

	guard := controllers.NewGuard(s.metrics)

	controllers.RegisterAuthRoutes(r, s.services, s.auth)
	controllers.RegisterTenantRoutes(r, s.services, guard)
	controllers.RegisterUserRoutes(r, s.services, guard)
	controllers.RegisterProjectRoutes(r, s.services, guard)
	controllers.RegisterTaskRoutes(r, s.services, guard)

	return s.withMiddlewares(r.Handler)
}

func (s *Server) withMiddlewares(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		s.applyCORS(ctx)
		if string(ctx.Method()) == fasthttp.MethodOptions {
			ctx.SetStatusCode(fasthttp.StatusNoContent)
			return
		}

		start := time.Now()
		method := string(ctx.Method())
		requestURI := string(ctx.URI().FullURI())
		slog.Info("Started processing", slog.String("method", method), slog.String("request_uri", requestURI))

		h := http.Header{}
		ctx.Request.Header.VisitAll(func(k, v []byte) {
			h[string(k)] = []string{string(v)}
		})
		traceCtx := tracePropagator.Extract(context.Background(), propagation.HeaderCarrier(h))
		traceCtx, span := tracer.Start(traceCtx, method+" "+string(ctx.Path()), trace.WithSpanKind(trace.SpanKindServer))
		ctx.SetUserValue(controllers.TraceCtxKey, traceCtx)

		if s.authenticate(ctx, traceCtx) {
			next(ctx)
		}

		route, _ := ctx.UserValue(router.MatchedRoutePathParam).(string)
		if route == "" {
			route = "unmatched"
		}
		status := ctx.Response.StatusCode()
		s.metrics.observe(method, route, status, time.Since(start))

		span.SetAttributes(attribute.String("http.route", route), attribute.Int("http.status_code", status))
		span.End()

		slog.Info("Finished processing", slog.String("method", method), slog.String("request_uri", requestURI), slog.Int("status", status), slog.Duration("duration", time.Since(start)))
	}
}

// authenticate resolves the bearer token into a principal for protected
// routes. The user is reloaded on every request so deletions and
// deactivations apply immediately.
func (s *Server) authenticate(ctx *fasthttp.RequestCtx, stdCtx context.Context) bool {
	if publicRoutes[string(ctx.Path())] {
		return true
	}

	accessToken := strings.TrimPrefix(string(ctx.Request.Header.Peek("Authorization")), "Bearer ")
	if accessToken == "" {
		unauthorized(ctx, stdCtx, errors.New("missing access token"))
		return false
	}

	claims, err := s.auth.VerifyAccessToken(stdCtx, accessToken)
	if err != nil {
		unauthorized(ctx, stdCtx, err)
		return false
	}

	u, err := s.services.User.GetByID(stdCtx, claims.UserID())
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			unauthorized(ctx, stdCtx, err)
			return false
		}
		response.NewResponse[any](stdCtx, "Failed to authenticate", nil).
			WithError(perrors.NewErrInternalServerError("Failed to authenticate", err)).
			Write(ctx)
		return false
	}

	ctx.SetUserValue(controllers.ClaimsKey, claims)
	ctx.SetUserValue(controllers.PrincipalKey, u.Principal())
	return true
}

func unauthorized(ctx *fasthttp.RequestCtx, stdCtx context.Context, err error) {
	const msg = "Authentication required"
	response.NewResponse[any](stdCtx, msg, nil).
		WithError(perrors.New(perrors.ErrCodeAuthenticationExpired, msg, err)).
		Write(ctx)
}

func (s *Server) applyCORS(ctx *fasthttp.RequestCtx) {
	headers := &ctx.Response.Header
	headers.Set("Access-Control-Allow-Origin", string(ctx.Request.Header.Peek("Origin")))
	headers.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS,PATCH")
	headers.Set("Access-Control-Allow-Headers", s.conf.ALLOWED_HEADERS)
	headers.Set("Access-Control-Allow-Credentials", "true")
}
