package controllers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	"github.com/curaious/taskdesk/internal/rbac"
	"github.com/curaious/taskdesk/internal/services"
	"github.com/curaious/taskdesk/internal/services/task"
)

func RegisterTaskRoutes(r *router.Router, svc *services.Services, guard *Guard) {
	loadTask := func(ctx *fasthttp.RequestCtx, stdCtx context.Context, action rbac.Action) (*task.Task, bool) {
		p, ok := principal(ctx, stdCtx)
		if !ok {
			return nil, false
		}
		id, ok := pathID(ctx, stdCtx, "id")
		if !ok {
			return nil, false
		}

		t, err := svc.Task.GetByID(stdCtx, id)
		if err != nil {
			writeServiceError(ctx, stdCtx, "Failed to get task", err)
			return nil, false
		}
		if !guard.Allow(ctx, stdCtx, p, action, t.Resource()) {
			return nil, false
		}
		return t, true
	}

	r.GET("/api/tasks/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		t, ok := loadTask(ctx, stdCtx, rbac.ActionView)
		if !ok {
			return
		}

		writeOK(ctx, stdCtx, "success", t)
	})

	r.PUT("/api/tasks/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		t, ok := loadTask(ctx, stdCtx, rbac.ActionUpdate)
		if !ok {
			return
		}

		var req task.UpdateTaskRequest
		if err := parseBody(ctx, &req); err != nil {
			writeInvalid(ctx, stdCtx, "Invalid request body", err)
			return
		}

		updated, err := svc.Task.Update(stdCtx, t.ID, &req)
		if err != nil {
			writeServiceError(ctx, stdCtx, "Failed to update task", err)
			return
		}

		writeOK(ctx, stdCtx, "Task updated successfully", updated)
	})

	r.PATCH("/api/tasks/{id}/status", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		t, ok := loadTask(ctx, stdCtx, rbac.ActionChangeStatus)
		if !ok {
			return
		}

		var req task.SetStatusRequest
		if err := parseBody(ctx, &req); err != nil {
			writeInvalid(ctx, stdCtx, "Invalid request body", err)
			return
		}

		updated, err := svc.Task.SetStatus(stdCtx, t.ID, req.Status)
		if err != nil {
			writeServiceError(ctx, stdCtx, "Failed to update task status", err)
			return
		}

		writeOK(ctx, stdCtx, "Task status updated successfully", updated)
	})

	r.DELETE("/api/tasks/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		t, ok := loadTask(ctx, stdCtx, rbac.ActionDelete)
		if !ok {
			return
		}

		if err := svc.Task.Delete(stdCtx, t.ID); err != nil {
			writeServiceError(ctx, stdCtx, "Failed to delete task", err)
			return
		}

		writeOK(ctx, stdCtx, "Task deleted successfully", nil)
	})
}
