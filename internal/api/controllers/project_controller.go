package controllers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	"github.com/curaious/taskdesk/internal/rbac"
	"github.com/curaious/taskdesk/internal/services"
	"github.com/curaious/taskdesk/internal/services/project"
	"github.com/curaious/taskdesk/internal/services/task"
)

func RegisterProjectRoutes(r *router.Router, svc *services.Services, guard *Guard) {
	// loadProject fetches the project in the id path param and checks kind/action
	// against the project's tenant.
	loadProject := func(ctx *fasthttp.RequestCtx, stdCtx context.Context, kind rbac.Kind, action rbac.Action) (*project.Project, bool) {
		p, ok := principal(ctx, stdCtx)
		if !ok {
			return nil, false
		}
		id, ok := pathID(ctx, stdCtx, "id")
		if !ok {
			return nil, false
		}

		proj, err := svc.Project.GetByID(stdCtx, id)
		if err != nil {
			writeServiceError(ctx, stdCtx, "Failed to get project", err)
			return nil, false
		}

		res := proj.Resource()
		if kind == rbac.KindTask {
			res = rbac.Resource{Kind: rbac.KindTask, TenantID: proj.TenantID}
		}
		if !guard.Allow(ctx, stdCtx, p, action, res) {
			return nil, false
		}
		return proj, true
	}

	r.GET("/api/projects", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		p, ok := principal(ctx, stdCtx)
		if !ok {
			return
		}
		scope, ok := guard.Scope(ctx, stdCtx, p, rbac.KindProject)
		if !ok {
			return
		}

		page, ok := pageParams(ctx, stdCtx, defaultProjectLimit)
		if !ok {
			return
		}

		projects, info, err := svc.Project.List(stdCtx, scope.TenantID, page)
		if err != nil {
			writeServiceError(ctx, stdCtx, "Failed to list projects", err)
			return
		}

		writePage(ctx, stdCtx, "success", projects, info)
	})

	r.POST("/api/projects", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		p, ok := principal(ctx, stdCtx)
		if !ok {
			return
		}
		if !guard.Allow(ctx, stdCtx, p, rbac.ActionCreate, rbac.Resource{Kind: rbac.KindProject, TenantID: p.TenantID}) {
			return
		}

		var req project.CreateProjectRequest
		if err := parseBody(ctx, &req); err != nil {
			writeInvalid(ctx, stdCtx, "Invalid request body", err)
			return
		}

		t, err := svc.Tenant.GetByID(stdCtx, p.TenantID)
		if err != nil {
			writeServiceError(ctx, stdCtx, "Failed to create project", err)
			return
		}

		proj, err := svc.Project.Create(stdCtx, p.TenantID, p.ID, t.MaxProjects, &req)
		if err != nil {
			writeServiceError(ctx, stdCtx, "Failed to create project", err)
			return
		}

		writeCreated(ctx, stdCtx, "Project created successfully", proj)
	})

	r.GET("/api/projects/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		proj, ok := loadProject(ctx, stdCtx, rbac.KindProject, rbac.ActionView)
		if !ok {
			return
		}

		writeOK(ctx, stdCtx, "success", proj)
	})

	r.PUT("/api/projects/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		proj, ok := loadProject(ctx, stdCtx, rbac.KindProject, rbac.ActionUpdate)
		if !ok {
			return
		}

		var req project.UpdateProjectRequest
		if err := parseBody(ctx, &req); err != nil {
			writeInvalid(ctx, stdCtx, "Invalid request body", err)
			return
		}

		updated, err := svc.Project.Update(stdCtx, proj.ID, &req)
		if err != nil {
			writeServiceError(ctx, stdCtx, "Failed to update project", err)
			return
		}

		writeOK(ctx, stdCtx, "Project updated successfully", updated)
	})

	r.DELETE("/api/projects/{id}", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		proj, ok := loadProject(ctx, stdCtx, rbac.KindProject, rbac.ActionDelete)
		if !ok {
			return
		}

		if err := svc.Project.Delete(stdCtx, proj.ID); err != nil {
			writeServiceError(ctx, stdCtx, "Failed to delete project", err)
			return
		}

		writeOK(ctx, stdCtx, "Project deleted successfully", nil)
	})

	r.GET("/api/projects/{id}/tasks", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		proj, ok := loadProject(ctx, stdCtx, rbac.KindTask, rbac.ActionView)
		if !ok {
			return
		}

		page, ok := pageParams(ctx, stdCtx, defaultTaskLimit)
		if !ok {
			return
		}

		tasks, info, err := svc.Task.ListByProject(stdCtx, proj.ID, page)
		if err != nil {
			writeServiceError(ctx, stdCtx, "Failed to list tasks", err)
			return
		}

		writePage(ctx, stdCtx, "success", tasks, info)
	})

	r.POST("/api/projects/{id}/tasks", func(ctx *fasthttp.RequestCtx) {
		stdCtx := requestContext(ctx)

		proj, ok := loadProject(ctx, stdCtx, rbac.KindTask, rbac.ActionCreate)
		if !ok {
			return
		}

		var req task.CreateTaskRequest
		if err := parseBody(ctx, &req); err != nil {
			writeInvalid(ctx, stdCtx, "Invalid request body", err)
			return
		}

		created, err := svc.Task.Create(stdCtx, proj.ID, proj.TenantID, &req)
		if err != nil {
			writeServiceError(ctx, stdCtx, "Failed to create task", err)
			return
		}

		writeCreated(ctx, stdCtx, "Task created successfully", created)
	})
}
