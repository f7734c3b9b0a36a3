package services

import (
	"github.com/jmoiron/sqlx"

	"github.com/curaious/taskdesk/internal/config"
	"github.com/curaious/taskdesk/internal/db"
	"github.com/curaious/taskdesk/internal/services/auth"
	"github.com/curaious/taskdesk/internal/services/project"
	"github.com/curaious/taskdesk/internal/services/task"
	"github.com/curaious/taskdesk/internal/services/tenant"
	"github.com/curaious/taskdesk/internal/services/user"
)

type Services struct {
	Auth    *auth.AuthService
	Tenant  *tenant.TenantService
	User    *user.UserService
	Project *project.ProjectService
	Task    *task.TaskService
}

func NewServices(conf *config.Config) *Services {
	return NewServicesWithDB(db.NewConn(conf))
}

// NewServicesWithDB wires every service over an existing connection.
func NewServicesWithDB(dbconn *sqlx.DB) *Services {
	userRepo := user.NewUserRepo(dbconn)
	userSvc := user.NewUserService(userRepo)
	tenantSvc := tenant.NewTenantService(tenant.NewTenantRepo(dbconn, userRepo), userSvc)

	return &Services{
		Auth:    auth.NewAuthService(userSvc, tenantSvc),
		Tenant:  tenantSvc,
		User:    userSvc,
		Project: project.NewProjectService(project.NewProjectRepo(dbconn)),
		Task:    task.NewTaskService(task.NewTaskRepo(dbconn), userRepo),
	}
}
