package project

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curaious/taskdesk/internal/pagination"
)

const tenantA = "8f0c3f5e-6f55-4d61-9e0c-3b2f0f5a0a01"

var projectCols = []string{"id", "tenant_id", "name", "description", "status", "created_by", "task_count", "created_at", "updated_at"}

func newTestService(t *testing.T) (*ProjectService, sqlmock.Sqlmock) {
	t.Helper()
	conn, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewProjectService(NewProjectRepo(sqlx.NewDb(conn, "postgres"))), mock
}

func projectRow(id, name string, taskCount int) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(projectCols).AddRow(id, tenantA, name, "", "ACTIVE", "", taskCount, now, now)
}

func TestList_Paged(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM projects WHERE tenant_id = $1")).
		WithArgs(tenantA).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(41))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY p.created_at DESC LIMIT $2 OFFSET $3")).
		WithArgs(tenantA, 20, 40).
		WillReturnRows(projectRow("p-41", "Archive", 0))

	projects, info, err := svc.List(context.Background(), tenantA, pagination.New(3, 0, 20))
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, &pagination.Info{CurrentPage: 3, TotalPages: 3, Total: 41, Limit: 20}, info)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_LimitReached(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM projects WHERE tenant_id = $1")).
		WithArgs(tenantA).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	_, err := svc.Create(context.Background(), tenantA, "", 3, &CreateProjectRequest{Name: "Website"})
	assert.ErrorIs(t, err, ErrProjectLimitReached)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateName(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM projects WHERE tenant_id = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.tenant_id = $1 AND p.name = $2")).
		WithArgs(tenantA, "Website").
		WillReturnRows(projectRow("p-1", "Website", 0))

	_, err := svc.Create(context.Background(), tenantA, "", 3, &CreateProjectRequest{Name: "  Website "})
	assert.ErrorIs(t, err, ErrProjectAlreadyExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DefaultsToActive(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM projects WHERE tenant_id = $1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.tenant_id = $1 AND p.name = $2")).
		WillReturnRows(sqlmock.NewRows(projectCols))
	mock.ExpectQuery("INSERT INTO projects").
		WithArgs(tenantA, "Website", "Landing pages", StatusActive, "u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("p-1"))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
		WithArgs("p-1").
		WillReturnRows(projectRow("p-1", "Website", 0))

	p, err := svc.Create(context.Background(), tenantA, "u-1", 3, &CreateProjectRequest{Name: "Website", Description: "Landing pages"})
	require.NoError(t, err)
	assert.Equal(t, "p-1", p.ID)
	assert.Equal(t, StatusActive, p.Status)
	assert.Equal(t, tenantA, p.Resource().TenantID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_RequiresName(t *testing.T) {
	svc, mock := newTestService(t)

	_, err := svc.Create(context.Background(), tenantA, "", 3, &CreateProjectRequest{Name: "   "})
	assert.ErrorIs(t, err, ErrNameRequired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_InvalidStatus(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
		WithArgs("p-1").
		WillReturnRows(projectRow("p-1", "Website", 2))

	status := Status("PAUSED")
	_, err := svc.Update(context.Background(), "p-1", &UpdateProjectRequest{Status: &status})
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdate_NotFound(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(projectCols))

	name := "Renamed"
	_, err := svc.Update(context.Background(), "missing", &UpdateProjectRequest{Name: &name})
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestUpdate_SetsFields(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
		WillReturnRows(projectRow("p-1", "Website", 2))
	mock.ExpectExec(regexp.QuoteMeta("SET description = $1, status = $2, updated_at = NOW()")).
		WithArgs("new", StatusCompleted, "p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE p.id = $1")).
		WillReturnRows(projectRow("p-1", "Website", 2))

	desc := "new"
	status := StatusCompleted
	p, err := svc.Update(context.Background(), "p-1", &UpdateProjectRequest{Description: &desc, Status: &status})
	require.NoError(t, err)
	assert.Equal(t, 2, p.TaskCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_NotFound(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM projects WHERE id = $1")).
		WithArgs("p-9").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, svc.Delete(context.Background(), "p-9"), ErrProjectNotFound)
}
