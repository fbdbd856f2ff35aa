// internal/domain/task/service_test.go
package task

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/easystock-backend/internal/config"
	"github.com/your-org/easystock-backend/internal/pkg/apperror"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&Task{}))
	return NewService(db, &config.Config{})
}

func TestCreateDefaults(t *testing.T) {
	svc := newTestService(t)

	view, err := svc.Create(&CreateRequest{Title: "Count shelf 3"}, 1)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, view.Status)
	assert.Equal(t, TypeGeneral, view.TaskType)
	assert.Equal(t, PriorityMedium, view.Priority)
	assert.Equal(t, uint(1), view.CreatedBy)
	assert.Nil(t, view.DaysUntilDue)
}

func TestStatusChain(t *testing.T) {
	svc := newTestService(t)

	view, err := svc.Create(&CreateRequest{Title: "Restock water"}, 1)
	require.NoError(t, err)

	view, err = svc.UpdateStatus(view.ID, &UpdateStatusRequest{Status: StatusInProgress, Note: "started"})
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, view.Status)
	assert.Contains(t, view.Notes, "pending -> in_progress: started")

	view, err = svc.UpdateStatus(view.ID, &UpdateStatusRequest{Status: StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, view.Status)
	require.NotNil(t, view.CompletedAt)
	assert.Contains(t, view.Notes, "in_progress -> completed")
	// each transition appends its own line
	assert.Equal(t, 2, len(strings.Split(view.Notes, "\n")))
}

func TestTerminalStatusesRejectTransitions(t *testing.T) {
	svc := newTestService(t)

	view, err := svc.Create(&CreateRequest{Title: "One-way"}, 1)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(view.ID, &UpdateStatusRequest{Status: StatusInProgress})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(view.ID, &UpdateStatusRequest{Status: StatusCompleted})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(view.ID, &UpdateStatusRequest{Status: StatusInProgress})
	require.Error(t, err)
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
	assert.EqualError(t, err, "cannot transition task from completed to in_progress")
}

func TestSkippingInProgressRejected(t *testing.T) {
	svc := newTestService(t)

	view, err := svc.Create(&CreateRequest{Title: "No shortcuts"}, 1)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(view.ID, &UpdateStatusRequest{Status: StatusCompleted})
	assert.True(t, apperror.IsKind(err, apperror.KindInvalidTransition))
}

func TestCancelFromAnyOpenState(t *testing.T) {
	svc := newTestService(t)

	v1, err := svc.Create(&CreateRequest{Title: "Cancel me"}, 1)
	require.NoError(t, err)
	v1, err = svc.UpdateStatus(v1.ID, &UpdateStatusRequest{Status: StatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, v1.Status)

	v2, err := svc.Create(&CreateRequest{Title: "Cancel me too"}, 1)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(v2.ID, &UpdateStatusRequest{Status: StatusInProgress})
	require.NoError(t, err)
	v2, err = svc.UpdateStatus(v2.ID, &UpdateStatusRequest{Status: StatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, v2.Status)
}

func TestUpdateStatusRejectsUnknownStatus(t *testing.T) {
	svc := newTestService(t)

	view, err := svc.Create(&CreateRequest{Title: "Strict"}, 1)
	require.NoError(t, err)

	_, err = svc.UpdateStatus(view.ID, &UpdateStatusRequest{Status: "done"})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestMyTasksReturnsOpenOnly(t *testing.T) {
	svc := newTestService(t)
	me := uint(7)

	v1, err := svc.Create(&CreateRequest{Title: "Mine open", AssignedTo: &me}, 1)
	require.NoError(t, err)
	_, err = svc.Create(&CreateRequest{Title: "Unassigned"}, 1)
	require.NoError(t, err)

	done, err := svc.Create(&CreateRequest{Title: "Mine done", AssignedTo: &me}, 1)
	require.NoError(t, err)
	_, err = svc.UpdateStatus(done.ID, &UpdateStatusRequest{Status: StatusInProgress})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(done.ID, &UpdateStatusRequest{Status: StatusCompleted})
	require.NoError(t, err)

	mine, err := svc.MyTasks(me)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, v1.ID, mine[0].ID)
}

func TestUrgentTasks(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(&CreateRequest{Title: "Urgent by priority", Priority: PriorityUrgent}, 1)
	require.NoError(t, err)

	soon := time.Now().AddDate(0, 0, 1)
	_, err = svc.Create(&CreateRequest{Title: "Due tomorrow", DueDate: &soon}, 1)
	require.NoError(t, err)

	later := time.Now().AddDate(0, 0, 30)
	_, err = svc.Create(&CreateRequest{Title: "Far away", DueDate: &later}, 1)
	require.NoError(t, err)

	urgent, err := svc.UrgentTasks()
	require.NoError(t, err)
	assert.Len(t, urgent, 2)
}

func TestListFilters(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Create(&CreateRequest{Title: "Restock", TaskType: TypeRestock, Priority: PriorityHigh}, 1)
	require.NoError(t, err)
	_, err = svc.Create(&CreateRequest{Title: "Count", TaskType: TypeCount}, 1)
	require.NoError(t, err)

	views, err := svc.List(&ListRequest{TaskType: TypeRestock})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Restock", views[0].Title)

	views, err = svc.List(&ListRequest{Priority: PriorityHigh})
	require.NoError(t, err)
	assert.Len(t, views, 1)

	_, err = svc.List(&ListRequest{Status: "bogus"})
	assert.True(t, apperror.IsKind(err, apperror.KindValidation))
}

func TestDaysUntilDueDerived(t *testing.T) {
	svc := newTestService(t)

	due := time.Now().AddDate(0, 0, 5)
	view, err := svc.Create(&CreateRequest{Title: "Countdown", DueDate: &due}, 1)
	require.NoError(t, err)
	require.NotNil(t, view.DaysUntilDue)
	assert.Equal(t, 5, *view.DaysUntilDue)
}

func TestDaysUntilDueCountsCalendarDays(t *testing.T) {
	svc := newTestService(t)

	// due yesterday: overdue by one calendar day regardless of clock time
	overdue := time.Now().AddDate(0, 0, -1)
	view, err := svc.Create(&CreateRequest{Title: "Late", DueDate: &overdue}, 1)
	require.NoError(t, err)
	require.NotNil(t, view.DaysUntilDue)
	assert.Equal(t, -1, *view.DaysUntilDue)

	// due later today still counts as day zero
	today := time.Now()
	view, err = svc.Create(&CreateRequest{Title: "Today", DueDate: &today}, 1)
	require.NoError(t, err)
	require.NotNil(t, view.DaysUntilDue)
	assert.Equal(t, 0, *view.DaysUntilDue)
}

func TestDeleteTask(t *testing.T) {
	svc := newTestService(t)

	view, err := svc.Create(&CreateRequest{Title: "Gone"}, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(view.ID))
	_, err = svc.Get(view.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))

	err = svc.Delete(view.ID)
	assert.True(t, apperror.IsKind(err, apperror.KindNotFound))
}
