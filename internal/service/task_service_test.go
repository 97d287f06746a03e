package service

import (
	"context"
	"testing"
	"time"

	"taskboard-api/internal/models"
	"taskboard-api/internal/testutil"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTaskService(t *testing.T) (*TaskService, *gorm.DB) {
	t.Helper()
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	return NewTaskService(db, nil), db
}

func seedUser(t *testing.T, db *gorm.DB, name, email string) models.User {
	t.Helper()
	user := models.User{Name: name, Email: email, Role: models.RoleDeveloper}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func taskHistoryRows(t *testing.T, db *gorm.DB, taskID uint) []models.TaskHistory {
	t.Helper()
	var rows []models.TaskHistory
	require.NoError(t, db.Where("task_id = ?", taskID).Order("id ASC").Find(&rows).Error)
	return rows
}

func strPtr(s string) *string { return &s }

func statusPtr(s models.TaskStatus) *models.TaskStatus { return &s }

func prioPtr(p models.TaskPriority) *models.TaskPriority { return &p }

func TestCreate_AlwaysStartsAsTodo(t *testing.T) {
	svc, db := newTaskService(t)
	alice := seedUser(t, db, "Alice", "a@x.com")

	task, err := svc.Create(context.Background(), CreateTaskInput{
		Title:      "Fix bug",
		Priority:   models.PriorityHigh,
		AssigneeID: alice.ID,
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusTodo, task.Status)
	require.Equal(t, "Alice", task.AssigneeName)

	rows := taskHistoryRows(t, db, task.ID)
	require.Len(t, rows, 1)
	require.Equal(t, models.ActionCreated, rows[0].Action)
	require.Equal(t, models.StatusTodo, *rows[0].ToStatus)
	require.Nil(t, rows[0].UserID)
}

func TestCreate_NormalizesEmptyOptionals(t *testing.T) {
	svc, db := newTaskService(t)
	alice := seedUser(t, db, "Alice", "a@x.com")

	task, err := svc.Create(context.Background(), CreateTaskInput{
		Title:       "Fix bug",
		Description: "",
		Priority:    models.PriorityLow,
		AssigneeID:  alice.ID,
		DueDate:     "",
	})
	require.NoError(t, err)
	require.Nil(t, task.Description)
	require.Nil(t, task.DueDate)
}

func TestCreate_ValidationFailures(t *testing.T) {
	svc, db := newTaskService(t)
	alice := seedUser(t, db, "Alice", "a@x.com")

	cases := []struct {
		name string
		in   CreateTaskInput
	}{
		{"empty title", CreateTaskInput{Priority: models.PriorityLow, AssigneeID: alice.ID}},
		{"unknown priority", CreateTaskInput{Title: "x", Priority: "Urgent", AssigneeID: alice.ID}},
		{"missing assignee", CreateTaskInput{Title: "x", Priority: models.PriorityLow, AssigneeID: 999}},
		{"bad due date", CreateTaskInput{Title: "x", Priority: models.PriorityLow, AssigneeID: alice.ID, DueDate: "tomorrow"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tc.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
		})
	}

	// Nothing written for failed creates.
	var count int64
	require.NoError(t, db.Model(&models.Task{}).Count(&count).Error)
	require.Zero(t, count)
}

func TestUpdate_StatusToDoneEmitsTwoRows(t *testing.T) {
	svc, db := newTaskService(t)
	alice := seedUser(t, db, "Alice", "a@x.com")
	task, err := svc.Create(context.Background(), CreateTaskInput{
		Title: "Fix bug", Priority: models.PriorityHigh, AssigneeID: alice.ID,
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), task.ID, UpdateTaskInput{
		Status: statusPtr(models.StatusDone),
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusDone, updated.Status)

	rows := taskHistoryRows(t, db, task.ID)
	require.Len(t, rows, 3) // created + status_changed + completed

	require.Equal(t, models.ActionStatusChanged, rows[1].Action)
	require.Equal(t, models.StatusTodo, *rows[1].FromStatus)
	require.Equal(t, models.StatusDone, *rows[1].ToStatus)

	require.Equal(t, models.ActionCompleted, rows[2].Action)
	require.Equal(t, models.StatusTodo, *rows[2].FromStatus)
	require.Equal(t, models.StatusDone, *rows[2].ToStatus)
}

func TestUpdate_PriorityOnlyEmitsOneUpdatedRow(t *testing.T) {
	svc, db := newTaskService(t)
	alice := seedUser(t, db, "Alice", "a@x.com")
	task, err := svc.Create(context.Background(), CreateTaskInput{
		Title: "Fix bug", Priority: models.PriorityHigh, AssigneeID: alice.ID,
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), task.ID, UpdateTaskInput{
		Priority: prioPtr(models.PriorityLow),
	})
	require.NoError(t, err)

	rows := taskHistoryRows(t, db, task.ID)
	require.Len(t, rows, 2)
	require.Equal(t, models.ActionUpdated, rows[1].Action)
	require.Nil(t, rows[1].FromStatus)
	require.Nil(t, rows[1].ToStatus)
}

func TestUpdate_SameStatusIsPlainUpdate(t *testing.T) {
	svc, db := newTaskService(t)
	alice := seedUser(t, db, "Alice", "a@x.com")
	task, err := svc.Create(context.Background(), CreateTaskInput{
		Title: "Fix bug", Priority: models.PriorityHigh, AssigneeID: alice.ID,
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), task.ID, UpdateTaskInput{
		Status: statusPtr(models.StatusTodo),
	})
	require.NoError(t, err)

	rows := taskHistoryRows(t, db, task.ID)
	require.Len(t, rows, 2)
	require.Equal(t, models.ActionUpdated, rows[1].Action)
}

func TestUpdate_LeavingDoneHasNoCompletedRow(t *testing.T) {
	svc, db := newTaskService(t)
	alice := seedUser(t, db, "Alice", "a@x.com")
	task, err := svc.Create(context.Background(), CreateTaskInput{
		Title: "Fix bug", Priority: models.PriorityHigh, AssigneeID: alice.ID,
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), task.ID, UpdateTaskInput{Status: statusPtr(models.StatusDone)})
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), task.ID, UpdateTaskInput{Status: statusPtr(models.StatusInProgress)})
	require.NoError(t, err)

	rows := taskHistoryRows(t, db, task.ID)
	// created, status_changed, completed, status_changed — no second completed.
	require.Len(t, rows, 4)
	require.Equal(t, models.ActionStatusChanged, rows[3].Action)
	require.Equal(t, models.StatusDone, *rows[3].FromStatus)
	require.Equal(t, models.StatusInProgress, *rows[3].ToStatus)
}

func TestUpdate_NoFieldsIsNoOp(t *testing.T) {
	svc, db := newTaskService(t)
	alice := seedUser(t, db, "Alice", "a@x.com")
	task, err := svc.Create(context.Background(), CreateTaskInput{
		Title: "Fix bug", Priority: models.PriorityHigh, AssigneeID: alice.ID,
	})
	require.NoError(t, err)

	got, err := svc.Update(context.Background(), task.ID, UpdateTaskInput{})
	require.NoError(t, err)
	require.Equal(t, task.ID, got.ID)
	require.Equal(t, task.Title, got.Title)
	require.WithinDuration(t, task.UpdatedAt, got.UpdatedAt, time.Second)

	rows := taskHistoryRows(t, db, task.ID)
	require.Len(t, rows, 1) // only the created entry
}

func TestUpdate_MultipleFieldsEmitOneRow(t *testing.T) {
	svc, db := newTaskService(t)
	alice := seedUser(t, db, "Alice", "a@x.com")
	bob := seedUser(t, db, "Bob", "b@x.com")
	task, err := svc.Create(context.Background(), CreateTaskInput{
		Title: "Fix bug", Priority: models.PriorityHigh, AssigneeID: alice.ID,
	})
	require.NoError(t, err)

	assigneeID := bob.ID
	updated, err := svc.Update(context.Background(), task.ID, UpdateTaskInput{
		Title:      strPtr("Fix the bug"),
		Priority:   prioPtr(models.PriorityMedium),
		AssigneeID: &assigneeID,
		Status:     statusPtr(models.StatusInProgress),
	})
	require.NoError(t, err)
	require.Equal(t, "Bob", updated.AssigneeName)

	rows := taskHistoryRows(t, db, task.ID)
	require.Len(t, rows, 2) // one row for the whole update, not one per field
	require.Equal(t, models.ActionStatusChanged, rows[1].Action)
}

func TestUpdate_ClearsDescriptionAndDueDate(t *testing.T) {
	svc, db := newTaskService(t)
	alice := seedUser(t, db, "Alice", "a@x.com")
	task, err := svc.Create(context.Background(), CreateTaskInput{
		Title: "Fix bug", Description: "details", Priority: models.PriorityHigh,
		AssigneeID: alice.ID, DueDate: "2026-09-01",
	})
	require.NoError(t, err)
	require.NotNil(t, task.Description)
	require.NotNil(t, task.DueDate)

	updated, err := svc.Update(context.Background(), task.ID, UpdateTaskInput{
		Description: strPtr(""),
		DueDate:     strPtr(""),
	})
	require.NoError(t, err)
	require.Nil(t, updated.Description)
	require.Nil(t, updated.DueDate)

	var stored models.Task
	require.NoError(t, db.First(&stored, task.ID).Error)
	require.Nil(t, stored.Description)
	require.Nil(t, stored.DueDate)
}

func TestUpdate_UnknownTaskAndAssignee(t *testing.T) {
	svc, db := newTaskService(t)
	alice := seedUser(t, db, "Alice", "a@x.com")
	task, err := svc.Create(context.Background(), CreateTaskInput{
		Title: "Fix bug", Priority: models.PriorityHigh, AssigneeID: alice.ID,
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), 999, UpdateTaskInput{Title: strPtr("x")})
	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)

	missing := uint(999)
	_, err = svc.Update(context.Background(), task.ID, UpdateTaskInput{AssigneeID: &missing})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "assignee not found", verr.Reason)
}

func TestDelete_KeepsHistory(t *testing.T) {
	svc, db := newTaskService(t)
	alice := seedUser(t, db, "Alice", "a@x.com")
	task, err := svc.Create(context.Background(), CreateTaskInput{
		Title: "Fix bug", Priority: models.PriorityHigh, AssigneeID: alice.ID,
	})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), task.ID))

	_, err = svc.Get(context.Background(), task.ID)
	var nferr *NotFoundError
	require.ErrorAs(t, err, &nferr)

	rows := taskHistoryRows(t, db, task.ID)
	require.Len(t, rows, 2)
	require.Equal(t, models.ActionDeleted, rows[1].Action)
	require.Nil(t, rows[1].UserID)

	// The audit trail stays queryable through the service too.
	entries, err := svc.History(context.Background(), task.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, models.ActionDeleted, entries[0].Action) // newest first

	require.ErrorAs(t, svc.Delete(context.Background(), task.ID), &nferr)
}

func TestGet_HistoryNewestFirst(t *testing.T) {
	svc, db := newTaskService(t)
	alice := seedUser(t, db, "Alice", "a@x.com")
	task, err := svc.Create(context.Background(), CreateTaskInput{
		Title: "Fix bug", Priority: models.PriorityHigh, AssigneeID: alice.ID,
	})
	require.NoError(t, err)
	_, err = svc.Update(context.Background(), task.ID, UpdateTaskInput{Status: statusPtr(models.StatusDone)})
	require.NoError(t, err)

	detail, err := svc.Get(context.Background(), task.ID)
	require.NoError(t, err)
	require.Equal(t, "Alice", detail.AssigneeName)
	require.Len(t, detail.History, 3)
	require.Equal(t, models.ActionCompleted, detail.History[0].Action)
	require.Equal(t, models.ActionStatusChanged, detail.History[1].Action)
	require.Equal(t, models.ActionCreated, detail.History[2].Action)
}

func TestList_FilterAndSearch(t *testing.T) {
	svc, db := newTaskService(t)
	alice := seedUser(t, db, "Alice", "a@x.com")
	ctx := context.Background()

	first, err := svc.Create(ctx, CreateTaskInput{Title: "Fix login bug", Priority: models.PriorityHigh, AssigneeID: alice.ID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateTaskInput{Title: "Write docs", Priority: models.PriorityLow, AssigneeID: alice.ID})
	require.NoError(t, err)
	_, err = svc.Update(ctx, first.ID, UpdateTaskInput{Status: statusPtr(models.StatusInProgress)})
	require.NoError(t, err)

	all, err := svc.List(ctx, ListTasksOptions{Filter: "All"})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Alice", all[0].AssigneeName)

	inProgress, err := svc.List(ctx, ListTasksOptions{Filter: string(models.StatusInProgress)})
	require.NoError(t, err)
	require.Len(t, inProgress, 1)
	require.Equal(t, first.ID, inProgress[0].ID)

	// Case-insensitive substring match on title.
	found, err := svc.List(ctx, ListTasksOptions{Search: "LOGIN"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, first.ID, found[0].ID)

	// Search terms below 3 characters behave like no search at all.
	short, err := svc.List(ctx, ListTasksOptions{Search: "xy"})
	require.NoError(t, err)
	require.Len(t, short, 2)
}

func TestList_PrioritySortWithIDTieBreak(t *testing.T) {
	svc, db := newTaskService(t)
	alice := seedUser(t, db, "Alice", "a@x.com")
	ctx := context.Background()

	low, err := svc.Create(ctx, CreateTaskInput{Title: "low", Priority: models.PriorityLow, AssigneeID: alice.ID})
	require.NoError(t, err)
	high, err := svc.Create(ctx, CreateTaskInput{Title: "high", Priority: models.PriorityHigh, AssigneeID: alice.ID})
	require.NoError(t, err)
	medA, err := svc.Create(ctx, CreateTaskInput{Title: "medium a", Priority: models.PriorityMedium, AssigneeID: alice.ID})
	require.NoError(t, err)
	medB, err := svc.Create(ctx, CreateTaskInput{Title: "medium b", Priority: models.PriorityMedium, AssigneeID: alice.ID})
	require.NoError(t, err)

	tasks, err := svc.List(ctx, ListTasksOptions{Sort: "priority", Order: "desc"})
	require.NoError(t, err)
	require.Len(t, tasks, 4)
	require.Equal(t, high.ID, tasks[0].ID)
	// Medium tie broken by id descending.
	require.Equal(t, medB.ID, tasks[1].ID)
	require.Equal(t, medA.ID, tasks[2].ID)
	require.Equal(t, low.ID, tasks[3].ID)

	asc, err := svc.List(ctx, ListTasksOptions{Sort: "priority", Order: "asc"})
	require.NoError(t, err)
	require.Equal(t, low.ID, asc[0].ID)
	require.Equal(t, medB.ID, asc[1].ID)
	require.Equal(t, medA.ID, asc[2].ID)
	require.Equal(t, high.ID, asc[3].ID)
}

func TestDashboard(t *testing.T) {
	svc, db := newTaskService(t)
	alice := seedUser(t, db, "Alice", "a@x.com")
	ctx := context.Background()

	done, err := svc.Create(ctx, CreateTaskInput{Title: "ship it", Priority: models.PriorityHigh, AssigneeID: alice.ID})
	require.NoError(t, err)
	_, err = svc.Create(ctx, CreateTaskInput{Title: "plan it", Priority: models.PriorityLow, AssigneeID: alice.ID})
	require.NoError(t, err)
	_, err = svc.Update(ctx, done.ID, UpdateTaskInput{Status: statusPtr(models.StatusDone)})
	require.NoError(t, err)

	snapshot, err := svc.Dashboard(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2), snapshot.Metrics.Total)
	require.Equal(t, int64(1), snapshot.Metrics.Completed)
	require.Equal(t, int64(0), snapshot.Metrics.InProgress)

	// 4 history rows total, capped at 5, newest first with the task title.
	require.Len(t, snapshot.RecentActivity, 4)
	require.Equal(t, models.ActionCompleted, snapshot.RecentActivity[0].Action)
	require.NotNil(t, snapshot.RecentActivity[0].TaskTitle)
	require.Equal(t, "ship it", *snapshot.RecentActivity[0].TaskTitle)
}

// publisherSpy records published history entries.
type publisherSpy struct {
	entries []models.TaskHistory
}

func (p *publisherSpy) Publish(entry models.TaskHistory) {
	p.entries = append(p.entries, entry)
}

func TestMutations_PublishActivity(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	spy := &publisherSpy{}
	svc := NewTaskService(db, spy)
	alice := seedUser(t, db, "Alice", "a@x.com")
	ctx := context.Background()

	task, err := svc.Create(ctx, CreateTaskInput{Title: "Fix bug", Priority: models.PriorityHigh, AssigneeID: alice.ID})
	require.NoError(t, err)
	_, err = svc.Update(ctx, task.ID, UpdateTaskInput{Status: statusPtr(models.StatusDone)})
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, task.ID))

	require.Len(t, spy.entries, 4)
	require.Equal(t, models.ActionCreated, spy.entries[0].Action)
	require.Equal(t, models.ActionStatusChanged, spy.entries[1].Action)
	require.Equal(t, models.ActionCompleted, spy.entries[2].Action)
	require.Equal(t, models.ActionDeleted, spy.entries[3].Action)
}
