package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tgienger/todo/internal/models"
)

func newTestStore(initial models.Collection, opts ...Option) *Store {
	return New(initial, append([]Option{WithIDs(&CounterIDs{})}, opts...)...)
}

func sampleTask(text string) NewTask {
	return NewTask{Text: text, Category: models.CategoryWork, Priority: models.PriorityMedium}
}

func TestCreateAppendsInInsertionOrder(t *testing.T) {
	s := newTestStore(nil)
	a := s.Create(sampleTask("first"))
	b := s.Create(NewTask{
		Text:     "second",
		Category: models.CategoryHealth,
		DueDate:  models.NewDate(2024, time.March, 1).Ptr(),
		Priority: models.PriorityHigh,
		Tags:     []string{"gym"},
	})

	snap := s.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, a, snap[0].ID)
	assert.Equal(t, b, snap[1].ID)
	assert.False(t, snap[1].Completed)
	assert.Empty(t, snap[1].Subtasks)
	assert.Equal(t, []string{"gym"}, snap[1].Tags)
	assert.Equal(t, models.NewDate(2024, time.March, 1), *snap[1].DueDate)
}

func TestIDsArePairwiseDistinct(t *testing.T) {
	frozen := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	s := New(nil, WithIDs(NewClockIDs(func() time.Time { return frozen })))

	seen := map[int64]bool{}
	for i := 0; i < 50; i++ {
		id := s.Create(sampleTask("t"))
		require.False(t, seen[id], "duplicate task id %d", id)
		seen[id] = true
		sub, ok := s.AddSubtask(id, "s")
		require.True(t, ok)
		require.False(t, seen[sub], "duplicate subtask id %d", sub)
		seen[sub] = true
	}
}

func TestClockIDsFollowTheClock(t *testing.T) {
	now := time.UnixMilli(5000)
	ids := NewClockIDs(func() time.Time { return now })

	assert.Equal(t, int64(5000), ids.Next())
	assert.Equal(t, int64(5001), ids.Next())
	now = time.UnixMilli(9000)
	assert.Equal(t, int64(9000), ids.Next())

	ids.Advance(20000)
	assert.Equal(t, int64(20001), ids.Next())
}

func TestNewAdvancesPastLoadedIDs(t *testing.T) {
	s := newTestStore(models.Seed())
	id := s.Create(sampleTask("new"))
	assert.Greater(t, id, int64(32))
}

func TestDeleteCascadesToSubtasks(t *testing.T) {
	s := newTestStore(models.Seed())
	require.True(t, s.Delete(1))

	_, ok := s.Get(1)
	assert.False(t, ok)
	for _, task := range s.Snapshot() {
		_, found := task.Subtask(11)
		assert.False(t, found)
		_, found = task.Subtask(12)
		assert.False(t, found)
	}
	assert.False(t, s.ToggleSubtaskCompleted(1, 11))
}

func TestMissingIDsAreNoOps(t *testing.T) {
	s := newTestStore(models.Seed())
	before := s.Snapshot().Clone()
	version := s.Version()

	assert.False(t, s.Delete(999))
	assert.False(t, s.ToggleCompleted(999))
	_, ok := s.AddSubtask(999, "nope")
	assert.False(t, ok)
	assert.False(t, s.ToggleSubtaskCompleted(999, 11))
	assert.False(t, s.ToggleSubtaskCompleted(1, 999))
	assert.False(t, s.DeleteSubtask(1, 999))
	assert.False(t, s.DeleteSubtask(999, 11))

	assert.True(t, before.Equal(s.Snapshot()))
	assert.Equal(t, version, s.Version())
}

func TestToggleAfterDeleteIsNoOp(t *testing.T) {
	s := newTestStore(nil)
	id := s.Create(sampleTask("short lived"))
	require.True(t, s.Delete(id))

	assert.False(t, s.ToggleCompleted(id))
	assert.Empty(t, s.Snapshot())
}

func TestToggleCompletedLeavesSubtasksAlone(t *testing.T) {
	s := newTestStore(models.Seed())
	require.True(t, s.ToggleCompleted(1))

	task, _ := s.Get(1)
	assert.True(t, task.Completed)
	assert.Equal(t, models.Seed()[0].Subtasks, task.Subtasks)

	require.True(t, s.ToggleCompleted(1))
	task, _ = s.Get(1)
	assert.False(t, task.Completed)
}

func TestSubtaskLifecycle(t *testing.T) {
	s := newTestStore(nil)
	id := s.Create(sampleTask("parent"))

	a, ok := s.AddSubtask(id, "one")
	require.True(t, ok)
	b, ok := s.AddSubtask(id, "two")
	require.True(t, ok)

	require.True(t, s.ToggleSubtaskCompleted(id, b))
	task, _ := s.Get(id)
	require.Len(t, task.Subtasks, 2)
	assert.Equal(t, "one", task.Subtasks[0].Text)
	assert.False(t, task.Subtasks[0].Completed)
	assert.True(t, task.Subtasks[1].Completed)
	assert.False(t, task.Completed)

	require.True(t, s.DeleteSubtask(id, a))
	task, _ = s.Get(id)
	require.Len(t, task.Subtasks, 1)
	assert.Equal(t, b, task.Subtasks[0].ID)
}

func TestSnapshotsAreNotModifiedByLaterMutations(t *testing.T) {
	s := newTestStore(models.Seed())
	old := s.Snapshot()
	oldCopy := old.Clone()

	s.ToggleCompleted(1)
	s.ToggleSubtaskCompleted(3, 31)
	s.AddSubtask(2, "extra")
	s.DeleteSubtask(1, 12)
	s.Delete(2)
	s.Create(sampleTask("added"))

	assert.True(t, oldCopy.Equal(old))
}

func TestListenersFireOnlyOnChange(t *testing.T) {
	var got []models.Collection
	s := newTestStore(nil, WithListener(func(c models.Collection) { got = append(got, c) }))

	id := s.Create(sampleTask("watched"))
	s.ToggleCompleted(id)
	s.ToggleCompleted(id + 100)
	s.Delete(id)

	require.Len(t, got, 3)
	assert.Len(t, got[0], 1)
	assert.True(t, got[1][0].Completed)
	assert.Empty(t, got[2])
	assert.Equal(t, uint64(3), s.Version())
}

type stubLoader struct {
	c       models.Collection
	present bool
	err     error
}

func (l stubLoader) Load(context.Context) (models.Collection, bool, error) {
	return l.c, l.present, l.err
}

func TestOpen(t *testing.T) {
	saved := models.Collection{{ID: 500, Text: "saved", Category: models.CategoryShopping, Priority: models.PriorityLow}}

	tests := []struct {
		name   string
		loader Loader
		want   models.Collection
	}{
		{"saved state replaces seed", stubLoader{c: saved, present: true}, saved},
		{"nothing saved uses seed", stubLoader{}, models.Seed()},
		{"load failure uses seed", stubLoader{err: errors.New("disk on fire")}, models.Seed()},
		{"no loader uses seed", nil, models.Seed()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Open(context.Background(), tt.loader, models.Seed(), WithIDs(&CounterIDs{}))
			assert.True(t, tt.want.Equal(s.Snapshot()))
			id := s.Create(sampleTask("after load"))
			assert.Greater(t, id, tt.want.MaxID())
		})
	}
}

func TestTransitionsReportNotFound(t *testing.T) {
	c := models.Seed()

	_, err := Delete(c, 42)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	assert.ErrorIs(t, err, ErrNotFound)

	out, err := ToggleSubtaskCompleted(c, 1, 42)
	assert.ErrorIs(t, err, ErrSubtaskNotFound)
	assert.True(t, c.Equal(out))
}
