package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskTransition_HappyPath(t *testing.T) {
	t.Parallel()
	task := &AgentTask{TaskID: "t1", Status: TaskPending}

	require.NoError(t, task.Transition(TaskInProgress))
	require.NoError(t, task.Transition(TaskCompleted))
	require.NoError(t, task.Transition(TaskResolved))
	assert.Equal(t, TaskResolved, task.Status)
}

func TestTaskTransition_Rejected(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		from TaskStatus
		to   TaskStatus
	}{
		{"pending to completed", TaskPending, TaskCompleted},
		{"failed is terminal", TaskFailed, TaskInProgress},
		{"resolved is terminal", TaskResolved, TaskPending},
		{"completed back to pending", TaskCompleted, TaskPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			task := &AgentTask{TaskID: "t1", Status: tt.from}
			err := task.Transition(tt.to)
			require.Error(t, err)
			assert.Equal(t, ErrInvalidTransition, CodeOf(err))
			assert.True(t, IsFatal(err))
			assert.Equal(t, tt.from, task.Status, "status must not change on rejection")
		})
	}
}

func TestTaskReady(t *testing.T) {
	t.Parallel()
	tasks := map[string]*AgentTask{
		"a": {TaskID: "a", Status: TaskCompleted},
		"b": {TaskID: "b", Status: TaskFailed},
		"c": {TaskID: "c", Status: TaskPending, DependsOn: []string{"a"}},
		"d": {TaskID: "d", Status: TaskPending, DependsOn: []string{"a", "b"}},
		"e": {TaskID: "e", Status: TaskInProgress},
	}

	assert.True(t, tasks["c"].Ready(tasks), "completed dependency satisfies readiness")
	assert.False(t, tasks["d"].Ready(tasks), "failed dependency blocks dispatch")
	assert.False(t, tasks["e"].Ready(tasks), "only pending tasks are ready")
}

func TestTaskStatus_Terminal(t *testing.T) {
	t.Parallel()
	assert.False(t, TaskPending.Terminal())
	assert.False(t, TaskInProgress.Terminal())
	assert.True(t, TaskCompleted.Terminal())
	assert.True(t, TaskConflicted.Terminal())
	assert.True(t, TaskFailed.Terminal())
	assert.True(t, TaskResolved.Terminal())
}
