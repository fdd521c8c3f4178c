package types

import "time"

// TaskStatus is the per-task state machine:
//
//	pending -> in_progress -> completed | conflicted | failed -> resolved
//
// Tasks are never deleted, only transitioned.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
	TaskConflicted TaskStatus = "conflicted"
	TaskFailed     TaskStatus = "failed"
	TaskResolved   TaskStatus = "resolved"
)

// taskTransitions is the closed transition table. Anything not listed is
// rejected.
var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskPending:    {TaskInProgress, TaskFailed},
	TaskInProgress: {TaskCompleted, TaskConflicted, TaskFailed},
	TaskCompleted:  {TaskConflicted, TaskResolved},
	TaskConflicted: {TaskResolved},
	TaskFailed:     {},
	TaskResolved:   {},
}

// Terminal reports whether no further work will be dispatched for a task
// in this status. Conflicted and completed tasks are terminal for
// dispatch purposes; resolution only annotates them.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskCompleted, TaskConflicted, TaskFailed, TaskResolved:
		return true
	}
	return false
}

// Succeeded reports whether the task produced a usable result.
func (s TaskStatus) Succeeded() bool {
	switch s {
	case TaskCompleted, TaskConflicted, TaskResolved:
		return true
	}
	return false
}

// AgentTask is a unit of delegated work created by the distributor and
// executed by the coordinator's dispatch loop.
type AgentTask struct {
	TaskID      string     `json:"task_id"`
	Role        WorkerRole `json:"role"`
	Description string     `json:"description"`
	// Priority orders tasks within a tier; higher is more urgent.
	Priority int `json:"priority"`
	// DependsOn lists task IDs that must complete before dispatch.
	DependsOn []string   `json:"depends_on,omitempty"`
	Status    TaskStatus `json:"status"`
	// Result is set exactly once, when the task completes.
	Result    *AgentResponse `json:"result,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Transition moves the task to the target status, rejecting transitions
// not in the table with an INVALID_TRANSITION error.
func (t *AgentTask) Transition(to TaskStatus) error {
	for _, allowed := range taskTransitions[t.Status] {
		if allowed == to {
			t.Status = to
			t.UpdatedAt = time.Now()
			return nil
		}
	}
	return NewError(ErrInvalidTransition,
		"task "+t.TaskID+": cannot transition "+string(t.Status)+" -> "+string(to))
}

// Ready reports whether every dependency is terminal-successful in the
// given task map. Tasks with unmet dependencies must not be dispatched.
func (t *AgentTask) Ready(tasks map[string]*AgentTask) bool {
	if t.Status != TaskPending {
		return false
	}
	for _, dep := range t.DependsOn {
		d, ok := tasks[dep]
		if !ok || !d.Status.Succeeded() {
			return false
		}
	}
	return true
}
