package entity

import "time"

// TaskStatus is the task workflow state.
type TaskStatus string

const (
	StatusTodo       TaskStatus = "TODO"
	StatusInProgress TaskStatus = "IN_PROGRESS"
	StatusCompleted  TaskStatus = "COMPLETED"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Priority bounds. Values outside this range are rejected at the boundary
// and never stored.
const (
	PriorityMin     = 1
	PriorityMax     = 5
	PriorityDefault = 2
)

// Task is the aggregate root for the task domain.
// AssignedTo and CreatedBy are plain identifiers, not live relations;
// both are nullified in storage when the referenced user is deleted.
type Task struct {
	ID          string
	Title       string
	Description string
	Status      TaskStatus
	DueDate     *time.Time
	Priority    int
	AssignedTo  *string
	CreatedBy   *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// AssignedToUser reports whether the task is currently assigned to userID.
func (t *Task) AssignedToUser(userID string) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID
}
