package repository

import (
	"time"

	"github.com/teamtasks/team-tasks-api/internal/domain/entity"
)

// TaskFilter narrows and orders task listings. ScopeAssignedTo is the
// authorization scope filter (member actors see only their own tasks) and
// is applied on top of the caller-supplied filters.
type TaskFilter struct {
	Status          *entity.TaskStatus
	AssignedTo      *string
	DueBefore       *time.Time
	DueAfter        *time.Time
	Search          string // matches title or description
	OrderBy         string // created_at, due_date or priority
	Descending      bool
	ScopeAssignedTo *string
}

// TaskRepository defines the persistence contract for tasks.
type TaskRepository interface {
	Create(t *entity.Task) error
	GetByID(id string) (*entity.Task, error)
	List(f TaskFilter) ([]*entity.Task, error)
	Update(t *entity.Task) error
	Delete(id string) error
}
