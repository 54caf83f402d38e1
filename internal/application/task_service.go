package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/teamtasks/team-tasks-api/internal/domain/apperror"
	"github.com/teamtasks/team-tasks-api/internal/domain/authz"
	"github.com/teamtasks/team-tasks-api/internal/domain/entity"
	repo "github.com/teamtasks/team-tasks-api/internal/domain/repository"
	"github.com/teamtasks/team-tasks-api/pkg/search"
)

// TaskService orchestrates task mutations around the authorization
// engine: every operation asks authz.Decide before touching storage, and
// a denied decision returns without side effects.
type TaskService struct {
	Tasks  repo.TaskRepository
	Users  repo.UserRepository
	Index  *search.TaskIndex
	Events EventPublisher
	Logger *logrus.Logger
}

func NewTaskService(tasks repo.TaskRepository, users repo.UserRepository, index *search.TaskIndex, events EventPublisher, logger *logrus.Logger) *TaskService {
	return &TaskService{Tasks: tasks, Users: users, Index: index, Events: events, Logger: logger}
}

// List applies the actor's scope filter on top of the caller-supplied
// query. Members only ever see tasks assigned to them.
func (s *TaskService) List(ctx context.Context, actor Actor, f repo.TaskFilter) ([]*entity.Task, error) {
	d := authz.Decide(actor.ID, actor.Role, authz.ActionList, nil, nil)
	if !d.Allow {
		return nil, d.Deny
	}
	if d.ScopeToActor {
		id := actor.ID
		f.ScopeAssignedTo = &id
	}
	return s.Tasks.List(f)
}

// Get retrieves one task. For scoped actors a task outside the scope is
// indistinguishable from a missing one.
func (s *TaskService) Get(ctx context.Context, actor Actor, id string) (*entity.Task, error) {
	d := authz.Decide(actor.ID, actor.Role, authz.ActionRetrieve, nil, nil)
	if !d.Allow {
		return nil, d.Deny
	}
	t, err := s.Tasks.GetByID(id)
	if err != nil {
		return nil, err
	}
	if d.ScopeToActor && !t.AssignedToUser(actor.ID) {
		return nil, apperror.ErrTaskNotFound
	}
	return t, nil
}

type CreateTaskInput struct {
	Title        string
	Description  string
	Status       entity.TaskStatus // empty means default
	DueDate      *time.Time
	Priority     int // 0 means default
	AssignedToID *string
}

// Create persists a new task. created_by is always the actor; members
// additionally have assigned_to forced to themselves, whatever the
// payload said.
func (s *TaskService) Create(ctx context.Context, actor Actor, in CreateTaskInput) (*entity.Task, error) {
	d := authz.Decide(actor.ID, actor.Role, authz.ActionCreate, nil, nil)
	if !d.Allow {
		return nil, d.Deny
	}

	t := &entity.Task{
		Title:       in.Title,
		Description: in.Description,
		Status:      in.Status,
		DueDate:     in.DueDate,
		Priority:    in.Priority,
	}
	if t.Status == "" {
		t.Status = entity.StatusTodo
	}
	if t.Priority == 0 {
		t.Priority = entity.PriorityDefault
	}

	creator := actor.ID
	t.CreatedBy = &creator

	if d.ForceSelfAssign {
		assignee := actor.ID
		t.AssignedTo = &assignee
	} else if in.AssignedToID != nil && *in.AssignedToID != "" {
		if _, err := s.Users.GetByID(*in.AssignedToID); err != nil {
			return nil, apperror.ErrUserNotFound
		}
		t.AssignedTo = in.AssignedToID
	}

	if err := s.Tasks.Create(t); err != nil {
		return nil, err
	}
	s.Index.IndexTask(ctx, t)
	return t, nil
}

// UpdateTaskInput carries only the fields present in the request body.
// The Set flags record key presence: an explicit JSON null still counts
// as touching the field for the allowed-field-set check.
type UpdateTaskInput struct {
	Title          *string
	TitleSet       bool
	Description    *string
	DescriptionSet bool
	Status         *entity.TaskStatus
	StatusSet      bool
	DueDate        *time.Time
	DueDateSet     bool
	Priority       *int
	PrioritySet    bool
	AssignedToID   *string
	AssignedSet    bool
	// Unknown carries payload keys outside the task schema. They are
	// never applied, but they count against a restricted role's allowed
	// field set: {"status": ..., "category": ...} must be rejected for a
	// member, not silently half-applied.
	Unknown []string
}

// Fields returns the wire names of the fields present in the payload.
func (in UpdateTaskInput) Fields() []string {
	var fields []string
	if in.TitleSet {
		fields = append(fields, "title")
	}
	if in.DescriptionSet {
		fields = append(fields, "description")
	}
	if in.StatusSet {
		fields = append(fields, "status")
	}
	if in.DueDateSet {
		fields = append(fields, "due_date")
	}
	if in.PrioritySet {
		fields = append(fields, "priority")
	}
	if in.AssignedSet {
		fields = append(fields, "assigned_to_id")
	}
	return append(fields, in.Unknown...)
}

// Update resolves the target task first, then asks the engine for a
// decision against the freshly read state. The payload is applied only
// within the decision's allowed field set; a disallowed field rejects
// the whole update.
func (s *TaskService) Update(ctx context.Context, actor Actor, id string, in UpdateTaskInput) (*entity.Task, error) {
	t, err := s.Tasks.GetByID(id)
	if err != nil {
		return nil, err
	}

	d := authz.Decide(actor.ID, actor.Role, authz.ActionUpdate, t, in.Fields())
	if !d.Allow {
		return nil, d.Deny
	}

	allowed := func(field string) bool {
		if d.AllowedFields == nil {
			return true
		}
		_, ok := d.AllowedFields[field]
		return ok
	}

	if in.Title != nil && allowed("title") {
		t.Title = *in.Title
	}
	if in.Description != nil && allowed("description") {
		t.Description = *in.Description
	}
	if in.Status != nil && allowed("status") {
		t.Status = *in.Status
	}
	if in.DueDateSet && allowed("due_date") {
		t.DueDate = in.DueDate
	}
	if in.Priority != nil && allowed("priority") {
		t.Priority = *in.Priority
	}
	if in.AssignedSet && allowed("assigned_to_id") {
		if in.AssignedToID != nil && *in.AssignedToID != "" {
			if _, err := s.Users.GetByID(*in.AssignedToID); err != nil {
				return nil, apperror.ErrUserNotFound
			}
			t.AssignedTo = in.AssignedToID
		} else {
			t.AssignedTo = nil
		}
	}

	if err := s.Tasks.Update(t); err != nil {
		return nil, err
	}
	s.Index.IndexTask(ctx, t)
	return t, nil
}

func (s *TaskService) Delete(ctx context.Context, actor Actor, id string) error {
	t, err := s.Tasks.GetByID(id)
	if err != nil {
		return err
	}
	d := authz.Decide(actor.ID, actor.Role, authz.ActionDelete, t, nil)
	if !d.Allow {
		return d.Deny
	}
	if err := s.Tasks.Delete(t.ID); err != nil {
		return err
	}
	s.Index.RemoveTask(ctx, t.ID)
	return nil
}

// Assign is a dedicated transition separate from update. A nil or empty
// userID unassigns the task; a non-empty one must reference an existing
// user.
func (s *TaskService) Assign(ctx context.Context, actor Actor, id string, userID *string) (*entity.Task, error) {
	t, err := s.Tasks.GetByID(id)
	if err != nil {
		return nil, err
	}
	d := authz.Decide(actor.ID, actor.Role, authz.ActionAssign, t, nil)
	if !d.Allow {
		return nil, d.Deny
	}

	if userID == nil || *userID == "" {
		t.AssignedTo = nil
	} else {
		if _, err := s.Users.GetByID(*userID); err != nil {
			return nil, apperror.ErrUserNotFound
		}
		t.AssignedTo = userID
	}

	if err := s.Tasks.Update(t); err != nil {
		return nil, err
	}
	s.Index.IndexTask(ctx, t)

	if t.AssignedTo != nil && s.Events != nil {
		evt := TaskAssignedEvent{
			Type:       EventTaskAssigned,
			TaskID:     t.ID,
			Title:      t.Title,
			AssignedTo: *t.AssignedTo,
			AssignedBy: actor.ID,
			At:         time.Now().UTC(),
		}
		if err := s.Events.PublishJSON(ctx, evt); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("task_id", t.ID).Warn("publish task.assigned failed")
		}
	}
	return t, nil
}

// SearchDocs serves the free-text search endpoint from the Elasticsearch
// mirror, applying the member scope filter as a term query.
func (s *TaskService) SearchDocs(ctx context.Context, actor Actor, q string, size int) ([]map[string]any, error) {
	d := authz.Decide(actor.ID, actor.Role, authz.ActionList, nil, nil)
	if !d.Allow {
		return nil, d.Deny
	}
	scope := ""
	if d.ScopeToActor {
		scope = actor.ID
	}
	return s.Index.Search(ctx, q, scope, size)
}
