package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/teamtasks/team-tasks-api/internal/application"
	"github.com/teamtasks/team-tasks-api/internal/domain/apperror"
	"github.com/teamtasks/team-tasks-api/internal/domain/entity"
	repo "github.com/teamtasks/team-tasks-api/internal/domain/repository"
	"github.com/teamtasks/team-tasks-api/internal/interface/middleware"
	"github.com/teamtasks/team-tasks-api/pkg/validation"
)

// stubUserRepo and stubTaskRepo back the handler tests that need to
// reach the service layer; they mirror the postgres error contract.
type stubUserRepo struct{ users map[string]*entity.User }

func (r *stubUserRepo) Create(u *entity.User) error { r.users[u.ID] = u; return nil }

func (r *stubUserRepo) GetByID(id string) (*entity.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, apperror.ErrUserNotFound
}

func (r *stubUserRepo) GetByUsername(username string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, apperror.ErrUserNotFound
}

func (r *stubUserRepo) List(repo.UserFilter) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *stubUserRepo) Update(u *entity.User) error { r.users[u.ID] = u; return nil }
func (r *stubUserRepo) Delete(id string) error      { delete(r.users, id); return nil }

type stubTaskRepo struct{ tasks map[string]*entity.Task }

func (r *stubTaskRepo) Create(t *entity.Task) error { r.tasks[t.ID] = t; return nil }

func (r *stubTaskRepo) GetByID(id string) (*entity.Task, error) {
	if t, ok := r.tasks[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, apperror.ErrTaskNotFound
}

func (r *stubTaskRepo) List(repo.TaskFilter) ([]*entity.Task, error) {
	out := make([]*entity.Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t)
	}
	return out, nil
}

func (r *stubTaskRepo) Update(t *entity.Task) error {
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *stubTaskRepo) Delete(id string) error { delete(r.tasks, id); return nil }

// newTaskRouterWithStore wires the handler to a live service over the
// stub repositories, with the given actor injected on every request.
func newTaskRouterWithStore(actor application.Actor, tasks *stubTaskRepo, users *stubUserRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Init()

	h := NewTaskHandler(application.NewTaskService(tasks, users, nil, nil, nil), nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.CtxActorKey, actor)
		c.Next()
	})
	r.PATCH("/api/tasks/:id", h.Update)
	r.POST("/api/tasks/:id/assign", h.Assign)
	return r
}

// newTaskRouter wires the task handler behind a stub auth middleware so
// payload validation can be exercised for any role. The service has no
// storage attached: every request in these tests must be rejected at the
// binding layer, before the service runs.
func newTaskRouter(role entity.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	validation.Init()

	h := NewTaskHandler(application.NewTaskService(nil, nil, nil, nil, nil), nil)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.CtxActorKey, application.Actor{ID: "actor-1", Role: role})
		c.Next()
	})
	r.POST("/api/tasks", h.Create)
	r.PATCH("/api/tasks/:id", h.Update)
	r.POST("/api/tasks/:id/assign", h.Assign)
	r.GET("/api/tasks/search", h.Search)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateRejectsPriorityOutOfRange(t *testing.T) {
	// The bound is enforced identically for every role, before any
	// permission check.
	for _, role := range []entity.Role{entity.RoleAdmin, entity.RoleManager, entity.RoleMember} {
		r := newTaskRouter(role)
		for _, body := range []string{
			`{"title":"t","priority":0}`,
			`{"title":"t","priority":6}`,
			`{"title":"t","priority":-3}`,
		} {
			w := doJSON(r, http.MethodPost, "/api/tasks", body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("role %s body %s: status = %d, want 400", role, body, w.Code)
			}
		}
	}
}

func TestUpdateRejectsPriorityOutOfRange(t *testing.T) {
	for _, role := range []entity.Role{entity.RoleAdmin, entity.RoleManager, entity.RoleMember} {
		r := newTaskRouter(role)
		w := doJSON(r, http.MethodPatch, "/api/tasks/some-id", `{"priority":9}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("role %s: status = %d, want 400", role, w.Code)
		}
	}
}

func TestCreateValidation(t *testing.T) {
	r := newTaskRouter(entity.RoleManager)

	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"description":"no title"}`},
		{"empty title", `{"title":""}`},
		{"bad status", `{"title":"t","status":"DONE"}`},
		{"bad due date", `{"title":"t","due_date":"15-09-2026"}`},
		{"bad assignee id", `{"title":"t","assigned_to_id":"not-a-uuid"}`},
		{"malformed json", `{"title":`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/api/tasks", tc.body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
			}
		})
	}
}

func TestUpdateRejectsUnknownPayloadKeys(t *testing.T) {
	memberID := "33333333-3333-3333-3333-333333333333"
	taskID := "aaaaaaaa-aaaa-aaaa-aaaa-aaaaaaaaaaaa"
	users := &stubUserRepo{users: map[string]*entity.User{
		memberID: {ID: memberID, Username: "m", Role: entity.RoleMember},
	}}
	tasks := &stubTaskRepo{tasks: map[string]*entity.Task{
		taskID: {ID: taskID, Title: "mine", Status: entity.StatusTodo,
			Priority: entity.PriorityDefault, AssignedTo: &memberID},
	}}
	r := newTaskRouterWithStore(application.Actor{ID: memberID, Role: entity.RoleMember}, tasks, users)

	// A junk key alongside the permitted one rejects the whole payload.
	w := doJSON(r, http.MethodPatch, "/api/tasks/"+taskID, `{"status":"COMPLETED","category":"ops"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400 (body %s)", w.Code, w.Body.String())
	}
	if got := tasks.tasks[taskID].Status; got != entity.StatusTodo {
		t.Fatalf("task mutated after denial: %s", got)
	}

	// The same payload without the junk key goes through.
	w = doJSON(r, http.MethodPatch, "/api/tasks/"+taskID, `{"status":"COMPLETED"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if got := tasks.tasks[taskID].Status; got != entity.StatusCompleted {
		t.Fatalf("status = %s, want COMPLETED", got)
	}
}

func TestAssignWithoutBodyUnassigns(t *testing.T) {
	managerID := "44444444-4444-4444-4444-444444444444"
	assigneeID := "55555555-5555-5555-5555-555555555555"
	taskID := "bbbbbbbb-bbbb-bbbb-bbbb-bbbbbbbbbbbb"
	users := &stubUserRepo{users: map[string]*entity.User{
		managerID:  {ID: managerID, Username: "mgr", Role: entity.RoleManager},
		assigneeID: {ID: assigneeID, Username: "asg", Role: entity.RoleMember},
	}}
	tasks := &stubTaskRepo{tasks: map[string]*entity.Task{
		taskID: {ID: taskID, Title: "handoff", Status: entity.StatusTodo,
			Priority: entity.PriorityDefault, AssignedTo: &assigneeID},
	}}
	r := newTaskRouterWithStore(application.Actor{ID: managerID, Role: entity.RoleManager}, tasks, users)

	// No body at all, not even {}.
	w := doJSON(r, http.MethodPost, "/api/tasks/"+taskID+"/assign", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
	if got := tasks.tasks[taskID].AssignedTo; got != nil {
		t.Fatalf("assigned_to = %v, want nil", *got)
	}
}

func TestAssignRejectsBadUserID(t *testing.T) {
	r := newTaskRouter(entity.RoleManager)
	w := doJSON(r, http.MethodPost, "/api/tasks/some-id/assign", `{"user_id":"not-a-uuid"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestSearchRequiresQuery(t *testing.T) {
	r := newTaskRouter(entity.RoleMember)

	w := doJSON(r, http.MethodGet, "/api/tasks/search", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing q: status = %d, want 400", w.Code)
	}

	// With the index unconfigured the search degrades to an empty result.
	w = doJSON(r, http.MethodGet, "/api/tasks/search?q=report", "")
	if w.Code != http.StatusOK {
		t.Errorf("search: status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
}
