package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/teamtasks/team-tasks-api/internal/domain/apperror"
	"github.com/teamtasks/team-tasks-api/internal/domain/entity"
	repo "github.com/teamtasks/team-tasks-api/internal/domain/repository"
)

// memUserRepo is an in-memory UserRepository for service tests. It
// mirrors the postgres implementation's error contract: missing rows
// surface as ErrUserNotFound, duplicate usernames as ErrDuplicateUser.
type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*entity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*entity.User{}}
}

func (r *memUserRepo) add(username string, role entity.Role, passwordHash string) *entity.User {
	u := &entity.User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	r.mu.Lock()
	r.users[u.ID] = u
	r.mu.Unlock()
	return u
}

func (r *memUserRepo) Create(u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, have := range r.users {
		if have.Username == u.Username || have.Email == u.Email {
			return apperror.ErrDuplicateUser
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = time.Now()
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) GetByID(id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) GetByUsername(username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperror.ErrUserNotFound
}

func (r *memUserRepo) List(f repo.UserFilter) ([]*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.User
	for _, u := range r.users {
		if f.Role != nil && u.Role != *f.Role {
			continue
		}
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memUserRepo) Update(u *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return apperror.ErrUserNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *memUserRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return apperror.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// memTaskRepo is an in-memory TaskRepository. List honors the scope
// filter the way the postgres implementation does; the remaining
// filters are irrelevant to the service tests.
type memTaskRepo struct {
	mu    sync.Mutex
	tasks map[string]*entity.Task
}

func newMemTaskRepo() *memTaskRepo {
	return &memTaskRepo{tasks: map[string]*entity.Task{}}
}

func (r *memTaskRepo) Create(t *entity.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t.ID = uuid.NewString()
	t.CreatedAt = time.Now()
	t.UpdatedAt = t.CreatedAt
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *memTaskRepo) GetByID(id string) (*entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, apperror.ErrTaskNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTaskRepo) List(f repo.TaskFilter) ([]*entity.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Task
	for _, t := range r.tasks {
		if f.ScopeAssignedTo != nil && !t.AssignedToUser(*f.ScopeAssignedTo) {
			continue
		}
		if f.Status != nil && t.Status != *f.Status {
			continue
		}
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

func (r *memTaskRepo) Update(t *entity.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[t.ID]; !ok {
		return apperror.ErrTaskNotFound
	}
	t.UpdatedAt = time.Now()
	cp := *t
	r.tasks[t.ID] = &cp
	return nil
}

func (r *memTaskRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[id]; !ok {
		return apperror.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

// memBlacklist is an in-memory TokenBlacklist.
type memBlacklist struct {
	mu      sync.Mutex
	revoked map[string]bool
}

func newMemBlacklist() *memBlacklist {
	return &memBlacklist{revoked: map[string]bool{}}
}

func (b *memBlacklist) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ttl <= 0 {
		return nil
	}
	b.revoked[jti] = true
	return nil
}

func (b *memBlacklist) IsRevoked(ctx context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.revoked[jti], nil
}

// memPublisher records published events.
type memPublisher struct {
	mu     sync.Mutex
	events []any
}

func (p *memPublisher) PublishJSON(ctx context.Context, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, body)
	return nil
}
