package application

import (
	"github.com/sirupsen/logrus"

	"github.com/teamtasks/team-tasks-api/internal/domain/apperror"
	"github.com/teamtasks/team-tasks-api/internal/domain/entity"
	repo "github.com/teamtasks/team-tasks-api/internal/domain/repository"
	"github.com/teamtasks/team-tasks-api/pkg/helpers"
)

// UserService is the identity store behind the admin user-management
// surface. Route-level role checks gate who may call what; role-change
// rules are enforced again here so the service is safe on its own.
type UserService struct {
	Users  repo.UserRepository
	Logger *logrus.Logger
}

func NewUserService(users repo.UserRepository, logger *logrus.Logger) *UserService {
	return &UserService{Users: users, Logger: logger}
}

func (s *UserService) List(f repo.UserFilter) ([]*entity.User, error) {
	return s.Users.List(f)
}

func (s *UserService) Get(id string) (*entity.User, error) {
	return s.Users.GetByID(id)
}

type CreateUserInput struct {
	Username string
	Email    string
	Password string // optional; empty creates an unusable credential
	Role     entity.Role
}

// Create is the admin-initiated account creation path. Without a
// password the account exists but cannot authenticate until an admin
// sets one.
func (s *UserService) Create(in CreateUserInput) (*entity.User, error) {
	role := in.Role
	if role == "" {
		role = entity.RoleMember
	}
	if !role.Valid() {
		return nil, apperror.Validation("invalid role")
	}

	hash := ""
	if in.Password != "" {
		var err error
		hash, err = helpers.HashPassword(in.Password)
		if err != nil {
			return nil, err
		}
	}
	u := &entity.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.Users.Create(u); err != nil {
		return nil, err
	}
	return u, nil
}

type UpdateUserInput struct {
	Username *string
	Email    *string
	Password *string
	Role     *entity.Role
}

// Update edits an existing account. Only admin actors may change the
// role attribute; everything else in the admin surface is already
// gated at the route level.
func (s *UserService) Update(actor Actor, id string, in UpdateUserInput) (*entity.User, error) {
	u, err := s.Users.GetByID(id)
	if err != nil {
		return nil, err
	}
	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.Email != nil {
		u.Email = *in.Email
	}
	if in.Role != nil && *in.Role != u.Role {
		if actor.Role != entity.RoleAdmin {
			return nil, apperror.Forbidden("only admins can change roles")
		}
		if !in.Role.Valid() {
			return nil, apperror.Validation("invalid role")
		}
		u.Role = *in.Role
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := helpers.HashPassword(*in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
	}
	if err := s.Users.Update(u); err != nil {
		return nil, err
	}
	return u, nil
}

// Delete removes an account. Tasks referencing the user keep existing
// with assigned_to/created_by nullified by the store.
func (s *UserService) Delete(id string) error {
	return s.Users.Delete(id)
}

// Options lists users for the task-assignment picker (manager/admin).
func (s *UserService) Options() ([]*entity.User, error) {
	return s.Users.List(repo.UserFilter{})
}
