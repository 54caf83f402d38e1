package repository

import "github.com/teamtasks/team-tasks-api/internal/domain/entity"

// UserFilter narrows user listings.
type UserFilter struct {
	Role   *entity.Role
	Search string // matches username or email
}

// UserRepository defines the persistence contract for the identity store.
type UserRepository interface {
	Create(u *entity.User) error
	GetByID(id string) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	List(f UserFilter) ([]*entity.User, error)
	Update(u *entity.User) error
	// Delete removes the user; task references are nullified by the store.
	Delete(id string) error
}
