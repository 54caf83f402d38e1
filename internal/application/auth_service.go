package application

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/teamtasks/team-tasks-api/internal/domain/apperror"
	"github.com/teamtasks/team-tasks-api/internal/domain/entity"
	repo "github.com/teamtasks/team-tasks-api/internal/domain/repository"
	"github.com/teamtasks/team-tasks-api/pkg/helpers"
)

// TokenBlacklist is the shared refresh-token revocation list. Revocation
// must be visible to every process immediately, so the production
// implementation is redis-backed.
type TokenBlacklist interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// Actor is the authenticated identity attached to a request.
type Actor struct {
	ID   string
	Role entity.Role
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// AuthService owns registration and the token lifecycle:
// issue → verify → refresh (with rotation) → revoke.
type AuthService struct {
	Users     repo.UserRepository
	JWT       *helpers.JWTManager
	Blacklist TokenBlacklist
	Logger    *logrus.Logger
}

func NewAuthService(users repo.UserRepository, jwt *helpers.JWTManager, bl TokenBlacklist, logger *logrus.Logger) *AuthService {
	return &AuthService{Users: users, JWT: jwt, Blacklist: bl, Logger: logger}
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	Role     entity.Role // empty means default
}

// Register creates a user account. Unauthenticated callers always get
// MEMBER regardless of the requested role; only admins may pick one.
func (s *AuthService) Register(ctx context.Context, actor *Actor, in RegisterInput) (*entity.User, error) {
	role := entity.RoleMember
	if in.Role != "" {
		if actor == nil {
			// Silently forced; public registration never escalates.
			role = entity.RoleMember
		} else if actor.Role != entity.RoleAdmin {
			return nil, apperror.Forbidden("only admins can assign roles explicitly")
		} else {
			if !in.Role.Valid() {
				return nil, apperror.Validation("invalid role")
			}
			role = in.Role
		}
	}

	hash, err := helpers.HashPassword(in.Password)
	if err != nil {
		return nil, err
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

// Login verifies credentials and issues a token pair. Unknown usernames
// and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*entity.User, TokenPair, error) {
	u, err := s.Users.GetByUsername(username)
	if err != nil || u == nil {
		return nil, TokenPair{}, apperror.ErrInvalidCredentials
	}
	if !u.CanAuthenticate() {
		// Provisioned without a password; no input can ever match.
		return nil, TokenPair{}, apperror.ErrInvalidCredentials
	}
	if !helpers.CheckPassword(u.PasswordHash, password) {
		return nil, TokenPair{}, apperror.ErrInvalidCredentials
	}
	pair, err := s.issueTokens(u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

func (s *AuthService) issueTokens(u *entity.User) (TokenPair, error) {
	access, aexp, err := s.JWT.GenerateAccessToken(u)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		}
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate refresh token failed")
		}
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Verify resolves an access token into an actor. Access tokens are
// stateless; only refresh tokens participate in the blacklist.
func (s *AuthService) Verify(tokenStr string) (*Actor, error) {
	claims, err := s.JWT.ParseAccessToken(tokenStr)
	if err != nil {
		return nil, err
	}
	return &Actor{ID: claims.UserID, Role: claims.Role}, nil
}

// Refresh exchanges a valid refresh token for a new pair and revokes the
// consumed token (rotation), so a replayed refresh token fails with
// TokenRevoked.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*entity.User, TokenPair, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, TokenPair{}, err
	}
	revoked, err := s.Blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return nil, TokenPair{}, err
	}
	if revoked {
		return nil, TokenPair{}, apperror.ErrTokenRevoked
	}

	u, err := s.Users.GetByID(claims.UserID)
	if err != nil || u == nil {
		return nil, TokenPair{}, apperror.ErrInvalidToken
	}

	// Rotate before minting: a half-failed refresh must never leave the
	// old token alive alongside a new one.
	if err := s.Blacklist.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time)); err != nil {
		return nil, TokenPair{}, err
	}
	pair, err := s.issueTokens(u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	return u, pair, nil
}

// Logout revokes a refresh token. The contract is strict: a missing,
// malformed, expired or already-revoked token is a validation failure,
// not a silent no-op.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return apperror.Validation("invalid or expired refresh token")
	}
	revoked, err := s.Blacklist.IsRevoked(ctx, claims.ID)
	if err != nil {
		return err
	}
	if revoked {
		return apperror.Validation("refresh token already revoked")
	}
	return s.Blacklist.Revoke(ctx, claims.ID, time.Until(claims.ExpiresAt.Time))
}
