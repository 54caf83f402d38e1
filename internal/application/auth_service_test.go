package application

import (
	"context"
	"testing"
	"time"

	"github.com/teamtasks/team-tasks-api/internal/domain/apperror"
	"github.com/teamtasks/team-tasks-api/internal/domain/entity"
	"github.com/teamtasks/team-tasks-api/pkg/helpers"
)

func newAuthService(accessTTL, refreshTTL time.Duration) (*AuthService, *memUserRepo, *memBlacklist) {
	users := newMemUserRepo()
	bl := newMemBlacklist()
	jwt := helpers.NewJWTManager("test-access-secret", "test-refresh-secret", accessTTL, refreshTTL)
	return NewAuthService(users, jwt, bl, nil), users, bl
}

func seedUser(users *memUserRepo, username string, role entity.Role, password string) *entity.User {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		panic(err)
	}
	return users.add(username, role, hash)
}

func TestRegisterRoleRules(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		actorRole entity.Role // empty means anonymous
		reqRole   entity.Role
		wantRole  entity.Role
		wantKind  apperror.Kind
		wantDeny  bool
	}{
		{name: "anonymous default", wantRole: entity.RoleMember},
		{name: "anonymous cannot escalate", reqRole: entity.RoleAdmin, wantRole: entity.RoleMember},
		{name: "member cannot pick role", actorRole: entity.RoleMember, reqRole: entity.RoleManager, wantDeny: true, wantKind: apperror.KindForbidden},
		{name: "manager cannot pick role", actorRole: entity.RoleManager, reqRole: entity.RoleMember, wantDeny: true, wantKind: apperror.KindForbidden},
		{name: "admin picks manager", actorRole: entity.RoleAdmin, reqRole: entity.RoleManager, wantRole: entity.RoleManager},
		{name: "admin invalid role", actorRole: entity.RoleAdmin, reqRole: "OWNER", wantDeny: true, wantKind: apperror.KindValidation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _, _ := newAuthService(time.Minute, time.Hour)
			var actor *Actor
			if tc.actorRole != "" {
				actor = &Actor{ID: "actor", Role: tc.actorRole}
			}
			u, err := svc.Register(ctx, actor, RegisterInput{
				Username: "newcomer",
				Email:    "newcomer@example.com",
				Password: "hunter2hunter2",
				Role:     tc.reqRole,
			})
			if tc.wantDeny {
				if err == nil {
					t.Fatalf("Register() = %v, want error", u)
				}
				if !apperror.IsKind(err, tc.wantKind) {
					t.Fatalf("Register() error kind = %v, want %v", apperror.From(err).Kind, tc.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("Register() error = %v", err)
			}
			if u.Role != tc.wantRole {
				t.Errorf("Register() role = %s, want %s", u.Role, tc.wantRole)
			}
		})
	}
}

func TestRegisterDuplicateUsername(t *testing.T) {
	svc, users, _ := newAuthService(time.Minute, time.Hour)
	seedUser(users, "taken", entity.RoleMember, "password-one")

	_, err := svc.Register(context.Background(), nil, RegisterInput{
		Username: "taken",
		Email:    "other@example.com",
		Password: "password-two",
	})
	if !apperror.IsKind(err, apperror.KindConflict) {
		t.Fatalf("Register() error = %v, want conflict", err)
	}
}

func TestLogin(t *testing.T) {
	svc, users, _ := newAuthService(time.Minute, time.Hour)
	seedUser(users, "alice", entity.RoleManager, "correct horse")

	t.Run("valid credentials", func(t *testing.T) {
		u, pair, err := svc.Login(context.Background(), "alice", "correct horse")
		if err != nil {
			t.Fatalf("Login() error = %v", err)
		}
		if u.Username != "alice" {
			t.Errorf("Login() user = %s, want alice", u.Username)
		}
		if pair.AccessToken == "" || pair.RefreshToken == "" {
			t.Error("Login() returned empty token pair")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := svc.Login(context.Background(), "alice", "wrong")
		if !apperror.IsKind(err, apperror.KindUnauthenticated) {
			t.Fatalf("Login() error = %v, want unauthenticated", err)
		}
	})

	t.Run("unknown username", func(t *testing.T) {
		_, _, err := svc.Login(context.Background(), "nobody", "whatever")
		if !apperror.IsKind(err, apperror.KindUnauthenticated) {
			t.Fatalf("Login() error = %v, want unauthenticated", err)
		}
	})
}

func TestLoginUnusableCredential(t *testing.T) {
	svc, users, _ := newAuthService(time.Minute, time.Hour)
	// Account provisioned without a password; the empty hash never matches.
	users.add("provisioned", entity.RoleMember, "")

	_, _, err := svc.Login(context.Background(), "provisioned", "")
	if !apperror.IsKind(err, apperror.KindUnauthenticated) {
		t.Fatalf("Login() error = %v, want unauthenticated", err)
	}
}

func TestVerify(t *testing.T) {
	svc, users, _ := newAuthService(time.Minute, time.Hour)
	u := seedUser(users, "bob", entity.RoleMember, "secret words")
	_, pair, err := svc.Login(context.Background(), "bob", "secret words")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	actor, err := svc.Verify(pair.AccessToken)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if actor.ID != u.ID || actor.Role != entity.RoleMember {
		t.Errorf("Verify() actor = %+v, want id=%s role=MEMBER", actor, u.ID)
	}

	// A refresh token is not an access token.
	if _, err := svc.Verify(pair.RefreshToken); !apperror.IsKind(err, apperror.KindUnauthenticated) {
		t.Errorf("Verify(refresh) error = %v, want unauthenticated", err)
	}

	if _, err := svc.Verify("not-a-jwt"); !apperror.IsKind(err, apperror.KindUnauthenticated) {
		t.Errorf("Verify(garbage) error = %v, want unauthenticated", err)
	}
}

func TestVerifyExpired(t *testing.T) {
	svc, users, _ := newAuthService(-time.Minute, time.Hour)
	seedUser(users, "carol", entity.RoleMember, "secret words")
	_, pair, err := svc.Login(context.Background(), "carol", "secret words")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if _, err := svc.Verify(pair.AccessToken); !apperror.IsKind(err, apperror.KindTokenExpired) {
		t.Fatalf("Verify(expired) error = %v, want token expired", err)
	}
}

func TestRefreshRotation(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newAuthService(time.Minute, time.Hour)
	seedUser(users, "dave", entity.RoleMember, "secret words")
	_, first, err := svc.Login(ctx, "dave", "secret words")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	_, second, err := svc.Refresh(ctx, first.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if second.RefreshToken == first.RefreshToken {
		t.Error("Refresh() returned the consumed refresh token")
	}

	// Replaying the consumed token must fail.
	if _, _, err := svc.Refresh(ctx, first.RefreshToken); !apperror.IsKind(err, apperror.KindTokenRevoked) {
		t.Fatalf("Refresh(replayed) error = %v, want token revoked", err)
	}

	// The rotated token is still good.
	if _, _, err := svc.Refresh(ctx, second.RefreshToken); err != nil {
		t.Fatalf("Refresh(rotated) error = %v", err)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newAuthService(time.Minute, time.Hour)
	seedUser(users, "erin", entity.RoleMember, "secret words")
	_, pair, err := svc.Login(ctx, "erin", "secret words")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if _, _, err := svc.Refresh(ctx, pair.AccessToken); !apperror.IsKind(err, apperror.KindUnauthenticated) {
		t.Fatalf("Refresh(access) error = %v, want unauthenticated", err)
	}
}

func TestRefreshDeletedUser(t *testing.T) {
	ctx := context.Background()
	svc, users, _ := newAuthService(time.Minute, time.Hour)
	u := seedUser(users, "frank", entity.RoleMember, "secret words")
	_, pair, err := svc.Login(ctx, "frank", "secret words")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if err := users.Delete(u.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, _, err := svc.Refresh(ctx, pair.RefreshToken); !apperror.IsKind(err, apperror.KindUnauthenticated) {
		t.Fatalf("Refresh(deleted user) error = %v, want unauthenticated", err)
	}
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	svc, users, bl := newAuthService(time.Minute, time.Hour)
	seedUser(users, "grace", entity.RoleMember, "secret words")
	_, pair, err := svc.Login(ctx, "grace", "secret words")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	if err := svc.Logout(ctx, pair.RefreshToken); err != nil {
		t.Fatalf("Logout() error = %v", err)
	}

	claims, err := svc.JWT.ParseRefreshToken(pair.RefreshToken)
	if err != nil {
		t.Fatalf("ParseRefreshToken() error = %v", err)
	}
	revoked, err := bl.IsRevoked(ctx, claims.ID)
	if err != nil || !revoked {
		t.Fatalf("IsRevoked() = %v, %v, want true", revoked, err)
	}

	// Repeating the logout is a contract violation, not a no-op.
	if err := svc.Logout(ctx, pair.RefreshToken); !apperror.IsKind(err, apperror.KindValidation) {
		t.Errorf("Logout(again) error = %v, want validation", err)
	}

	// The revoked token can no longer be exchanged.
	if _, _, err := svc.Refresh(ctx, pair.RefreshToken); !apperror.IsKind(err, apperror.KindTokenRevoked) {
		t.Errorf("Refresh(after logout) error = %v, want token revoked", err)
	}
}

func TestLogoutMalformedToken(t *testing.T) {
	svc, _, _ := newAuthService(time.Minute, time.Hour)
	for _, token := range []string{"", "garbage", "a.b.c"} {
		if err := svc.Logout(context.Background(), token); !apperror.IsKind(err, apperror.KindValidation) {
			t.Errorf("Logout(%q) error = %v, want validation", token, err)
		}
	}
}
