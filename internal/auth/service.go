package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/playops/playops-admin/internal/db/models"
	"github.com/playops/playops-admin/internal/perm"
	"github.com/playops/playops-admin/internal/token"
	"github.com/playops/playops-admin/internal/web/session"
)

// Service turns a successful credential exchange into a fully populated
// session, and owns the session lifecycle (login, register, logout, profile
// updates). It is constructed once at startup and injected where needed.
type Service struct {
	db       *gorm.DB
	provider *LocalProvider
	sessions *session.Store
	throttle *Throttle
	ttl      time.Duration
}

// NewService creates a new auth service. throttle may be nil to disable login
// rate limiting.
func NewService(db *gorm.DB, sessions *session.Store, throttle *Throttle, ttl time.Duration) *Service {
	return &Service{
		db:       db,
		provider: NewLocalProvider(db),
		sessions: sessions,
		throttle: throttle,
		ttl:      ttl,
	}
}

// Provider exposes the underlying credential provider for account maintenance
// handlers.
func (s *Service) Provider() *LocalProvider {
	return s.provider
}

// Sessions exposes the session store.
func (s *Service) Sessions() *session.Store {
	return s.sessions
}

// TTL returns the configured session lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Login verifies credentials and, on success, resolves the identity into a
// session persisted under sid. The sequence is strictly ordered: credential
// check, token mint, identity fetch, permission resolution, then one persist.
// Nothing is persisted until every step has succeeded; a failure after the
// credential exchange forces logout and returns ErrAccountUnavailable.
func (s *Service) Login(ctx context.Context, sid, email, password, otpCode string) (*session.Session, error) {
	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, email)
		if err != nil {
			// throttle backend trouble must not lock everyone out
			log.Error().Err(err).Msg("login throttle unavailable")
		} else if !allowed {
			return nil, ErrThrottled
		}
	}

	user, err := s.provider.Authenticate(ctx, email, password, otpCode)
	if err != nil {
		return nil, err
	}

	sess, err := s.establish(ctx, sid, user.ID)
	if err != nil {
		return nil, err
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, email); err != nil {
			log.Error().Err(err).Msg("failed to reset login throttle")
		}
	}

	return sess, nil
}

// Register creates a player account and then behaves exactly like a
// successful login with the new identity.
func (s *Service) Register(ctx context.Context, sid string, in RegisterInput) (*session.Session, error) {
	user, err := s.provider.CreatePlayer(ctx, in)
	if err != nil {
		return nil, err
	}

	return s.establish(ctx, sid, user.ID)
}

// Logout destroys the session stored under sid. Logging out an already
// logged-out session is a no-op, never an error.
func (s *Service) Logout(_ context.Context, sid string) {
	if err := s.sessions.Destroy(sid); err != nil {
		log.Error().Err(err).Msg("failed to destroy session")
	}
}

// UpdateIdentity applies a profile self-edit and re-persists the session's
// identity entry. The permission set and token are never touched by this path.
func (s *Service) UpdateIdentity(ctx context.Context, sid string, userID uint64, in ProfileUpdate) (*models.User, error) {
	user, err := s.provider.UpdateProfile(ctx, userID, in)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.UpdateIdentity(sid, *user, s.ttl); err != nil {
		return nil, err
	}

	return user, nil
}

// establish runs the post-credential half of a login: mint token, fetch
// identity, resolve permissions, persist. Fail-closed throughout.
func (s *Service) establish(ctx context.Context, sid string, userID uint64) (*session.Session, error) {
	tok, err := token.New()
	if err != nil {
		log.Error().Err(err).Msg("failed to mint session token")
		return nil, ErrAccountUnavailable
	}

	user, permissions, err := s.Resolve(ctx, userID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", userID).Msg("identity resolution failed after credential exchange")
		s.Logout(ctx, sid)

		return nil, ErrAccountUnavailable
	}

	sess := &session.Session{
		Token:       tok,
		User:        *user,
		Permissions: permissions,
	}

	if err := s.sessions.Write(sid, sess, s.ttl); err != nil {
		log.Error().Err(err).Uint64("user_id", userID).Msg("failed to persist session")
		s.Logout(ctx, sid)

		return nil, ErrAccountUnavailable
	}

	return sess, nil
}

// Resolve fetches the full identity record and derives its permission set.
//
// Administrative accounts resolve through their role; an admin with no role,
// or with a reference to a role that no longer exists, gets an empty set:
// a valid but powerless session. Player accounts always get an empty set.
func (s *Service) Resolve(ctx context.Context, userID uint64) (*models.User, []perm.Permission, error) {
	user, err := s.provider.GetUserByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	if !user.IsAdmin() || user.RoleID == nil {
		return user, []perm.Permission{}, nil
	}

	permissions, err := s.PermissionsForRole(ctx, *user.RoleID)
	if err != nil {
		return nil, nil, err
	}

	return user, permissions, nil
}

// PermissionsForRole returns the permission tokens assigned to a role.
// A role id with no matching rows (deleted role, dangling reference, or a
// role with nothing assigned) yields an empty set, not an error.
func (s *Service) PermissionsForRole(ctx context.Context, roleID uint) ([]perm.Permission, error) {
	var names []string

	err := s.db.WithContext(ctx).Table("permissions").
		Select("permissions.name").
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Where("role_permissions.role_id = ?", roleID).
		Pluck("permissions.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to resolve role permissions: %w", err)
	}

	return perm.FromStrings(names), nil
}
