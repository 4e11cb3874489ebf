package auth

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/playops/playops-admin/internal/db/models"
	"github.com/playops/playops-admin/internal/perm"
	"github.com/playops/playops-admin/internal/storagetest"
	"github.com/playops/playops-admin/internal/web/session"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to open sqlite in-memory db")

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.RolePermission{},
	))

	return db
}

func newTestService(t *testing.T, db *gorm.DB) (*Service, *storagetest.Storage) {
	t.Helper()

	st := storagetest.New()

	return NewService(db, session.New(st), nil, time.Minute), st
}

func seedRole(t *testing.T, db *gorm.DB, name string, perms ...perm.Permission) *models.Role {
	t.Helper()

	role := models.Role{Name: name}
	require.NoError(t, db.Create(&role).Error)

	for _, p := range perms {
		permission := models.Permission{Name: string(p)}
		require.NoError(t, db.Where("name = ?", string(p)).FirstOrCreate(&permission).Error)
		require.NoError(t, db.Create(&models.RolePermission{
			RoleID:       role.ID,
			PermissionID: permission.ID,
		}).Error)
	}

	return &role
}

func seedAdmin(t *testing.T, db *gorm.DB, email, password string, roleID *uint) *models.User {
	t.Helper()

	user := models.User{
		Active:   true,
		Email:    email,
		Username: email,
		Password: models.HashPassword(password),
		Type:     models.AccountTypeAdmin,
		RoleID:   roleID,
	}
	require.NoError(t, db.Create(&user).Error)

	return &user
}

func TestLoginEstablishesSession(t *testing.T) {
	db := newTestDB(t)
	svc, st := newTestService(t, db)

	role := seedRole(t, db, "support", perm.DashboardView, perm.TicketView)
	seedAdmin(t, db, "ops@example.com", "s3cr3t-pass", &role.ID)

	sess, err := svc.Login(context.Background(), "sid-1", "ops@example.com", "s3cr3t-pass", "")
	require.NoError(t, err)

	assert.NotEmpty(t, sess.Token)
	assert.True(t, sess.Has(perm.DashboardView))
	assert.True(t, sess.Has(perm.TicketView))
	assert.False(t, sess.Has(perm.PlayerBan))

	// the session must be restorable from storage, not just in memory
	restored, err := svc.Sessions().Restore("sid-1")
	require.NoError(t, err)
	assert.Equal(t, sess.Token, restored.Token)
	assert.Equal(t, sess.Permissions, restored.Permissions)

	assert.Equal(t, 3, st.Len())
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	db := newTestDB(t)
	svc, st := newTestService(t, db)

	seedAdmin(t, db, "known@example.com", "right-password", nil)

	banned := seedAdmin(t, db, "banned@example.com", "right-password", nil)
	require.NoError(t, db.Model(banned).Update("active", false).Error)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{"unknown email", "nobody@example.com", "whatever-pass"},
		{"wrong password", "known@example.com", "wrong-password"},
		{"disabled account", "banned@example.com", "right-password"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sess, err := svc.Login(context.Background(), "sid-1", tc.email, tc.password, "")
			assert.ErrorIs(t, err, ErrInvalidCredentials)
			assert.Nil(t, sess)

			// a failed login leaves no session state behind
			assert.Equal(t, 0, st.Len())
		})
	}
}

func TestLoginPersistFailureFailsClosed(t *testing.T) {
	db := newTestDB(t)
	svc, st := newTestService(t, db)

	seedAdmin(t, db, "ops@example.com", "s3cr3t-pass", nil)

	st.SetErr = assert.AnError
	st.SetErrAfter = 1 // identity lands, permissions write fails

	sess, err := svc.Login(context.Background(), "sid-1", "ops@example.com", "s3cr3t-pass", "")
	assert.ErrorIs(t, err, ErrAccountUnavailable)
	assert.Nil(t, sess)
	assert.Equal(t, 0, st.Len())
}

func TestRegisterEstablishesSession(t *testing.T) {
	db := newTestDB(t)
	svc, st := newTestService(t, db)

	sess, err := svc.Register(context.Background(), "sid-1", RegisterInput{
		Email:    "p1@example.com",
		Username: "p1",
		Password: "player-pass",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, models.AccountTypePlayer, sess.User.Type)
	assert.Empty(t, sess.Permissions)

	restored, err := svc.Sessions().Restore("sid-1")
	require.NoError(t, err)
	assert.Equal(t, sess.Token, restored.Token)
	assert.Equal(t, 3, st.Len())
}

func TestRegisterDuplicateLeavesNothingBehind(t *testing.T) {
	db := newTestDB(t)
	svc, st := newTestService(t, db)

	in := RegisterInput{Email: "p1@example.com", Username: "p1", Password: "player-pass"}

	_, err := svc.Register(context.Background(), "sid-1", in)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "sid-2", in)
	assert.ErrorIs(t, err, ErrEmailOrUsernameExists)

	_, err = svc.Sessions().Restore("sid-2")
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)

	var count int64

	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)

	// only the first registration's entries remain
	assert.Equal(t, 3, st.Len())
}

func TestRegisterPersistFailureFailsClosed(t *testing.T) {
	db := newTestDB(t)
	svc, st := newTestService(t, db)

	st.SetErr = assert.AnError
	st.SetErrAfter = 1 // identity lands, permissions write fails

	sess, err := svc.Register(context.Background(), "sid-1", RegisterInput{
		Email:    "p1@example.com",
		Username: "p1",
		Password: "player-pass",
	})
	assert.ErrorIs(t, err, ErrAccountUnavailable)
	assert.Nil(t, sess)
	assert.Equal(t, 0, st.Len())

	_, err = svc.Sessions().Restore("sid-1")
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)
}

func TestResolvePlayerGetsEmptySet(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestService(t, db)

	player := models.User{
		Active:   true,
		Email:    "p1@example.com",
		Username: "p1",
		Password: models.HashPassword("player-pass"),
		Type:     models.AccountTypePlayer,
	}
	require.NoError(t, db.Create(&player).Error)

	_, permissions, err := svc.Resolve(context.Background(), player.ID)
	require.NoError(t, err)
	assert.Empty(t, permissions)
}

func TestResolveAdminWithoutRole(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestService(t, db)

	admin := seedAdmin(t, db, "ops@example.com", "s3cr3t-pass", nil)

	_, permissions, err := svc.Resolve(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.Empty(t, permissions)
}

func TestResolveDanglingRoleGetsEmptySet(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestService(t, db)

	missingRole := uint(9999)
	admin := seedAdmin(t, db, "ops@example.com", "s3cr3t-pass", &missingRole)

	user, permissions, err := svc.Resolve(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.NotNil(t, user)
	assert.Empty(t, permissions)
}

func TestPermissionsArePinnedAtLogin(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestService(t, db)

	role := seedRole(t, db, "support", perm.TicketView)
	seedAdmin(t, db, "ops@example.com", "s3cr3t-pass", &role.ID)

	sess, err := svc.Login(context.Background(), "sid-1", "ops@example.com", "s3cr3t-pass", "")
	require.NoError(t, err)
	assert.True(t, sess.Has(perm.TicketView))

	// strip the role's permissions after login
	require.NoError(t, db.Where("role_id = ?", role.ID).Delete(&models.RolePermission{}).Error)

	// the running session keeps its pinned set
	restored, err := svc.Sessions().Restore("sid-1")
	require.NoError(t, err)
	assert.True(t, restored.Has(perm.TicketView))

	// a fresh login picks up the change
	fresh, err := svc.Login(context.Background(), "sid-2", "ops@example.com", "s3cr3t-pass", "")
	require.NoError(t, err)
	assert.False(t, fresh.Has(perm.TicketView))
}

func TestLogoutIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc, st := newTestService(t, db)

	seedAdmin(t, db, "ops@example.com", "s3cr3t-pass", nil)

	_, err := svc.Login(context.Background(), "sid-1", "ops@example.com", "s3cr3t-pass", "")
	require.NoError(t, err)

	svc.Logout(context.Background(), "sid-1")
	assert.Equal(t, 0, st.Len())

	_, err = svc.Sessions().Restore("sid-1")
	assert.ErrorIs(t, err, session.ErrNotAuthenticated)

	// logging out again is a no-op
	svc.Logout(context.Background(), "sid-1")
}

func TestUpdateIdentityKeepsPermissions(t *testing.T) {
	db := newTestDB(t)
	svc, _ := newTestService(t, db)

	role := seedRole(t, db, "support", perm.TicketView)
	admin := seedAdmin(t, db, "ops@example.com", "s3cr3t-pass", &role.ID)

	_, err := svc.Login(context.Background(), "sid-1", "ops@example.com", "s3cr3t-pass", "")
	require.NoError(t, err)

	newName := "renamed"
	user, err := svc.UpdateIdentity(context.Background(), "sid-1", admin.ID, ProfileUpdate{Username: &newName})
	require.NoError(t, err)
	assert.Equal(t, "renamed", user.Username)

	restored, err := svc.Sessions().Restore("sid-1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", restored.User.Username)
	assert.True(t, restored.Has(perm.TicketView))
}
