package auth

import (
	"context"
	"testing"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playops/playops-admin/internal/db/models"
)

func TestCreatePlayerAndAuthenticate(t *testing.T) {
	db := newTestDB(t)
	lp := NewLocalProvider(db)

	user, err := lp.CreatePlayer(context.Background(), RegisterInput{
		Email:    "p1@example.com",
		Username: "p1",
		Password: "player-pass",
		Country:  "DE",
	})
	require.NoError(t, err)
	assert.True(t, user.Active)
	assert.Equal(t, models.AccountTypePlayer, user.Type)
	assert.Equal(t, models.KYCStatusPending, user.KYCStatus)

	got, err := lp.Authenticate(context.Background(), "p1@example.com", "player-pass", "")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotNil(t, got.LastLoginAt)
}

func TestCreatePlayerDuplicate(t *testing.T) {
	db := newTestDB(t)
	lp := NewLocalProvider(db)

	in := RegisterInput{Email: "p1@example.com", Username: "p1", Password: "player-pass"}

	_, err := lp.CreatePlayer(context.Background(), in)
	require.NoError(t, err)

	_, err = lp.CreatePlayer(context.Background(), in)
	assert.ErrorIs(t, err, ErrEmailOrUsernameExists)

	// same username under a different email is still a conflict
	in.Email = "other@example.com"
	_, err = lp.CreatePlayer(context.Background(), in)
	assert.ErrorIs(t, err, ErrEmailOrUsernameExists)
}

func TestAuthenticateTOTP(t *testing.T) {
	db := newTestDB(t)
	lp := NewLocalProvider(db)

	key, err := totp.Generate(totp.GenerateOpts{Issuer: "playops-admin", AccountName: "ops@example.com"})
	require.NoError(t, err)

	admin := seedAdmin(t, db, "ops@example.com", "s3cr3t-pass", nil)
	require.NoError(t, db.Model(admin).Update("totp_secret", key.Secret()).Error)

	// without a code the login fails like any bad credential
	_, err = lp.Authenticate(context.Background(), "ops@example.com", "s3cr3t-pass", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// wrong code fails the same way
	_, err = lp.Authenticate(context.Background(), "ops@example.com", "s3cr3t-pass", "000000")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestChangePassword(t *testing.T) {
	db := newTestDB(t)
	lp := NewLocalProvider(db)

	admin := seedAdmin(t, db, "ops@example.com", "old-password", nil)

	err := lp.ChangePassword(context.Background(), admin.ID, "wrong-password", "new-password")
	assert.ErrorIs(t, err, ErrInvalidOldPassword)

	require.NoError(t, lp.ChangePassword(context.Background(), admin.ID, "old-password", "new-password"))

	_, err = lp.Authenticate(context.Background(), "ops@example.com", "old-password", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = lp.Authenticate(context.Background(), "ops@example.com", "new-password", "")
	assert.NoError(t, err)
}

func TestBanUnban(t *testing.T) {
	db := newTestDB(t)
	lp := NewLocalProvider(db)

	admin := seedAdmin(t, db, "ops@example.com", "s3cr3t-pass", nil)

	require.NoError(t, lp.Ban(context.Background(), admin.ID))

	_, err := lp.Authenticate(context.Background(), "ops@example.com", "s3cr3t-pass", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, lp.Unban(context.Background(), admin.ID))

	_, err = lp.Authenticate(context.Background(), "ops@example.com", "s3cr3t-pass", "")
	assert.NoError(t, err)
}

func TestUpdateProfileIgnoresUnsetFields(t *testing.T) {
	db := newTestDB(t)
	lp := NewLocalProvider(db)

	user, err := lp.CreatePlayer(context.Background(), RegisterInput{
		Email:     "p1@example.com",
		Username:  "p1",
		Password:  "player-pass",
		FirstName: "Pat",
	})
	require.NoError(t, err)

	country := "SE"
	got, err := lp.UpdateProfile(context.Background(), user.ID, ProfileUpdate{Country: &country})
	require.NoError(t, err)

	assert.Equal(t, "SE", got.Country)
	assert.Equal(t, "Pat", got.FirstName)
	assert.Equal(t, "p1", got.Username)
}

func TestUpdateProfileUsernameTaken(t *testing.T) {
	db := newTestDB(t)
	lp := NewLocalProvider(db)

	_, err := lp.CreatePlayer(context.Background(), RegisterInput{
		Email:    "p1@example.com",
		Username: "p1",
		Password: "player-pass",
	})
	require.NoError(t, err)

	user, err := lp.CreatePlayer(context.Background(), RegisterInput{
		Email:    "p2@example.com",
		Username: "p2",
		Password: "player-pass",
	})
	require.NoError(t, err)

	taken := "p1"
	_, err = lp.UpdateProfile(context.Background(), user.ID, ProfileUpdate{Username: &taken})
	assert.ErrorIs(t, err, ErrEmailOrUsernameExists)

	// keeping your own username is not a collision
	own := "p2"
	got, err := lp.UpdateProfile(context.Background(), user.ID, ProfileUpdate{Username: &own})
	require.NoError(t, err)
	assert.Equal(t, "p2", got.Username)
}

func TestDeleteUser(t *testing.T) {
	db := newTestDB(t)
	lp := NewLocalProvider(db)

	admin := seedAdmin(t, db, "ops@example.com", "s3cr3t-pass", nil)

	require.NoError(t, lp.DeleteUser(context.Background(), admin.ID))

	_, err := lp.GetUserByID(context.Background(), admin.ID)
	assert.ErrorIs(t, err, ErrUserNotFound)

	// soft deleted accounts cannot log in either
	_, err = lp.Authenticate(context.Background(), "ops@example.com", "s3cr3t-pass", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestListUsers(t *testing.T) {
	db := newTestDB(t)
	lp := NewLocalProvider(db)

	for _, in := range []RegisterInput{
		{Email: "anna@example.com", Username: "anna", Password: "player-pass"},
		{Email: "bert@example.com", Username: "bert", Password: "player-pass"},
	} {
		_, err := lp.CreatePlayer(context.Background(), in)
		require.NoError(t, err)
	}

	seedAdmin(t, db, "ops@example.com", "s3cr3t-pass", nil)

	players, total, err := lp.ListUsers(context.Background(), models.AccountTypePlayer, "", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, players, 2)

	found, total, err := lp.ListUsers(context.Background(), models.AccountTypePlayer, "anna", 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "anna", found[0].Username)
}
