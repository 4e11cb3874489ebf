package auth

import "errors"

var (
	// ErrInvalidCredentials is returned for every failed credential check:
	// unknown email, wrong password, disabled account, or a bad TOTP code.
	// The single message deliberately never reveals whether the email exists.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrAccountUnavailable is returned when the identity or permission fetch
	// fails after a successful credential exchange. The session is forced to
	// logged out and the underlying error is never surfaced to the client.
	ErrAccountUnavailable = errors.New("could not load your account")

	// ErrThrottled is returned when the login attempt limit for an email was
	// exceeded within the current window.
	ErrThrottled = errors.New("too many login attempts")

	// ErrEmailOrUsernameExists is returned when registration collides with an
	// existing email or username.
	ErrEmailOrUsernameExists = errors.New("account with this email or username already exists")

	// ErrInvalidOldPassword is returned when the provided old password does not
	// match the account's current password.
	ErrInvalidOldPassword = errors.New("invalid old password")

	// ErrUserNotFound is returned when an account cannot be found. Internal;
	// the login path folds it into ErrInvalidCredentials.
	ErrUserNotFound = errors.New("user not found")
)
