package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/playops/playops-admin/internal/perm"
	"github.com/playops/playops-admin/internal/web/session"
)

// localsSession is the fiber.Locals key holding the restored session.
const localsSession = "session"

// LocalsUserID is the fiber.Locals key holding the authenticated account id.
// The access-log middleware picks it up without depending on this package.
const LocalsUserID = "uid"

// Middleware restores the session for the request's session cookie and stores
// it in fiber.Locals. Anonymous requests pass through with no session set;
// rejecting them is left to RequireAuthenticated and RequirePermission.
func Middleware(store *session.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sid := c.Cookies(session.CookieName)
		if sid == "" {
			return c.Next()
		}

		sess, err := store.Restore(sid)
		if err != nil {
			// invalid or partial session state was already purged by Restore
			return c.Next()
		}

		c.Locals(localsSession, sess)
		c.Locals(LocalsUserID, sess.User.ID)

		return c.Next()
	}
}

// FromContext returns the restored session for the request, or nil for an
// anonymous request.
func FromContext(c *fiber.Ctx) *session.Session {
	sess, ok := c.Locals(localsSession).(*session.Session)
	if !ok {
		return nil
	}

	return sess
}

// RequireAuthenticated creates Fiber middleware that rejects anonymous
// requests with 401.
func RequireAuthenticated() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !FromContext(c).IsAuthenticated() {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		return c.Next()
	}
}

// RequirePermission creates Fiber middleware that requires a specific
// permission token. The check is pure membership over the session's pinned
// set; no database access happens per request.
func RequirePermission(p perm.Permission) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sess := FromContext(c)
		if !sess.IsAuthenticated() {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		if !sess.Has(p) {
			log.Warn().Uint64("user_id", sess.User.ID).Str("permission", string(p)).
				Msg("session lacks required permission")

			return fiber.NewError(fiber.StatusForbidden, "forbidden")
		}

		return c.Next()
	}
}
