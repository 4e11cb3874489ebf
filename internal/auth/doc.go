// Package auth provides authentication and authorization functionality for the
// back office.
//
// # Session model
//
// A login resolves an identity into a fully populated session exactly once:
// credential check, token mint, identity fetch, permission resolution, then a
// single persist into the session store. The permission set is pinned for the
// lifetime of the session; editing a role takes effect for its holders at
// their next login.
//
// # Authorization
//
// Permission tokens form a closed vocabulary (see the perm package). The gate
// is (*session.Session).Has, pure set membership over the pinned set. Fiber
// middleware is provided for route protection:
//   - RequireAuthenticated: reject anonymous requests
//   - RequirePermission: reject sessions lacking a specific token
//
// # Fail-closed rules
//
//   - A failed identity or permission fetch after a successful credential
//     exchange destroys the session rather than leaving a token without an
//     identity.
//   - An administrative account with no role, or with a dangling role
//     reference, resolves to an empty permission set, not an error and not
//     all permissions.
//   - Player accounts always resolve to an empty permission set.
//
// # Anti-enumeration
//
// Every credential failure surfaces the identical ErrInvalidCredentials.
// When the email is unknown, a dummy Argon2id comparison still runs so the
// two paths take comparable time.
//
// Example usage:
//
//	svc := auth.NewService(db, sessions, throttle, cfg.Webserver.Session.ExpiryTime)
//
//	sess, err := svc.Login(ctx, sid, email, password, otpCode)
//
//	app.Get("/api/admin/players",
//	    auth.RequirePermission(perm.PlayerList),
//	    handler,
//	)
package auth
