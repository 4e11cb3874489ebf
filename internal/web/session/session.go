// Package session implements the durable session store: the single source of
// truth for who is using one browser tab right now.
//
// A tab holds an opaque session id in a cookie. Durable state for that id is
// kept as three independent storage entries (token, identity, permissions).
// Restore succeeds only if all three are present and parse; anything less is
// treated as fully logged out and the leftovers are purged. Writes persist the
// token last, so a partially written session can never restore as
// authenticated.
package session

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gofiber/storage"

	"github.com/playops/playops-admin/internal/db/models"
	"github.com/playops/playops-admin/internal/perm"
)

// CookieName is the name of the cookie carrying the session id.
const CookieName = "session"

const (
	keyToken       = ".token"
	keyIdentity    = ".identity"
	keyPermissions = ".permissions"
)

// ErrNotAuthenticated is returned by Restore when no valid session exists for
// the given id. It covers missing, partial, and unparsable stored state alike.
var ErrNotAuthenticated = errors.New("not authenticated")

// Session is the in-memory authenticated state for one tab: the opaque token,
// the identity it was issued to, and the permission set resolved at login.
type Session struct {
	// Token is the opaque credential string, present iff authenticated.
	Token string `json:"token"`
	// User is the authenticated account record.
	User models.User `json:"user"`
	// Permissions is the permission set pinned at login. Empty for players.
	Permissions []perm.Permission `json:"permissions"`
}

// IsAuthenticated reports whether the session holds both a token and an identity.
func (s *Session) IsAuthenticated() bool {
	return s != nil && s.Token != "" && s.User.ID != 0
}

// Has is the authorization gate: a pure set-membership check over the pinned
// permission set. No database access, no side effects.
func (s *Session) Has(p perm.Permission) bool {
	if !s.IsAuthenticated() {
		return false
	}

	for _, held := range s.Permissions {
		if held == p {
			return true
		}
	}

	return false
}

// Store persists sessions in a storage backend. It is constructed once at
// startup and passed to whatever needs it; there is no package-level instance.
type Store struct {
	storage storage.Storage
}

// New creates a session store over the given storage backend.
func New(st storage.Storage) *Store {
	if st == nil {
		panic("storage is nil")
	}

	return &Store{storage: st}
}

// Write persists the full session under the given session id. The identity and
// permission entries are written before the token entry; Restore requires all
// three, so an interrupted write leaves the session unauthenticated rather than
// partially restored. Any write failure purges what was already written.
func (st *Store) Write(sid string, s *Session, exp time.Duration) error {
	identity, err := json.Marshal(s.User)
	if err != nil {
		return err
	}

	permissions, err := json.Marshal(s.Permissions)
	if err != nil {
		return err
	}

	if err := st.storage.Set(sid+keyIdentity, identity, exp); err != nil {
		_ = st.Destroy(sid)
		return err
	}

	if err := st.storage.Set(sid+keyPermissions, permissions, exp); err != nil {
		_ = st.Destroy(sid)
		return err
	}

	if err := st.storage.Set(sid+keyToken, []byte(s.Token), exp); err != nil {
		_ = st.Destroy(sid)
		return err
	}

	return nil
}

// Restore loads the session for the given id. If any of the three entries is
// missing, empty, or fails to parse, all entries are removed and
// ErrNotAuthenticated is returned: there is no partial restore.
func (st *Store) Restore(sid string) (*Session, error) {
	if sid == "" {
		return nil, ErrNotAuthenticated
	}

	tok, err := st.storage.Get(sid + keyToken)
	if err != nil || len(tok) == 0 {
		_ = st.Destroy(sid)
		return nil, ErrNotAuthenticated
	}

	rawIdentity, err := st.storage.Get(sid + keyIdentity)
	if err != nil || len(rawIdentity) == 0 {
		_ = st.Destroy(sid)
		return nil, ErrNotAuthenticated
	}

	rawPermissions, err := st.storage.Get(sid + keyPermissions)
	if err != nil || len(rawPermissions) == 0 {
		_ = st.Destroy(sid)
		return nil, ErrNotAuthenticated
	}

	s := &Session{Token: string(tok)}

	if err := json.Unmarshal(rawIdentity, &s.User); err != nil {
		_ = st.Destroy(sid)
		return nil, ErrNotAuthenticated
	}

	var tokens []string

	if err := json.Unmarshal(rawPermissions, &tokens); err != nil {
		_ = st.Destroy(sid)
		return nil, ErrNotAuthenticated
	}

	// tokens outside the current vocabulary are dropped, not trusted
	s.Permissions = perm.FromStrings(tokens)

	if !s.IsAuthenticated() {
		_ = st.Destroy(sid)
		return nil, ErrNotAuthenticated
	}

	return s, nil
}

// UpdateIdentity re-persists the identity entry after a profile self-edit.
// The token and permission entries are untouched: this path can never change
// what the session is allowed to do. Returns ErrNotAuthenticated if no valid
// session exists for the id.
func (st *Store) UpdateIdentity(sid string, user models.User, exp time.Duration) error {
	if _, err := st.Restore(sid); err != nil {
		return err
	}

	identity, err := json.Marshal(user)
	if err != nil {
		return err
	}

	return st.storage.Set(sid+keyIdentity, identity, exp)
}

// Destroy removes all entries for the given session id. Destroying a session
// that does not exist is a no-op, never an error.
func (st *Store) Destroy(sid string) error {
	if sid == "" {
		return nil
	}

	var firstErr error

	for _, suffix := range []string{keyToken, keyIdentity, keyPermissions} {
		if err := st.storage.Delete(sid + suffix); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
