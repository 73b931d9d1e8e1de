package user

// Identity describes the signed-in user of a session.
type Identity struct {
	ID       int64
	Username string
	Email    string
	Roles    []RoleCode
}

func (i Identity) IsAdmin() bool {
	for _, r := range i.Roles {
		if r.IsAdmin() {
			return true
		}
	}
	return false
}

// Session is the read-only view of authentication state that the cart and
// checkout code consult. It is never mutated by its readers.
type Session interface {
	IsAuthenticated() bool
	CurrentUser() (*Identity, bool)
}

type anonymousSession struct{}

func (anonymousSession) IsAuthenticated() bool          { return false }
func (anonymousSession) CurrentUser() (*Identity, bool) { return nil, false }

// Anonymous is the session of a visitor that has not signed in.
func Anonymous() Session {
	return anonymousSession{}
}

type identitySession struct {
	identity Identity
}

func (s identitySession) IsAuthenticated() bool { return true }

func (s identitySession) CurrentUser() (*Identity, bool) {
	id := s.identity
	return &id, true
}

// Authenticated returns a session for a verified identity.
func Authenticated(identity Identity) Session {
	return identitySession{identity: identity}
}
