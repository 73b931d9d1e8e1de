package user

type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	Roles        []RoleCode
}

func (u *User) HasRole(role RoleCode) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Identity is the part of a user that an authenticated session exposes.
func (u *User) Identity() Identity {
	roles := make([]RoleCode, len(u.Roles))
	copy(roles, u.Roles)
	return Identity{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Roles:    roles,
	}
}
