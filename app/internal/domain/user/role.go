package user

import (
	"errors"
	"regexp"
	"strings"
)

type RoleCode string

const (
	RoleUser  RoleCode = "ROLE_USER"
	RoleAdmin RoleCode = "ROLE_ADMIN"
)

var roleCodeRegexp = regexp.MustCompile(`^ROLE_[A-Z0-9_]{2,59}$`)

var ErrInvalidRoleCode = errors.New("invalid role code")

func (c RoleCode) IsValid() bool {
	return roleCodeRegexp.MatchString(string(c))
}

func (c RoleCode) IsAdmin() bool {
	return c == RoleAdmin
}

// ParseRoleCode normalizes a role read from a token or the database.
func ParseRoleCode(s string) (RoleCode, error) {
	c := RoleCode(strings.ToUpper(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", ErrInvalidRoleCode
	}
	return c, nil
}

func ParseRoleCodes(values []string) ([]RoleCode, error) {
	roles := make([]RoleCode, 0, len(values))
	for _, v := range values {
		role, err := ParseRoleCode(v)
		if err != nil {
			return nil, err
		}
		roles = append(roles, role)
	}
	return roles, nil
}
