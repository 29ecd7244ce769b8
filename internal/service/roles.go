package service

import (
	"fmt"
	"strings"
)

type Role string

const (
	RoleClient  Role = "ROLE_CLIENT"
	RoleManager Role = "ROLE_MANAGER"
	RoleAdmin   Role = "ROLE_ADMIN"
)

var roleByDisplayName = map[string]Role{
	"client":        RoleClient,
	"клиент":        RoleClient,
	"manager":       RoleManager,
	"менеджер":      RoleManager,
	"administrator": RoleAdmin,
	"admin":         RoleAdmin,
	"администратор": RoleAdmin,
}

// ParseRoleName maps a stored role display name onto the closed role set.
func ParseRoleName(name string) (Role, error) {
	if r, ok := roleByDisplayName[strings.ToLower(strings.TrimSpace(name))]; ok {
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, name)
}

// ParseRole accepts the wire form carried in tokens and sessions.
func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleClient, RoleManager, RoleAdmin:
		return r, nil
	}
	return ParseRoleName(s)
}

func (r Role) IsStaff() bool { return r == RoleManager || r == RoleAdmin }

func (r Role) DisplayName() string {
	switch r {
	case RoleClient:
		return "Client"
	case RoleManager:
		return "Manager"
	case RoleAdmin:
		return "Administrator"
	}
	return string(r)
}
