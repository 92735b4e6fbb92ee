package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAllowed(t *testing.T) {
	cases := []struct {
		name   string
		role   Role
		action Action
		want   bool
	}{
		{"admin read", RoleAdmin, ActionRead, true},
		{"admin create", RoleAdmin, ActionCreate, true},
		{"admin update", RoleAdmin, ActionUpdate, true},
		{"admin delete", RoleAdmin, ActionDelete, true},
		{"admin manage users", RoleAdmin, ActionManageUsers, true},
		{"developer read", RoleDeveloper, ActionRead, true},
		{"developer create", RoleDeveloper, ActionCreate, false},
		{"developer update", RoleDeveloper, ActionUpdate, false},
		{"developer delete", RoleDeveloper, ActionDelete, false},
		{"developer manage users", RoleDeveloper, ActionManageUsers, false},
		{"unknown role read", Role("viewer"), ActionRead, false},
		{"empty role", Role(""), ActionRead, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Allowed(tc.role, tc.action))
		})
	}
}
