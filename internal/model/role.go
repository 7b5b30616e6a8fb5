package model

// Role is a capability granted to a person.
type Role int64

const (
	RoleAdmin           Role = 1
	RoleManage          Role = 2
	RoleEditSlots       Role = 3
	RoleTrainer         Role = 4
	RoleTrainingAcademy Role = 5
	RoleMentor          Role = 6
)

// RoleSet is the set of roles held by someone.
type RoleSet map[Role]struct{}

// NewRoleSet builds a set from a list of roles.
func NewRoleSet(roles ...Role) RoleSet {
	set := make(RoleSet, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}

// Has reports whether any of the given roles is held.
func (s RoleSet) Has(roles ...Role) bool {
	for _, r := range roles {
		if _, ok := s[r]; ok {
			return true
		}
	}
	return false
}

// CanForceSignups reports whether the holder may push a person into a full
// slot or past the single-training-enrollment rule.
func (s RoleSet) CanForceSignups() bool {
	return s.Has(RoleAdmin, RoleEditSlots)
}
