package engine

import "strings"

// Role is the coarse positional category driving basket weights
type Role int

const (
	RoleGoalkeeper Role = iota
	RoleDefender
	RoleMidfielder
	RoleAttacker
)

func (r Role) String() string {
	switch r {
	case RoleGoalkeeper:
		return "Goalkeeper"
	case RoleDefender:
		return "Defender"
	case RoleMidfielder:
		return "Midfielder"
	case RoleAttacker:
		return "Attacker"
	default:
		return "Midfielder"
	}
}

// roleFromLabel coerces a free-text position label into a Role. It is a
// total function: any label it cannot place lands on Midfielder rather than
// an "unknown" error, matching how feeds mix "CAM", "Centre-Back", "ST" and
// plain prose.
func roleFromLabel(raw string) Role {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "keeper") || s == "gk":
		return RoleGoalkeeper
	case strings.Contains(s, "back") || strings.Contains(s, "defen") ||
		s == "cb" || s == "lb" || s == "rb" || s == "lwb" || s == "rwb":
		return RoleDefender
	case strings.Contains(s, "striker") || strings.Contains(s, "forward") ||
		strings.Contains(s, "attacker") || strings.Contains(s, "wing") ||
		s == "st" || s == "cf" || s == "lw" || s == "rw":
		return RoleAttacker
	default:
		return RoleMidfielder
	}
}

// roleForSlot prefers the lineup slot's label and falls back to the cached
// profile's position.
func roleForSlot(slot PlayerSlot, profile *PlayerProfile) Role {
	if strings.TrimSpace(slot.Position) != "" {
		return roleFromLabel(slot.Position)
	}
	if profile != nil {
		return roleFromLabel(profile.Position)
	}
	return RoleMidfielder
}
