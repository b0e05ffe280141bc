package guildmodels

import "fmt"

//ExclusionKind says whether an exclusion refers to a user or a role
type ExclusionKind string

const (
	ExclusionUser ExclusionKind = "user"
	ExclusionRole ExclusionKind = "role"
)

//ParseExclusionKind converts a stored exclusion kind back into an ExclusionKind
func ParseExclusionKind(s string) (ExclusionKind, error) {
	switch ExclusionKind(s) {
	case ExclusionUser, ExclusionRole:
		return ExclusionKind(s), nil
	default:
		return "", fmt.Errorf("unknown exclusion kind `%v`", s)
	}
}

//Exclusion exempts a single user or every member holding a role from one module
type Exclusion struct {
	Kind ExclusionKind
	ID   string
}

//UserExclusion builds an exclusion for the user with the given ID
func UserExclusion(uid string) Exclusion {
	return Exclusion{Kind: ExclusionUser, ID: uid}
}

//RoleExclusion builds an exclusion for the role with the given ID
func RoleExclusion(rid string) Exclusion {
	return Exclusion{Kind: ExclusionRole, ID: rid}
}

func (e Exclusion) String() string {
	switch e.Kind {
	case ExclusionUser:
		return fmt.Sprintf("User: <@%v>", e.ID)
	case ExclusionRole:
		return fmt.Sprintf("Role: <@&%v>", e.ID)
	default:
		return fmt.Sprintf("%v: %v", e.Kind, e.ID)
	}
}
