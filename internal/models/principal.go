package models

// Principal is the authenticated caller resolved from a bearer token.
type Principal struct {
	UserID     string   `json:"userId"`
	Username   string   `json:"username"`
	Role       UserRole `json:"role"`
	StudentID  string   `json:"studentId,omitempty"`
	LecturerID string   `json:"lecturerId,omitempty"`
}

// HasRole reports whether the principal holds any of the given roles.
func (p Principal) HasRole(roles ...UserRole) bool {
	for _, role := range roles {
		if p.Role == role {
			return true
		}
	}
	return false
}

// ProfileID returns the id of the student or lecturer profile owned by the principal.
func (p Principal) ProfileID() string {
	switch p.Role {
	case RoleStudent:
		return p.StudentID
	case RoleLecturer:
		return p.LecturerID
	}
	return ""
}

// Owns reports whether profileID belongs to the principal.
func (p Principal) Owns(profileID string) bool {
	own := p.ProfileID()
	return own != "" && own == profileID
}
