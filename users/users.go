package users

// User is the canonical identity shape for the console. Roles and permissions
// are always slices, even when the backend only ever populates one element,
// and they are replaced wholesale on login or refresh - never mutated in place.
type User struct {
	ID          string   `json:"id,omitempty"`          // Unique identifier for the user
	Username    string   `json:"username,omitempty"`    // Unique username used at login
	Name        string   `json:"name,omitempty"`        // Display name
	Email       string   `json:"email,omitempty"`       // User's email address
	Roles       []string `json:"roles,omitempty"`       // Role names assigned by the backend
	Permissions []string `json:"permissions,omitempty"` // Fine-grained capability strings (e.g. "view:dashboard")
}

// HasPermission reports whether the user holds the given permission string.
// Safe to call on a nil user.
func (u *User) HasPermission(permission string) bool {
	if u == nil {
		return false
	}
	for _, p := range u.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// HasRole reports whether the user holds the given role name.
// Safe to call on a nil user.
func (u *User) HasRole(role string) bool {
	if u == nil {
		return false
	}
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Clone returns a copy of the user so that callers holding a snapshot cannot
// mutate the session's grants.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	clone.Roles = append([]string(nil), u.Roles...)
	clone.Permissions = append([]string(nil), u.Permissions...)
	return &clone
}
