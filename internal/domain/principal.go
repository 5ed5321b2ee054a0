package domain

// Principal is the caller acting on a request, taken from its bearer token.
type Principal struct {
	UserID   string
	SystemID string
	Scopes   []string
}

// IsSystem reports whether the caller is a non-interactive system client.
func (p Principal) IsSystem() bool {
	return p.SystemID != ""
}

func (p Principal) HasScope(scope string) bool {
	return Contains(p.Scopes, scope)
}

func (p Principal) IsUser(uuid string) bool {
	return p.UserID != "" && p.UserID == uuid
}

// ActorID is recorded as created_by / modified_by.
func (p Principal) ActorID() string {
	if p.UserID != "" {
		return p.UserID
	}
	if p.SystemID != "" {
		return p.SystemID
	}
	return "unknown"
}
