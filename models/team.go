package models

// TeamMember is one slot of a team, in insertion order.
type TeamMember struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
	Ready    bool   `json:"ready"`
}

// Team is an ephemeral group forming up to enter a match together. It lives
// only in memory; nothing about it is persisted.
type Team struct {
	ID        string       `json:"teamId"`
	Mode      string       `json:"mode"`
	LeaderID  string       `json:"leaderId"`
	Members   []TeamMember `json:"members"`
	CreatedAt string       `json:"createdAt"`
}

// Capacity returns the member limit for a team mode. Unknown modes report 0
// so nothing can ever join them.
func Capacity(mode string) int {
	switch mode {
	case ModeSolo:
		return 1
	case ModeTeam3v3:
		return 3
	default:
		return 0
	}
}

// AllReady reports whether every member has toggled ready. Solo teams are a
// single always-ready member, so they are trivially ready.
func (t *Team) AllReady() bool {
	for _, m := range t.Members {
		if !m.Ready {
			return false
		}
	}
	return len(t.Members) > 0
}

// HasMember reports whether userID occupies a slot.
func (t *Team) HasMember(userID string) bool {
	for _, m := range t.Members {
		if m.UserID == userID {
			return true
		}
	}
	return false
}
