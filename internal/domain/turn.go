package domain

import "strings"

// Role tags a turn submitted to the inference backend.
type Role string

const (
	RoleSystem Role = "system"
	RoleUser   Role = "user"
	RoleBot    Role = "bot"
)

// Turn is one role-tagged entry of a conversation context.
type Turn struct {
	Role    Role
	Content string
}

// ParseRole maps a transcript tag to a Role. "assistant" is accepted as an
// alias for the bot role; any other tag is rejected.
func ParseRole(tag string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "system":
		return RoleSystem, true
	case "user":
		return RoleUser, true
	case "bot", "assistant":
		return RoleBot, true
	default:
		return "", false
	}
}
