package valueobjects

import (
	"fmt"
	"strings"

	pkgerrors "canvaschat/pkg/errors"
)

// Role is the speaker of a chat message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ParseRole converts a raw role string into a Role.
// Matching is case-insensitive and ignores surrounding whitespace.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	if !role.IsValid() {
		return "", pkgerrors.NewValidationError(fmt.Sprintf("invalid message role %q", s))
	}
	return role, nil
}

// IsValid reports whether the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	}
	return false
}

// String returns the string representation of the Role
func (r Role) String() string {
	return string(r)
}

// ChatMessage is a single provider-ready conversation entry.
// It has no identity beyond its position in a sequence.
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage builds a user-role message
func UserMessage(content string) ChatMessage {
	return ChatMessage{Role: RoleUser, Content: content}
}

// Equals compares role and content exactly
func (m ChatMessage) Equals(other ChatMessage) bool {
	return m.Role == other.Role && m.Content == other.Content
}
