package models

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Turn is one role-tagged unit of a prompt sequence sent to the
// completion service.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
