package chatgate

// Role represents the author of a turn.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)
