// Package ctxkeys defines typed context keys shared between middleware and
// handlers. Both sides import this package, so neither imports the other.
package ctxkeys

// Key is a typed string used as context key to prevent collisions.
type Key string

const (
	UserID   Key = "userID"
	UserRole Key = "userRole"
)

// RoleLevel maps role names to permission levels.
var RoleLevel = map[string]int{
	"viewer": 1,
	"admin":  2,
}
