package models

type UserRole string

const (
	RoleStudent UserRole = "student"
	RoleTeacher UserRole = "teacher"
	RoleAdmin   UserRole = "admin"
)

// User is the caller identity resolved from the auth provider token.
// It is not stored by this service.
type User struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	Organization string   `json:"organization"`
	Role         UserRole `json:"role"`
}

func (u User) IsStaff() bool {
	return u.Role == RoleTeacher || u.Role == RoleAdmin
}
