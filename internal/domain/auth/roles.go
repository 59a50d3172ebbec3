package auth

const (
	RoleEmployee       = "employee"
	RoleManager        = "manager"
	RoleDepartmentHead = "department_head"
	RoleAdmin          = "admin"
)

// UserContext is the authenticated identity attached to a request.
type UserContext struct {
	UserID       string
	RoleID       string
	RoleName     string
	DepartmentID string
}
