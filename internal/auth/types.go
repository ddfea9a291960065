package auth

import (
	"strings"
	"time"
)

// Role is the closed set of scopes a session can hold.
type Role string

const (
	RoleHR       Role = "HR"
	RoleManager  Role = "Manager"
	RoleEmployee Role = "Employee"
)

// ParseRole maps a server-provided role name onto a Role, case-insensitively.
func ParseRole(s string) (Role, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "hr":
		return RoleHR, true
	case "manager":
		return RoleManager, true
	case "employee":
		return RoleEmployee, true
	}
	return "", false
}

// Dashboard is where a freshly signed-in session lands.
func (r Role) Dashboard() string {
	switch r {
	case RoleHR:
		return "/hr/dashboard"
	case RoleManager:
		return "/manager/dashboard"
	case RoleEmployee:
		return "/employee/dashboard"
	}
	return "/"
}

// Profile is the signed-in identity. It never carries a password.
type Profile struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	ManagerID int64  `json:"managerId,omitempty"`
	HRID      int64  `json:"hrId,omitempty"`
}

type Session struct {
	ID        string    `json:"id"`
	Token     string    `json:"token"`
	Role      Role      `json:"role"`
	Profile   Profile   `json:"profile"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SignInResult is what the browser needs after a successful sign-in.
type SignInResult struct {
	Session  Session
	Redirect string
}
