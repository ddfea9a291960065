package auth

import (
	"strings"

	"indus/hrportal/internal/hrapi"
)

// Route pairs the role a username marker implies with the endpoint that
// authenticates it.
type Route struct {
	Marker   string
	Role     Role
	Endpoint hrapi.SignInEndpoint
}

// Checked in order; the first marker contained in the username wins.
var routes = []Route{
	{Marker: "@admin", Role: RoleHR, Endpoint: hrapi.HRSignIn},
	{Marker: "@lead", Role: RoleManager, Endpoint: hrapi.ManagerLogin},
	{Marker: "@user", Role: RoleEmployee, Endpoint: hrapi.EmployeeLogin},
}

// ResolveMarker picks the sign-in route for a username. The role it returns
// is only a hint: the role the HR API reports back takes precedence.
func ResolveMarker(username string) (Route, bool) {
	for _, r := range routes {
		if strings.Contains(username, r.Marker) {
			return r, true
		}
	}
	return Route{}, false
}
