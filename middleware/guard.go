package middleware

import (
	"canteen-storefront/models"
	"net/url"
	"slices"
	"strings"
)

type Action int

const (
	ActionAllow Action = iota
	ActionLoading
	ActionRedirect
)

// Decision is the guard's verdict for one navigation. Target is set only
// for redirects; Forbidden tells a wrong-role redirect from a login one.
type Decision struct {
	Action    Action
	Target    string
	Forbidden bool
}

// Decide is the route guard. It never redirects while the session is still
// being resolved.
func Decide(session models.Session, path string, allowed []models.Role) Decision {
	if session.IsLoading {
		return Decision{Action: ActionLoading}
	}

	if !session.Authenticated() {
		return Decision{Action: ActionRedirect, Target: LoginTarget(path)}
	}

	role := session.Role()
	if len(allowed) > 0 && !slices.Contains(allowed, role) {
		target := "/"
		if role == models.RoleAdmin {
			target = "/admin/dashboard"
		}
		return Decision{Action: ActionRedirect, Target: target, Forbidden: true}
	}

	return Decision{Action: ActionAllow}
}

// LoginTarget is the sign-in page for path, carrying path as the return
// location. Admin paths use the admin sign-in page.
func LoginTarget(path string) string {
	login := "/login"
	if isAdminPath(path) {
		login = "/admin/login"
	}
	return login + "?next=" + url.QueryEscape(path)
}

func isAdminPath(path string) bool {
	path, _, _ = strings.Cut(path, "?")
	for _, prefix := range []string{"/admin", "/api/admin"} {
		if path == prefix || strings.HasPrefix(path, prefix+"/") {
			return true
		}
	}
	return false
}

func isAPIPath(path string) bool {
	return path == "/api" || strings.HasPrefix(path, "/api/")
}
