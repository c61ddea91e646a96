package models

type AuthState string

const (
	AuthUnauthenticated AuthState = "unauthenticated"
	AuthResolving       AuthState = "resolving"
	AuthAuthenticated   AuthState = "authenticated"
	AuthGuest           AuthState = "guest"
)

const GuestToken = "guest-token"

// GuestUser is the fixed profile attached to the guest sentinel token.
func GuestUser() User {
	return User{
		ID:        999,
		Username:  "guest",
		Email:     "guest@example.com",
		FirstName: "Guest",
		LastName:  "User",
	}
}

// Session is a point-in-time copy of an authentication container.
type Session struct {
	Token     string
	User      *User
	IsLoading bool
	IsGuest   bool
}

func (s Session) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

func (s Session) State() AuthState {
	switch {
	case s.IsLoading:
		return AuthResolving
	case s.Authenticated() && s.IsGuest:
		return AuthGuest
	case s.Authenticated():
		return AuthAuthenticated
	default:
		return AuthUnauthenticated
	}
}

// Role is empty for sessions without a resolved user.
func (s Session) Role() Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role()
}

type SessionView struct {
	State         AuthState `json:"state"`
	Authenticated bool      `json:"authenticated"`
	IsLoading     bool      `json:"is_loading"`
	IsGuest       bool      `json:"is_guest"`
	Role          Role      `json:"role,omitempty"`
	User          *User     `json:"user"`
}

func (s Session) View() SessionView {
	return SessionView{
		State:         s.State(),
		Authenticated: s.Authenticated(),
		IsLoading:     s.IsLoading,
		IsGuest:       s.IsGuest,
		Role:          s.Role(),
		User:          s.User,
	}
}
