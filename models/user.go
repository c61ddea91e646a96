package models

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// User is the profile returned by the remote API's current-user endpoint.
type User struct {
	ID          int    `json:"id" validate:"required,gt=0"`
	Username    string `json:"username" validate:"required"`
	Email       string `json:"email" validate:"omitempty,email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	IsStaff     bool   `json:"is_staff"`
	IsSuperuser bool   `json:"is_superuser"`
}

// Role is derived from the staff and superuser flags, never stored.
func (u User) Role() Role {
	if u.IsStaff || u.IsSuperuser {
		return RoleAdmin
	}
	return RoleCustomer
}

func (u User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.Username
	}
}

// RegisteredUser is the account created by a sign-up. The remote API does
// not return a token; the user signs in afterwards.
type RegisteredUser struct {
	Username  string `json:"username" validate:"required"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}
